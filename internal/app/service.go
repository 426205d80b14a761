// Package service provides the core business service that implements the
// dependencies required by the HTTP API: it owns the in-memory participant
// collection, refreshes it from the ticketing provider, persists snapshots,
// and answers filtered, sorted and aggregated reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pakafest/dashboard/internal/adapters/geo"
	"github.com/pakafest/dashboard/internal/adapters/repository"
	"github.com/pakafest/dashboard/internal/adapters/ticketing"
	"github.com/pakafest/dashboard/internal/domain/aggregate"
	"github.com/pakafest/dashboard/internal/domain/derive"
	"github.com/pakafest/dashboard/internal/domain/model"
	"github.com/pakafest/dashboard/internal/domain/query"
	"github.com/pakafest/dashboard/pkg/logger"
	"github.com/pakafest/dashboard/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultRefreshInterval = 30 * time.Minute
	refreshTimeout         = 2 * time.Minute
)

// Fetcher is the ticketing provider dependency.
type Fetcher interface {
	Authenticate(ctx context.Context) (string, error)
	Participants(ctx context.Context, token string) (*ticketing.ListResponse, error)
}

// Locator resolves postal codes to map markers.
type Locator interface {
	Lookup(ctx context.Context, postalCodes []string) []geo.Commune
}

// Row is one table row: the raw participant plus its derived fields.
type Row struct {
	model.Participant
	Derived derive.Fields `json:"derived"`
}

// ParticipantsQuery bundles the table controls for a read.
type ParticipantsQuery struct {
	Search     string
	AgeRange   query.Selection
	PostalCode query.Selection
	SortKey    query.Key
	SortOrder  query.Order
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the snapshot store. Without one the service runs purely in
// memory.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithFetcher sets the ticketing provider client. Without one the service
// only serves the warm-started snapshot.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithLocator sets the commune lookup client.
func WithLocator(l Locator) Option {
	return func(s *Service) {
		s.locator = l
	}
}

// WithExtractor sets the field extractor shared by every engine.
func WithExtractor(e *derive.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithRanges sets the age-range table (sentinel first).
func WithRanges(ranges derive.Ranges) Option {
	return func(s *Service) {
		if len(ranges) > 0 {
			s.ranges = ranges
		}
	}
}

// WithRefreshInterval sets the scheduler cadence. Zero disables the
// scheduler; manual refreshes still work.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		s.refreshInterval = d
	}
}

// WithTopDepartments caps the department ranking length.
func WithTopDepartments(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topDepartments = n
		}
	}
}

// WithClock injects the time source used for age math and sync stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store   repository.Store
	fetcher Fetcher
	locator Locator

	// Engines
	extractor      *derive.Extractor
	ranges         derive.Ranges
	aggregator     *aggregate.Aggregator
	filter         *query.Filter
	sorter         *query.Sorter
	topDepartments int

	// Configuration
	refreshInterval time.Duration
	now             func() time.Time

	// State guarded by mu. The collection and view are replaced wholesale
	// on every successful refresh; a failed refresh leaves them untouched.
	participants []model.Participant
	view         aggregate.View
	lastSync     time.Time
	lastErr      error

	// refreshMu serializes refreshes: an overlapping manual trigger waits
	// for the scheduled one instead of racing it.
	refreshMu sync.Mutex

	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		extractor:       derive.NewExtractor(),
		ranges:          derive.DefaultRanges(),
		refreshInterval: defaultRefreshInterval,
		now:             time.Now,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start warm-starts from the latest stored snapshot and launches the
// refresh scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.buildEngines()
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting dashboard service")

	if s.store != nil {
		snap, err := s.store.Latest(ctx)
		switch {
		case errors.Is(err, repository.ErrNoSnapshot):
			s.swap(nil, time.Time{})
			s.logger.Info(ctx, "no stored snapshot; starting empty")
		case err != nil:
			return fmt.Errorf("warm start: %w", err)
		default:
			s.swap(snap.Participants, snap.SyncedAt)
			s.logger.Info(ctx, "warm-started from snapshot",
				logger.String("snapshotID", snap.ID),
				logger.Int("participants", len(snap.Participants)),
			)
		}
	} else {
		s.swap(nil, time.Time{})
	}

	if s.fetcher != nil && s.refreshInterval > 0 {
		go s.runScheduler(ctx)
	}

	return nil
}

// Stop halts the scheduler. Reads keep working on the last state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// buildEngines wires the aggregate/filter/sort engines from the configured
// extractor and ranges. Called under mu.
func (s *Service) buildEngines() {
	s.aggregator = aggregate.New(
		aggregate.WithExtractor(s.extractor),
		aggregate.WithRanges(s.ranges),
		aggregate.WithClock(s.now),
		aggregate.WithTopDepartments(s.topDepartments),
	)
	s.filter = query.NewFilter(
		query.WithFilterExtractor(s.extractor),
		query.WithFilterRanges(s.ranges),
		query.WithFilterClock(s.now),
	)
	s.sorter = query.NewSorter(
		query.WithSorterExtractor(s.extractor),
		query.WithSorterClock(s.now),
	)
}

// runScheduler refreshes on the configured cadence until the context is
// canceled or the service stops.
func (s *Service) runScheduler(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	// First fill right away; the dashboard should not wait one interval.
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial refresh failed", logger.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn(ctx, "scheduled refresh failed", logger.Error(err))
			}
		}
	}
}

// Refresh runs one full sync: authenticate, fetch the collection wholesale,
// persist a snapshot, swap it in and recompute the view. On any failure the
// previous collection and view stay in place and the error is both returned
// and retained for /stats.
func (s *Service) Refresh(ctx context.Context) error {
	if s.fetcher == nil {
		return ErrNoFetcher
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := s.now()
	err := s.refresh(ctx)
	metrics.RecordRefresh(float64(time.Since(start).Milliseconds()), err != nil)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	return err
}

func (s *Service) refresh(ctx context.Context) error {
	token, err := s.fetcher.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	list, err := s.fetcher.Participants(ctx, token)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	syncedAt := s.now().UTC()
	snap := &model.Snapshot{
		Participants:   list.Participants,
		ServerTime:     list.ServerTime,
		Counter:        list.Counter,
		CounterDeleted: list.CounterDeleted,
		CounterTotal:   list.CounterTotal,
		SyncedAt:       syncedAt,
	}

	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			// The fresh collection is still good; serve it and flag
			// the persistence problem.
			metrics.RecordSnapshotSave(true)
			s.logger.Warn(ctx, "snapshot save failed", logger.Error(err))
		} else {
			metrics.RecordSnapshotSave(false)
		}
	}

	s.swap(list.Participants, syncedAt)
	metrics.UpdateLastSyncTime(syncedAt.Unix())

	s.logger.Info(ctx, "refresh complete",
		logger.Int("participants", len(list.Participants)),
		logger.String("serverTime", list.ServerTime),
	)
	return nil
}

// swap replaces the collection and recomputes every derived view.
func (s *Service) swap(participants []model.Participant, syncedAt time.Time) {
	view := s.aggregator.Aggregate(context.Background(), participants)

	s.mu.Lock()
	s.participants = participants
	s.view = view
	s.lastSync = syncedAt
	s.mu.Unlock()

	metrics.UpdateParticipantCounts(view.Counts.Total, view.Counts.Scanned,
		view.Counts.WithPostalCode, view.Counts.WithBirthDate)
}

// Participants answers one table read: filter, sort, attach derived fields.
func (s *Service) Participants(ctx context.Context, q ParticipantsQuery) []Row {
	s.mu.RLock()
	participants := s.participants
	s.mu.RUnlock()

	filtered := s.filter.Apply(participants, q.Search, q.AgeRange, q.PostalCode)
	if q.SortKey != "" {
		filtered = s.sorter.Sort(filtered, q.SortKey, q.SortOrder)
	}

	ref := s.now()
	rows := make([]Row, len(filtered))
	for i := range filtered {
		rows[i] = Row{
			Participant: filtered[i],
			Derived:     s.extractor.Fields(&filtered[i], ref, s.ranges),
		}
	}
	return rows
}

// Stats returns the current aggregate view.
func (s *Service) Stats(_ context.Context) aggregate.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// AgeRanges exposes the configured range table for dropdowns.
func (s *Service) AgeRanges() derive.Ranges {
	return s.ranges
}

// Sentinel returns the filter-disable label of the configured table.
func (s *Service) Sentinel() string {
	return s.ranges.Sentinel()
}

// Communes resolves the current unique postal codes to map markers.
func (s *Service) Communes(ctx context.Context) []geo.Commune {
	if s.locator == nil {
		return nil
	}

	s.mu.RLock()
	codes := s.view.UniquePostalCodes
	s.mu.RUnlock()

	// Drop the leading sentinel; it is a dropdown entry, not a postal code.
	if len(codes) > 0 {
		codes = codes[1:]
	}
	return s.locator.Lookup(ctx, codes)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"participants": len(s.participants),
		"lastSync":     s.lastSync,
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}
	return stats
}
