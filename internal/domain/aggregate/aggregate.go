// Package aggregate reduces the full participant collection to the derived
// view the dashboard renders: unique postal codes, department counts, age
// bucket counts and summary counters. The reduction is a pure function of
// its inputs and is recomputed wholesale on every refresh.
package aggregate

import (
	"context"
	"sort"
	"time"

	"github.com/pakafest/dashboard/internal/domain/derive"
	"github.com/pakafest/dashboard/internal/domain/model"
)

// Default aggregation configuration constants.
const (
	// defaultTopDepartments caps the department ranking length.
	defaultTopDepartments = 10
	// departmentCodeLen is the prefix of a French postal code identifying
	// the department.
	departmentCodeLen = 2
)

// DepartmentCount is one row of the department ranking.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// Counts are the dashboard summary counters.
type Counts struct {
	Total          int `json:"total"`
	Scanned        int `json:"scanned"`
	WithPostalCode int `json:"with_postal_code"`
	WithBirthDate  int `json:"with_birth_date"`
}

// View is everything the presentation layer needs per refresh.
type View struct {
	// UniquePostalCodes is sorted ascending and led by the sentinel label,
	// ready to populate the postal-code dropdown.
	UniquePostalCodes []string `json:"unique_postal_codes"`
	// StatsByDepartment is sorted by count descending and truncated to the
	// configured top N. Tie order between equal counts is unspecified.
	StatsByDepartment []DepartmentCount `json:"stats_by_department"`
	// StatsByAge maps every non-sentinel range label to its count, zero
	// included. Unknown and unbucketed ages are counted nowhere here.
	StatsByAge map[string]int `json:"stats_by_age"`
	Counts     Counts         `json:"counts"`
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithExtractor sets the field extractor.
func WithExtractor(e *derive.Extractor) Option {
	return func(a *Aggregator) {
		if e != nil {
			a.extractor = e
		}
	}
}

// WithRanges sets the age-range table (sentinel first).
func WithRanges(ranges derive.Ranges) Option {
	return func(a *Aggregator) {
		if len(ranges) > 0 {
			a.ranges = ranges
		}
	}
}

// WithTopDepartments caps the department ranking length.
func WithTopDepartments(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topDepartments = n
		}
	}
}

// WithClock injects the reference-time source used for age math. Tests use
// this to pin a fixed date.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator computes a View from a participant collection.
type Aggregator struct {
	extractor      *derive.Extractor
	ranges         derive.Ranges
	topDepartments int
	now            func() time.Time
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		extractor:      derive.NewExtractor(),
		ranges:         derive.DefaultRanges(),
		topDepartments: defaultTopDepartments,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate reduces participants to a View in a single pass plus the sorts.
// A participant with no usable data contributes to Counts.Total only.
func (a *Aggregator) Aggregate(_ context.Context, participants []model.Participant) View {
	ref := a.now()

	byAge := make(map[string]int, len(a.ranges))
	for _, label := range a.ranges.Labels() {
		byAge[label] = 0
	}

	codeSet := make(map[string]struct{})
	byDepartment := make(map[string]int)
	counts := Counts{Total: len(participants)}

	for i := range participants {
		p := &participants[i]

		if p.Scanned() {
			counts.Scanned++
		}

		if birth, ok := a.extractor.BirthDate(p); ok {
			counts.WithBirthDate++
			if age, ok := derive.Age(birth, ref); ok {
				if label, ok := a.ranges.Bucket(age); ok {
					byAge[label]++
				}
			}
		}

		code, ok := a.extractor.PostalCode(p)
		if !ok {
			continue
		}
		counts.WithPostalCode++
		codeSet[code] = struct{}{}
		if len(code) >= departmentCodeLen {
			byDepartment[code[:departmentCodeLen]]++
		}
	}

	return View{
		UniquePostalCodes: a.sortedCodes(codeSet),
		StatsByDepartment: a.topDepartmentCounts(byDepartment),
		StatsByAge:        byAge,
		Counts:            counts,
	}
}

// sortedCodes returns the distinct postal codes sorted ascending, with the
// sentinel label prepended.
func (a *Aggregator) sortedCodes(codeSet map[string]struct{}) []string {
	codes := make([]string, 0, len(codeSet)+1)
	codes = append(codes, a.ranges.Sentinel())
	start := len(codes)
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Strings(codes[start:])
	return codes
}

// topDepartmentCounts ranks departments by count descending and truncates to
// the configured limit. Ordering between equal counts follows first
// appearance in the collected pairs and is deliberately unspecified.
func (a *Aggregator) topDepartmentCounts(byDepartment map[string]int) []DepartmentCount {
	ranking := make([]DepartmentCount, 0, len(byDepartment))
	for dept, count := range byDepartment {
		ranking = append(ranking, DepartmentCount{Department: dept, Count: count})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	if len(ranking) > a.topDepartments {
		ranking = ranking[:a.topDepartments]
	}
	return ranking
}
