package query

import (
	"strings"
	"time"

	"github.com/pakafest/dashboard/internal/domain/derive"
	"github.com/pakafest/dashboard/internal/domain/model"
)

// FilterOption applies a configuration option to the Filter.
type FilterOption func(*Filter)

// WithFilterExtractor sets the field extractor used for derived fields.
func WithFilterExtractor(e *derive.Extractor) FilterOption {
	return func(f *Filter) {
		if e != nil {
			f.extractor = e
		}
	}
}

// WithFilterRanges sets the age-range table used to resolve range labels.
func WithFilterRanges(ranges derive.Ranges) FilterOption {
	return func(f *Filter) {
		if len(ranges) > 0 {
			f.ranges = ranges
		}
	}
}

// WithFilterClock injects the reference-time source for age math.
func WithFilterClock(now func() time.Time) FilterOption {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}

// Filter applies the three dashboard filters to a collection. All active
// predicates are ANDed; order is preserved.
type Filter struct {
	extractor *derive.Extractor
	ranges    derive.Ranges
	now       func() time.Time
}

// NewFilter creates a Filter with configuration options.
func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{
		extractor: derive.NewExtractor(),
		ranges:    derive.DefaultRanges(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply returns the participants passing every active filter, in input
// order. A trimmed-empty search term disables the text filter; sentinel
// selections disable theirs. Missing fields never fail the search, they
// just compare as empty strings.
func (f *Filter) Apply(participants []model.Participant, search string, ageRange, postalCode Selection) []model.Participant {
	term := strings.ToLower(strings.TrimSpace(search))
	ref := f.now()

	kept := make([]model.Participant, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		if term != "" && !f.matchesSearch(p, term) {
			continue
		}
		if ageRange.Active() && !f.matchesAgeRange(p, ageRange.Value(), ref) {
			continue
		}
		if postalCode.Active() && !f.matchesPostalCode(p, postalCode.Value()) {
			continue
		}
		kept = append(kept, *p)
	}
	return kept
}

// matchesSearch checks the term against owner names, email, barcode and the
// derived postal code, all lower-cased.
func (f *Filter) matchesSearch(p *model.Participant, term string) bool {
	postal, _ := f.extractor.PostalCode(p)
	for _, field := range []string{
		p.Owner.FirstName,
		p.Owner.LastName,
		p.Owner.Email,
		p.Barcode,
		postal,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// matchesAgeRange requires a computable age inside the labeled range. A
// participant with unknown age is excluded while the filter is active. An
// unknown label keeps the participant, mirroring the upstream dashboard
// which only applies ranges it can resolve.
func (f *Filter) matchesAgeRange(p *model.Participant, label string, ref time.Time) bool {
	r, ok := f.ranges.ByLabel(label)
	if !ok {
		return true
	}
	birth, ok := f.extractor.BirthDate(p)
	if !ok {
		return false
	}
	age, ok := derive.Age(birth, ref)
	if !ok {
		return false
	}
	return r.Contains(age)
}

func (f *Filter) matchesPostalCode(p *model.Participant, want string) bool {
	code, ok := f.extractor.PostalCode(p)
	return ok && code == want
}
