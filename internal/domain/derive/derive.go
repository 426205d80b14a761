// Package derive computes structured fields from the free-form survey data
// attached to a participant: birth date, postal code, age and age bucket.
// All functions are pure and total; missing or malformed input degrades to
// "unknown" rather than an error.
package derive

import (
	"strings"
	"time"

	"github.com/pakafest/dashboard/internal/domain/model"
)

// Default label substrings recognized per field. Matching is unanchored and
// case-insensitive: a label containing any of these anywhere matches.
var (
	defaultBirthDateLabels  = []string{"naissance", "date_de_naissance"}
	defaultPostalCodeLabels = []string{"postal", "code_postal"}
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithBirthDateLabels overrides the substrings matched against answer labels
// when looking for a birth date.
func WithBirthDateLabels(labels []string) Option {
	return func(e *Extractor) {
		if len(labels) > 0 {
			e.birthLabels = normalizeLabels(labels)
		}
	}
}

// WithPostalCodeLabels overrides the substrings matched against answer
// labels when looking for a postal code.
func WithPostalCodeLabels(labels []string) Option {
	return func(e *Extractor) {
		if len(labels) > 0 {
			e.postalLabels = normalizeLabels(labels)
		}
	}
}

// Extractor locates semantic fields inside a participant's answer list by
// case-insensitive substring matching on the question labels. The candidate
// substrings are fixed configuration, not discovered at runtime.
type Extractor struct {
	birthLabels  []string
	postalLabels []string
}

// NewExtractor creates an Extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		birthLabels:  defaultBirthDateLabels,
		postalLabels: defaultPostalCodeLabels,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BirthDate returns the raw birth-date answer of the participant, scanning
// its own answers in original order. The value is passed through unvalidated;
// downstream age math treats malformed values as unknown. The second return
// is false when no answer matches.
func (e *Extractor) BirthDate(p *model.Participant) (string, bool) {
	return firstMatch(p.Answers, e.birthLabels)
}

// PostalCode returns the participant's postal code, falling back to the
// buyer's answers when the participant's own list has no match. The second
// return is false when neither source has one.
func (e *Extractor) PostalCode(p *model.Participant) (string, bool) {
	if v, ok := firstMatch(p.Answers, e.postalLabels); ok {
		return v, true
	}
	if p.Buyer != nil {
		return firstMatch(p.Buyer.Answers, e.postalLabels)
	}
	return "", false
}

// Fields bundles every derived field for one participant. Pointers are nil
// when the field could not be derived.
type Fields struct {
	BirthDate  *string `json:"birth_date"`
	PostalCode *string `json:"postal_code"`
	Age        *int    `json:"age"`
	AgeRange   *string `json:"age_range"`
}

// Fields derives everything at once, using ref as the age reference date and
// ranges for bucketing.
func (e *Extractor) Fields(p *model.Participant, ref time.Time, ranges Ranges) Fields {
	var f Fields
	if birth, ok := e.BirthDate(p); ok {
		f.BirthDate = &birth
		if age, ok := Age(birth, ref); ok {
			f.Age = &age
			if label, ok := ranges.Bucket(age); ok {
				f.AgeRange = &label
			}
		}
	}
	if code, ok := e.PostalCode(p); ok {
		f.PostalCode = &code
	}
	return f
}

// firstMatch scans answers in order and returns the value of the first entry
// whose label contains any of the given substrings. The answer order is the
// provider's; it is never re-sorted before the scan. A matching entry with an
// empty value counts as absent: the scan does not continue to later matches,
// so an empty first match degrades the whole field to unknown.
func firstMatch(answers []model.Answer, labels []string) (string, bool) {
	for _, a := range answers {
		label := strings.ToLower(a.Label)
		for _, want := range labels {
			if strings.Contains(label, want) {
				if a.Value == "" {
					return "", false
				}
				return a.Value, true
			}
		}
	}
	return "", false
}

func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
