package derive

// Range is a named inclusive [Min, Max] age interval.
type Range struct {
	Label string `json:"label" koanf:"label"`
	Min   int    `json:"min" koanf:"min"`
	Max   int    `json:"max" koanf:"max"`
}

// Contains reports whether age falls inside the range.
func (r Range) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Ranges is an ordered age-range table. The first entry is the sentinel
// "all" range: it is a filter-disable marker and a dropdown entry, never a
// real bucket, and is excluded from per-bucket counts.
type Ranges []Range

// DefaultRanges returns the built-in table used when configuration does not
// provide one. Labels are in French to match the dashboard.
func DefaultRanges() Ranges {
	return Ranges{
		{Label: "Tous", Min: 0, Max: 120},
		{Label: "0-17", Min: 0, Max: 17},
		{Label: "18-25", Min: 18, Max: 25},
		{Label: "26-35", Min: 26, Max: 35},
		{Label: "36-45", Min: 36, Max: 45},
		{Label: "46-55", Min: 46, Max: 55},
		{Label: "56-65", Min: 56, Max: 65},
		{Label: "66+", Min: 66, Max: 120},
	}
}

// Bucket returns the label of the first non-sentinel range containing age.
// The scan stops at the first match so behavior stays deterministic even if
// a table were misconfigured with overlapping ranges. An age outside every
// range returns false and is counted nowhere.
func (rs Ranges) Bucket(age int) (string, bool) {
	for _, r := range rs.buckets() {
		if r.Contains(age) {
			return r.Label, true
		}
	}
	return "", false
}

// ByLabel finds a range, sentinel included, by its label.
func (rs Ranges) ByLabel(label string) (Range, bool) {
	for _, r := range rs {
		if r.Label == label {
			return r, true
		}
	}
	return Range{}, false
}

// Labels returns the non-sentinel bucket labels in table order.
func (rs Ranges) Labels() []string {
	buckets := rs.buckets()
	labels := make([]string, len(buckets))
	for i, r := range buckets {
		labels[i] = r.Label
	}
	return labels
}

// Sentinel returns the label of the leading "all" entry, or empty for an
// empty table.
func (rs Ranges) Sentinel() string {
	if len(rs) == 0 {
		return ""
	}
	return rs[0].Label
}

func (rs Ranges) buckets() Ranges {
	if len(rs) == 0 {
		return nil
	}
	return rs[1:]
}
