// Package query narrows and orders the participant collection for display:
// a free-text search combined with age-range and postal-code filters, and a
// stable multi-key sort.
package query

// Selection is a dropdown filter value: either "no filter" or an exact
// value. It replaces the upstream convention of overloading the literal
// sentinel label ("Tous") as a disable flag, so handlers never compare
// against a magic string.
type Selection struct {
	value  string
	active bool
}

// All returns the selection that disables the filter.
func All() Selection {
	return Selection{}
}

// Exact returns a selection requiring the given value.
func Exact(value string) Selection {
	return Selection{value: value, active: true}
}

// ParseSelection maps a raw dropdown value to a Selection. An empty string
// or the sentinel label disables the filter.
func ParseSelection(raw, sentinel string) Selection {
	if raw == "" || raw == sentinel {
		return All()
	}
	return Exact(raw)
}

// Active reports whether the filter is enabled.
func (s Selection) Active() bool {
	return s.active
}

// Value returns the required value; meaningful only when Active.
func (s Selection) Value() string {
	return s.value
}
