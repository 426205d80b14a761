package derive

import (
	"strconv"
	"strings"
	"time"
)

// birthDateParts is the number of components in a DD/MM/YYYY value.
const birthDateParts = 3

// Age converts a DD/MM/YYYY birth-date string into completed years at the
// given reference date. The second return is false when the value is not a
// three-part slash-separated string, a part is not numeric, or the resulting
// age would be negative (birth date in the future).
//
// Out-of-range day or month values (e.g. 31/13/2000) are not rejected: they
// roll over to the adjacent month or year per calendar arithmetic, matching
// the behavior of the dashboard this data feeds.
func Age(birthDate string, ref time.Time) (int, bool) {
	parts := strings.Split(birthDate, "/")
	if len(parts) != birthDateParts {
		return 0, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return 0, false
	}

	// time.Date normalizes out-of-range components the same way a JS Date
	// constructed from (year, monthIndex, day) does.
	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())

	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}
