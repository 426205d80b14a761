package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pakafest/dashboard/internal/domain/derive"
	"github.com/pakafest/dashboard/internal/domain/model"
)

// Key selects the participant field a sort orders by.
type Key string

// Sortable keys, matching the dashboard table columns.
const (
	KeyFirstName  Key = "first_name"
	KeyLastName   Key = "last_name"
	KeyEmail      Key = "email"
	KeyAge        Key = "age"
	KeyBirthDate  Key = "birth_date"
	KeyPostalCode Key = "postal_code"
	KeyBarcode    Key = "barcode"
	KeyCreateDate Key = "create_date"
	KeyPaid       Key = "paid"
)

// ParseKey validates a raw sort key. The second return is false for unknown
// keys.
func ParseKey(raw string) (Key, bool) {
	switch k := Key(raw); k {
	case KeyFirstName, KeyLastName, KeyEmail, KeyAge, KeyBirthDate,
		KeyPostalCode, KeyBarcode, KeyCreateDate, KeyPaid:
		return k, true
	default:
		return "", false
	}
}

// Order is the sort direction.
type Order string

// Sort directions.
const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder maps a raw direction to an Order, defaulting to ascending.
func ParseOrder(raw string) Order {
	if Order(raw) == OrderDesc {
		return OrderDesc
	}
	return OrderAsc
}

// State is the current sort choice of a table. Toggling the active key
// flips the direction; choosing a new key resets to ascending.
type State struct {
	Key   Key   `json:"key"`
	Order Order `json:"order"`
}

// Toggle returns the state after a click on the given column header.
func (s State) Toggle(key Key) State {
	if s.Key == key {
		if s.Order == OrderAsc {
			return State{Key: key, Order: OrderDesc}
		}
		return State{Key: key, Order: OrderAsc}
	}
	return State{Key: key, Order: OrderAsc}
}

// SorterOption applies a configuration option to the Sorter.
type SorterOption func(*Sorter)

// WithSorterExtractor sets the field extractor used for derived keys.
func WithSorterExtractor(e *derive.Extractor) SorterOption {
	return func(s *Sorter) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithSorterClock injects the reference-time source for the age key.
func WithSorterClock(now func() time.Time) SorterOption {
	return func(s *Sorter) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSorterLocale sets the collation locale for string keys.
func WithSorterLocale(tag language.Tag) SorterOption {
	return func(s *Sorter) {
		s.locale = tag
	}
}

// Sorter orders a participant collection without mutating the input.
// String keys use locale-aware collation on lower-cased values; the age key
// is numeric with unknown ages sorted last in both directions. The
// birth-date key compares the raw DD/MM/YYYY strings, which is not
// chronological order; the dashboard has always behaved this way and the
// ordering is kept as-is.
type Sorter struct {
	extractor *derive.Extractor
	now       func() time.Time
	locale    language.Tag
}

// NewSorter creates a Sorter with configuration options.
func NewSorter(opts ...SorterOption) *Sorter {
	s := &Sorter{
		extractor: derive.NewExtractor(),
		now:       time.Now,
		locale:    language.French,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sortValue is the precomputed comparison value for one participant. Keys
// are derived once per participant, not per comparison.
type sortValue struct {
	str    string
	num    int
	flag   bool
	known  bool
	isNum  bool
	isBool bool
}

// Sort returns a new ordering of participants by key and order. The sort is
// stable: participants comparing equal keep their input order.
func (s *Sorter) Sort(participants []model.Participant, key Key, order Order) []model.Participant {
	type row struct {
		participant model.Participant
		value       sortValue
	}

	ref := s.now()
	rows := make([]row, len(participants))
	for i := range participants {
		rows[i] = row{
			participant: participants[i],
			value:       s.valueFor(&participants[i], key, ref),
		}
	}

	// A Collator keeps internal buffers, so build one per call rather than
	// sharing across goroutines.
	col := collate.New(s.locale)

	sort.SliceStable(rows, func(i, j int) bool {
		return lessValue(col, rows[i].value, rows[j].value, order)
	})

	out := make([]model.Participant, len(rows))
	for i := range rows {
		out[i] = rows[i].participant
	}
	return out
}

func lessValue(col *collate.Collator, a, b sortValue, order Order) bool {
	switch {
	case a.isNum:
		// Unknown values sort after every known one, whatever the
		// direction.
		if !a.known {
			return false
		}
		if !b.known {
			return true
		}
		if order == OrderAsc {
			return a.num < b.num
		}
		return a.num > b.num
	case a.isBool:
		av, bv := boolToInt(a.flag), boolToInt(b.flag)
		if order == OrderAsc {
			return av < bv
		}
		return av > bv
	default:
		cmp := col.CompareString(a.str, b.str)
		if order == OrderAsc {
			return cmp < 0
		}
		return cmp > 0
	}
}

func (s *Sorter) valueFor(p *model.Participant, key Key, ref time.Time) sortValue {
	switch key {
	case KeyFirstName:
		return stringValue(p.Owner.FirstName)
	case KeyLastName:
		return stringValue(p.Owner.LastName)
	case KeyEmail:
		return stringValue(p.Owner.Email)
	case KeyAge:
		v := sortValue{isNum: true}
		if birth, ok := s.extractor.BirthDate(p); ok {
			if age, ok := derive.Age(birth, ref); ok {
				v.num = age
				v.known = true
			}
		}
		return v
	case KeyBirthDate:
		birth, _ := s.extractor.BirthDate(p)
		return sortValue{str: birth}
	case KeyPostalCode:
		code, _ := s.extractor.PostalCode(p)
		return sortValue{str: code}
	case KeyBarcode:
		return sortValue{str: p.Barcode}
	case KeyCreateDate:
		return sortValue{str: p.CreateDate}
	case KeyPaid:
		return sortValue{isBool: true, flag: p.Paid}
	default:
		return sortValue{}
	}
}

func stringValue(s string) sortValue {
	return sortValue{str: strings.ToLower(s)}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
