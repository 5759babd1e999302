// Package roomfilter derives the displayed room list from a fetched room
// collection and the user's filter and sort selection.
package roomfilter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// SortKey selects the order of the filtered rooms.
type SortKey string

const (
	SortNone        SortKey = "none"
	SortPriceAsc    SortKey = "priceAsc"
	SortPriceDesc   SortKey = "priceDesc"
	SortNewestFirst SortKey = "newestFirst"
)

var sortLabels = map[string]SortKey{
	"price low to high": SortPriceAsc,
	"price high to low": SortPriceDesc,
	"newest first":      SortNewestFirst,
}

// ParseSortKey accepts either a SortKey value or one of the display labels
// ("Price Low to High", "Price High to Low", "Newest First").  Empty input
// is SortNone.
func ParseSortKey(s string) (SortKey, bool) {
	s = strings.TrimSpace(s)
	switch k := SortKey(s); k {
	case "", SortNone:
		return SortNone, true
	case SortPriceAsc, SortPriceDesc, SortNewestFirst:
		return k, true
	}
	if k, ok := sortLabels[strings.ToLower(s)]; ok {
		return k, true
	}
	return SortNone, false
}

// Options is a filter and sort selection.  Empty categories do not filter.
type Options struct {
	RoomTypes   []string
	PriceRanges []string
	Sort        SortKey
	Destination string
}

// Clear returns the empty selection, under which Apply returns the input
// unchanged.
func (Options) Clear() Options { return Options{} }

// IsZero reports whether o neither filters nor reorders.
func (o Options) IsZero() bool {
	return len(o.RoomTypes) == 0 && len(o.PriceRanges) == 0 &&
		strings.TrimSpace(o.Destination) == "" && (o.Sort == "" || o.Sort == SortNone)
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min, Max float64
}

// Contains reports whether Min <= price <= Max.
func (r PriceRange) Contains(price float64) bool {
	return r.Min <= price && price <= r.Max
}

// ParsePriceRange parses tokens such as "0 to 500" or "1,000 to 2,000".
// Thousands separators are ignored.
func ParsePriceRange(tok string) (PriceRange, bool) {
	lo, hi, ok := strings.Cut(tok, " to ")
	if !ok {
		return PriceRange{}, false
	}
	from, err := parseAmount(lo)
	if err != nil {
		return PriceRange{}, false
	}
	to, err := parseAmount(hi)
	if err != nil {
		return PriceRange{}, false
	}
	return PriceRange{Min: from, Max: to}, true
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

// Apply returns the rooms matching every non-empty category of opts, in
// the order opts.Sort selects.  Ties keep their input order.  rooms is not
// modified.
func Apply(rooms []model.RoomListing, opts Options) []model.RoomListing {
	m := newMatcher(opts)
	out := make([]model.RoomListing, 0, len(rooms))
	for _, r := range rooms {
		if m.match(r) {
			out = append(out, r)
		}
	}

	switch opts.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b model.RoomListing) int {
			return cmp.Compare(a.PricePerNight, b.PricePerNight)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b model.RoomListing) int {
			return cmp.Compare(b.PricePerNight, a.PricePerNight)
		})
	case SortNewestFirst:
		slices.SortStableFunc(out, func(a, b model.RoomListing) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}

type matcher struct {
	types  map[string]struct{}
	ranges []PriceRange
	// anyRange is false when price ranges were selected but none parsed,
	// in which case nothing matches.
	anyRange    bool
	destination string
}

func newMatcher(opts Options) matcher {
	m := matcher{destination: strings.ToLower(strings.TrimSpace(opts.Destination))}
	if len(opts.RoomTypes) > 0 {
		m.types = make(map[string]struct{}, len(opts.RoomTypes))
		for _, t := range opts.RoomTypes {
			m.types[t] = struct{}{}
		}
	}
	for _, tok := range opts.PriceRanges {
		if r, ok := ParsePriceRange(tok); ok {
			m.ranges = append(m.ranges, r)
		}
	}
	m.anyRange = len(opts.PriceRanges) == 0 || len(m.ranges) > 0
	return m
}

func (m matcher) match(r model.RoomListing) bool {
	if m.types != nil {
		if _, ok := m.types[string(r.RoomType)]; !ok {
			return false
		}
	}
	if !m.anyRange {
		return false
	}
	if len(m.ranges) > 0 && !slices.ContainsFunc(m.ranges, func(pr PriceRange) bool {
		return pr.Contains(r.PricePerNight)
	}) {
		return false
	}
	if m.destination != "" && !strings.Contains(strings.ToLower(r.Hotel.City), m.destination) {
		return false
	}
	return true
}

// ToggleValue adds value to values when checked and removes every
// occurrence of it otherwise, like a checkbox group.  values is not
// modified.
func ToggleValue(values []string, value string, checked bool) []string {
	out := make([]string, 0, len(values)+1)
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	if checked {
		out = append(out, value)
	}
	return out
}
