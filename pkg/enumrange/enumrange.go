// Package enumrange provides bounds-checked conversion from raw integers to
// enumeration values whose discriminants may skip numbers.
//
// A Table is an ordered list of inclusive discriminant ranges. Values that
// fall in a gap between ranges, or outside every range, are rejected, so a
// raw byte read from storage can never be reinterpreted as an undefined
// enumeration value.
package enumrange

import "fmt"

// Range is an inclusive span of valid discriminants.
type Range struct {
	First uint8
	Last  uint8
}

// Table holds the valid discriminant ranges of one enumeration in ascending order.
type Table struct {
	ranges []Range
}

// New builds a table from ranges given in ascending order. Ranges must not
// overlap or touch; adjacent runs are written as one range. New panics on
// malformed input, tables are declared once at package init.
func New(ranges ...Range) Table {
	if len(ranges) == 0 {
		panic("enumrange: table needs at least one range")
	}
	for i, r := range ranges {
		if r.Last < r.First {
			panic(fmt.Sprintf("enumrange: range %d is inverted (%d > %d)", i, r.First, r.Last))
		}
		if i > 0 && int(r.First) <= int(ranges[i-1].Last)+1 {
			panic(fmt.Sprintf("enumrange: range %d overlaps or touches range %d", i, i-1))
		}
	}
	out := make([]Range, len(ranges))
	copy(out, ranges)

	return Table{ranges: out}
}

// Sequential builds a table with a single run of discriminants first..=last.
func Sequential(first, last uint8) Table {
	return New(Range{First: first, Last: last})
}

// Contains reports whether v is a defined discriminant.
func (t Table) Contains(v uint8) bool {
	for _, r := range t.ranges {
		if v < r.First {
			return false
		}
		if v <= r.Last {
			return true
		}
	}

	return false
}

// End returns the exclusive upper bound of the table: one past the largest discriminant.
func (t Table) End() int {
	return int(t.ranges[len(t.ranges)-1].Last) + 1
}

// Ranges returns a copy of the ranges making up the table.
func (t Table) Ranges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)

	return out
}

// Values returns every defined discriminant in ascending order.
func (t Table) Values() []uint8 {
	var out []uint8
	for _, r := range t.ranges {
		for v := int(r.First); v <= int(r.Last); v++ {
			out = append(out, uint8(v))
		}
	}

	return out
}

// Lookup converts v into the enumeration type T when v is defined in t.
func Lookup[T ~uint8](t Table, v uint8) (T, bool) {
	if !t.Contains(v) {
		return 0, false
	}

	return T(v), true
}
