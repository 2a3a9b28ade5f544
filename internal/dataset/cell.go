package dataset

import (
	"strconv"
	"strings"
)

// CellKind discriminates the variants a cell can hold.
type CellKind int

const (
	KindMissing CellKind = iota
	KindNumber
	KindText
)

// Cell is a tagged variant holding one table value: missing, a numeric
// value, or a textual value. Missing is a distinct state, not the empty
// string and not zero.
type Cell struct {
	kind CellKind
	num  float64
	text string
}

// Missing returns the missing cell.
func Missing() Cell {
	return Cell{kind: KindMissing}
}

// Number returns a numeric cell.
func Number(v float64) Cell {
	return Cell{kind: KindNumber, num: v}
}

// Text returns a textual cell.
func Text(s string) Cell {
	return Cell{kind: KindText, text: s}
}

// Kind returns the cell's variant tag.
func (c Cell) Kind() CellKind {
	return c.kind
}

// IsMissing reports whether the cell is in the missing state.
func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

// Number returns the numeric value if the cell holds one.
func (c Cell) Number() (float64, bool) {
	return c.num, c.kind == KindNumber
}

// Text returns the textual value if the cell holds one.
func (c Cell) Text() (string, bool) {
	return c.text, c.kind == KindText
}

// NumericValue returns the cell's value as a float64 when the cell is
// numeric or holds text that parses as a number. Classification and the
// numeric statistics operate through this accessor so that values like
// "42" left in a text cell still participate.
func (c Cell) NumericValue() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.num, true
	case KindText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// String renders the cell for output. Missing renders as the empty
// string; numbers render without a trailing fractional zero.
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindText:
		return c.text
	default:
		return ""
	}
}

// signature renders the cell for duplicate detection. The kind prefix
// keeps Number(42) distinct from Text("42") and missing distinct from
// the empty string.
func (c Cell) signature() string {
	switch c.kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindText:
		return "t:" + c.text
	default:
		return "m"
	}
}

// Equal reports whether two cells hold the same variant and value.
// Missing equals missing.
func (c Cell) Equal(other Cell) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.num == other.num
	case KindText:
		return c.text == other.text
	default:
		return true
	}
}
