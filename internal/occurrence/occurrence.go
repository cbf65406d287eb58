package occurrence

import "fmt"

// Position is a 0-based location in the source. Col counts code points
// within the line, not bytes.
type Position struct {
	Row int
	Col int
}

func (p Position) Before(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Range is a half-open interval [Start, End) over positions.
type Range struct {
	Start Position
	End   Position
}

func NewRange(startRow, startCol, endRow, endCol int) Range {
	return Range{
		Start: Position{Row: startRow, Col: startCol},
		End:   Position{Row: endRow, Col: endCol},
	}
}

func (r Range) Empty() bool {
	return r.Start == r.End
}

// Overlaps reports whether two ranges share at least one position.
// Abutting ranges do not overlap.
func (r Range) Overlaps(o Range) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// MarshalJSON encodes the range as [startRow, startCol, endRow, endCol],
// the shape range-indexed consumers expect.
func (r Range) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "[%d,%d,%d,%d]", r.Start.Row, r.Start.Col, r.End.Row, r.End.Col), nil
}

// Occurrence is a finalized labeled range.
type Occurrence struct {
	Range Range `json:"range"`
	Kind  Kind  `json:"kind"`
}

// Document accumulates occurrences in emission order. A Document is
// request-scoped: one highlighting call owns it until returned.
type Document struct {
	Occurrences []Occurrence `json:"occurrences"`
}

func (d *Document) Append(r Range, k Kind) {
	d.Occurrences = append(d.Occurrences, Occurrence{Range: r, Kind: k})
}

func (d *Document) Len() int {
	return len(d.Occurrences)
}
