// Package world provides the sector hex grid, spatial placement of systems,
// the cross-sector context and the nebula field.
// Hexes are stored in odd-row offset coordinates and measured in axial/cube space.
package world

import (
	"fmt"
	"strconv"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Offset converts back to odd-row offset coordinates.
func (h HexCoord) Offset() Offset {
	return Offset{Col: h.Q + (h.R-(h.R&1))/2, Row: h.R}
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// HexID is the "col-row" key of a hex within a sector.
type HexID string

// Offset is an odd-row offset coordinate: odd rows are shoved half a hex right.
type Offset struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ID returns the "col-row" key.
func (o Offset) ID() HexID {
	return HexID(strconv.Itoa(o.Col) + "-" + strconv.Itoa(o.Row))
}

// Axial converts to axial coordinates. Negative rows keep their parity via &1.
func (o Offset) Axial() HexCoord {
	return HexCoord{Q: o.Col - (o.Row-(o.Row&1))/2, R: o.Row}
}

// Less orders offsets column-major, then by row.
func (o Offset) Less(other Offset) bool {
	if o.Col != other.Col {
		return o.Col < other.Col
	}
	return o.Row < other.Row
}

// OffsetDistance returns the hex distance between two offset coordinates.
func OffsetDistance(a, b Offset) int {
	return Distance(a.Axial(), b.Axial())
}

// ParseHexID parses a "col-row" key.
func ParseHexID(id HexID) (Offset, error) {
	s := string(id)
	i := strings.IndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return Offset{}, fmt.Errorf("hex id %q: want col-row", s)
	}
	col, err := strconv.Atoi(s[:i])
	if err != nil {
		return Offset{}, fmt.Errorf("hex id %q: column: %w", s, err)
	}
	row, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Offset{}, fmt.Errorf("hex id %q: row: %w", s, err)
	}
	return Offset{Col: col, Row: row}, nil
}

// MustOffset parses an id known to be well formed, such as one produced by Offset.ID.
func MustOffset(id HexID) Offset {
	o, err := ParseHexID(id)
	if err != nil {
		panic(err)
	}
	return o
}

// LessID orders hex ids canonically. Unparseable ids sort after valid ones, by string.
func LessID(a, b HexID) bool {
	oa, errA := ParseHexID(a)
	ob, errB := ParseHexID(b)
	switch {
	case errA == nil && errB == nil:
		return oa.Less(ob)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
