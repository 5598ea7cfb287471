package world

import (
	"fmt"
	"math"
)

// Direction is one of the four sector edges.
type Direction uint8

const (
	North Direction = iota // row 0
	South                  // row height-1
	West                   // col 0
	East                   // col width-1
)

// Directions lists the edges in a fixed order.
var Directions = [4]Direction{North, South, West, East}

// Opposite returns the facing edge of the neighbouring sector.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	default:
		return West
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case West:
		return "W"
	case East:
		return "E"
	default:
		return "?"
	}
}

// Grid is a rectangular odd-row offset hex grid.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// InBounds returns true if the coordinate lies inside the grid.
func (g Grid) InBounds(o Offset) bool {
	return o.Col >= 0 && o.Row >= 0 && o.Col < g.Width && o.Row < g.Height
}

// HexCount returns the total number of hexes in the grid.
func (g Grid) HexCount() int {
	return g.Width * g.Height
}

// Coords returns every coordinate in canonical order: column-major, then row.
func (g Grid) Coords() []Offset {
	out := make([]Offset, 0, g.HexCount())
	for c := 0; c < g.Width; c++ {
		for r := 0; r < g.Height; r++ {
			out = append(out, Offset{Col: c, Row: r})
		}
	}
	return out
}

// Center returns the hex nearest the middle of the grid.
func (g Grid) Center() Offset {
	return Offset{Col: (g.Width - 1) / 2, Row: (g.Height - 1) / 2}
}

// EdgeDistanceTo returns how many hexes separate o from the given edge.
func (g Grid) EdgeDistanceTo(o Offset, d Direction) int {
	switch d {
	case North:
		return o.Row
	case South:
		return g.Height - 1 - o.Row
	case West:
		return o.Col
	default:
		return g.Width - 1 - o.Col
	}
}

// EdgeDistance returns the distance from o to its nearest edge.
func (g Grid) EdgeDistance(o Offset) int {
	d, _ := g.NearestEdge(o)
	return d
}

// NearestEdge returns the closest edge and the distance to it. Ties resolve N, S, W, E.
func (g Grid) NearestEdge(o Offset) (int, Direction) {
	best, dir := math.MaxInt, North
	for _, d := range Directions {
		if dist := g.EdgeDistanceTo(o, d); dist < best {
			best, dir = dist, d
		}
	}
	return best, dir
}

// EdgeCoords returns the hexes along one edge in canonical order.
func (g Grid) EdgeCoords(d Direction) []Offset {
	var out []Offset
	switch d {
	case North, South:
		row := 0
		if d == South {
			row = g.Height - 1
		}
		for c := 0; c < g.Width; c++ {
			out = append(out, Offset{Col: c, Row: row})
		}
	default:
		col := 0
		if d == East {
			col = g.Width - 1
		}
		for r := 0; r < g.Height; r++ {
			out = append(out, Offset{Col: col, Row: r})
		}
	}
	return out
}

// MaxCenterDistance is the largest hex distance from the centre to any corner.
func (g Grid) MaxCenterDistance() int {
	c := g.Center()
	max := 0
	for _, corner := range []Offset{
		{0, 0}, {g.Width - 1, 0}, {0, g.Height - 1}, {g.Width - 1, g.Height - 1},
	} {
		if d := OffsetDistance(c, corner); d > max {
			max = d
		}
	}
	return max
}

// Centrality maps distance from the centre to [0, 1], 1 at the centre.
func (g Grid) Centrality(o Offset) float64 {
	max := g.MaxCenterDistance()
	if max == 0 {
		return 1
	}
	return 1 - float64(OffsetDistance(g.Center(), o))/float64(max)
}

// NinthOf returns the 3x3 density-map cell containing o.
func (g Grid) NinthOf(o Offset) (int, int) {
	cx := o.Col * 3 / max1(g.Width)
	cy := o.Row * 3 / max1(g.Height)
	return clampInt(cx, 0, 2), clampInt(cy, 0, 2)
}

// String returns a summary of the grid.
func (g Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, hexes=%d)", g.Width, g.Height, g.HexCount())
}

func max1(x int) int {
	if x < 1 {
		return 1
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
