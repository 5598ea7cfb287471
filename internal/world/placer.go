// Spatial placement: picks which hexes of a sector receive a star system.
package world

import (
	"log/slog"
	"math"
	"sort"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
)

// Distribution modes for system placement.
const (
	DistributionStandard = "standard"
	DistributionClusters = "clusters"
)

// anchorWeight scales anchor affinity in the growth score.
const anchorWeight = 2.6

// PressureFunc reports cross-sector pull toward an edge, 0 when there is none.
type PressureFunc func(d Direction) float64

// PlaceRequest describes one placement pass.
type PlaceRequest struct {
	Grid      Grid
	Count     int
	Clustered bool
	Occupied  map[HexID]bool // hexes already holding fixed systems
	Pressure  PressureFunc
	Tuning    tables.PlacementTuning
}

// PlaceSystems returns up to Count free hexes in canonical order.
// When fewer hexes are free than requested, the count is clamped.
func PlaceSystems(req PlaceRequest, src entropy.Source) []Offset {
	var free []Offset
	for _, o := range req.Grid.Coords() {
		if !req.Occupied[o.ID()] {
			free = append(free, o)
		}
	}

	n := req.Count
	if n > len(free) {
		slog.Debug("placement clamped", "requested", n, "free", len(free))
		n = len(free)
	}
	if n <= 0 {
		return nil
	}

	var picked []Offset
	if req.Clustered {
		picked = placeClustered(req, free, n, src)
	} else {
		entropy.Shuffle(src, len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
		picked = append(picked, free[:n]...)
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].Less(picked[j]) })
	return picked
}

func placeClustered(req PlaceRequest, free []Offset, n int, src entropy.Source) []Offset {
	g := req.Grid
	t := req.Tuning

	anchors := []Offset{primaryAnchor(g, free, t, src)}
	if n > t.SecondaryAnchorThreshold && t.SecondaryAnchorThreshold > 0 {
		want := (n-t.SecondaryAnchorThreshold)/t.SecondaryAnchorThreshold + 1
		if want > t.MaxSecondaryAnchors {
			want = t.MaxSecondaryAnchors
		}
		for k := 0; k < want; k++ {
			spacing := t.AnchorSpacing + entropy.IntRange(src, 0, t.AnchorJitter)
			var candidates []Offset
			for _, o := range free {
				if minDistance(o, anchors) >= spacing {
					candidates = append(candidates, o)
				}
			}
			if len(candidates) == 0 {
				break
			}
			anchors = append(anchors, entropy.Pick(src, candidates))
		}
	}

	selected := make(map[Offset]bool, n)
	crowd := make(map[Offset]int) // selected hexes within distance 2
	for id := range req.Occupied {
		if o, err := ParseHexID(id); err == nil && g.InBounds(o) {
			addCrowd(g, crowd, o)
		}
	}

	for len(selected) < n {
		var best Offset
		bestScore := math.Inf(-1)
		for _, o := range free {
			if selected[o] {
				continue
			}
			score := growthScore(req, anchors, crowd, o) + src.Float()*t.Noise
			// free is canonical, so a strict comparison keeps (col asc, row asc) on ties.
			if score > bestScore {
				best, bestScore = o, score
			}
		}
		selected[best] = true
		addCrowd(g, crowd, best)
	}

	out := make([]Offset, 0, n)
	for _, o := range free {
		if selected[o] {
			out = append(out, o)
		}
	}
	return protectCenter(req, free, out, selected)
}

// primaryAnchor jitters the grid centre and snaps to the nearest free hex.
func primaryAnchor(g Grid, free []Offset, t tables.PlacementTuning, src entropy.Source) Offset {
	c := g.Center()
	jc := int(math.Round((src.Float()*2 - 1) * t.CenterJitter * float64(g.Width)))
	jr := int(math.Round((src.Float()*2 - 1) * t.CenterJitter * float64(g.Height)))
	target := Offset{
		Col: clampInt(c.Col+jc, 0, g.Width-1),
		Row: clampInt(c.Row+jr, 0, g.Height-1),
	}
	return nearest(target, free)
}

func growthScore(req PlaceRequest, anchors []Offset, crowd map[Offset]int, o Offset) float64 {
	g := req.Grid
	t := req.Tuning

	affinity, home := 0.0, 1.0
	nearestIdx, nearestDist := 0, math.MaxInt
	for i, a := range anchors {
		d := OffsetDistance(a, o)
		if v := math.Pow(t.GrowthDecay, float64(d)); v > affinity {
			affinity = v
		}
		if d < nearestDist {
			nearestIdx, nearestDist = i, d
		}
	}
	if nearestIdx == 0 {
		home = t.HomeMultiplier
	}

	boundary := 0.0
	if req.Pressure != nil {
		for _, d := range Directions {
			reach := 1 - float64(g.EdgeDistanceTo(o, d))/float64(t.BoundaryReach+1)
			if reach <= 0 {
				continue
			}
			boundary += req.Pressure(d) * reach * t.BoundaryBias
		}
	}

	overpack := 0.0
	if c := crowd[o]; c > 2 {
		overpack = float64(c-2) * t.OverpackPenalty
	}

	edge := 0.0
	switch g.EdgeDistance(o) {
	case 0:
		edge = t.EdgePenalty
	case 1:
		edge = t.EdgePenalty * 0.5
	}

	return anchorWeight*affinity + t.CenterBias*g.Centrality(o)*home + boundary - overpack - edge
}

// protectCenter swaps the farthest pick for the free hex nearest the centre
// when nothing lands within the centre radius.
func protectCenter(req PlaceRequest, free, picked []Offset, selected map[Offset]bool) []Offset {
	g := req.Grid
	c := g.Center()
	radius := req.Tuning.CenterRadius

	for _, o := range picked {
		if OffsetDistance(o, c) <= radius {
			return picked
		}
	}
	for id := range req.Occupied {
		if o, err := ParseHexID(id); err == nil && OffsetDistance(o, c) <= radius {
			return picked
		}
	}

	var open []Offset
	for _, o := range free {
		if !selected[o] {
			open = append(open, o)
		}
	}
	if len(open) == 0 {
		return picked
	}
	in := nearest(c, open)
	if OffsetDistance(in, c) > radius {
		return picked
	}

	far, farDist := 0, -1
	for i, o := range picked {
		if d := OffsetDistance(o, c); d >= farDist {
			far, farDist = i, d
		}
	}
	slog.Debug("centre void protected", "out", picked[far].ID(), "in", in.ID())
	picked[far] = in
	return picked
}

func addCrowd(g Grid, crowd map[Offset]int, o Offset) {
	for dc := -3; dc <= 3; dc++ {
		for dr := -2; dr <= 2; dr++ {
			n := Offset{Col: o.Col + dc, Row: o.Row + dr}
			if n == o || !g.InBounds(n) {
				continue
			}
			if OffsetDistance(o, n) <= 2 {
				crowd[n]++
			}
		}
	}
}

// nearest returns the candidate closest to target; candidates are canonical so ties keep the first.
func nearest(target Offset, candidates []Offset) Offset {
	best, bestDist := candidates[0], math.MaxInt
	for _, o := range candidates {
		if d := OffsetDistance(o, target); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func minDistance(o Offset, anchors []Offset) int {
	min := math.MaxInt
	for _, a := range anchors {
		if d := OffsetDistance(o, a); d < min {
			min = d
		}
	}
	return min
}
