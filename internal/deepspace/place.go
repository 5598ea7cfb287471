package deepspace

import (
	"log/slog"
	"math"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// POI density bounds and spawn curve.
const (
	minPoiRatio     = 0.018
	poiRatioPerHex  = 0.13
	spawnFloor      = 0.35
	spawnEmptiness  = 0.95
	emptinessRadius = 2
	minNebulaFactor = 0.05
)

// PlaceInput is everything the POI placer reads.
type PlaceInput struct {
	Grid          world.Grid
	Occupied      map[world.HexID]bool // system hexes
	DensityRatio  float64
	SectorKey     world.SectorKey
	NeighborGates []world.NeighborGate // active gates next door, in this sector's frame
	Nebula        *world.NebulaField   // optional
	Templates     []tables.PoiTemplate
	Rules         tables.JumpGateRules
	Designations  []string
}

// Target returns how many quota POIs a sector of this size and density receives.
func Target(g world.Grid, densityRatio, maxRatio float64) int {
	ratio := minPoiRatio + poiRatioPerHex*densityRatio
	ratio = math.Max(minPoiRatio, math.Min(ratio, maxRatio))
	return int(math.Round(float64(g.HexCount()) * ratio))
}

type placer struct {
	in    PlaceInput
	src   entropy.Source
	gates []world.Offset
	out   map[world.HexID]*Poi
}

// Place fills empty hexes with POIs. Shortfalls clamp silently.
func Place(in PlaceInput, src entropy.Source) map[world.HexID]*Poi {
	p := &placer{in: in, src: src, out: make(map[world.HexID]*Poi)}

	var empty []world.Offset
	for _, o := range in.Grid.Coords() {
		if !in.Occupied[o.ID()] {
			empty = append(empty, o)
		}
	}
	target := Target(in.Grid, in.DensityRatio, in.Rules.MaxPoiRatio)
	if target > len(empty) {
		slog.Debug("poi target clamped", "target", target, "empty", len(empty))
		target = len(empty)
	}
	emptiness := p.emptiness(empty)

	entropy.Shuffle(src, len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })

	remaining := target
	for i, o := range empty {
		if w := p.edgeWeight(o); w > 0 && src.Float() < in.Rules.BypassChance*w {
			if poi := p.spawn(o, true); poi != nil {
				p.put(o, poi)
				continue
			}
		}
		if remaining <= 0 {
			continue
		}
		left := len(empty) - i
		chance := float64(remaining) / float64(left) * (spawnFloor + spawnEmptiness*emptiness[o])
		if src.Float() < chance {
			if poi := p.spawn(o, false); poi != nil {
				p.put(o, poi)
				remaining--
			}
		}
	}

	slog.Debug("pois placed", "sector", in.SectorKey, "pois", len(p.out), "gates", len(p.gates), "target", target)
	return p.out
}

func (p *placer) put(o world.Offset, poi *Poi) {
	if poi.IsGate() {
		p.gates = append(p.gates, o)
		if poi.IsActiveGate() {
			poi.JumpGateLink = p.link(o)
		}
	}
	p.out[o.ID()] = poi
}

// spawn is the single gate-attempt path shared by bypass and quota rolls.
// Bypass rolls only consider gate templates. An infeasible gate is retried
// once as a non-gate POI.
func (p *placer) spawn(o world.Offset, bypass bool) *Poi {
	items := make([]entropy.Weighted[tables.PoiTemplate], 0, len(p.in.Templates))
	for _, t := range p.in.Templates {
		if bypass && !t.IsGate() {
			continue
		}
		items = append(items, entropy.Weighted[tables.PoiTemplate]{Item: t, Weight: p.weight(o, t)})
	}
	t, ok := entropy.PickWeighted(p.src, items)
	if !ok {
		return nil
	}
	if t.IsGate() && !p.feasible(o, t) {
		slog.Debug("gate infeasible, retrying as poi", "hex", o.ID(), "kind", t.Kind)
		items = items[:0]
		for _, nt := range p.in.Templates {
			if !nt.IsGate() {
				items = append(items, entropy.Weighted[tables.PoiTemplate]{Item: nt, Weight: p.weight(o, nt)})
			}
		}
		if t, ok = entropy.PickWeighted(p.src, items); !ok {
			return nil
		}
	}
	return fromTemplate(t, p.name(t))
}

func (p *placer) weight(o world.Offset, t tables.PoiTemplate) float64 {
	nebula := 0.5
	if p.in.Nebula != nil {
		nebula = p.in.Nebula.At(o)
	}
	w := t.Weight * math.Max(minNebulaFactor, 1+t.NebulaAffinity*(nebula-0.5))
	if t.IsGate() {
		w *= p.edgeWeight(o)
		if t.GateState == GateActive {
			w *= p.suppression(o)
		}
	}
	return w
}

func (p *placer) edgeWeight(o world.Offset) float64 {
	d := p.in.Grid.EdgeDistance(o)
	if d > p.in.Rules.EdgeWindow || d >= len(p.in.Rules.EdgeWeights) {
		return 0
	}
	return p.in.Rules.EdgeWeights[d]
}

// suppression scales active-gate weight down near active gates next door.
func (p *placer) suppression(o world.Offset) float64 {
	d := p.nearestNeighborGate(o)
	if d < 1 || d > len(p.in.Rules.Suppression) {
		return 1
	}
	return 1 - p.in.Rules.Suppression[d-1]
}

// nearestNeighborGate returns the distance to the closest active gate next door, or -1.
func (p *placer) nearestNeighborGate(o world.Offset) int {
	best := -1
	for _, g := range p.in.NeighborGates {
		if d := world.OffsetDistance(o, g.At); best < 0 || d < best {
			best = d
		}
	}
	return best
}

func (p *placer) feasible(o world.Offset, t tables.PoiTemplate) bool {
	r := p.in.Rules
	if len(p.gates) >= r.MaxPerSector {
		return false
	}
	if p.in.Grid.EdgeDistance(o) > r.EdgeWindow {
		return false
	}
	for _, g := range p.gates {
		if world.OffsetDistance(o, g) < r.MinHexSeparation {
			return false
		}
	}
	if t.GateState == GateActive {
		if d := p.nearestNeighborGate(o); d >= 0 && d < r.MinSectorSeparation {
			return false
		}
	}
	return true
}

// link points an active gate at the sector across its nearest edge.
func (p *placer) link(o world.Offset) world.SectorKey {
	dist, dir := p.in.Grid.NearestEdge(o)
	if dist > p.in.Rules.EdgeWindow {
		return ""
	}
	n, ok := p.in.SectorKey.Neighbor(dir)
	if !ok {
		return ""
	}
	return n
}

func (p *placer) name(t tables.PoiTemplate) string {
	if len(p.in.Designations) == 0 {
		return t.Kind
	}
	return entropy.Pick(p.src, p.in.Designations) + " " + t.Kind
}

// emptiness blends the free share of each hex's surroundings with the nebula field.
func (p *placer) emptiness(empty []world.Offset) map[world.Offset]float64 {
	g := p.in.Grid
	out := make(map[world.Offset]float64, len(empty))
	for _, o := range empty {
		total, free := 0, 0
		for dc := -emptinessRadius - 1; dc <= emptinessRadius+1; dc++ {
			for dr := -emptinessRadius; dr <= emptinessRadius; dr++ {
				n := world.Offset{Col: o.Col + dc, Row: o.Row + dr}
				if n == o || !g.InBounds(n) || world.OffsetDistance(o, n) > emptinessRadius {
					continue
				}
				total++
				if !p.in.Occupied[n.ID()] {
					free++
				}
			}
		}
		e := 1.0
		if total > 0 {
			e = float64(free) / float64(total)
		}
		if p.in.Nebula != nil {
			blend := p.in.Rules.NebulaBlend
			e = (1-blend)*e + blend*p.in.Nebula.At(o)
		}
		out[o] = e
	}
	return out
}
