// Faction territory: faction derivation, per-hex influence, ownership and turn advances.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/talgya/sector-forge/internal/deepspace"
	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/social"
	"github.com/talgya/sector-forge/internal/stellar"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// FactionCount returns how many factions a sector with n systems supports.
func FactionCount(n int, r tables.FactionRules) int {
	if n <= 0 {
		return 0
	}
	count := int(math.Round(float64(n)/r.SystemsPerFaction)) + r.Base
	count = social.ClampInt(count, r.Min, r.Max)
	if count > n {
		count = n
	}
	return count
}

// DeriveFactions builds the sector's faction slate from its systems. It draws
// only from the "{layoutSeed}::factions" stream. Territory is left empty.
func DeriveFactions(layoutSeed string, systems map[world.HexID]*stellar.System, core world.HexID, t *tables.Tables) *social.FactionState {
	state := &social.FactionState{Factions: []social.Faction{}, ControlByHexID: map[world.HexID]*social.Control{}}
	rules := t.Factions
	count := FactionCount(len(systems), rules)
	if count == 0 || len(t.Archetypes) == 0 {
		return state
	}
	src := entropy.NewStream(entropy.DerivedSeed(layoutSeed, "factions"))

	// Affinity counts hints present anywhere in the sector, not how often.
	present := make(map[string]bool)
	for _, sys := range systems {
		for _, b := range sys.Planets {
			for _, tag := range b.Tags {
				present[tag] = true
			}
		}
	}

	type ranked struct {
		arch  tables.Archetype
		score float64
	}
	ranking := make([]ranked, len(t.Archetypes))
	for i, a := range t.Archetypes {
		affinity := 0
		for _, h := range a.TagHints {
			if present[h] {
				affinity++
			}
		}
		ranking[i] = ranked{arch: a, score: float64(affinity) + src.Float()*rules.ArchetypeNoise}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].score != ranking[j].score {
			return ranking[i].score > ranking[j].score
		}
		return ranking[i].arch.Type < ranking[j].arch.Type
	})

	ids := sortedIDs(systems)
	taken := make(map[world.HexID]bool, count)
	names := make(map[string]bool, count)
	for i := 0; i < count; i++ {
		arch := ranking[i%len(ranking)].arch
		name := entropy.Pick(src, arch.Names) + " " + arch.Title
		for n := 2; names[name]; n++ {
			name = fmt.Sprintf("%s %s %s", entropy.Pick(src, arch.Names), arch.Title, stellar.Roman(n))
		}
		names[name] = true

		s := rules.Stats
		f := social.Faction{
			ID:        social.FactionID(fmt.Sprintf("f%d", i+1)),
			Name:      name,
			Type:      arch.Type,
			Doctrine:  arch.Doctrine,
			Color:     arch.Color,
			Power:     entropy.IntRange(src, s.Power.Min, s.Power.Max),
			Stability: entropy.IntRange(src, s.Stability.Min, s.Stability.Max),
			Wealth:    entropy.IntRange(src, s.Wealth.Min, s.Wealth.Max),
			Military:  entropy.IntRange(src, s.Military.Min, s.Military.Max),
			Tech:      entropy.IntRange(src, s.Tech.Min, s.Tech.Max),
			HomeHexID: pickHome(arch, ids, systems, taken, core, rules.Home),
			Relations: make(map[social.FactionID]int),
		}
		taken[f.HomeHexID] = true
		state.Factions = append(state.Factions, f)
	}

	for i := range state.Factions {
		for j := i + 1; j < len(state.Factions); j++ {
			v := entropy.IntRange(src, rules.Relations.Min, rules.Relations.Max)
			state.SetRelation(state.Factions[i].ID, state.Factions[j].ID, v)
		}
	}

	slog.Debug("factions derived", "count", len(state.Factions), "systems", len(systems))
	return state
}

// pickHome scores untaken systems by archetype tag affinity, population and the
// core bonus. Ties go to canonical order.
func pickHome(arch tables.Archetype, ids []world.HexID, systems map[world.HexID]*stellar.System, taken map[world.HexID]bool, core world.HexID, w tables.HomeWeights) world.HexID {
	var best world.HexID
	bestScore := math.Inf(-1)
	for _, id := range ids {
		if taken[id] {
			continue
		}
		sys := systems[id]
		affinity := 0
		for _, tag := range sys.Tags {
			for _, h := range arch.TagHints {
				if tag == h {
					affinity++
				}
			}
		}
		score := float64(affinity)*w.TagAffinity + sys.TotalPop*w.Population
		if id == core {
			score += w.CoreBonus
		}
		if score > bestScore {
			best, bestScore = id, score
		}
	}
	return best
}

// Controllable reports whether factions compete for a POI.
func Controllable(p *deepspace.Poi, r tables.FactionRules) bool {
	if p == nil {
		return false
	}
	if p.IsRefuelingStation || p.IsGate() {
		return true
	}
	for _, c := range r.ControllableCategories {
		if p.PoiCategory == c {
			return true
		}
	}
	for _, k := range r.ControllableKinds {
		if p.Kind == k {
			return true
		}
	}
	return false
}

// ResolveTerritory computes ownership of every system hex and every
// controllable POI near a system. Noise is a stable hash of faction and hex,
// so resolving twice gives the same answer.
func ResolveTerritory(state *social.FactionState, systems map[world.HexID]*stellar.System, pois map[world.HexID]*deepspace.Poi, t *tables.Tables) map[world.HexID]*social.Control {
	out := make(map[world.HexID]*social.Control)
	if state == nil || len(state.Factions) == 0 {
		return out
	}
	rules := t.Factions

	var systemHexes []world.Offset
	for _, id := range sortedIDs(systems) {
		o, err := world.ParseHexID(id)
		if err != nil {
			continue
		}
		systemHexes = append(systemHexes, o)
		out[id] = resolveHex(state, id, o, systems[id].TotalPop*rules.Influence.Population, true, t)
	}
	for _, id := range sortedIDs(pois) {
		if _, isSystem := systems[id]; isSystem || !Controllable(pois[id], rules) {
			continue
		}
		o, err := world.ParseHexID(id)
		if err != nil || !withinReach(o, systemHexes, rules.MaxPoiDistance) {
			continue
		}
		out[id] = resolveHex(state, id, o, rules.Influence.PoiBonus, false, t)
	}
	return out
}

func withinReach(o world.Offset, systems []world.Offset, reach int) bool {
	for _, s := range systems {
		if world.OffsetDistance(o, s) <= reach {
			return true
		}
	}
	return false
}

func resolveHex(state *social.FactionState, id world.HexID, target world.Offset, bonus float64, isSystem bool, t *tables.Tables) *social.Control {
	w := t.Factions.Influence

	type scored struct {
		id    social.FactionID
		value float64
	}
	scores := make([]scored, 0, len(state.Factions))
	ctl := &social.Control{Influence: make(map[social.FactionID]float64, len(state.Factions)), ContestedFactionIDs: []social.FactionID{}}

	for _, f := range state.Factions {
		doctrine := t.Doctrines[f.Doctrine]
		mod := doctrine.Poi
		if isSystem {
			mod = doctrine.System
		}
		numerator := float64(f.Power)*w.Power + float64(f.Military)*w.Military + bonus + mod

		distance := 0
		if home, err := world.ParseHexID(f.HomeHexID); err == nil {
			distance = world.OffsetDistance(home, target)
		}
		value := numerator/(w.DistanceBase+float64(distance)*w.DistanceScale) +
			entropy.StableNoise(string(f.ID), string(id))*w.NoiseScale

		scores = append(scores, scored{f.ID, value})
		ctl.Influence[f.ID] = round2(value)
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].value > scores[j].value })
	top := scores[0]
	if top.value <= 0 {
		return ctl
	}
	owner := top.id
	ctl.OwnerFactionID = &owner

	second := 0.0
	if len(scores) > 1 && scores[1].value > 0 {
		second = scores[1].value
	}
	ctl.ControlStrength = round2(top.value / (top.value + second) * 100)

	gap := math.Max(w.MinGap, top.value*w.RelativeGapRatio)
	for _, s := range scores[1:] {
		if top.value-s.value <= gap {
			ctl.ContestedFactionIDs = append(ctl.ContestedFactionIDs, s.id)
		}
	}
	return ctl
}

// AdvanceFactionTurn returns the next turn's state: stats and relations drift
// by bounded deltas from the "{layoutSeed}::turn:{n}" stream, then territory
// is recomputed. The input state is left untouched.
func AdvanceFactionTurn(state *social.FactionState, systems map[world.HexID]*stellar.System, pois map[world.HexID]*deepspace.Poi, layoutSeed string, t *tables.Tables) *social.FactionState {
	next := state.Clone()
	if next == nil {
		next = &social.FactionState{Factions: []social.Faction{}}
	}
	next.Turn++
	src := entropy.NewStream(entropy.DerivedSeed(layoutSeed, fmt.Sprintf("turn:%d", next.Turn)))

	sd := t.Factions.StatDrift
	drift := func(v int) int {
		return social.ClampInt(v+entropy.IntRange(src, -sd, sd), social.MinStat, social.MaxStat)
	}
	for i := range next.Factions {
		f := &next.Factions[i]
		f.Power = drift(f.Power)
		f.Stability = drift(f.Stability)
		f.Wealth = drift(f.Wealth)
		f.Military = drift(f.Military)
		f.Tech = drift(f.Tech)
	}

	rd := t.Factions.RelationDrift
	for i := range next.Factions {
		for j := i + 1; j < len(next.Factions); j++ {
			a, b := next.Factions[i], next.Factions[j]
			next.SetRelation(a.ID, b.ID, a.Relations[b.ID]+entropy.IntRange(src, -rd, rd))
		}
	}

	next.ControlByHexID = ResolveTerritory(next, systems, pois, t)
	return next
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
