package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/sector-forge/internal/config"
	"github.com/talgya/sector-forge/internal/deepspace"
	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/social"
	"github.com/talgya/sector-forge/internal/stellar"
	"github.com/talgya/sector-forge/internal/world"
)

// DefaultSectorKey is used when a build names no sector.
const DefaultSectorKey world.SectorKey = "AAAA"

// BuildOptions carries the per-build inputs besides the config.
type BuildOptions struct {
	SectorKey                 world.SectorKey
	KnownSectors              []world.KnownSector
	LayoutSeed                string
	PreferredCoreSystemHexID  world.HexID
	PreferredCoreSystemManual bool
}

// BuildSector generates a complete sector. Fixed systems keep their hexes and
// count toward the system target. The layout stream drives normalisation,
// placement and POIs; iteration 0 of the content stream drives system content.
func (s *Session) BuildSector(loose config.Loose, fixed map[world.HexID]*stellar.System, opts BuildOptions) *SectorRecord {
	t := s.Tables
	key := opts.SectorKey
	if key == "" {
		key = DefaultSectorKey
	}
	seed := opts.LayoutSeed
	if seed == "" {
		seed = string(key)
	}

	layout := entropy.NewStream(seed)
	cfg := config.Normalize(loose, t, layout)
	grid := cfg.Grid()
	ctx := s.context(key, opts.KnownSectors)

	sectors := make(map[world.HexID]*stellar.System, cfg.SystemCount)
	occupied := make(map[world.HexID]bool)
	for _, id := range sortedIDs(fixed) {
		o, err := world.ParseHexID(id)
		if err != nil || !grid.InBounds(o) || fixed[id] == nil {
			slog.Debug("fixed system dropped", "hex", id, "grid", grid.String())
			continue
		}
		sectors[o.ID()] = fixed[id].Clone()
		occupied[o.ID()] = true
	}

	want := cfg.SystemCount - len(sectors)
	if want < 0 {
		want = 0
	}
	placed := world.PlaceSystems(world.PlaceRequest{
		Grid:      grid,
		Count:     want,
		Clustered: cfg.Clustered(),
		Occupied:  occupied,
		Pressure:  ctx.Pressure(key),
		Tuning:    t.Placement,
	}, layout)

	content := entropy.NewStream(entropy.ContentSeed(seed, 0))
	intent := ctx.SectorIntent(key)
	used := make(map[string]bool, cfg.SystemCount)
	for _, sys := range sectors {
		used[sys.Name] = true
	}
	for _, o := range placed {
		id := o.ID()
		sys := stellar.GenerateSystemData(cfg, stellar.Options{
			CoordID:        id,
			UsedNames:      used,
			SectorsByCoord: sectors,
			TagSignals:     intent.TagSignals(),
			TagSignalBoost: t.Context.TagSignalBoost,
		}, content, t)
		sectors[id] = sys
		used[sys.Name] = true
	}

	systemHexes := make(map[world.HexID]bool, len(sectors))
	for id := range sectors {
		systemHexes[id] = true
	}
	pois := deepspace.Place(deepspace.PlaceInput{
		Grid:          grid,
		Occupied:      systemHexes,
		DensityRatio:  float64(len(sectors)) / float64(grid.HexCount()),
		SectorKey:     key,
		NeighborGates: ctx.NeighborActiveGates(key, grid),
		Nebula:        world.NewNebulaField(seed),
		Templates:     t.PoiTemplates,
		Rules:         t.JumpGates,
		Designations:  t.Names.Designations,
	}, layout)

	rec := &SectorRecord{
		Config:        cfg,
		Width:         grid.Width,
		Height:        grid.Height,
		Sectors:       sectors,
		DeepSpacePois: pois,
		LayoutSeed:    seed,
		SectorKey:     key,
	}
	rec.CoreSystemHexID, rec.CoreSystemManual = SelectCore(s.coreInput(rec, ctx, opts.PreferredCoreSystemHexID, opts.PreferredCoreSystemManual))
	rec.FactionState = s.deriveTerritory(rec)
	rec.GeneratedAt = s.now()

	slog.Info("sector built",
		"sector", key,
		"seed", seed,
		"systems", len(sectors),
		"pois", len(pois),
		"core", rec.CoreSystemHexID,
		"factions", len(rec.FactionState.Factions),
	)
	s.observer().SectorBuilt(key, rec)
	return rec
}

func (s *Session) coreInput(rec *SectorRecord, ctx *world.Context, preferred world.HexID, manual bool) CoreInput {
	return CoreInput{
		Grid:            rec.Grid(),
		Systems:         rec.Sectors,
		Bias:            ctx.CoreBias(rec.SectorKey),
		Pressure:        ctx.Pressure(rec.SectorKey),
		Preferred:       preferred,
		PreferredManual: manual,
		Tables:          s.Tables,
	}
}

func (s *Session) deriveTerritory(rec *SectorRecord) *social.FactionState {
	state := DeriveFactions(rec.LayoutSeed, rec.Sectors, rec.CoreSystemHexID, s.Tables)
	state.ControlByHexID = ResolveTerritory(state, rec.Sectors, rec.DeepSpacePois, s.Tables)
	return state
}

// RerollUnpinned regenerates every unpinned system from the content stream of
// the given iteration, at the same hexes. Pinned systems, the layout and POIs
// are untouched; no layout draws are consumed. The core is reselected unless
// it was pinned manually, and factions are re-derived. The input record is not modified.
func (s *Session) RerollUnpinned(rec *SectorRecord, pinned map[world.HexID]bool, iteration int, known []world.KnownSector) *SectorRecord {
	t := s.Tables
	next := rec.clone()
	next.ContentIteration = iteration
	ctx := s.context(rec.SectorKey, known)
	intent := ctx.SectorIntent(rec.SectorKey)

	used := make(map[string]bool, len(rec.Sectors))
	for id, sys := range rec.Sectors {
		if pinned[id] {
			used[sys.Name] = true
		}
	}

	content := entropy.NewStream(entropy.ContentSeed(rec.LayoutSeed, iteration))
	rerolled := 0
	for _, id := range rec.SystemIDs() {
		if pinned[id] {
			continue
		}
		delete(next.Sectors, id)
	}
	for _, id := range rec.SystemIDs() {
		if pinned[id] {
			continue
		}
		sys := stellar.GenerateSystemData(rec.Config, stellar.Options{
			CoordID:        id,
			UsedNames:      used,
			SectorsByCoord: next.Sectors,
			TagSignals:     intent.TagSignals(),
			TagSignalBoost: t.Context.TagSignalBoost,
			Label:          stellar.LabelReroll,
		}, content, t)
		next.Sectors[id] = sys
		used[sys.Name] = true
		rerolled++
	}

	if !rec.CoreSystemManual {
		next.CoreSystemHexID, next.CoreSystemManual = SelectCore(s.coreInput(next, ctx, rec.CoreSystemHexID, false))
	}
	next.FactionState = s.deriveTerritory(next)
	next.GeneratedAt = s.now()

	slog.Info("sector rerolled",
		"sector", rec.SectorKey,
		"iteration", iteration,
		"rerolled", rerolled,
		"pinned", len(rec.Sectors)-rerolled,
	)
	s.observer().SectorBuilt(rec.SectorKey, next)
	return next
}

// GenerateSystem regenerates the system at one hex, avoiding every other name
// in the record. The stream is derived from the record's content seed and the
// hex, so the result is reproducible.
func (s *Session) GenerateSystem(cfg config.Generation, coordID world.HexID, rec *SectorRecord) *stellar.System {
	seed := entropy.DerivedSeed(entropy.ContentSeed(rec.LayoutSeed, rec.ContentIteration), "system:"+string(coordID))
	ctx := s.context(rec.SectorKey, nil)
	return stellar.GenerateSystemData(cfg, stellar.Options{
		CoordID:        coordID,
		UsedNames:      rec.UsedNames(coordID),
		SectorsByCoord: rec.Sectors,
		TagSignals:     ctx.SectorIntent(rec.SectorKey).TagSignals(),
		TagSignalBoost: s.Tables.Context.TagSignalBoost,
	}, entropy.NewStream(seed), s.Tables)
}

// AdvanceTurn returns a copy of the record one faction turn later.
func (s *Session) AdvanceTurn(rec *SectorRecord) (*SectorRecord, error) {
	if rec.FactionState == nil {
		return nil, fmt.Errorf("sector %s has no faction state", rec.SectorKey)
	}
	next := rec.clone()
	next.FactionState = AdvanceFactionTurn(rec.FactionState, rec.Sectors, rec.DeepSpacePois, rec.LayoutSeed, s.Tables)

	slog.Info("faction turn advanced",
		"sector", rec.SectorKey,
		"turn", next.FactionState.Turn,
		"contested", len(next.FactionState.Contested()),
	)
	s.observer().FactionTurnAdvanced(rec.SectorKey, next.FactionState)
	return next, nil
}
