package engine

import (
	"sort"
	"time"

	"github.com/talgya/sector-forge/internal/config"
	"github.com/talgya/sector-forge/internal/deepspace"
	"github.com/talgya/sector-forge/internal/social"
	"github.com/talgya/sector-forge/internal/stellar"
	"github.com/talgya/sector-forge/internal/world"
)

// SectorRecord is the complete result of generating one sector.
// GeneratedAt is the only wall-clock field.
type SectorRecord struct {
	Config           config.Generation               `json:"config"`
	Width            int                             `json:"width"`
	Height           int                             `json:"height"`
	Sectors          map[world.HexID]*stellar.System `json:"sectors"`
	DeepSpacePois    map[world.HexID]*deepspace.Poi  `json:"deep_space_pois"`
	CoreSystemHexID  world.HexID                     `json:"core_system_hex_id"`
	CoreSystemManual bool                            `json:"core_system_manual"`
	FactionState     *social.FactionState            `json:"faction_state"`
	LayoutSeed       string                          `json:"layout_seed"`
	SectorKey        world.SectorKey                 `json:"sector_key"`
	ContentIteration int                             `json:"content_iteration"`
	GeneratedAt      time.Time                       `json:"generated_at"`
}

// Grid returns the record's grid.
func (r *SectorRecord) Grid() world.Grid {
	return world.Grid{Width: r.Width, Height: r.Height}
}

// SystemIDs returns the system hexes in canonical order.
func (r *SectorRecord) SystemIDs() []world.HexID {
	return sortedIDs(r.Sectors)
}

// UsedNames returns every system name in the record, optionally skipping one hex.
func (r *SectorRecord) UsedNames(except world.HexID) map[string]bool {
	used := make(map[string]bool, len(r.Sectors))
	for id, sys := range r.Sectors {
		if id != except {
			used[sys.Name] = true
		}
	}
	return used
}

// Known returns the structural view other sectors' context reads.
func (r *SectorRecord) Known() world.KnownSector {
	k := world.KnownSector{
		Key:         r.SectorKey,
		Seed:        r.LayoutSeed,
		Width:       r.Width,
		Height:      r.Height,
		Systems:     make(map[world.HexID][]string, len(r.Sectors)),
		Core:        r.CoreSystemHexID,
		ActiveGates: deepspace.ActiveGates(r.DeepSpacePois),
	}
	for id, sys := range r.Sectors {
		k.Systems[id] = append([]string(nil), sys.Tags...)
	}
	return k
}

// KnownSectors converts records for cross-sector context.
func KnownSectors(records []*SectorRecord) []world.KnownSector {
	out := make([]world.KnownSector, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r.Known())
		}
	}
	return out
}

// clone copies the record's maps; systems and POIs are copied so callers
// may edit the result without touching the original.
func (r *SectorRecord) clone() *SectorRecord {
	c := *r
	c.Sectors = make(map[world.HexID]*stellar.System, len(r.Sectors))
	for id, sys := range r.Sectors {
		c.Sectors[id] = sys.Clone()
	}
	c.DeepSpacePois = make(map[world.HexID]*deepspace.Poi, len(r.DeepSpacePois))
	for id, p := range r.DeepSpacePois {
		pc := *p
		c.DeepSpacePois[id] = &pc
	}
	c.FactionState = r.FactionState.Clone()
	return &c
}

func sortedIDs[V any](m map[world.HexID]V) []world.HexID {
	ids := make([]world.HexID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return world.LessID(ids[i], ids[j]) })
	return ids
}
