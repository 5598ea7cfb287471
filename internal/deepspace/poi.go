// Package deepspace fills the empty hexes of a sector with points of interest,
// including rare jump gates placed under spacing and cross-sector rules.
package deepspace

import (
	"sort"

	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// Jump gate states.
const (
	GateActive   = "active"
	GateInactive = "inactive"
)

// Poi is a deep-space point of interest.
type Poi struct {
	Kind               string          `json:"kind"`
	PoiCategory        string          `json:"poi_category"`
	Name               string          `json:"name"`
	Risk               string          `json:"risk"`
	RewardHint         string          `json:"reward_hint"`
	IsRefuelingStation bool            `json:"is_refueling_station"`
	JumpGateState      string          `json:"jump_gate_state,omitempty"`
	JumpGateLink       world.SectorKey `json:"jump_gate_link,omitempty"`
}

// IsGate reports whether the POI is a jump gate.
func (p *Poi) IsGate() bool {
	return p != nil && p.PoiCategory == tables.JumpGateCategory
}

// IsActiveGate reports whether the POI is a working jump gate.
func (p *Poi) IsActiveGate() bool {
	return p.IsGate() && p.JumpGateState == GateActive
}

func fromTemplate(t tables.PoiTemplate, name string) *Poi {
	p := &Poi{
		Kind:               t.Kind,
		PoiCategory:        t.Category,
		Name:               name,
		Risk:               t.Risk,
		RewardHint:         t.RewardHint,
		IsRefuelingStation: t.Refueling,
	}
	if t.IsGate() {
		p.JumpGateState = t.GateState
	}
	return p
}

// ActiveGates lists the hexes holding active gates, in canonical order.
func ActiveGates(pois map[world.HexID]*Poi) []world.HexID {
	var out []world.HexID
	for id, p := range pois {
		if p.IsActiveGate() {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []world.HexID) {
	sort.Slice(ids, func(i, j int) bool { return world.LessID(ids[i], ids[j]) })
}
