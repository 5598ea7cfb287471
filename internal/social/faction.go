// Factions: the powers competing for a sector's systems and deep-space assets.
package social

import (
	"sort"

	"github.com/talgya/sector-forge/internal/world"
)

// Relation bounds.
const (
	MinRelation = -100
	MaxRelation = 100
)

// Stat bounds.
const (
	MinStat = 0
	MaxStat = 100
)

// FactionID is a faction identifier, unique within a sector.
type FactionID string

// Faction is one power in the sector.
type Faction struct {
	ID        FactionID   `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Doctrine  string      `json:"doctrine"`
	Color     string      `json:"color"`
	Power     int         `json:"power"`
	Stability int         `json:"stability"`
	Wealth    int         `json:"wealth"`
	Military  int         `json:"military"`
	Tech      int         `json:"tech"`
	HomeHexID world.HexID `json:"home_hex_id"`

	// Relations with other factions (faction ID → -100 to +100).
	Relations map[FactionID]int `json:"relations"`
}

// Control is the resolved ownership of one hex.
type Control struct {
	OwnerFactionID      *FactionID            `json:"owner_faction_id"` // nil: nobody holds it
	ControlStrength     float64               `json:"control_strength"`
	ContestedFactionIDs []FactionID           `json:"contested_faction_ids"`
	Influence           map[FactionID]float64 `json:"influence"`
}

// Owner returns the owning faction ID, or "" when unowned.
func (c *Control) Owner() FactionID {
	if c == nil || c.OwnerFactionID == nil {
		return ""
	}
	return *c.OwnerFactionID
}

// FactionState is a sector's factions and territory at one turn.
type FactionState struct {
	Turn           int                      `json:"turn"`
	Factions       []Faction                `json:"factions"`
	ControlByHexID map[world.HexID]*Control `json:"control_by_hex_id"`
}

// Faction looks up a faction by ID.
func (s *FactionState) Faction(id FactionID) *Faction {
	for i := range s.Factions {
		if s.Factions[i].ID == id {
			return &s.Factions[i]
		}
	}
	return nil
}

// SetRelation sets a symmetric relation between two factions, clamped to its domain.
func (s *FactionState) SetRelation(a, b FactionID, value int) {
	value = ClampInt(value, MinRelation, MaxRelation)
	for i := range s.Factions {
		f := &s.Factions[i]
		if f.Relations == nil {
			f.Relations = make(map[FactionID]int)
		}
		if f.ID == a {
			f.Relations[b] = value
		}
		if f.ID == b {
			f.Relations[a] = value
		}
	}
}

// Holdings counts the hexes each faction owns.
func (s *FactionState) Holdings() map[FactionID]int {
	out := make(map[FactionID]int, len(s.Factions))
	for _, c := range s.ControlByHexID {
		if id := c.Owner(); id != "" {
			out[id]++
		}
	}
	return out
}

// Contested lists the contested hexes in canonical order.
func (s *FactionState) Contested() []world.HexID {
	var out []world.HexID
	for id, c := range s.ControlByHexID {
		if len(c.ContestedFactionIDs) > 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return world.LessID(out[i], out[j]) })
	return out
}

// Clone returns a deep copy, so turn advances never mutate their input.
func (s *FactionState) Clone() *FactionState {
	if s == nil {
		return nil
	}
	c := &FactionState{Turn: s.Turn, Factions: make([]Faction, len(s.Factions))}
	for i, f := range s.Factions {
		if f.Relations != nil {
			rel := make(map[FactionID]int, len(f.Relations))
			for k, v := range f.Relations {
				rel[k] = v
			}
			f.Relations = rel
		}
		c.Factions[i] = f
	}
	if s.ControlByHexID != nil {
		c.ControlByHexID = make(map[world.HexID]*Control, len(s.ControlByHexID))
		for id, ctl := range s.ControlByHexID {
			cc := *ctl
			if ctl.OwnerFactionID != nil {
				owner := *ctl.OwnerFactionID
				cc.OwnerFactionID = &owner
			}
			if ctl.ContestedFactionIDs != nil {
				cc.ContestedFactionIDs = append(make([]FactionID, 0, len(ctl.ContestedFactionIDs)), ctl.ContestedFactionIDs...)
			}
			if ctl.Influence != nil {
				cc.Influence = make(map[FactionID]float64, len(ctl.Influence))
				for k, v := range ctl.Influence {
					cc.Influence[k] = v
				}
			}
			c.ControlByHexID[id] = &cc
		}
	}
	return c
}

// ClampInt bounds x to [lo, hi].
func ClampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
