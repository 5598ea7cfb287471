// Package engine composes the generators into whole sectors: it places
// systems and POIs, selects the core system, derives factions and advances turns.
package engine

import (
	"time"

	"github.com/talgya/sector-forge/internal/social"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// Observer is told about finished generation work.
type Observer interface {
	SectorBuilt(key world.SectorKey, rec *SectorRecord)
	FactionTurnAdvanced(key world.SectorKey, state *social.FactionState)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) SectorBuilt(world.SectorKey, *SectorRecord) {}
func (NopObserver) FactionTurnAdvanced(world.SectorKey, *social.FactionState) {}

// Session holds everything generation calls share: the tables, the
// cross-sector context cache and the observer. Each build owns its streams,
// so one session may build independent sectors concurrently.
type Session struct {
	Tables   *tables.Tables
	Cache    *world.ContextCache
	Stage    world.Stage
	Observer Observer
	Now      func() time.Time
}

// NewSession creates a session over validated tables.
func NewSession(t *tables.Tables, stage world.Stage) *Session {
	return &Session{
		Tables:   t,
		Cache:    world.NewContextCache(t.Context.CacheLimit),
		Stage:    stage,
		Observer: NopObserver{},
		Now:      time.Now,
	}
}

func (s *Session) observer() Observer {
	if s.Observer == nil {
		return NopObserver{}
	}
	return s.Observer
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Session) context(key world.SectorKey, known []world.KnownSector) *world.Context {
	others := make([]world.KnownSector, 0, len(known))
	for _, k := range known {
		if k.Key != key {
			others = append(others, k)
		}
	}
	return world.NewContext(s.Cache, others, s.Stage, s.Tables.Context)
}
