// Package stellar synthesises star systems: stars, planets, habitability,
// population and socio-economic tags.
package stellar

import (
	"log/slog"
	"math"

	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// Body kinds.
const (
	KindPlanet  = "planet"
	KindBelt    = "belt"
	KindStation = "station"
)

// TypeTerrestrial is the planet type limited to one per system.
const TypeTerrestrial = "Terrestrial"

// Star roles, by position.
var starRoles = [3]string{"primary", "companion", "distant companion"}

// Star is one star of a system. The first star is always the primary.
type Star struct {
	Class   string         `json:"class"`
	Palette tables.Palette `json:"palette"`
	StarAge string         `json:"star_age"`
	Role    string         `json:"role"`
	Name    string         `json:"name"`
}

// Body is a celestial body: a planet, a belt or field, or a station.
type Body struct {
	Kind        string   `json:"kind"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Size        string   `json:"size,omitempty"`
	Atmosphere  string   `json:"atmosphere,omitempty"`
	Temperature string   `json:"temperature,omitempty"`
	Pop         float64  `json:"pop"`
	BasePop     float64  `json:"base_pop"`
	Tags        []string `json:"tags,omitempty"`
	Habitable   bool     `json:"habitable"`
}

// IsPlanetary reports whether the body is a planet.
func (b Body) IsPlanetary() bool {
	return b.Kind == KindPlanet
}

// System is one generated star system.
type System struct {
	Name      string   `json:"name"`
	Stars     []Star   `json:"stars"`
	StarClass string   `json:"star_class"`
	Planets   []Body   `json:"planets"`
	TotalPop  float64  `json:"total_pop"`
	Tags      []string `json:"tags"`
}

// HabitableCount returns the number of habitable planetary bodies.
func (s *System) HabitableCount() int {
	n := 0
	for _, b := range s.Planets {
		if b.IsPlanetary() && b.Habitable {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *System) Clone() *System {
	if s == nil {
		return nil
	}
	c := *s
	if s.Stars != nil {
		c.Stars = append(make([]Star, 0, len(s.Stars)), s.Stars...)
	}
	if s.Planets != nil {
		c.Planets = make([]Body, len(s.Planets))
		for i, b := range s.Planets {
			b.Tags = cloneStrings(b.Tags)
			c.Planets[i] = b
		}
	}
	c.Tags = cloneStrings(s.Tags)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// Reconcile recomputes the derived fields: total population, star class and
// system tags. Editing tools call it after changing bodies or stars.
func Reconcile(logger *slog.Logger, id world.HexID, s *System) {
	reconcile(s)
	ReportInvariants(logger, LabelReconcile, id, s)
}

// AddBody appends a body and reconciles the system.
func AddBody(logger *slog.Logger, id world.HexID, s *System, b Body) {
	s.Planets = append(s.Planets, b)
	reconcile(s)
	ReportInvariants(logger, LabelAddBody, id, s)
}

func reconcile(s *System) {
	if len(s.Stars) > 0 {
		s.StarClass = s.Stars[0].Class
	}
	total := 0.0
	for _, b := range s.Planets {
		total += b.Pop
	}
	s.TotalPop = round2(total)
	s.Tags = systemTags(s.Planets)
}

// systemTags lists the distinct body tags in first-seen order.
func systemTags(bodies []Body) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, b := range bodies {
		for _, t := range b.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
