package stellar

import (
	"log/slog"

	"github.com/talgya/sector-forge/internal/config"
	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// Options carries what a system needs to know about its surroundings.
type Options struct {
	CoordID        world.HexID
	UsedNames      map[string]bool
	SectorsByCoord map[world.HexID]*System
	TagSignals     map[string]float64 // cross-sector dominant tags
	TagSignalBoost float64
	Logger         *slog.Logger
	Label          string // invariant report context, LabelGenerate when empty
}

// GenerateSystemData builds one fully populated system. Every draw comes from src,
// in a fixed order, so the same stream position always yields the same system.
func GenerateSystemData(cfg config.Generation, opts Options, src entropy.Source, t *tables.Tables) *System {
	profile, _ := t.Profile(cfg.GenerationProfile)

	s := &System{}
	s.Name = pickSystemName(opts, t.Names, profile.AdjacentDuplicateChance, src)
	s.Stars = rollStars(s.Name, profile, t, src)
	s.StarClass = s.Stars[0].Class

	planets := rollPlanets(cfg, profile, s.Stars[0], t, src)
	assignHabitability(planets, profile, t, src)
	planets = orderAndName(s.Name, planets, t.Names, src)

	for i := range planets {
		pt, _ := t.PlanetType(planets[i].Type)
		planets[i].BasePop = basePopulation(planets[i], pt, profile, t.PopulationFactors, src)
	}

	if src.Float() < profile.BeltChance {
		kind, label := "Asteroid Belt", "Belt"
		if src.Float() < 0.5 {
			kind, label = "Debris Field", "Field"
		}
		planets = append(planets, Body{Kind: KindBelt, Type: kind, Name: s.Name + " " + label})
	}
	if src.Float() < profile.StationChance {
		pf := t.PopulationFactors
		pop := round2(entropy.Range(src, pf.StationMin, pf.StationMax))
		planets = append(planets, Body{Kind: KindStation, Type: "Orbital Station", Name: s.Name + " Station", BasePop: pop})
	}

	assignTags(planets, profile, opts, t, src)
	for i := range planets {
		planets[i].Pop = taggedPopulation(planets[i], t)
	}

	s.Planets = planets
	reconcile(s)
	label := opts.Label
	if label == "" {
		label = LabelGenerate
	}
	ReportInvariants(opts.Logger, label, opts.CoordID, s)
	return s
}

func rollStars(name string, profile tables.Profile, t *tables.Tables, src entropy.Source) []Star {
	count := 1
	switch roll := src.Float(); {
	case roll < profile.TrinaryThreshold:
		count = 3
	case roll < profile.BinaryThreshold:
		count = 2
	}

	classes := make([]entropy.Weighted[tables.StarClass], len(t.StarClasses))
	for i, sc := range t.StarClasses {
		classes[i] = entropy.Weighted[tables.StarClass]{Item: sc, Weight: sc.Weight}
	}

	stars := make([]Star, 0, count)
	for i := 0; i < count; i++ {
		sc, _ := entropy.PickWeighted(src, classes)
		star := Star{
			Class:   sc.Class,
			Palette: sc.Palette,
			StarAge: pickBand(src, sc.Ages),
			Role:    starRoles[i],
			Name:    name,
		}
		switch i {
		case 1:
			star.Name = name + " B"
		case 2:
			star.Name = name + " C"
		}
		stars = append(stars, star)
	}
	return stars
}

func rollPlanets(cfg config.Generation, profile tables.Profile, primary Star, t *tables.Tables, src entropy.Source) []Body {
	lo, hi := profile.PlanetMin, profile.PlanetMax
	if lo < 1 {
		lo = 1
	}
	if hi > 6 {
		hi = 6
	}
	n := entropy.IntRange(src, lo, hi)

	var bias map[string]float64
	if cfg.RealisticPlanetWeights {
		if sc, ok := t.StarClass(primary.Class); ok {
			bias = sc.PlanetBias
		}
	}

	terrestrial := false
	bodies := make([]Body, 0, n)
	for i := 0; i < n; i++ {
		items := make([]entropy.Weighted[tables.PlanetType], 0, len(t.PlanetTypes))
		for _, pt := range t.PlanetTypes {
			if terrestrial && pt.Name == TypeTerrestrial {
				continue
			}
			w := profile.PlanetWeights[pt.Name]
			if b, ok := bias[pt.Name]; ok {
				w *= b
			}
			items = append(items, entropy.Weighted[tables.PlanetType]{Item: pt, Weight: w})
		}
		pt, ok := entropy.PickWeighted(src, items)
		if !ok {
			pt, _ = t.PlanetType("Barren")
			if pt.Name == "" {
				pt = t.PlanetTypes[len(t.PlanetTypes)-1]
			}
		}
		if pt.Name == TypeTerrestrial {
			terrestrial = true
		}
		bodies = append(bodies, Body{
			Kind:        KindPlanet,
			Type:        pt.Name,
			Size:        pickBand(src, pt.Sizes),
			Atmosphere:  pickBand(src, pt.Atmospheres),
			Temperature: pickBand(src, pt.Temperatures),
		})
	}
	return bodies
}

// assignHabitability marks a primary habitable world, then extras with a
// geometrically decaying chance. Habitable worlds get survivable environments.
func assignHabitability(bodies []Body, profile tables.Profile, t *tables.Tables, src entropy.Source) {
	if len(bodies) == 0 {
		return
	}
	items := make([]entropy.Weighted[int], 0, len(bodies))
	for i, b := range bodies {
		pt, _ := t.PlanetType(b.Type)
		if pt.HabitableWeight > 0 {
			items = append(items, entropy.Weighted[int]{Item: i, Weight: pt.HabitableWeight})
		}
	}
	if len(items) == 0 {
		for i := range bodies {
			items = append(items, entropy.Weighted[int]{Item: i, Weight: 1})
		}
	}

	primary, _ := entropy.PickWeighted(src, items)
	makeHabitable(&bodies[primary])

	chance := profile.ExtraHabitableBase
	for _, it := range items {
		if it.Item == primary {
			continue
		}
		if src.Float() < chance {
			makeHabitable(&bodies[it.Item])
			chance *= profile.ExtraHabitableDecay
		}
	}
}

func makeHabitable(b *Body) {
	b.Habitable = true
	switch b.Atmosphere {
	case "None", "Corrosive", "Toxic":
		b.Atmosphere = "Thin"
	}
	switch b.Temperature {
	case "Scorching":
		b.Temperature = "Warm"
	case "Frozen":
		b.Temperature = "Cold"
	}
}

// orderAndName moves the primary habitable world first and names every planet.
func orderAndName(system string, bodies []Body, names tables.NameLists, src entropy.Source) []Body {
	first := -1
	for i, b := range bodies {
		if b.Habitable {
			first = i
			break
		}
	}
	ordered := make([]Body, 0, len(bodies))
	if first >= 0 {
		ordered = append(ordered, bodies[first])
	}
	for i, b := range bodies {
		if i != first {
			ordered = append(ordered, b)
		}
	}

	free := append([]string(nil), names.HabitableSuffixes...)
	for i := range ordered {
		b := &ordered[i]
		switch {
		case i == 0 && b.Habitable:
			b.Name = system + " Prime"
		case b.Habitable && len(free) > 0:
			j := int(src.Float() * float64(len(free)))
			if j >= len(free) {
				j = len(free) - 1
			}
			b.Name = system + " " + free[j]
			free = append(free[:j], free[j+1:]...)
		default:
			b.Name = system + " " + Roman(i+1)
		}
	}
	return ordered
}

func basePopulation(b Body, pt tables.PlanetType, profile tables.Profile, pf tables.PopulationFactors, src entropy.Source) float64 {
	hab := pf.Uninhabitable
	if b.Habitable {
		hab = pf.Habitable
	}
	pop := pt.BasePopulation * profile.PopulationScale *
		factor(pf.Size, b.Size) *
		factor(pf.Atmosphere, b.Atmosphere) *
		factor(pf.Temperature, b.Temperature) *
		hab *
		entropy.Range(src, pf.VarianceMin, pf.VarianceMax)
	return round2(pop)
}

func factor(m map[string]float64, key string) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return 1
}

// assignTags gives each planet tags from its eligible pool. Habitable worlds
// always get at least one; others only by chance.
func assignTags(bodies []Body, profile tables.Profile, opts Options, t *tables.Tables, src entropy.Source) {
	for i := range bodies {
		b := &bodies[i]
		if !b.IsPlanetary() {
			continue
		}
		count := 0
		if b.Habitable {
			max := profile.MaxHabitableTags
			if max < 1 {
				max = 1
			}
			count = entropy.IntRange(src, 1, max)
		} else if src.Float() < profile.BarrenTagChance {
			count = 1
		}

		for k := 0; k < count; k++ {
			pool := tagPool(*b, opts, t)
			tag, ok := entropy.PickWeighted(src, pool)
			if !ok {
				break
			}
			b.Tags = append(b.Tags, tag)
		}
	}
}

func tagPool(b Body, opts Options, t *tables.Tables) []entropy.Weighted[string] {
	var pool []entropy.Weighted[string]
	for _, tag := range t.PlanetTags {
		if tag.HabitableOnly && !b.Habitable {
			continue
		}
		if len(tag.Types) > 0 && !contains(tag.Types, b.Type) {
			continue
		}
		if contains(b.Tags, tag.Name) {
			continue
		}
		clash := false
		for _, have := range b.Tags {
			if t.Incompatible(have, tag.Name) {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		w := tag.Weight * (1 + opts.TagSignalBoost*opts.TagSignals[tag.Name])
		pool = append(pool, entropy.Weighted[string]{Item: tag.Name, Weight: w})
	}
	return pool
}

// taggedPopulation applies population-modifying tags to the base population.
func taggedPopulation(b Body, t *tables.Tables) float64 {
	pop := b.BasePop
	floor := 0.0
	for _, name := range b.Tags {
		tag, ok := t.Tag(name)
		if !ok {
			continue
		}
		if tag.PopulationMultiplier > 0 {
			pop *= tag.PopulationMultiplier
		}
		if tag.PopulationFloor > floor {
			floor = tag.PopulationFloor
		}
	}
	if pop < floor {
		pop = floor
	}
	return round2(pop)
}

func pickBand(src entropy.Source, bands []tables.Band) string {
	items := make([]entropy.Weighted[string], len(bands))
	for i, b := range bands {
		items[i] = entropy.Weighted[string]{Item: b.Label, Weight: b.Weight}
	}
	label, _ := entropy.PickWeighted(src, items)
	return label
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
