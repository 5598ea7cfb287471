package tables

import (
	"errors"
	"fmt"
	"sort"
)

// FieldError names the table field that failed validation.
type FieldError struct {
	Table  string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tables: %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("tables: %s.%s: %s", e.Table, e.Field, e.Reason)
}

type validator struct {
	errs []error
}

func (v *validator) fail(table, field, format string, args ...any) {
	v.errs = append(v.errs, &FieldError{Table: table, Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (v *validator) unit(table, field string, x float64) {
	if x < 0 || x > 1 {
		v.fail(table, field, "must be within [0, 1], got %v", x)
	}
}

// Validate checks every required table. All problems are reported together.
func (t *Tables) Validate() error {
	v := &validator{}

	if len(t.SizePresets) == 0 {
		v.fail("size_presets", "", "at least one preset required")
	}
	if _, ok := t.SizePresets[FallbackSize]; !ok {
		v.fail("size_presets", FallbackSize, "fallback preset missing")
	}
	for _, name := range sortedKeys(t.SizePresets) {
		s := t.SizePresets[name]
		if s.Width <= 0 || s.Height <= 0 {
			v.fail("size_presets", name, "width and height must be positive")
		}
	}

	if _, ok := t.DensityPresets[FallbackDensity]; !ok {
		v.fail("density_presets", FallbackDensity, "fallback preset missing")
	}
	for _, name := range sortedKeys(t.DensityPresets) {
		if r := t.DensityPresets[name].Ratio; r <= 0 || r > 1 {
			v.fail("density_presets", name+".ratio", "must be within (0, 1], got %v", r)
		}
	}

	typeNames := make(map[string]bool, len(t.PlanetTypes))
	for i, pt := range t.PlanetTypes {
		field := fmt.Sprintf("[%d]", i)
		if pt.Name == "" {
			v.fail("planet_types", field+".name", "required")
			continue
		}
		typeNames[pt.Name] = true
		if len(pt.Sizes) == 0 || len(pt.Atmospheres) == 0 || len(pt.Temperatures) == 0 {
			v.fail("planet_types", pt.Name, "sizes, atmospheres and temperatures are required")
		}
		if pt.HabitableWeight < 0 {
			v.fail("planet_types", pt.Name+".habitable_weight", "must not be negative")
		}
	}
	if !typeNames["Terrestrial"] {
		v.fail("planet_types", "Terrestrial", "required type missing")
	}

	if _, ok := t.Profiles[FallbackProfile]; !ok {
		v.fail("profiles", FallbackProfile, "fallback profile missing")
	}
	for _, name := range sortedKeys(t.Profiles) {
		p := t.Profiles[name]
		if p.DensityMultiplier <= 0 {
			v.fail("profiles", name+".density_multiplier", "must be positive")
		}
		if p.PlanetMin < 1 || p.PlanetMax > 6 || p.PlanetMin > p.PlanetMax {
			v.fail("profiles", name+".planet_min", "planet range must sit within [1, 6], got [%d, %d]", p.PlanetMin, p.PlanetMax)
		}
		v.unit("profiles", name+".binary_threshold", p.BinaryThreshold)
		v.unit("profiles", name+".trinary_threshold", p.TrinaryThreshold)
		if p.TrinaryThreshold > p.BinaryThreshold {
			v.fail("profiles", name+".trinary_threshold", "must not exceed binary_threshold")
		}
		v.unit("profiles", name+".belt_chance", p.BeltChance)
		v.unit("profiles", name+".station_chance", p.StationChance)
		v.unit("profiles", name+".extra_habitable_base", p.ExtraHabitableBase)
		v.unit("profiles", name+".extra_habitable_decay", p.ExtraHabitableDecay)
		v.unit("profiles", name+".adjacent_duplicate_chance", p.AdjacentDuplicateChance)
		if len(p.PlanetWeights) == 0 {
			v.fail("profiles", name+".planet_weights", "required")
		}
		for _, typ := range sortedKeys(p.PlanetWeights) {
			if !typeNames[typ] {
				v.fail("profiles", name+".planet_weights."+typ, "unknown planet type")
			}
		}
	}

	if len(t.StarClasses) == 0 {
		v.fail("star_classes", "", "at least one class required")
	}
	for i, sc := range t.StarClasses {
		field := sc.Class
		if field == "" {
			field = fmt.Sprintf("[%d]", i)
			v.fail("star_classes", field+".class", "required")
		}
		if sc.Weight <= 0 {
			v.fail("star_classes", field+".weight", "must be positive")
		}
		if len(sc.Ages) == 0 {
			v.fail("star_classes", field+".ages", "required")
		}
		if sc.Palette.Core == "" {
			v.fail("star_classes", field+".palette.core", "required")
		}
	}

	tagNames := make(map[string]bool, len(t.PlanetTags))
	for i, tag := range t.PlanetTags {
		if tag.Name == "" {
			v.fail("planet_tags", fmt.Sprintf("[%d].name", i), "required")
			continue
		}
		if tagNames[tag.Name] {
			v.fail("planet_tags", tag.Name, "duplicate tag")
		}
		tagNames[tag.Name] = true
		if tag.Weight <= 0 {
			v.fail("planet_tags", tag.Name+".weight", "must be positive")
		}
		for _, typ := range tag.Types {
			if !typeNames[typ] {
				v.fail("planet_tags", tag.Name+".types", "unknown planet type %q", typ)
			}
		}
	}
	for i, pair := range t.IncompatibleTags {
		field := fmt.Sprintf("[%d]", i)
		if len(pair) != 2 {
			v.fail("incompatible_tags", field, "pairs must have exactly two tags")
			continue
		}
		for _, name := range pair {
			if !tagNames[name] {
				v.fail("incompatible_tags", field, "unknown tag %q", name)
			}
		}
	}

	if len(t.Names.Prefixes) == 0 {
		v.fail("names", "prefixes", "required")
	}
	if len(t.Names.Suffixes) == 0 {
		v.fail("names", "suffixes", "required")
	}
	if len(t.Names.HabitableSuffixes) == 0 {
		v.fail("names", "habitable_suffixes", "required")
	}
	if len(t.Names.Designations) == 0 {
		v.fail("names", "designations", "required")
	}

	nonGate := 0
	for i, p := range t.PoiTemplates {
		field := p.Kind
		if field == "" {
			field = fmt.Sprintf("[%d]", i)
			v.fail("poi_templates", field+".kind", "required")
		}
		if p.Weight <= 0 {
			v.fail("poi_templates", field+".weight", "must be positive")
		}
		if p.IsGate() {
			if p.GateState != "active" && p.GateState != "inactive" {
				v.fail("poi_templates", field+".gate_state", "must be active or inactive, got %q", p.GateState)
			}
		} else {
			nonGate++
		}
	}
	if nonGate == 0 {
		v.fail("poi_templates", "", "at least one non-gate template required")
	}

	g := t.JumpGates
	if g.MaxPerSector < 0 {
		v.fail("jump_gates", "max_per_sector", "must not be negative")
	}
	if g.MinHexSeparation < 1 {
		v.fail("jump_gates", "min_hex_separation", "must be at least 1")
	}
	if g.MinSectorSeparation < 0 {
		v.fail("jump_gates", "min_sector_separation", "must not be negative")
	}
	if len(g.EdgeWeights) == 0 {
		v.fail("jump_gates", "edge_weights", "required")
	}
	v.unit("jump_gates", "bypass_chance", g.BypassChance)
	v.unit("jump_gates", "nebula_blend", g.NebulaBlend)
	for i, s := range g.Suppression {
		v.unit("jump_gates", fmt.Sprintf("suppression[%d]", i), s)
	}
	if g.MaxPoiRatio < 0.018 {
		v.fail("jump_gates", "max_poi_ratio", "must be at least 0.018")
	}

	pl := t.Placement
	if pl.GrowthDecay <= 0 || pl.GrowthDecay >= 1 {
		v.fail("placement", "growth_decay", "must be within (0, 1), got %v", pl.GrowthDecay)
	}
	if pl.MaxSecondaryAnchors < 0 || pl.MaxSecondaryAnchors > 2 {
		v.fail("placement", "max_secondary_anchors", "must be within [0, 2]")
	}

	if t.Context.CacheLimit <= 0 {
		v.fail("context", "cache_limit", "must be positive")
	}

	f := t.Factions
	if f.SystemsPerFaction <= 0 {
		v.fail("factions", "systems_per_faction", "must be positive")
	}
	if f.Min < 0 || f.Max < 1 || f.Min > f.Max {
		v.fail("factions", "min", "faction range invalid: [%d, %d]", f.Min, f.Max)
	}
	if f.Influence.DistanceBase <= 0 {
		v.fail("factions", "influence.distance_base", "must be positive")
	}

	if len(t.Archetypes) == 0 {
		v.fail("archetypes", "", "at least one archetype required")
	}
	for i, a := range t.Archetypes {
		field := a.Type
		if field == "" {
			field = fmt.Sprintf("[%d]", i)
			v.fail("archetypes", field+".type", "required")
		}
		if _, ok := t.Doctrines[a.Doctrine]; !ok {
			v.fail("archetypes", field+".doctrine", "unknown doctrine %q", a.Doctrine)
		}
		if len(a.Names) == 0 {
			v.fail("archetypes", field+".names", "required")
		}
	}

	return errors.Join(v.errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
