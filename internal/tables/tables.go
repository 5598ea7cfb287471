// Package tables holds the data tables that drive generation: presets, profiles,
// star and planet tables, tag pools, POI templates, gate rules and faction rules.
// Defaults are embedded; a user file may override them.
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Fallback names used when a lookup misses.
const (
	FallbackSize    = "standard"
	FallbackDensity = "standard"
	FallbackProfile = "high_adventure"
)

// Tables is the complete set of generation data.
type Tables struct {
	SizePresets       map[string]SizePreset    `yaml:"size_presets" toml:"size_presets"`
	DensityPresets    map[string]DensityPreset `yaml:"density_presets" toml:"density_presets"`
	Profiles          map[string]Profile       `yaml:"profiles" toml:"profiles"`
	StarClasses       []StarClass              `yaml:"star_classes" toml:"star_classes"`
	PlanetTypes       []PlanetType             `yaml:"planet_types" toml:"planet_types"`
	PopulationFactors PopulationFactors        `yaml:"population_factors" toml:"population_factors"`
	PlanetTags        []PlanetTag              `yaml:"planet_tags" toml:"planet_tags"`
	IncompatibleTags  [][]string               `yaml:"incompatible_tags" toml:"incompatible_tags"`
	Names             NameLists                `yaml:"names" toml:"names"`
	PoiTemplates      []PoiTemplate            `yaml:"poi_templates" toml:"poi_templates"`
	JumpGates         JumpGateRules            `yaml:"jump_gates" toml:"jump_gates"`
	Placement         PlacementTuning          `yaml:"placement" toml:"placement"`
	Context           ContextTuning            `yaml:"context" toml:"context"`
	Core              CoreWeights              `yaml:"core" toml:"core"`
	Factions          FactionRules             `yaml:"factions" toml:"factions"`
	Archetypes        []Archetype              `yaml:"archetypes" toml:"archetypes"`
	Doctrines         map[string]Doctrine      `yaml:"doctrines" toml:"doctrines"`

	tagIndex     map[string]int
	incompatible map[string]map[string]bool
}

// SizePreset is a named grid size.
type SizePreset struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// DensityPreset is the fraction of hexes that receive a system.
type DensityPreset struct {
	Ratio float64 `yaml:"ratio" toml:"ratio"`
}

// Profile tunes the flavour of a sector.
type Profile struct {
	DensityMultiplier       float64            `yaml:"density_multiplier" toml:"density_multiplier"`
	BinaryThreshold         float64            `yaml:"binary_threshold" toml:"binary_threshold"`   // roll below: at least two stars
	TrinaryThreshold        float64            `yaml:"trinary_threshold" toml:"trinary_threshold"` // roll below: three stars
	PlanetMin               int                `yaml:"planet_min" toml:"planet_min"`
	PlanetMax               int                `yaml:"planet_max" toml:"planet_max"`
	PlanetWeights           map[string]float64 `yaml:"planet_weights" toml:"planet_weights"`
	BeltChance              float64            `yaml:"belt_chance" toml:"belt_chance"`
	StationChance           float64            `yaml:"station_chance" toml:"station_chance"`
	ExtraHabitableBase      float64            `yaml:"extra_habitable_base" toml:"extra_habitable_base"`
	ExtraHabitableDecay     float64            `yaml:"extra_habitable_decay" toml:"extra_habitable_decay"`
	MaxHabitableTags        int                `yaml:"max_habitable_tags" toml:"max_habitable_tags"`
	BarrenTagChance         float64            `yaml:"barren_tag_chance" toml:"barren_tag_chance"`
	PopulationScale         float64            `yaml:"population_scale" toml:"population_scale"`
	AdjacentDuplicateChance float64            `yaml:"adjacent_duplicate_chance" toml:"adjacent_duplicate_chance"`
}

// Band is one weighted option in a small table.
type Band struct {
	Label  string  `yaml:"label" toml:"label"`
	Weight float64 `yaml:"weight" toml:"weight"`
}

// Palette is the render hint carried by a star.
type Palette struct {
	Core string `yaml:"core" toml:"core" json:"core"`
	Mid  string `yaml:"mid" toml:"mid" json:"mid"`
	Halo string `yaml:"halo" toml:"halo" json:"halo"`
}

// StarClass is one spectral class in the class roll table.
type StarClass struct {
	Class      string             `yaml:"class" toml:"class"`
	Weight     float64            `yaml:"weight" toml:"weight"`
	Palette    Palette            `yaml:"palette" toml:"palette"`
	Ages       []Band             `yaml:"ages" toml:"ages"`
	PlanetBias map[string]float64 `yaml:"planet_bias" toml:"planet_bias"`
}

// PlanetType describes the environment tables of one planetary type.
type PlanetType struct {
	Name            string  `yaml:"name" toml:"name"`
	HabitableWeight float64 `yaml:"habitable_weight" toml:"habitable_weight"`
	BasePopulation  float64 `yaml:"base_population" toml:"base_population"`
	Sizes           []Band  `yaml:"sizes" toml:"sizes"`
	Atmospheres     []Band  `yaml:"atmospheres" toml:"atmospheres"`
	Temperatures    []Band  `yaml:"temperatures" toml:"temperatures"`
}

// PopulationFactors are the multiplicative population terms.
type PopulationFactors struct {
	Size          map[string]float64 `yaml:"size" toml:"size"`
	Atmosphere    map[string]float64 `yaml:"atmosphere" toml:"atmosphere"`
	Temperature   map[string]float64 `yaml:"temperature" toml:"temperature"`
	Habitable     float64            `yaml:"habitable" toml:"habitable"`
	Uninhabitable float64            `yaml:"uninhabitable" toml:"uninhabitable"`
	VarianceMin   float64            `yaml:"variance_min" toml:"variance_min"`
	VarianceMax   float64            `yaml:"variance_max" toml:"variance_max"`
	StationMin    float64            `yaml:"station_min" toml:"station_min"`
	StationMax    float64            `yaml:"station_max" toml:"station_max"`
}

// PlanetTag is one socio-economic tag in the tag pool.
type PlanetTag struct {
	Name                 string   `yaml:"name" toml:"name"`
	Weight               float64  `yaml:"weight" toml:"weight"`
	Types                []string `yaml:"types" toml:"types"` // empty: any planetary type
	HabitableOnly        bool     `yaml:"habitable_only" toml:"habitable_only"`
	PopulationMultiplier float64  `yaml:"population_multiplier" toml:"population_multiplier"`
	PopulationFloor      float64  `yaml:"population_floor" toml:"population_floor"`
	CoreWeight           float64  `yaml:"core_weight" toml:"core_weight"`
	Description          string   `yaml:"description" toml:"description"`
}

// NameLists are the word lists used for names.
type NameLists struct {
	Prefixes          []string `yaml:"prefixes" toml:"prefixes"`
	Suffixes          []string `yaml:"suffixes" toml:"suffixes"`
	HabitableSuffixes []string `yaml:"habitable_suffixes" toml:"habitable_suffixes"`
	Designations      []string `yaml:"designations" toml:"designations"`
}

// PoiTemplate is one kind of deep-space point of interest.
type PoiTemplate struct {
	Kind           string  `yaml:"kind" toml:"kind"`
	Category       string  `yaml:"category" toml:"category"`
	Weight         float64 `yaml:"weight" toml:"weight"`
	Risk           string  `yaml:"risk" toml:"risk"`
	RewardHint     string  `yaml:"reward_hint" toml:"reward_hint"`
	Refueling      bool    `yaml:"refueling" toml:"refueling"`
	NebulaAffinity float64 `yaml:"nebula_affinity" toml:"nebula_affinity"`
	GateState      string  `yaml:"gate_state" toml:"gate_state"`
}

// JumpGateCategory marks gate templates.
const JumpGateCategory = "jump_gate"

// IsGate reports whether the template places a jump gate.
func (p PoiTemplate) IsGate() bool {
	return p.Category == JumpGateCategory
}

// JumpGateRules bound where gates may appear.
type JumpGateRules struct {
	MaxPerSector        int       `yaml:"max_per_sector" toml:"max_per_sector"`
	MinHexSeparation    int       `yaml:"min_hex_separation" toml:"min_hex_separation"`
	MinSectorSeparation int       `yaml:"min_sector_separation" toml:"min_sector_separation"`
	EdgeWindow          int       `yaml:"edge_window" toml:"edge_window"`
	BypassChance        float64   `yaml:"bypass_chance" toml:"bypass_chance"`
	EdgeWeights         []float64 `yaml:"edge_weights" toml:"edge_weights"` // indexed by edge distance
	Suppression         []float64 `yaml:"suppression" toml:"suppression"`   // indexed by distance-1
	MaxPoiRatio         float64   `yaml:"max_poi_ratio" toml:"max_poi_ratio"`
	NebulaBlend         float64   `yaml:"nebula_blend" toml:"nebula_blend"`
}

// PlacementTuning drives the clustered placer.
type PlacementTuning struct {
	SecondaryAnchorThreshold int     `yaml:"secondary_anchor_threshold" toml:"secondary_anchor_threshold"`
	MaxSecondaryAnchors      int     `yaml:"max_secondary_anchors" toml:"max_secondary_anchors"`
	AnchorSpacing            int     `yaml:"anchor_spacing" toml:"anchor_spacing"`
	AnchorJitter             int     `yaml:"anchor_jitter" toml:"anchor_jitter"`
	CenterJitter             float64 `yaml:"center_jitter" toml:"center_jitter"`
	GrowthDecay              float64 `yaml:"growth_decay" toml:"growth_decay"`
	CenterBias               float64 `yaml:"center_bias" toml:"center_bias"`
	HomeMultiplier           float64 `yaml:"home_multiplier" toml:"home_multiplier"`
	OverpackPenalty          float64 `yaml:"overpack_penalty" toml:"overpack_penalty"`
	EdgePenalty              float64 `yaml:"edge_penalty" toml:"edge_penalty"`
	BoundaryBias             float64 `yaml:"boundary_bias" toml:"boundary_bias"`
	BoundaryReach            int     `yaml:"boundary_reach" toml:"boundary_reach"`
	Noise                    float64 `yaml:"noise" toml:"noise"`
	CenterRadius             int     `yaml:"center_radius" toml:"center_radius"`
}

// ContextTuning scales cross-sector influence.
type ContextTuning struct {
	BoundaryContinuity float64 `yaml:"boundary_continuity" toml:"boundary_continuity"`
	CoreBiasStrength   float64 `yaml:"core_bias_strength" toml:"core_bias_strength"`
	DominantTagCount   int     `yaml:"dominant_tag_count" toml:"dominant_tag_count"`
	TagSignalBoost     float64 `yaml:"tag_signal_boost" toml:"tag_signal_boost"`
	CacheLimit         int     `yaml:"cache_limit" toml:"cache_limit"`
}

// CoreWeights score regional-capital suitability.
type CoreWeights struct {
	Base         float64 `yaml:"base" toml:"base"`
	Population   float64 `yaml:"population" toml:"population"`
	Habitability float64 `yaml:"habitability" toml:"habitability"`
	Centrality   float64 `yaml:"centrality" toml:"centrality"`
	Context      float64 `yaml:"context" toml:"context"`
	EdgeBlend    float64 `yaml:"edge_blend" toml:"edge_blend"`
	TagCap       float64 `yaml:"tag_cap" toml:"tag_cap"`
	TagTotalCap  float64 `yaml:"tag_total_cap" toml:"tag_total_cap"`
}

// Bound is an inclusive integer range.
type Bound struct {
	Min int `yaml:"min" toml:"min"`
	Max int `yaml:"max" toml:"max"`
}

// StatBounds are the starting ranges of faction stats.
type StatBounds struct {
	Power     Bound `yaml:"power" toml:"power"`
	Stability Bound `yaml:"stability" toml:"stability"`
	Wealth    Bound `yaml:"wealth" toml:"wealth"`
	Military  Bound `yaml:"military" toml:"military"`
	Tech      Bound `yaml:"tech" toml:"tech"`
}

// InfluenceWeights shape per-hex faction influence.
type InfluenceWeights struct {
	Power            float64 `yaml:"power" toml:"power"`
	Military         float64 `yaml:"military" toml:"military"`
	Population       float64 `yaml:"population" toml:"population"`
	PoiBonus         float64 `yaml:"poi_bonus" toml:"poi_bonus"`
	DistanceBase     float64 `yaml:"distance_base" toml:"distance_base"`
	DistanceScale    float64 `yaml:"distance_scale" toml:"distance_scale"`
	NoiseScale       float64 `yaml:"noise_scale" toml:"noise_scale"`
	MinGap           float64 `yaml:"min_gap" toml:"min_gap"`
	RelativeGapRatio float64 `yaml:"relative_gap_ratio" toml:"relative_gap_ratio"`
}

// HomeWeights score candidate home systems.
type HomeWeights struct {
	TagAffinity float64 `yaml:"tag_affinity" toml:"tag_affinity"`
	Population  float64 `yaml:"population" toml:"population"`
	CoreBonus   float64 `yaml:"core_bonus" toml:"core_bonus"`
}

// FactionRules drive the territory simulator.
type FactionRules struct {
	SystemsPerFaction      float64          `yaml:"systems_per_faction" toml:"systems_per_faction"`
	Base                   int              `yaml:"base" toml:"base"`
	Min                    int              `yaml:"min" toml:"min"`
	Max                    int              `yaml:"max" toml:"max"`
	Stats                  StatBounds       `yaml:"stats" toml:"stats"`
	Relations              Bound            `yaml:"relations" toml:"relations"`
	Influence              InfluenceWeights `yaml:"influence" toml:"influence"`
	Home                   HomeWeights      `yaml:"home" toml:"home"`
	ArchetypeNoise         float64          `yaml:"archetype_noise" toml:"archetype_noise"`
	ControllableCategories []string         `yaml:"controllable_categories" toml:"controllable_categories"`
	ControllableKinds      []string         `yaml:"controllable_kinds" toml:"controllable_kinds"`
	MaxPoiDistance         int              `yaml:"max_poi_distance" toml:"max_poi_distance"`
	StatDrift              int              `yaml:"stat_drift" toml:"stat_drift"`
	RelationDrift          int              `yaml:"relation_drift" toml:"relation_drift"`
}

// Archetype is one faction template.
type Archetype struct {
	Type     string   `yaml:"type" toml:"type"`
	Doctrine string   `yaml:"doctrine" toml:"doctrine"`
	Color    string   `yaml:"color" toml:"color"`
	Title    string   `yaml:"title" toml:"title"`
	Names    []string `yaml:"names" toml:"names"`
	TagHints []string `yaml:"tag_hints" toml:"tag_hints"`
}

// Doctrine modifies a faction's influence numerator.
type Doctrine struct {
	System float64 `yaml:"system" toml:"system"`
	Poi    float64 `yaml:"poi" toml:"poi"`
}

// Defaults returns the embedded tables, validated.
func Defaults() (*Tables, error) {
	return Load("")
}

// Load starts from the embedded defaults and overlays the file at path, if any.
// The overlay format follows the file extension: .yaml, .yml or .toml.
func Load(path string) (*Tables, error) {
	t := &Tables{}
	if err := yaml.Unmarshal(defaultsYAML, t); err != nil {
		return nil, fmt.Errorf("parsing embedded tables: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading tables file: %w", err)
		}
		if err := t.overlay(path, data); err != nil {
			return nil, err
		}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables: %w", err)
	}
	t.index()
	return t, nil
}

func (t *Tables) overlay(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, t); err != nil {
			return fmt.Errorf("parsing tables file %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, t); err != nil {
			return fmt.Errorf("parsing tables file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("tables file %s: unsupported extension %q", path, filepath.Ext(path))
	}
	return nil
}

func (t *Tables) index() {
	t.tagIndex = make(map[string]int, len(t.PlanetTags))
	for i, tag := range t.PlanetTags {
		t.tagIndex[tag.Name] = i
	}
	t.incompatible = make(map[string]map[string]bool)
	for _, pair := range t.IncompatibleTags {
		a, b := pair[0], pair[1]
		if t.incompatible[a] == nil {
			t.incompatible[a] = make(map[string]bool)
		}
		if t.incompatible[b] == nil {
			t.incompatible[b] = make(map[string]bool)
		}
		t.incompatible[a][b] = true
		t.incompatible[b][a] = true
	}
}

// Profile returns the named profile, falling back to high_adventure.
func (t *Tables) Profile(name string) (Profile, string) {
	if p, ok := t.Profiles[name]; ok {
		return p, name
	}
	return t.Profiles[FallbackProfile], FallbackProfile
}

// DensityPreset returns the named preset, falling back to standard.
func (t *Tables) DensityPreset(name string) (DensityPreset, string) {
	if d, ok := t.DensityPresets[name]; ok {
		return d, name
	}
	return t.DensityPresets[FallbackDensity], FallbackDensity
}

// SizePreset returns the named size, falling back to standard.
func (t *Tables) SizePreset(name string) (SizePreset, string) {
	if s, ok := t.SizePresets[name]; ok {
		return s, name
	}
	return t.SizePresets[FallbackSize], FallbackSize
}

// PlanetType looks up a planetary type by name.
func (t *Tables) PlanetType(name string) (PlanetType, bool) {
	for _, pt := range t.PlanetTypes {
		if pt.Name == name {
			return pt, true
		}
	}
	return PlanetType{}, false
}

// StarClass looks up a spectral class.
func (t *Tables) StarClass(class string) (StarClass, bool) {
	for _, sc := range t.StarClasses {
		if sc.Class == class {
			return sc, true
		}
	}
	return StarClass{}, false
}

// Tag looks up a planet tag by name.
func (t *Tables) Tag(name string) (PlanetTag, bool) {
	if t.tagIndex == nil {
		t.index()
	}
	i, ok := t.tagIndex[name]
	if !ok {
		return PlanetTag{}, false
	}
	return t.PlanetTags[i], true
}

// Incompatible reports whether two tags may not share a body. The relation is symmetric.
func (t *Tables) Incompatible(a, b string) bool {
	if t.incompatible == nil {
		t.index()
	}
	return t.incompatible[a][b]
}
