// Package config resolves loose generation settings into a canonical,
// bounded configuration, and loads the CLI's runtime settings.
package config

import (
	"log/slog"
	"math"
	"strings"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// Grid dimension bounds.
const (
	MinGridDimension = 4
	MaxGridDimension = 32
)

// Size and density modes.
const (
	ModePreset = "preset"
	ModeManual = "manual"
)

// Loose is generation input as a user or stored record supplies it.
// Any field may be missing or out of range.
type Loose struct {
	SizeMode               string `json:"size_mode,omitempty" yaml:"size_mode"`
	SizePreset             string `json:"size_preset,omitempty" yaml:"size_preset"`
	Width                  int    `json:"width,omitempty" yaml:"width"`
	Height                 int    `json:"height,omitempty" yaml:"height"`
	DensityMode            string `json:"density_mode,omitempty" yaml:"density_mode"`
	DensityPreset          string `json:"density_preset,omitempty" yaml:"density_preset"`
	ManualMin              int    `json:"manual_min,omitempty" yaml:"manual_min"`
	ManualMax              int    `json:"manual_max,omitempty" yaml:"manual_max"`
	GenerationProfile      string `json:"generation_profile,omitempty" yaml:"generation_profile"`
	StarDistribution       string `json:"star_distribution,omitempty" yaml:"star_distribution"`
	RealisticPlanetWeights bool   `json:"realistic_planet_weights,omitempty" yaml:"realistic_planet_weights"`
}

// Generation is the canonical configuration every generator consumes.
type Generation struct {
	SizeMode               string `json:"size_mode"`
	SizePreset             string `json:"size_preset"`
	Width                  int    `json:"width"`
	Height                 int    `json:"height"`
	DensityMode            string `json:"density_mode"`
	DensityPreset          string `json:"density_preset"`
	ManualMin              int    `json:"manual_min"`
	ManualMax              int    `json:"manual_max"`
	GenerationProfile      string `json:"generation_profile"`
	StarDistribution       string `json:"star_distribution"`
	RealisticPlanetWeights bool   `json:"realistic_planet_weights"`
	SystemCount            int    `json:"system_count"`
}

// Grid returns the configured grid.
func (g Generation) Grid() world.Grid {
	return world.Grid{Width: g.Width, Height: g.Height}
}

// Clustered reports whether systems are placed by the clustered placer.
func (g Generation) Clustered() bool {
	return g.StarDistribution == world.DistributionClusters
}

// Loosen returns the loose form of a canonical config, for re-normalising.
func (g Generation) Loosen() Loose {
	return Loose{
		SizeMode:               g.SizeMode,
		SizePreset:             g.SizePreset,
		Width:                  g.Width,
		Height:                 g.Height,
		DensityMode:            g.DensityMode,
		DensityPreset:          g.DensityPreset,
		ManualMin:              g.ManualMin,
		ManualMax:              g.ManualMax,
		GenerationProfile:      g.GenerationProfile,
		StarDistribution:       g.StarDistribution,
		RealisticPlanetWeights: g.RealisticPlanetWeights,
	}
}

// Normalize resolves every field with a bounded fallback. Only manual density
// draws from src; preset density consumes nothing.
func Normalize(in Loose, t *tables.Tables, src entropy.Source) Generation {
	out := Generation{RealisticPlanetWeights: in.RealisticPlanetWeights}

	if strings.EqualFold(in.SizeMode, ModeManual) {
		out.SizeMode = ModeManual
		out.Width, out.Height = in.Width, in.Height
	} else {
		out.SizeMode = ModePreset
		preset, name := t.SizePreset(in.SizePreset)
		out.SizePreset = name
		out.Width, out.Height = preset.Width, preset.Height
	}
	out.Width = clamp(out.Width, MinGridDimension, MaxGridDimension)
	out.Height = clamp(out.Height, MinGridDimension, MaxGridDimension)
	total := out.Width * out.Height

	profile, profileName := t.Profile(in.GenerationProfile)
	out.GenerationProfile = profileName

	if strings.EqualFold(in.DensityMode, ModeManual) {
		out.DensityMode = ModeManual
		lo := clamp(in.ManualMin, 0, total)
		hi := clamp(in.ManualMax, 0, total)
		if lo > hi {
			lo, hi = hi, lo
		}
		out.ManualMin, out.ManualMax = lo, hi
		out.SystemCount = entropy.IntRange(src, lo, hi)
	} else {
		out.DensityMode = ModePreset
		preset, name := t.DensityPreset(in.DensityPreset)
		out.DensityPreset = name
		out.SystemCount = int(math.Round(float64(total) * preset.Ratio * profile.DensityMultiplier))
	}
	out.SystemCount = clamp(out.SystemCount, 0, total)

	switch strings.ToLower(in.StarDistribution) {
	case world.DistributionClusters:
		out.StarDistribution = world.DistributionClusters
	default:
		out.StarDistribution = world.DistributionStandard
	}

	slog.Debug("config normalised",
		"size", out.Grid().String(),
		"systems", out.SystemCount,
		"profile", out.GenerationProfile,
		"distribution", out.StarDistribution,
	)
	return out
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
