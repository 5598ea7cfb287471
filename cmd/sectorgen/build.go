package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/sector-forge/internal/config"
	"github.com/talgya/sector-forge/internal/engine"
	"github.com/talgya/sector-forge/internal/world"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate a sector and archive it",
	Long: "Generate a sector from the configured presets or manual bounds. Neighbouring " +
		"sectors already in the archive shape the new sector's edges, core and gates.",
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.String("sector", string(engine.DefaultSectorKey), "sector key on the galaxy map")
	f.String("seed", "", "layout seed (default: random)")
	f.String("profile", "", "generation profile")
	f.String("size", "", "size preset")
	f.String("density", "", "density preset")
	f.String("distribution", "", "star distribution: standard or clusters")
	f.Int("width", 0, "manual grid width")
	f.Int("height", 0, "manual grid height")
	f.Int("min", 0, "manual minimum system count")
	f.Int("max", 0, "manual maximum system count")
	f.Bool("realistic", false, "weight planet types by star class")
	f.String("core", "", "pin the core system to this hex")
	addExportFlags(f)
	f.Bool("watch", false, "rebuild whenever the tables file changes")

	for _, k := range []string{"profile", "size", "density", "distribution"} {
		_ = viper.BindPFlag(k, f.Lookup(k))
	}
	rootCmd.AddCommand(buildCmd)
}

type buildRequest struct {
	loose  config.Loose
	opts   engine.BuildOptions
	export exportOptions
}

func runBuild(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := newBuildRequest(cmd, a.settings)
	if err != nil {
		return err
	}
	if err := a.build(cmd, req); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return a.watchTables(cmd.Context(), func() error { return a.build(cmd, req) })
	}
	return nil
}

func newBuildRequest(cmd *cobra.Command, s config.Settings) (buildRequest, error) {
	f := cmd.Flags()
	key, _ := f.GetString("sector")
	if _, err := world.ParseSectorKey(world.SectorKey(key)); err != nil {
		return buildRequest{}, err
	}
	seed, _ := f.GetString("seed")
	if seed == "" {
		seed = uuid.NewString()
	}
	core, _ := f.GetString("core")
	if core != "" {
		if _, err := world.ParseHexID(world.HexID(core)); err != nil {
			return buildRequest{}, err
		}
	}
	export, err := exportFlags(cmd)
	if err != nil {
		return buildRequest{}, err
	}

	return buildRequest{
		loose: looseFromFlags(cmd, s),
		opts: engine.BuildOptions{
			SectorKey:                 world.SectorKey(key),
			LayoutSeed:                seed,
			PreferredCoreSystemHexID:  world.HexID(core),
			PreferredCoreSystemManual: core != "",
		},
		export: export,
	}, nil
}

// looseFromFlags starts from the preset settings; any manual dimension or bound switches that axis to manual.
func looseFromFlags(cmd *cobra.Command, s config.Settings) config.Loose {
	f := cmd.Flags()
	width, _ := f.GetInt("width")
	height, _ := f.GetInt("height")
	lo, _ := f.GetInt("min")
	hi, _ := f.GetInt("max")
	realistic, _ := f.GetBool("realistic")

	l := config.Loose{
		SizeMode:               config.ModePreset,
		SizePreset:             s.Size,
		DensityMode:            config.ModePreset,
		DensityPreset:          s.Density,
		GenerationProfile:      s.Profile,
		StarDistribution:       s.Distribution,
		RealisticPlanetWeights: realistic,
	}
	if width > 0 || height > 0 {
		l.SizeMode, l.Width, l.Height = config.ModeManual, width, height
	}
	if lo > 0 || hi > 0 {
		l.DensityMode, l.ManualMin, l.ManualMax = config.ModeManual, lo, hi
	}
	return l
}

func (a *app) build(cmd *cobra.Command, req buildRequest) error {
	archived, err := a.db.LoadAll()
	if err != nil {
		return err
	}
	req.opts.KnownSectors = engine.KnownSectors(archived)

	rec := a.session.BuildSector(req.loose, nil, req.opts)
	return a.finish(cmd, rec, req.export)
}
