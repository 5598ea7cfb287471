package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/talgya/sector-forge/internal/engine"
	"github.com/talgya/sector-forge/internal/telemetry"
)

type exportOptions struct {
	path string
	skip bool
}

func addExportFlags(f *pflag.FlagSet) {
	f.String("out", "", "export path (default: output_dir/export_name)")
	f.Bool("no-export", false, "skip the JSON export")
}

func exportFlags(cmd *cobra.Command) (exportOptions, error) {
	path, err := cmd.Flags().GetString("out")
	if err != nil {
		return exportOptions{}, err
	}
	skip, err := cmd.Flags().GetBool("no-export")
	if err != nil {
		return exportOptions{}, err
	}
	return exportOptions{path: path, skip: skip}, nil
}

// finish archives rec, records it as the latest sector, exports it and prints a summary.
func (a *app) finish(cmd *cobra.Command, rec *engine.SectorRecord, ex exportOptions) error {
	id, err := a.db.SaveSector(rec)
	if err != nil {
		return err
	}
	if err := a.db.SaveMeta("last_sector", string(rec.SectorKey)); err != nil {
		return err
	}

	path := ""
	if !ex.skip {
		path = ex.path
		if path == "" {
			path = exportPath(a.settings.OutputDir, a.settings.ExportName, rec)
		}
		if err := writeExport(path, rec); err != nil {
			return err
		}
	}
	printSummary(cmd.OutOrStdout(), rec, id, path)
	return nil
}

// exportPath expands the strftime pattern against the record's generation time.
func exportPath(dir, pattern string, rec *engine.SectorRecord) string {
	return filepath.Join(dir, strftime.Format(pattern, rec.GeneratedAt))
}

func writeExport(path string, rec *engine.SectorRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sector %s: %w", rec.SectorKey, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	slog.Info("sector exported", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func printSummary(w io.Writer, rec *engine.SectorRecord, id, path string) {
	st := telemetry.Summarize(rec)
	fmt.Fprintf(w, "sector %s  seed %s  iteration %d\n", st.SectorKey, st.LayoutSeed, st.ContentIteration)
	fmt.Fprintf(w, "  %dx%d %s, %s systems (%s habitable worlds)\n",
		st.Width, st.Height, st.Distribution,
		humanize.Comma(int64(st.Systems)), humanize.Comma(int64(st.HabitableWorlds)))
	fmt.Fprintf(w, "  %s POIs, %d gates (%d active), %d refuelling stops\n",
		humanize.Comma(int64(st.Pois)), st.Gates, st.ActiveGates, st.RefuelStations)
	if st.CoreHex != "" {
		fmt.Fprintf(w, "  core %s at %s\n", st.CoreName, st.CoreHex)
	}
	fmt.Fprintf(w, "  population %s (mean %s per system)\n",
		humanize.CommafWithDigits(st.TotalPop, 2), humanize.CommafWithDigits(st.PopMean, 2))
	fmt.Fprintf(w, "  %d factions, turn %d, %d contested hexes\n", st.Factions, st.FactionTurn, st.ContestedHexes)
	if id != "" {
		fmt.Fprintf(w, "  archived %s\n", id)
	}
	if path != "" {
		fmt.Fprintf(w, "  exported %s\n", path)
	}
}
