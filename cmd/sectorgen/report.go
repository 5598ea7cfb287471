package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/sector-forge/internal/engine"
	"github.com/talgya/sector-forge/internal/telemetry"
	"github.com/talgya/sector-forge/internal/world"
)

var reportCmd = &cobra.Command{
	Use:   "report [SECTOR...]",
	Short: "Write a CSV summary of archived sectors",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringP("out", "o", "", "CSV path (default: stdout)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var records []*engine.SectorRecord
	if len(args) == 0 {
		if records, err = a.db.LoadAll(); err != nil {
			return err
		}
	}
	for _, key := range args {
		rec, err := a.db.LoadSector(world.SectorKey(key))
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	rows := make([]telemetry.SectorStats, 0, len(records))
	for _, rec := range records {
		rows = append(rows, telemetry.Summarize(rec))
	}

	var w io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		defer f.Close()
		w = f
	}
	return telemetry.WriteCSV(w, rows)
}
