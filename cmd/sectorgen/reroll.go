package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/sector-forge/internal/engine"
	"github.com/talgya/sector-forge/internal/world"
)

var rerollCmd = &cobra.Command{
	Use:   "reroll SECTOR",
	Short: "Regenerate every unpinned system of an archived sector",
	Long: "Regenerate system content at the same hexes from a new content iteration. " +
		"Pinned systems, the layout and deep-space POIs stay as they are.",
	Args: cobra.ExactArgs(1),
	RunE: runReroll,
}

func init() {
	f := rerollCmd.Flags()
	f.StringSlice("pin", nil, "hexes to keep (repeatable, col-row)")
	f.Int("iteration", 0, "content iteration (default: the next one)")
	addExportFlags(f)
	rootCmd.AddCommand(rerollCmd)
}

func runReroll(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	key := world.SectorKey(args[0])
	rec, err := a.db.LoadSector(key)
	if err != nil {
		return err
	}

	pins, _ := cmd.Flags().GetStringSlice("pin")
	pinned := make(map[world.HexID]bool, len(pins))
	for _, p := range pins {
		id := world.HexID(p)
		if _, ok := rec.Sectors[id]; !ok {
			return fmt.Errorf("pin %s: no system at that hex in sector %s", p, key)
		}
		pinned[id] = true
	}

	iteration := rec.ContentIteration + 1
	if cmd.Flags().Changed("iteration") {
		iteration, _ = cmd.Flags().GetInt("iteration")
	}

	archived, err := a.db.LoadAll()
	if err != nil {
		return err
	}
	ex, err := exportFlags(cmd)
	if err != nil {
		return err
	}

	next := a.session.RerollUnpinned(rec, pinned, iteration, engine.KnownSectors(archived))
	return a.finish(cmd, next, ex)
}
