package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/sector-forge/internal/world"
)

var advanceCmd = &cobra.Command{
	Use:   "advance SECTOR",
	Short: "Advance an archived sector's factions by one or more turns",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdvance,
}

func init() {
	advanceCmd.Flags().IntP("turns", "n", 1, "number of turns")
	rootCmd.AddCommand(advanceCmd)
}

func runAdvance(cmd *cobra.Command, args []string) error {
	turns, _ := cmd.Flags().GetInt("turns")
	if turns < 1 {
		return fmt.Errorf("--turns must be at least 1, got %d", turns)
	}

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

	for i := 0; i < turns; i++ {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		next, err := a.session.AdvanceTurn(rec)
		if err != nil {
			return err
		}
		if err := a.db.SaveFactionTurn(key, next.FactionState); err != nil {
			return err
		}
		rec = next
	}

	state := rec.FactionState
	holdings := state.Holdings()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "sector %s  turn %d  %d contested hexes\n", key, state.Turn, len(state.Contested()))
	for _, f := range state.Factions {
		fmt.Fprintf(w, "  %-4s %-28s power %3d  military %3d  holds %d\n",
			f.ID, f.Name, f.Power, f.Military, holdings[f.ID])
	}
	return nil
}
