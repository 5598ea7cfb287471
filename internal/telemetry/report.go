// Package telemetry summarises generated sectors for reports.
package telemetry

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/sector-forge/internal/engine"
)

// SectorStats is one report row.
type SectorStats struct {
	SectorKey        string  `csv:"sector"`
	LayoutSeed       string  `csv:"seed"`
	ContentIteration int     `csv:"iteration"`
	Width            int     `csv:"width"`
	Height           int     `csv:"height"`
	Profile          string  `csv:"profile"`
	Distribution     string  `csv:"distribution"`
	Systems          int     `csv:"systems"`
	Density          float64 `csv:"density"`
	Stars            int     `csv:"stars"`
	HabitableWorlds  int     `csv:"habitable_worlds"`
	Pois             int     `csv:"pois"`
	Gates            int     `csv:"gates"`
	ActiveGates      int     `csv:"active_gates"`
	RefuelStations   int     `csv:"refuel_stations"`
	CoreHex          string  `csv:"core"`
	CoreName         string  `csv:"core_name"`
	TotalPop         float64 `csv:"total_pop"`
	PopMean          float64 `csv:"pop_mean"`
	PopStdDev        float64 `csv:"pop_std"`
	PopMedian        float64 `csv:"pop_p50"`
	Factions         int     `csv:"factions"`
	FactionTurn      int     `csv:"turn"`
	HeldHexes        int     `csv:"held_hexes"`
	ContestedHexes   int     `csv:"contested_hexes"`
}

// Summarize computes the report row for a record.
func Summarize(rec *engine.SectorRecord) SectorStats {
	s := SectorStats{
		SectorKey:        string(rec.SectorKey),
		LayoutSeed:       rec.LayoutSeed,
		ContentIteration: rec.ContentIteration,
		Width:            rec.Width,
		Height:           rec.Height,
		Profile:          rec.Config.GenerationProfile,
		Distribution:     rec.Config.StarDistribution,
		Systems:          len(rec.Sectors),
		Pois:             len(rec.DeepSpacePois),
		CoreHex:          string(rec.CoreSystemHexID),
	}
	if hexes := rec.Width * rec.Height; hexes > 0 {
		s.Density = round3(float64(s.Systems) / float64(hexes))
	}

	pops := make([]float64, 0, len(rec.Sectors))
	for _, id := range rec.SystemIDs() {
		sys := rec.Sectors[id]
		s.Stars += len(sys.Stars)
		s.HabitableWorlds += sys.HabitableCount()
		s.TotalPop += sys.TotalPop
		pops = append(pops, sys.TotalPop)
	}
	if core, ok := rec.Sectors[rec.CoreSystemHexID]; ok {
		s.CoreName = core.Name
	}
	s.TotalPop = round3(s.TotalPop)

	switch len(pops) {
	case 0:
	case 1:
		s.PopMean, s.PopMedian = round3(pops[0]), round3(pops[0])
	default:
		mean, std := stat.MeanStdDev(pops, nil)
		sort.Float64s(pops)
		s.PopMean = round3(mean)
		s.PopStdDev = round3(std)
		s.PopMedian = round3(stat.Quantile(0.5, stat.Empirical, pops, nil))
	}

	for _, p := range rec.DeepSpacePois {
		if p.IsGate() {
			s.Gates++
		}
		if p.IsActiveGate() {
			s.ActiveGates++
		}
		if p.IsRefuelingStation {
			s.RefuelStations++
		}
	}

	if fs := rec.FactionState; fs != nil {
		s.Factions = len(fs.Factions)
		s.FactionTurn = fs.Turn
		s.ContestedHexes = len(fs.Contested())
		for _, n := range fs.Holdings() {
			s.HeldHexes += n
		}
	}
	return s
}

// WriteCSV writes the rows with a header line.
func WriteCSV(w io.Writer, rows []SectorStats) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
