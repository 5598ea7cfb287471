package engine

import (
	"log/slog"
	"math"

	"github.com/talgya/sector-forge/internal/stellar"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

// CoreInput is what the core selector scores.
type CoreInput struct {
	Grid            world.Grid
	Systems         map[world.HexID]*stellar.System
	Bias            world.CoreBias
	Pressure        world.PressureFunc // optional
	Preferred       world.HexID
	PreferredManual bool
	Tables          *tables.Tables
}

// SelectCore picks the sector's regional capital. A manual pin that still
// holds a system wins outright; a non-manual preference wins only on a tie
// with the best score. Ties otherwise go to the lowest column, then row.
func SelectCore(in CoreInput) (world.HexID, bool) {
	if len(in.Systems) == 0 {
		return "", false
	}
	if in.PreferredManual {
		if _, ok := in.Systems[in.Preferred]; ok {
			return in.Preferred, true
		}
	}

	var best world.HexID
	bestScore := math.Inf(-1)
	scores := make(map[world.HexID]float64, len(in.Systems))
	for _, id := range sortedIDs(in.Systems) {
		score := coreScore(in, id)
		scores[id] = score
		if score > bestScore {
			best, bestScore = id, score
		}
	}
	if pref, ok := scores[in.Preferred]; ok && pref == bestScore {
		best = in.Preferred
	}
	slog.Debug("core selected", "hex", best, "score", bestScore)
	return best, false
}

func coreScore(in CoreInput, id world.HexID) float64 {
	w := in.Tables.Core
	sys := in.Systems[id]
	o, err := world.ParseHexID(id)
	if err != nil {
		return math.Inf(-1)
	}

	tagSum := 0.0
	for _, name := range sys.Tags {
		if tag, ok := in.Tables.Tag(name); ok {
			tagSum += math.Min(tag.CoreWeight, w.TagCap)
		}
	}
	tagSum = math.Min(tagSum, w.TagTotalCap)

	return w.Base +
		sys.TotalPop*w.Population +
		float64(sys.HabitableCount())*w.Habitability +
		in.Grid.Centrality(o)*w.Centrality +
		tagSum +
		contextBias(in, o)*w.Context
}

// contextBias blends the pull toward neighbouring cores with the pressure on o's nearest edge.
func contextBias(in CoreInput, o world.Offset) float64 {
	edge := 0.0
	if in.Pressure != nil {
		dist, dir := in.Grid.NearestEdge(o)
		span := in.Grid.Height
		if dir == world.West || dir == world.East {
			span = in.Grid.Width
		}
		lean := 1.0
		if span > 1 {
			lean = 1 - float64(dist)/float64(span-1)
		}
		edge = in.Pressure(dir) * lean
	}
	blend := in.Tables.Core.EdgeBlend
	return blend*edge + (1-blend)*in.Bias.Toward(in.Grid, o)
}
