package world

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/talgya/sector-forge/internal/tables"
)

func contextTuning(t *testing.T) tables.ContextTuning {
	t.Helper()
	tbl, err := tables.Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}
	return tbl.Context
}

// westHeavy is an 8x10 sector whose western column is fully settled.
func westHeavy(key SectorKey) KnownSector {
	k := KnownSector{Key: key, Seed: "west", Width: 8, Height: 10, Systems: map[HexID][]string{}}
	for r := 0; r < 10; r++ {
		k.Systems[Offset{Col: 0, Row: r}.ID()] = []string{"Mining"}
	}
	k.Systems["5-5"] = []string{"Trade Hub", "Mining"}
	k.Core = "0-4"
	k.ActiveGates = []HexID{"0-3"}
	return k
}

func TestEdgePressureMirrorsNeighbour(t *testing.T) {
	tuning := contextTuning(t)
	known := []KnownSector{westHeavy("ABAA")}

	ctx := NewContext(nil, known, StageEdges, tuning)

	// 10 of the 20 hexes in ABAA's two western lines are settled.
	want := 0.5 * tuning.BoundaryContinuity
	if got := ctx.EdgePressure("AAAA", East); math.Abs(got-want) > 1e-12 {
		t.Errorf("EdgePressure(AAAA, E) = %v, want %v", got, want)
	}
	for _, d := range []Direction{North, South, West} {
		if got := ctx.EdgePressure("AAAA", d); got != 0 {
			t.Errorf("EdgePressure(AAAA, %v) = %v, want 0", d, got)
		}
	}
	if got := ctx.EdgePressure("bogus", East); got != 0 {
		t.Errorf("unparseable key pressure = %v, want 0", got)
	}

	if got := ctx.CoreBias("AAAA"); got != (CoreBias{}) {
		t.Errorf("edges stage CoreBias = %v, want zero", got)
	}
	if got := ctx.NeighborActiveGates("AAAA", Grid{8, 10}); got != nil {
		t.Errorf("edges stage gates = %v, want none", got)
	}

	baseline := NewContext(nil, known, StageBaseline, tuning)
	if got := baseline.EdgePressure("AAAA", East); got != 0 {
		t.Errorf("baseline pressure = %v, want 0", got)
	}
}

func TestFullStageContext(t *testing.T) {
	tuning := contextTuning(t)
	ctx := NewContext(nil, []KnownSector{westHeavy("ABAA")}, StageFull, tuning)

	bias := ctx.CoreBias("AAAA")
	if math.Abs(bias[East]-tuning.CoreBiasStrength) > 1e-12 {
		t.Errorf("CoreBias[E] = %v, want %v (core on the shared edge)", bias[East], tuning.CoreBiasStrength)
	}
	g := Grid{Width: 8, Height: 10}
	if bias.Toward(g, Offset{7, 4}) <= bias.Toward(g, Offset{0, 4}) {
		t.Error("core bias should favour the eastern edge")
	}

	gates := ctx.NeighborActiveGates("AAAA", g)
	want := []NeighborGate{{Sector: "ABAA", Direction: East, At: Offset{Col: 8, Row: 3}}}
	if diff := cmp.Diff(want, gates); diff != "" {
		t.Errorf("NeighborActiveGates mismatch (-want +got):\n%s", diff)
	}
	if d := OffsetDistance(Offset{7, 3}, gates[0].At); d != 1 {
		t.Errorf("distance across the seam = %d, want 1", d)
	}

	intent := ctx.SectorIntent("AAAA")
	if intent.Neighbors != 1 {
		t.Fatalf("intent neighbours = %d", intent.Neighbors)
	}
	if intent.Tags[0].Tag != "Mining" || intent.Tags[0].Signal != 1 {
		t.Errorf("dominant tag = %+v, want Mining at 1", intent.Tags[0])
	}
	if got := intent.TagSignals()["Trade Hub"]; math.Abs(got-1.0/11) > 1e-12 {
		t.Errorf("Trade Hub signal = %v, want 1/11", got)
	}
}

func TestSummarize(t *testing.T) {
	tuning := contextTuning(t)
	gc := Summarize(westHeavy("ABAA"), tuning)

	if math.Abs(gc.DensityRatio-11.0/80) > 1e-12 {
		t.Errorf("DensityRatio = %v", gc.DensityRatio)
	}
	if gc.Core == nil || *gc.Core != (Offset{0, 4}) {
		t.Errorf("Core = %v", gc.Core)
	}
	if gc.EdgeOccupancy[East] != 0 {
		t.Errorf("east occupancy = %v, want 0", gc.EdgeOccupancy[East])
	}
	if gc.DensityMap[0][0] == 0 || gc.DensityMap[2][2] != 0 {
		t.Errorf("density map = %v", gc.DensityMap)
	}
}

func TestContextCacheEvictsInInsertionOrder(t *testing.T) {
	tuning := contextTuning(t)
	cache := NewContextCache(24)

	for i := 0; i < 30; i++ {
		k := westHeavy("ABAA")
		k.Seed = fmt.Sprintf("seed-%d", i)
		cache.Summary(k, tuning)
	}
	if cache.Len() != 24 {
		t.Fatalf("Len() = %d, want 24", cache.Len())
	}

	k := westHeavy("ABAA")
	k.Seed = "seed-29"
	first := cache.Summary(k, tuning)
	if cache.Len() != 24 {
		t.Errorf("a hit changed Len() to %d", cache.Len())
	}
	if second := cache.Summary(k, tuning); first != second {
		t.Error("repeat lookup should return the cached summary")
	}

	k.Systems["7-7"] = []string{"Agricultural"}
	if cache.Summary(k, tuning) == first {
		t.Error("a structural change should miss the cache")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d", cache.Len())
	}
}

func TestContextCacheConcurrentWrites(t *testing.T) {
	tuning := contextTuning(t)
	cache := NewContextCache(8)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := westHeavy("ABAA")
			k.Seed = fmt.Sprintf("c-%d", i)
			cache.Summary(k, tuning)
		}(i)
	}
	wg.Wait()
	if cache.Len() != 8 {
		t.Errorf("Len() = %d, want 8", cache.Len())
	}
}

func TestParseStage(t *testing.T) {
	for in, want := range map[string]Stage{"baseline": StageBaseline, " Edges": StageEdges, "full": StageFull, "": StageFull} {
		if got := ParseStage(in); got != want {
			t.Errorf("ParseStage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNebulaField(t *testing.T) {
	a := NewNebulaField("alpha-1")
	b := NewNebulaField("alpha-1")
	g := Grid{Width: 8, Height: 10}
	distinct := make(map[float64]bool)
	for _, o := range g.Coords() {
		v := a.At(o)
		if v < 0 || v > 1 {
			t.Fatalf("At(%v) = %v out of range", o, v)
		}
		if v != b.At(o) {
			t.Fatalf("At(%v) differs between fields with the same seed", o)
		}
		distinct[v] = true
	}
	if a.Len() != 80 {
		t.Errorf("Len() = %d, want 80", a.Len())
	}
	if len(distinct) < 10 {
		t.Errorf("field is nearly flat: %d distinct values", len(distinct))
	}
}
