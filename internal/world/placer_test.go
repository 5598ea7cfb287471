package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
)

func placementTuning(t *testing.T) tables.PlacementTuning {
	t.Helper()
	tbl, err := tables.Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}
	return tbl.Placement
}

func TestPlaceSystems(t *testing.T) {
	tuning := placementTuning(t)
	grid := Grid{Width: 8, Height: 10}

	tests := []struct {
		name      string
		count     int
		clustered bool
		occupied  map[HexID]bool
		want      int
	}{
		{name: "uniform", count: 16, want: 16},
		{name: "clustered", count: 16, clustered: true, want: 16},
		{name: "clustered with secondary anchors", count: 40, clustered: true, want: 40},
		{name: "zero", count: 0, want: 0},
		{name: "clamped to free", count: 200, want: 80},
		{name: "fixed systems excluded", count: 10, clustered: true, occupied: map[HexID]bool{"3-4": true, "4-4": true}, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PlaceRequest{Grid: grid, Count: tt.count, Clustered: tt.clustered, Occupied: tt.occupied, Tuning: tuning}
			got := PlaceSystems(req, entropy.NewStream("alpha-1"))
			if len(got) != tt.want {
				t.Fatalf("placed %d, want %d", len(got), tt.want)
			}
			seen := make(map[Offset]bool)
			for i, o := range got {
				if !grid.InBounds(o) {
					t.Errorf("%v out of bounds", o)
				}
				if seen[o] {
					t.Errorf("%v placed twice", o)
				}
				if tt.occupied[o.ID()] {
					t.Errorf("%v already occupied", o)
				}
				if i > 0 && !got[i-1].Less(o) {
					t.Errorf("result not canonical at %d", i)
				}
				seen[o] = true
			}

			again := PlaceSystems(req, entropy.NewStream("alpha-1"))
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("placement not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func TestClusteredPlacementKeepsCentre(t *testing.T) {
	tuning := placementTuning(t)
	grid := Grid{Width: 12, Height: 14}

	for _, seed := range []string{"alpha-1", "beta", "gamma-7", "delta", "é-seed"} {
		req := PlaceRequest{Grid: grid, Count: 20, Clustered: true, Tuning: tuning}
		got := PlaceSystems(req, entropy.NewStream(seed))
		near := false
		for _, o := range got {
			if OffsetDistance(o, grid.Center()) <= tuning.CenterRadius {
				near = true
				break
			}
		}
		if !near {
			t.Errorf("seed %q: no system within %d of the centre", seed, tuning.CenterRadius)
		}
	}
}

func TestBoundaryPressurePullsTowardEdge(t *testing.T) {
	tuning := placementTuning(t)
	grid := Grid{Width: 12, Height: 12}
	eastCount := func(p PressureFunc) int {
		total := 0
		for _, seed := range []string{"a", "b", "c", "d", "e", "f"} {
			req := PlaceRequest{Grid: grid, Count: 24, Clustered: true, Pressure: p, Tuning: tuning}
			for _, o := range PlaceSystems(req, entropy.NewStream(seed)) {
				if grid.EdgeDistanceTo(o, East) <= tuning.BoundaryReach {
					total++
				}
			}
		}
		return total
	}

	base := eastCount(nil)
	pulled := eastCount(func(d Direction) float64 {
		if d == East {
			return 1
		}
		return 0
	})
	if pulled <= base {
		t.Errorf("east-edge systems with pressure = %d, without = %d; want more with pressure", pulled, base)
	}
}
