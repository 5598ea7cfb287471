package deepspace

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

func baseInput(t *testing.T, seed string) PlaceInput {
	t.Helper()
	tbl, err := tables.Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}
	g := world.Grid{Width: 8, Height: 10}
	occupied := make(map[world.HexID]bool)
	for _, o := range world.PlaceSystems(world.PlaceRequest{Grid: g, Count: 16, Tuning: tbl.Placement}, entropy.NewStream(seed)) {
		occupied[o.ID()] = true
	}
	return PlaceInput{
		Grid:         g,
		Occupied:     occupied,
		DensityRatio: 0.2,
		SectorKey:    "AAAA",
		Nebula:       world.NewNebulaField(seed),
		Templates:    tbl.PoiTemplates,
		Rules:        tbl.JumpGates,
		Designations: tbl.Names.Designations,
	}
}

func TestTarget(t *testing.T) {
	g := world.Grid{Width: 8, Height: 10}
	tests := []struct {
		ratio, max float64
		want       int
	}{
		{0, 0.08, 1},    // 80 * 0.018 = 1.44
		{0.2, 0.08, 4},  // 80 * 0.044 = 3.52
		{0.5, 0.08, 6},  // capped at 0.08 -> 6.4
		{0.2, 0.018, 1}, // cap at the floor
		{0.36, 0.2, 5},  // 80 * 0.0648 = 5.18
	}
	for _, tt := range tests {
		if got := Target(g, tt.ratio, tt.max); got != tt.want {
			t.Errorf("Target(%v, %v) = %d, want %d", tt.ratio, tt.max, got, tt.want)
		}
	}
}

func TestPlaceRespectsSystemsAndQuota(t *testing.T) {
	for i := 0; i < 40; i++ {
		seed := fmt.Sprintf("quota-%d", i)
		in := baseInput(t, seed)
		in.Rules.BypassChance = 0
		pois := Place(in, entropy.NewStream(seed))

		target := Target(in.Grid, in.DensityRatio, in.Rules.MaxPoiRatio)
		if len(pois) > target {
			t.Errorf("%s: %d POIs exceed target %d", seed, len(pois), target)
		}
		for id, p := range pois {
			if in.Occupied[id] {
				t.Errorf("%s: POI %q on a system hex %s", seed, p.Kind, id)
			}
			if p.Name == "" || p.Kind == "" {
				t.Errorf("%s: incomplete POI %+v", seed, p)
			}
		}
	}
}

func TestPlaceIsDeterministic(t *testing.T) {
	in := baseInput(t, "alpha-1")
	a := Place(in, entropy.NewStream("alpha-1"))
	in = baseInput(t, "alpha-1")
	b := Place(in, entropy.NewStream("alpha-1"))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("placement differs (-a +b):\n%s", diff)
	}
}

// gateHeavy makes gates common so the spacing rules are exercised.
func gateHeavy(in PlaceInput) PlaceInput {
	in.Rules.BypassChance = 0.8
	in.Rules.MaxPoiRatio = 0.3
	templates := make([]tables.PoiTemplate, len(in.Templates))
	copy(templates, in.Templates)
	for i := range templates {
		if templates[i].IsGate() {
			templates[i].Weight = 20
		}
	}
	in.Templates = templates
	in.DensityRatio = 1
	return in
}

func TestGateSpacingAndCap(t *testing.T) {
	sawGate := false
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("gates-%d", i)
		in := gateHeavy(baseInput(t, seed))
		pois := Place(in, entropy.NewStream(seed))

		var gates []world.Offset
		for id, p := range pois {
			if !p.IsGate() {
				continue
			}
			o := world.MustOffset(id)
			gates = append(gates, o)
			if d := in.Grid.EdgeDistance(o); d > in.Rules.EdgeWindow {
				t.Errorf("%s: gate at %s is %d from the edge", seed, id, d)
			}
			if p.JumpGateState != GateActive && p.JumpGateState != GateInactive {
				t.Errorf("%s: gate state %q", seed, p.JumpGateState)
			}
		}
		if len(gates) > in.Rules.MaxPerSector {
			t.Errorf("%s: %d gates exceed cap %d", seed, len(gates), in.Rules.MaxPerSector)
		}
		for a := range gates {
			for b := a + 1; b < len(gates); b++ {
				if d := world.OffsetDistance(gates[a], gates[b]); d < in.Rules.MinHexSeparation {
					t.Errorf("%s: gates %v and %v only %d apart", seed, gates[a], gates[b], d)
				}
			}
		}
		sawGate = sawGate || len(gates) > 0
	}
	if !sawGate {
		t.Error("no gates placed in any run")
	}
}

func TestActiveGateSuppression(t *testing.T) {
	neighbour := []world.NeighborGate{
		{Sector: "ABAA", Direction: world.East, At: world.Offset{Col: 8, Row: 3}},
		{Sector: "AAAB", Direction: world.South, At: world.Offset{Col: 2, Row: 10}},
	}

	inactive := 0
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("suppress-%d", i)
		in := gateHeavy(baseInput(t, seed))
		in.NeighborGates = neighbour
		in.Rules.MinSectorSeparation = 40

		for id, p := range Place(in, entropy.NewStream(seed)) {
			if p.IsActiveGate() {
				t.Errorf("%s: active gate at %s despite an active gate next door", seed, id)
			}
			if p.IsGate() && !p.IsActiveGate() {
				inactive++
			}
		}
	}
	if inactive == 0 {
		t.Error("suppression also removed inactive gates")
	}
}

func TestActiveGateSeparationAcrossSeam(t *testing.T) {
	neighbour := []world.NeighborGate{{Sector: "ABAA", Direction: world.East, At: world.Offset{Col: 8, Row: 3}}}
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("seam-%d", i)
		in := gateHeavy(baseInput(t, seed))
		in.NeighborGates = neighbour
		for id, p := range Place(in, entropy.NewStream(seed)) {
			if !p.IsActiveGate() {
				continue
			}
			if d := world.OffsetDistance(world.MustOffset(id), neighbour[0].At); d < in.Rules.MinSectorSeparation {
				t.Errorf("%s: active gate at %s is %d from the neighbour's gate", seed, id, d)
			}
		}
	}
}

func TestActiveGatesLinkAcrossEdges(t *testing.T) {
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("link-%d", i)
		in := gateHeavy(baseInput(t, seed))
		in.SectorKey = "BBBB"
		for id, p := range Place(in, entropy.NewStream(seed)) {
			if !p.IsActiveGate() {
				if p.JumpGateLink != "" {
					t.Errorf("%s: %s at %s has a link", seed, p.Kind, id)
				}
				continue
			}
			_, dir := in.Grid.NearestEdge(world.MustOffset(id))
			want, _ := world.SectorKey("BBBB").Neighbor(dir)
			if p.JumpGateLink != want {
				t.Errorf("%s: gate at %s links to %q, want %q", seed, id, p.JumpGateLink, want)
			}
		}
	}
}

func TestActiveGatesList(t *testing.T) {
	pois := map[world.HexID]*Poi{
		"7-2": {PoiCategory: tables.JumpGateCategory, JumpGateState: GateActive},
		"0-9": {PoiCategory: tables.JumpGateCategory, JumpGateState: GateActive},
		"3-3": {PoiCategory: tables.JumpGateCategory, JumpGateState: GateInactive},
		"4-4": {PoiCategory: "hazard"},
	}
	if diff := cmp.Diff([]world.HexID{"0-9", "7-2"}, ActiveGates(pois)); diff != "" {
		t.Errorf("ActiveGates mismatch (-want +got):\n%s", diff)
	}
}
