package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOffsetDistance(t *testing.T) {
	tests := []struct {
		a, b Offset
		want int
	}{
		{Offset{0, 0}, Offset{0, 0}, 0},
		{Offset{0, 0}, Offset{1, 0}, 1},
		{Offset{0, 0}, Offset{0, 1}, 1},
		{Offset{1, 0}, Offset{0, 1}, 1},
		{Offset{0, 0}, Offset{0, 2}, 2},
		{Offset{0, 0}, Offset{3, 4}, 5},
		{Offset{2, 3}, Offset{2, -1}, 4},
	}
	for _, tt := range tests {
		if got := OffsetDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("OffsetDistance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := OffsetDistance(tt.b, tt.a); got != tt.want {
			t.Errorf("OffsetDistance(%v, %v) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestAxialRoundTrip(t *testing.T) {
	for col := -3; col <= 3; col++ {
		for row := -3; row <= 3; row++ {
			o := Offset{Col: col, Row: row}
			if got := o.Axial().Offset(); got != o {
				t.Errorf("%v -> %v -> %v", o, o.Axial(), got)
			}
		}
	}
}

func TestParseHexID(t *testing.T) {
	o, err := ParseHexID("12-7")
	if err != nil {
		t.Fatalf("ParseHexID error: %v", err)
	}
	if o != (Offset{Col: 12, Row: 7}) {
		t.Errorf("got %v", o)
	}
	if o.ID() != "12-7" {
		t.Errorf("ID() = %q", o.ID())
	}

	for _, bad := range []HexID{"", "3", "-3", "3-", "a-1", "1-b"} {
		if _, err := ParseHexID(bad); err == nil {
			t.Errorf("ParseHexID(%q) should fail", bad)
		}
	}
}

func TestLessIDIsColumnMajor(t *testing.T) {
	ids := []HexID{"1-0", "0-10", "0-2", "zz", "10-0", "2-1"}
	want := []HexID{"0-2", "0-10", "1-0", "2-1", "10-0", "zz"}
	sortIDs(ids)
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func sortIDs(ids []HexID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && LessID(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func TestGridGeometry(t *testing.T) {
	g := Grid{Width: 8, Height: 10}

	coords := g.Coords()
	if len(coords) != 80 {
		t.Fatalf("Coords() len = %d", len(coords))
	}
	if coords[0] != (Offset{0, 0}) || coords[1] != (Offset{0, 1}) || coords[10] != (Offset{1, 0}) {
		t.Errorf("Coords() not column-major: %v %v %v", coords[0], coords[1], coords[10])
	}

	if c := g.Center(); c != (Offset{3, 4}) {
		t.Errorf("Center() = %v, want 3-4", c)
	}
	if got := g.Centrality(g.Center()); got != 1 {
		t.Errorf("Centrality(center) = %v, want 1", got)
	}
	for _, o := range coords {
		if c := g.Centrality(o); c < 0 || c > 1 {
			t.Errorf("Centrality(%v) = %v out of range", o, c)
		}
	}

	dist, dir := g.NearestEdge(Offset{0, 0})
	if dist != 0 || dir != North {
		t.Errorf("NearestEdge(0-0) = %d %v, want 0 N", dist, dir)
	}
	dist, dir = g.NearestEdge(Offset{7, 5})
	if dist != 0 || dir != East {
		t.Errorf("NearestEdge(7-5) = %d %v, want 0 E", dist, dir)
	}
	if got := len(g.EdgeCoords(West)); got != 10 {
		t.Errorf("EdgeCoords(W) len = %d", got)
	}
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite not an involution for %v", d)
		}
	}
}

func TestSectorKey(t *testing.T) {
	tests := []struct {
		key  SectorKey
		want SectorPos
	}{
		{"AAAA", SectorPos{0, 0}},
		{"ABAA", SectorPos{1, 0}},
		{"AAAB", SectorPos{0, 1}},
		{"BAAC", SectorPos{26, 2}},
	}
	for _, tt := range tests {
		got, err := ParseSectorKey(tt.key)
		if err != nil {
			t.Fatalf("ParseSectorKey(%q) error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("ParseSectorKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
		if got.Key() != tt.key {
			t.Errorf("%v.Key() = %q, want %q", got, got.Key(), tt.key)
		}
	}

	if _, ok := SectorKey("AAAA").Neighbor(North); ok {
		t.Error("AAAA should have no northern neighbour")
	}
	if n, _ := SectorKey("AAAA").Neighbor(East); n != "ABAA" {
		t.Errorf("AAAA east = %q, want ABAA", n)
	}
	if n, _ := SectorKey("AAAA").Neighbor(South); n != "AAAB" {
		t.Errorf("AAAA south = %q, want AAAB", n)
	}
	if n, _ := SectorKey("AZAA").Neighbor(East); n != "BAAA" {
		t.Errorf("AZAA east = %q, want BAAA", n)
	}
	for _, bad := range []SectorKey{"", "aaaa", "AAA", "AA1A"} {
		for _, d := range Directions {
			if _, ok := bad.Neighbor(d); ok {
				t.Errorf("%q should have no neighbours", bad)
			}
		}
	}
}
