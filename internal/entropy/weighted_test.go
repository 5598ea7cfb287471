package entropy

import "testing"

// fixed replays a scripted list of draws.
type fixed struct {
	vals []float64
	i    int
}

func (f *fixed) Float() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func TestPickWeighted(t *testing.T) {
	items := []Weighted[string]{
		{Item: "G", Weight: 2},
		{Item: "skip", Weight: 0},
		{Item: "K", Weight: 1},
		{Item: "M", Weight: 1},
	}

	tests := []struct {
		name string
		roll float64
		want string
	}{
		{"first band", 0.0, "G"},
		{"end of first band", 0.49, "G"},
		{"second band", 0.5, "K"},
		{"last band", 0.99, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickWeighted(&fixed{vals: []float64{tt.roll}}, items)
			if !ok || got != tt.want {
				t.Errorf("PickWeighted(roll=%v) = %q, %v; want %q", tt.roll, got, ok, tt.want)
			}
		})
	}
}

func TestPickWeightedEmpty(t *testing.T) {
	_, ok := PickWeighted(&fixed{vals: []float64{0.3}}, []Weighted[int]{{Item: 1, Weight: 0}})
	if ok {
		t.Error("expected no pick when all weights are zero")
	}
	if idx := PickIndex(&fixed{vals: []float64{0.3}}, nil); idx != -1 {
		t.Errorf("PickIndex(nil) = %d, want -1", idx)
	}
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c"}
	if got := Pick(&fixed{vals: []float64{0.999999}}, items); got != "c" {
		t.Errorf("Pick = %q, want c", got)
	}
	if got := Pick[string](&fixed{vals: []float64{0.5}}, nil); got != "" {
		t.Errorf("Pick(nil) = %q", got)
	}
}
