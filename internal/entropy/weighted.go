package entropy

// Weighted pairs an item with its relative weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// PickWeighted walks cumulative thresholds over the positive weights.
// Returns false when no item carries a positive weight.
func PickWeighted[T any](src Source, items []Weighted[T]) (T, bool) {
	var zero T
	total := 0.0
	for _, it := range items {
		if it.Weight > 0 {
			total += it.Weight
		}
	}
	if total <= 0 {
		return zero, false
	}

	roll := src.Float() * total
	var last T
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		last = it.Item
		if roll < it.Weight {
			return it.Item, true
		}
		roll -= it.Weight
	}
	// Float rounding can leave a sliver past the final threshold.
	return last, true
}

// PickIndex is PickWeighted over a bare weight slice; -1 when nothing is pickable.
func PickIndex(src Source, weights []float64) int {
	items := make([]Weighted[int], len(weights))
	for i, w := range weights {
		items[i] = Weighted[int]{Item: i, Weight: w}
	}
	idx, ok := PickWeighted(src, items)
	if !ok {
		return -1
	}
	return idx
}

// Pick returns a uniformly chosen element, or the zero value for an empty slice.
func Pick[T any](src Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	i := int(src.Float() * float64(len(items)))
	if i >= len(items) {
		i = len(items) - 1
	}
	return items[i]
}
