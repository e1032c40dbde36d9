package analysis

import "sort"

// weightedItem is one contributor to a stacking-decay dimension: an
// address (for the stable tie-break) and its raw weight.
type weightedItem struct {
	address string
	weight  float64
}

// stackingDecay sums weight_i * decay^i over items sorted by descending
// weight, ties broken by ascending address.
func stackingDecay(items []weightedItem, decay float64) float64 {
	sorted := make([]weightedItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].weight != sorted[j].weight {
			return sorted[i].weight > sorted[j].weight
		}
		return sorted[i].address < sorted[j].address
	})

	total := 0.0
	factor := 1.0
	for _, it := range sorted {
		total += it.weight * factor
		factor *= decay
	}
	return total
}
