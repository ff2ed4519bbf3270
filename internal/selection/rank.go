package selection

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Signature is the deduplication key of a candidate: its sorted wattage
// multiset, e.g. "60,300".
func Signature(c Candidate) string {
	w := c.Wattages()
	slices.Sort(w)
	parts := make([]string, len(w))
	for i, x := range w {
		parts[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Dedupe drops candidates whose signature was already seen. The first
// occurrence wins regardless of which catalog entries fill it.
func Dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		sig := Signature(c)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Rank orders candidates by priority first, then unit count, surplus and
// total price. The sort is stable so ties keep discovery order.
func Rank(candidates []Candidate) {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if a.Priority != b.Priority {
			if a.Priority {
				return -1
			}
			return 1
		}
		return compareCost(a, b)
	})
}

// rankByCost orders candidates by unit count, surplus and total price.
func rankByCost(candidates []Candidate) {
	slices.SortStableFunc(candidates, compareCost)
}

func compareCost(a, b Candidate) int {
	if c := cmp.Compare(a.UnitCount, b.UnitCount); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Surplus, b.Surplus); c != 0 {
		return c
	}
	return cmp.Compare(a.TotalPrice, b.TotalPrice)
}
