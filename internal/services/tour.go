package services

// Tour construction over a square cost matrix of travel times in
// minutes. Index 0 is always the courier origin; the matrix diagonal is
// zero and off-diagonal entries may differ by direction. Neither
// algorithm assumes symmetry.

// twoOptEpsilon guards against floating-point oscillation: a reversal is
// only accepted when it strictly improves total cost by more than this.
const twoOptEpsilon = 1e-6

// TwoOptMaxPasses bounds the number of full improvement sweeps. The cap
// is a safety bound; realistic stop counts converge long before it.
const TwoOptMaxPasses = 200

// NearestNeighborTour builds an initial tour greedily: starting at the
// origin, repeatedly move to the cheapest unvisited index by outgoing
// edge. Deterministic given the matrix; ties break on the lowest index.
func NearestNeighborTour(m [][]float64) []int {
	n := len(m)
	if n == 0 {
		return []int{}
	}

	route := make([]int, 0, n)
	route = append(route, 0)

	visited := make([]bool, n)
	visited[0] = true
	cur := 0

	for len(route) < n {
		next := -1
		for j := 1; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || m[cur][j] < m[cur][next] {
				next = j
			}
		}

		route = append(route, next)
		visited[next] = true
		cur = next
	}

	return route
}

// TwoOpt refines a tour by pairwise edge exchange: whenever reversing
// the segment between two edges strictly reduces total cost, perform the
// reversal. Sweeps repeat until a full pass makes no improving move or
// the pass cap is reached. Cost is monotonically non-increasing per
// accepted move, so the search terminates.
//
// The input route is not modified; the improved tour is returned.
func TwoOpt(route []int, m [][]float64, maxPasses int) []int {
	if maxPasses <= 0 {
		maxPasses = TwoOptMaxPasses
	}

	out := append([]int(nil), route...)

	improved := true
	for pass := 0; improved && pass < maxPasses; pass++ {
		improved = false
		for a := 1; a < len(out)-2; a++ {
			for b := a + 1; b < len(out)-1; b++ {
				i, j := out[a-1], out[a]
				k, l := out[b], out[b+1]

				oldCost := m[i][j] + m[k][l]
				newCost := m[i][k] + m[j][l]

				if newCost+twoOptEpsilon < oldCost {
					reverse(out, a, b)
					improved = true
				}
			}
		}
	}

	return out
}

// TourCost sums consecutive edge costs along the route.
func TourCost(route []int, m [][]float64) float64 {
	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += m[route[i]][route[i+1]]
	}
	return total
}

func reverse(route []int, a, b int) {
	for a < b {
		route[a], route[b] = route[b], route[a]
		a++
		b--
	}
}
