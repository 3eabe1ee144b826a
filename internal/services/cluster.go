package services

import (
	"courier-route-service/internal/domain"
	"math"
	"math/rand"
)

// Clustering parameters. The seed is fixed so repeated runs over the
// same input produce the same labels; label numbering carries no other
// guarantee across runs.
const (
	clusterSeed      = 42
	clusterReInits   = 10
	clusterMaxSweeps = 100
	stopsPerCluster  = 8
)

// KMeansLabels partitions points into k spatial clusters using Lloyd's
// algorithm and returns one label per input point, labels in [0, k).
//
// When k <= 0 the cluster count defaults to roughly one cluster per
// eight stops. When k >= n there is no clustering benefit and every
// point becomes its own singleton cluster.
func KMeansLabels(points []domain.Coordinates, k int) []int {
	n := len(points)
	if n == 0 {
		return []int{}
	}

	if k <= 0 {
		k = int(math.Round(float64(n) / stopsPerCluster))
		if k < 1 {
			k = 1
		}
	}

	if k >= n {
		labels := make([]int, n)
		for i := range labels {
			labels[i] = i
		}
		return labels
	}

	rng := rand.New(rand.NewSource(clusterSeed))

	bestLabels := make([]int, n)
	bestInertia := math.Inf(1)

	// Bounded re-initializations: keep the assignment with the lowest
	// within-cluster squared distance.
	for init := 0; init < clusterReInits; init++ {
		labels, inertia := lloyd(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}

	return bestLabels
}

// lloyd runs one seeded k-means pass and returns the final labels and
// their total within-cluster squared distance.
func lloyd(points []domain.Coordinates, k int, rng *rand.Rand) ([]int, float64) {
	n := len(points)

	// Initial centroids: k distinct input points.
	perm := rng.Perm(n)
	centroids := make([]domain.Coordinates, k)
	for i := 0; i < k; i++ {
		centroids[i] = points[perm[i]]
	}

	labels := make([]int, n)

	for sweep := 0; sweep < clusterMaxSweeps; sweep++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := squaredDistance(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := squaredDistance(p, centroids[c]); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		if !changed && sweep > 0 {
			break
		}

		// Recompute centroids; an emptied cluster is reseeded from the
		// point currently farthest from its own centroid.
		sumLat := make([]float64, k)
		sumLng := make([]float64, k)
		count := make([]int, k)
		for i, p := range points {
			c := labels[i]
			sumLat[c] += p.Lat
			sumLng[c] += p.Lng
			count[c]++
		}

		for c := 0; c < k; c++ {
			if count[c] == 0 {
				centroids[c] = points[farthestPoint(points, labels, centroids)]
				continue
			}
			centroids[c] = domain.Coordinates{
				Lat: sumLat[c] / float64(count[c]),
				Lng: sumLng[c] / float64(count[c]),
			}
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += squaredDistance(p, centroids[labels[i]])
	}

	return labels, inertia
}

func farthestPoint(points []domain.Coordinates, labels []int, centroids []domain.Coordinates) int {
	worst := 0
	worstDist := -1.0
	for i, p := range points {
		if d := squaredDistance(p, centroids[labels[i]]); d > worstDist {
			worstDist = d
			worst = i
		}
	}
	return worst
}

func squaredDistance(a, b domain.Coordinates) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}
