package services

import (
	"math"
	"math/rand"
	"testing"
)

// euclideanMatrix builds a symmetric cost matrix from planar points.
func euclideanMatrix(points [][2]float64) [][]float64 {
	n := len(points)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			dx := points[i][0] - points[j][0]
			dy := points[i][1] - points[j][1]
			m[i][j] = math.Hypot(dx, dy)
		}
	}
	return m
}

func TestNearestNeighborTour(t *testing.T) {
	// Origin at (0,0), stops at (0,1), (0,2), (1,2): greedy visiting
	// order follows increasing distance and 2-opt finds nothing to fix.
	m := euclideanMatrix([][2]float64{{0, 0}, {0, 1}, {0, 2}, {1, 2}})

	tour := NearestNeighborTour(m)
	want := []int{0, 1, 2, 3}
	for i := range want {
		if tour[i] != want[i] {
			t.Fatalf("tour = %v, want %v", tour, want)
		}
	}

	improved := TwoOpt(tour, m, TwoOptMaxPasses)
	for i := range want {
		if improved[i] != want[i] {
			t.Fatalf("2-opt changed an optimal tour: %v", improved)
		}
	}
}

func TestNearestNeighborTourTieBreaksOnLowestIndex(t *testing.T) {
	m := [][]float64{
		{0, 5, 5, 5},
		{5, 0, 5, 5},
		{5, 5, 0, 5},
		{5, 5, 5, 0},
	}

	tour := NearestNeighborTour(m)
	want := []int{0, 1, 2, 3}
	for i := range want {
		if tour[i] != want[i] {
			t.Fatalf("tour = %v, want %v", tour, want)
		}
	}
}

func TestNearestNeighborTourSingleStop(t *testing.T) {
	m := [][]float64{
		{0, 7},
		{7, 0},
	}

	tour := NearestNeighborTour(m)
	if len(tour) != 2 || tour[0] != 0 || tour[1] != 1 {
		t.Fatalf("tour = %v, want [0 1]", tour)
	}

	improved := TwoOpt(tour, m, TwoOptMaxPasses)
	if len(improved) != 2 || improved[0] != 0 || improved[1] != 1 {
		t.Fatalf("2-opt on two nodes = %v, want [0 1]", improved)
	}
}

func TestNearestNeighborTourAvoidsSentinelWhenPossible(t *testing.T) {
	// 0 -> 2 is unreachable; the greedy pass must route through 1 first.
	m := [][]float64{
		{0, 10, UnreachableCost},
		{10, 0, 5},
		{UnreachableCost, 5, 0},
	}

	tour := NearestNeighborTour(m)
	want := []int{0, 1, 2}
	for i := range want {
		if tour[i] != want[i] {
			t.Fatalf("tour = %v, want %v", tour, want)
		}
	}
	if cost := TourCost(tour, m); cost != 15 {
		t.Fatalf("cost = %v, want 15", cost)
	}
}

func TestTwoOptUncrossesEdges(t *testing.T) {
	// A deliberately crossed ordering over four corners of a square.
	m := euclideanMatrix([][2]float64{{0, 0}, {1, 1}, {1, 0}, {0, 1}})

	crossed := []int{0, 1, 2, 3}
	improved := TwoOpt(crossed, m, TwoOptMaxPasses)

	if got, before := TourCost(improved, m), TourCost(crossed, m); got >= before {
		t.Fatalf("2-opt cost %v, want below %v", got, before)
	}
	if crossed[1] != 1 || crossed[2] != 2 {
		t.Fatalf("input tour was mutated: %v", crossed)
	}
}

func TestTwoOptNeverIncreasesCost(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 25; trial++ {
		n := 4 + rng.Intn(8)
		points := make([][2]float64, n)
		for i := range points {
			points[i] = [2]float64{rng.Float64() * 100, rng.Float64() * 100}
		}
		m := euclideanMatrix(points)

		tour := NearestNeighborTour(m)
		improved := TwoOpt(tour, m, TwoOptMaxPasses)

		if got, before := TourCost(improved, m), TourCost(tour, m); got > before+twoOptEpsilon {
			t.Fatalf("trial %d: 2-opt cost %v above initial %v", trial, got, before)
		}

		if improved[0] != 0 {
			t.Fatalf("trial %d: tour does not start at origin: %v", trial, improved)
		}
		seen := make([]bool, n)
		for _, idx := range improved {
			if idx < 0 || idx >= n || seen[idx] {
				t.Fatalf("trial %d: tour is not a permutation: %v", trial, improved)
			}
			seen[idx] = true
		}
	}
}

func TestTourCost(t *testing.T) {
	m := [][]float64{
		{0, 1, 9},
		{9, 0, 2},
		{9, 9, 0},
	}

	if cost := TourCost([]int{0, 1, 2}, m); cost != 3 {
		t.Fatalf("cost = %v, want 3", cost)
	}
	if cost := TourCost([]int{0}, m); cost != 0 {
		t.Fatalf("single node cost = %v, want 0", cost)
	}
}
