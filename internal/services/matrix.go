package services

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"fmt"
	"math"
)

// UnreachableCost is the sentinel travel time (minutes) for a pair the
// provider knows no route between. It is large enough that the tour
// constructor never picks such an edge while a finite alternative exists.
const UnreachableCost = 1e6

// degradedSpeedKmh is the nominal driving speed used for straight-line
// estimates when the directions provider is unavailable.
const degradedSpeedKmh = 30.0

// BuildTimeMatrix queries the directions provider for pairwise travel
// times over the given points (index 0 is the courier origin) and
// returns an NxN matrix in minutes. The diagonal is zero; unavailable
// pairs get UnreachableCost. The matrix is not guaranteed symmetric.
//
// This is a blocking network operation; the caller owns the deadline and
// degrades the whole route computation if it fails.
func BuildTimeMatrix(ctx context.Context, provider ports.DirectionsProvider, coords []domain.Coordinates) (_ [][]float64, err error) {
	defer obs.Time(ctx, "optimize.matrix")(&err)

	n := len(coords)
	if n == 0 {
		return [][]float64{}, nil
	}

	rows, err := provider.TravelTimeMatrix(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("build time matrix: %w", err)
	}

	if len(rows) != n {
		return nil, fmt.Errorf("build time matrix: provider returned %d rows, want %d", len(rows), n)
	}

	m := make([][]float64, n)
	for i := range m {
		if len(rows[i]) != n {
			return nil, fmt.Errorf("build time matrix: row %d has %d cells, want %d", i, len(rows[i]), n)
		}

		m[i] = make([]float64, n)
		for j := range m[i] {
			switch {
			case i == j:
				m[i][j] = 0
			case rows[i][j] == nil:
				m[i][j] = UnreachableCost
			default:
				m[i][j] = *rows[i][j] / 60.0
			}
		}
	}

	return m, nil
}

// HaversineMatrix builds a symmetric straight-line travel-time matrix in
// minutes, assuming a constant speed. It is the degraded estimate used
// when the provider is down: good enough to order stops, not good enough
// to promise timings.
func HaversineMatrix(coords []domain.Coordinates, speedKmh float64) [][]float64 {
	if speedKmh <= 0 {
		speedKmh = degradedSpeedKmh
	}

	n := len(coords)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			meters := haversineMeters(coords[i], coords[j])
			minutes := meters / 1000.0 / speedKmh * 60.0
			m[i][j] = minutes
			m[j][i] = minutes
		}
	}

	return m
}

func haversineMeters(a, b domain.Coordinates) float64 {
	const earthRadiusM = 6371000.0

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
