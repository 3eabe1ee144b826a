package ports

import (
	"context"
	"courier-route-service/internal/domain"
	"errors"
)

// ErrUnavailable signals that the external directions/geocoding service
// could not produce a result (down, throttled, or no route found). The
// optimization pipeline degrades on this error instead of failing.
var ErrUnavailable = errors.New("directions provider unavailable")

// Aggregate travel metrics for an ordered origin -> waypoints -> destination leg.
type RouteMetricsResult struct {
	DurationMinutes int
	DistanceMeters  int
	EncodedPath     string
}

// Contract for the external directions/geocoding service.
//
// All three operations are network-bound and must be called with a
// deadline; callers tolerate multi-second latency and provider-side
// throttling. Failures surface as ErrUnavailable rather than panics.
type DirectionsProvider interface {
	// Resolve a free-form address to coordinates.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)

	// Return aggregate duration/distance and an encoded path for a trip
	// from origin to destination through the given waypoints, in order.
	RouteMetrics(ctx context.Context, origin, destination domain.Coordinates, waypoints []domain.Coordinates) (RouteMetricsResult, error)

	// Return pairwise travel times in seconds over the given points,
	// with every point acting as both origin and destination. A nil cell
	// means the provider knows no route for that pair.
	TravelTimeMatrix(ctx context.Context, coords []domain.Coordinates) ([][]*float64, error)
}
