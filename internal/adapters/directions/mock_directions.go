package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"fmt"
)

// MockPair configures one directed travel-time entry on the mock.
type MockPair struct {
	From, To domain.Coordinates
	Seconds  float64
}

// MockDirectionsProvider is a deterministic in-memory test double for
// ports.DirectionsProvider. Pairs absent from the configured set come
// back as nil matrix cells (unreachable). Setting Unavailable makes
// every operation fail with ports.ErrUnavailable.
type MockDirectionsProvider struct {
	times       map[string]float64
	coords      map[string]domain.Coordinates
	metrics     ports.RouteMetricsResult
	Unavailable bool

	MatrixCalls  int
	MetricsCalls int
}

func NewMockDirectionsProvider(pairs []MockPair) *MockDirectionsProvider {
	times := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		times[pairKey(p.From, p.To)] = p.Seconds
	}
	return &MockDirectionsProvider{
		times:  times,
		coords: map[string]domain.Coordinates{},
	}
}

// SetGeocode configures a geocode result for an address.
func (p *MockDirectionsProvider) SetGeocode(address string, c domain.Coordinates) {
	p.coords[address] = c
}

// SetRouteMetrics configures the result returned by RouteMetrics.
func (p *MockDirectionsProvider) SetRouteMetrics(r ports.RouteMetricsResult) {
	p.metrics = r
}

func (p *MockDirectionsProvider) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if p.Unavailable {
		return domain.Coordinates{}, ports.ErrUnavailable
	}

	c, ok := p.coords[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode: no result for %q: %w", address, ports.ErrUnavailable)
	}
	return c, nil
}

func (p *MockDirectionsProvider) RouteMetrics(ctx context.Context, origin, destination domain.Coordinates, waypoints []domain.Coordinates) (ports.RouteMetricsResult, error) {
	p.MetricsCalls++
	if p.Unavailable {
		return ports.RouteMetricsResult{}, ports.ErrUnavailable
	}
	return p.metrics, nil
}

func (p *MockDirectionsProvider) TravelTimeMatrix(ctx context.Context, coords []domain.Coordinates) ([][]*float64, error) {
	p.MatrixCalls++
	if p.Unavailable {
		return nil, ports.ErrUnavailable
	}

	n := len(coords)
	out := make([][]*float64, n)
	for i := range out {
		out[i] = make([]*float64, n)
		for j := range out[i] {
			if i == j {
				zero := 0.0
				out[i][j] = &zero
				continue
			}
			if s, ok := p.times[pairKey(coords[i], coords[j])]; ok {
				seconds := s
				out[i][j] = &seconds
			}
		}
	}

	return out, nil
}
