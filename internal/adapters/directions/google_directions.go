package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// RouteMetrics returns aggregate duration, distance and an encoded path
// for a trip through the given waypoints. Any provider-side failure
// surfaces as ports.ErrUnavailable so callers can degrade.
func (g *GoogleDirectionsProvider) RouteMetrics(ctx context.Context, origin, destination domain.Coordinates, waypoints []domain.Coordinates) (_ ports.RouteMetricsResult, err error) {
	start := time.Now()
	defer func() { observe("route_metrics", start, err) }()

	params := url.Values{}
	params.Set("origin", origin.LatLng())
	params.Set("destination", destination.LatLng())
	params.Set("mode", g.mode)

	if len(waypoints) > 0 {
		points := make([]string, 0, len(waypoints))
		for _, w := range waypoints {
			points = append(points, w.LatLng())
		}
		params.Set("waypoints", strings.Join(points, "|"))
	}

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		p := url.Values{}
		for k, v := range params {
			p[k] = v
		}
		return g.newRequest(ctx, "/maps/api/directions/json", p)
	})
	if err != nil {
		return ports.RouteMetricsResult{}, fmt.Errorf("route metrics: %w: %w", ports.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteMetricsResult{}, fmt.Errorf("route metrics: decode response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Routes) == 0 {
		return ports.RouteMetricsResult{}, fmt.Errorf("route metrics: status %s: %w", decoded.Status, ports.ErrUnavailable)
	}

	route := decoded.Routes[0]

	durationSec := 0
	distanceM := 0
	for _, leg := range route.Legs {
		durationSec += leg.Duration.Value
		distanceM += leg.Distance.Value
	}

	return ports.RouteMetricsResult{
		DurationMinutes: durationSec / 60,
		DistanceMeters:  distanceM,
		EncodedPath:     route.OverviewPolyline.Points,
	}, nil
}
