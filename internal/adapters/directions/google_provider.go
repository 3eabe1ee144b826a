package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/metrics"
	"errors"
	"net/http"
	"time"
)

// GeocodeCache caches address -> coordinate lookups.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}

// TravelTimeCache caches pairwise travel times in seconds, keyed by
// "originLatLng|destinationLatLng".
type TravelTimeCache interface {
	GetMany(ctx context.Context, pairs []string) (map[string]float64, error)
	PutMany(ctx context.Context, values map[string]float64) error
}

// GoogleDirectionsProvider implements ports.DirectionsProvider against
// the Google Maps web services (Geocoding, Directions, Distance Matrix).
//
// It coordinates:
//   - Persistent geocode caching
//   - Persistent pairwise travel-time caching
//   - External API calls with retry/backoff and per-call timeouts
//
// The provider is safe for concurrent use. Either cache may be nil.
type GoogleDirectionsProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	mode         string
	geocodeCache GeocodeCache
	timeCache    TravelTimeCache
}

func NewGoogleDirectionsProvider(apiKey string, geocodeCache GeocodeCache, timeCache TravelTimeCache) (*GoogleDirectionsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}

	return &GoogleDirectionsProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://maps.googleapis.com",
		mode:         "driving",
		geocodeCache: geocodeCache,
		timeCache:    timeCache,
	}, nil
}

// observe records one provider call in the request-latency histogram.
func observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderRequests.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

func pairKey(origin, destination domain.Coordinates) string {
	return origin.LatLng() + "|" + destination.LatLng()
}
