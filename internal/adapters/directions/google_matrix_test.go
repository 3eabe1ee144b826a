package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type memoryTimeCache struct {
	values map[string]float64
	puts   int
}

func newMemoryTimeCache() *memoryTimeCache {
	return &memoryTimeCache{values: map[string]float64{}}
}

func (c *memoryTimeCache) GetMany(ctx context.Context, pairs []string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, p := range pairs {
		if v, ok := c.values[p]; ok {
			out[p] = v
		}
	}
	return out, nil
}

func (c *memoryTimeCache) PutMany(ctx context.Context, values map[string]float64) error {
	c.puts++
	for k, v := range values {
		c.values[k] = v
	}
	return nil
}

func testProvider(t *testing.T, handler http.HandlerFunc, timeCache TravelTimeCache) (*GoogleDirectionsProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &GoogleDirectionsProvider{
		session:   &http.Client{Timeout: 2 * time.Second},
		apiKey:    "test-key",
		baseURL:   srv.URL,
		mode:      "driving",
		timeCache: timeCache,
	}, srv
}

const matrixBody = `{
	"status": "OK",
	"rows": [
		{"elements": [
			{"status": "OK", "duration": {"value": 0}},
			{"status": "OK", "duration": {"value": 600}}
		]},
		{"elements": [
			{"status": "ZERO_RESULTS"},
			{"status": "OK", "duration": {"value": 0}}
		]}
	]
}`

func TestTravelTimeMatrixParsesElements(t *testing.T) {
	calls := 0
	cache := newMemoryTimeCache()
	provider, _ := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/maps/api/distancematrix/json" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatal("api key not forwarded")
		}
		w.Write([]byte(matrixBody))
	}, cache)

	coords := []domain.Coordinates{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}
	out, err := provider.TravelTimeMatrix(context.Background(), coords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0][0] == nil || *out[0][0] != 0 {
		t.Fatalf("diagonal = %v, want 0", out[0][0])
	}
	if out[0][1] == nil || *out[0][1] != 600 {
		t.Fatalf("out[0][1] = %v, want 600 seconds", out[0][1])
	}
	if out[1][0] != nil {
		t.Fatalf("out[1][0] = %v, want nil for a failed element", *out[1][0])
	}

	if calls != 1 {
		t.Fatalf("provider hit %d times, want 1", calls)
	}
	if cache.puts != 1 {
		t.Fatalf("cache writes = %d, want 1", cache.puts)
	}
}

func TestTravelTimeMatrixServedFromCache(t *testing.T) {
	calls := 0
	cache := newMemoryTimeCache()
	a := domain.Coordinates{Lat: 0, Lng: 0}
	b := domain.Coordinates{Lat: 0, Lng: 1}
	cache.values[pairKey(a, b)] = 600
	cache.values[pairKey(b, a)] = 660

	provider, _ := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(matrixBody))
	}, cache)

	out, err := provider.TravelTimeMatrix(context.Background(), []domain.Coordinates{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("provider hit %d times, want 0 on full cache", calls)
	}
	if out[0][1] == nil || *out[0][1] != 600 {
		t.Fatalf("out[0][1] = %v, want cached 600", out[0][1])
	}
	if out[1][0] == nil || *out[1][0] != 660 {
		t.Fatalf("out[1][0] = %v, want cached 660", out[1][0])
	}
}

func TestTravelTimeMatrixNonOKStatus(t *testing.T) {
	provider, _ := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "rows": []}`))
	}, nil)

	coords := []domain.Coordinates{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}
	_, err := provider.TravelTimeMatrix(context.Background(), coords)
	if !errors.Is(err, ports.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestTravelTimeMatrixRetriesServerErrors(t *testing.T) {
	calls := 0
	provider, _ := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(matrixBody))
	}, nil)

	coords := []domain.Coordinates{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}
	out, err := provider.TravelTimeMatrix(context.Background(), coords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("provider hit %d times, want 2 (one retry)", calls)
	}
	if out[0][1] == nil || *out[0][1] != 600 {
		t.Fatalf("out[0][1] = %v, want 600 after retry", out[0][1])
	}
}
