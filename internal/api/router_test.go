package api

import (
	"context"
	"courier-route-service/internal/adapters/directions"
	"courier-route-service/internal/api/dto"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubCourierRepo struct {
	courier *domain.Courier
}

func (r *stubCourierRepo) ByID(ctx context.Context, courierID int) (*domain.Courier, error) {
	if r.courier == nil || r.courier.CourierID != courierID {
		return nil, fmt.Errorf("courier %d: %w", courierID, ports.ErrNotFound)
	}
	return r.courier, nil
}

func (r *stubCourierRepo) UpdateLocation(ctx context.Context, courierID int, loc domain.Coordinates, ts time.Time) error {
	if r.courier == nil || r.courier.CourierID != courierID {
		return fmt.Errorf("courier %d: %w", courierID, ports.ErrNotFound)
	}
	r.courier.Location = &loc
	return nil
}

type stubShipmentRepo struct{}

func (r *stubShipmentRepo) PendingByCourier(ctx context.Context, courierID int) ([]*domain.Shipment, error) {
	return nil, nil
}

type stubRouteRepo struct {
	route *domain.Route
}

func (r *stubRouteRepo) UpsertBatch(ctx context.Context, routes []*domain.Route) error { return nil }

func (r *stubRouteRepo) ByID(ctx context.Context, routeID int) (*domain.Route, error) {
	if r.route == nil || r.route.RouteID != routeID {
		return nil, fmt.Errorf("route %d: %w", routeID, ports.ErrNotFound)
	}
	return r.route, nil
}

func (r *stubRouteRepo) ListByCourier(ctx context.Context, courierID int) ([]*domain.Route, error) {
	if r.route != nil && r.route.CourierID == courierID {
		return []*domain.Route{r.route}, nil
	}
	return []*domain.Route{}, nil
}

func (r *stubRouteRepo) ListFinished(ctx context.Context) ([]*domain.Route, error) {
	return []*domain.Route{}, nil
}

func (r *stubRouteRepo) MarkStarted(ctx context.Context, routeID int, ts time.Time) error {
	rt, err := r.ByID(ctx, routeID)
	if err != nil {
		return err
	}
	rt.StartedAt = &ts
	return nil
}

func (r *stubRouteRepo) MarkFinished(ctx context.Context, routeID int, ts time.Time, actualMinutes *int, delayLabel *string) error {
	rt, err := r.ByID(ctx, routeID)
	if err != nil {
		return err
	}
	rt.FinishedAt = &ts
	rt.ActualMinutes = actualMinutes
	rt.DelayLabel = delayLabel
	return nil
}

func (r *stubRouteRepo) UpdateClusterLabels(ctx context.Context, labels map[int]int) error {
	return nil
}

func testRouter(couriers *stubCourierRepo, routes *stubRouteRepo) http.Handler {
	optimizer := &services.Optimizer{
		Couriers:  couriers,
		Shipments: &stubShipmentRepo{},
		Routes:    routes,
		Provider:  directions.NewMockDirectionsProvider(nil),
	}
	return NewRouter(optimizer, couriers, routes)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&stubCourierRepo{}, &stubRouteRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestOptimizeEndpointUnknownCourier(t *testing.T) {
	router := testRouter(&stubCourierRepo{}, &stubRouteRepo{})

	body := strings.NewReader(`{"courier_id": 99}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", body))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOptimizeEndpointEmptyRun(t *testing.T) {
	loc := domain.Coordinates{Lat: 4.6, Lng: -74.08}
	couriers := &stubCourierRepo{courier: &domain.Courier{CourierID: 7, Name: "dana", Location: &loc}}
	router := testRouter(couriers, &stubRouteRepo{})

	body := strings.NewReader(`{"courier_id": 7}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var res dto.OptimizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Empty || len(res.Stops) != 0 {
		t.Fatalf("expected an empty run, got %+v", res)
	}
}

func TestOptimizeEndpointRejectsBadBody(t *testing.T) {
	router := testRouter(&stubCourierRepo{}, &stubRouteRepo{})

	cases := []string{
		`{"courier_id": 0}`,
		`not json`,
		`{"unknown_field": 1}`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestRouteEventEndpoint(t *testing.T) {
	shipmentID := 3
	estimate := 30
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	routes := &stubRouteRepo{route: &domain.Route{
		RouteID:          11,
		CourierID:        7,
		ShipmentID:       &shipmentID,
		EstimatedMinutes: &estimate,
		StartedAt:        &started,
	}}
	router := testRouter(&stubCourierRepo{}, routes)

	body := strings.NewReader(`{"event": "finish", "timestamp": "2026-03-02T10:00:00Z"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/11/events", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var res dto.RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.ActualMinutes == nil || *res.ActualMinutes != 60 {
		t.Fatalf("actual minutes = %v, want 60", res.ActualMinutes)
	}
	if res.DelayLabel == nil || *res.DelayLabel != domain.DelayExpected {
		t.Fatalf("delay label = %v, want %q", res.DelayLabel, domain.DelayExpected)
	}
}

func TestRouteEventEndpointRejectsUnknownEvent(t *testing.T) {
	shipmentID := 3
	routes := &stubRouteRepo{route: &domain.Route{RouteID: 11, CourierID: 7, ShipmentID: &shipmentID}}
	router := testRouter(&stubCourierRepo{}, routes)

	body := strings.NewReader(`{"event": "pause"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/11/events", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCourierLocationEndpoint(t *testing.T) {
	couriers := &stubCourierRepo{courier: &domain.Courier{CourierID: 7, Name: "dana"}}
	router := testRouter(couriers, &stubRouteRepo{})

	body := strings.NewReader(`{"lat": 4.6, "lng": -74.08}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/couriers/7/location", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if couriers.courier.Location == nil || couriers.courier.Location.Lat != 4.6 {
		t.Fatalf("location not updated: %+v", couriers.courier.Location)
	}
}

func TestCourierLocationEndpointValidation(t *testing.T) {
	couriers := &stubCourierRepo{courier: &domain.Courier{CourierID: 7, Name: "dana"}}
	router := testRouter(couriers, &stubRouteRepo{})

	cases := []string{
		`{"lat": 4.6}`,
		`{"lat": 120, "lng": 0}`,
		`{"lat": 0, "lng": 200}`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/couriers/7/location", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestListRoutesEndpoint(t *testing.T) {
	shipmentID := 3
	routes := &stubRouteRepo{route: &domain.Route{RouteID: 11, CourierID: 7, ShipmentID: &shipmentID}}
	router := testRouter(&stubCourierRepo{}, routes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes?courier_id=7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res dto.ListRouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Routes) != 1 || res.Routes[0].RouteID != 11 {
		t.Fatalf("unexpected routes: %+v", res.Routes)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing courier_id: status = %d, want 400", rec.Code)
	}
}
