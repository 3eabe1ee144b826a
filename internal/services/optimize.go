package services

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/metrics"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"errors"
	"fmt"
	"log"
)

// ErrCourierNotFound is the only hard failure the pipeline produces for
// a well-formed invocation: an unknown courier identifier.
var ErrCourierNotFound = errors.New("courier not found")

// clusteringMinStops is the smallest stop count worth clustering; below
// it every stop shares label 0.
const clusteringMinStops = 3

// OptimizeResult is the structured outcome of one pipeline run. The
// caller always receives a result rather than a fault: Empty marks a
// clean "nothing to route" run, Degraded marks timing fields withheld
// because the directions provider was unavailable.
type OptimizeResult struct {
	CourierID    int
	Stops        []domain.Stop
	TotalMinutes *float64
	EncodedPath  *string
	Degraded     bool
	Empty        bool
}

// Optimizer orchestrates the route optimization pipeline: collect stops,
// cluster, score, build the time matrix, construct the tour, persist the
// derived Route rows.
type Optimizer struct {
	Couriers  ports.CourierRepository
	Shipments ports.ShipmentRepository
	Routes    ports.RouteRepository
	Provider  ports.DirectionsProvider

	// Model may be nil; scoring then yields the neutral priority.
	Model *DelayModel
}

// OptimizeCourierRoute computes a visiting order for the courier's
// pending shipments and upserts one Route row per routed shipment.
//
// Repeat invocations are idempotent on route row identity (get-or-create
// by courier+shipment) though the computed order may differ when
// external travel-time data changed. The pipeline is read-mostly on
// shipment data and mutates nothing besides Route rows.
func (o *Optimizer) OptimizeCourierRoute(ctx context.Context, courierID int) (_ *OptimizeResult, err error) {
	defer obs.Time(ctx, "optimize.pipeline")(&err)

	courier, err := o.Couriers.ByID(ctx, courierID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("optimize: courier %d: %w", courierID, ErrCourierNotFound)
		}
		return nil, fmt.Errorf("optimize: load courier %d: %w", courierID, err)
	}

	if courier.Location == nil {
		log.Printf("optimize: courier %d has no known location, nothing to route", courierID)
		metrics.Optimizations.WithLabelValues("empty").Inc()
		return &OptimizeResult{CourierID: courierID, Stops: []domain.Stop{}, Empty: true}, nil
	}

	shipments, err := o.Shipments.PendingByCourier(ctx, courierID)
	if err != nil {
		return nil, fmt.Errorf("optimize: list pending shipments for courier %d: %w", courierID, err)
	}

	// Collect stops: one per shipment with a resolved coordinate for its
	// role. Unresolved shipments are skipped, not fatal.
	stops := make([]domain.Stop, 0, len(shipments))
	stopShipments := make([]*domain.Shipment, 0, len(shipments))
	for _, s := range shipments {
		coord := s.StopCoord()
		if coord == nil {
			log.Printf("optimize: shipment %d has no resolved %s coordinate, skipping", s.ShipmentID, s.Role)
			continue
		}

		stops = append(stops, domain.Stop{
			ShipmentID:  s.ShipmentID,
			Role:        s.Role,
			Coord:       *coord,
			ServiceType: s.ServiceType,
		})
		stopShipments = append(stopShipments, s)
	}

	if len(stops) == 0 {
		metrics.Optimizations.WithLabelValues("empty").Inc()
		return &OptimizeResult{CourierID: courierID, Stops: []domain.Stop{}, Empty: true}, nil
	}

	// Zone clustering. Under three stops there is nothing meaningful to
	// partition; everything shares label 0.
	points := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		points[i] = s.Coord
	}

	labels := make([]int, len(stops))
	if len(stops) >= clusteringMinStops {
		labels = KMeansLabels(points, 0)
	}
	for i := range stops {
		label := labels[i]
		stops[i].ClusterLabel = &label
	}

	// Delay-risk scoring; degrades to the neutral priority internally.
	rows := make([]StopFeatures, len(stops))
	for i, s := range stops {
		rows[i] = StopFeatures{ClusterLabel: labels[i], ServiceType: s.ServiceType}
	}
	priorities := ScorePriorities(o.Model, rows)
	for i := range stops {
		p := priorities[i]
		stops[i].Priority = &p
	}

	// Cost matrix over [origin] + stops. Provider failure degrades to a
	// straight-line estimate: the tour is still ordered but timing
	// fields stay null.
	coords := make([]domain.Coordinates, 0, 1+len(stops))
	coords = append(coords, *courier.Location)
	coords = append(coords, points...)

	degraded := false
	matrix, err := BuildTimeMatrix(ctx, o.Provider, coords)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("optimize: %w", ctx.Err())
		}
		log.Printf("optimize: time matrix unavailable for courier %d, using straight-line estimate: %v", courierID, err)
		degraded = true
		matrix = HaversineMatrix(coords, 0)
	}

	tour := NearestNeighborTour(matrix)
	tour = TwoOpt(tour, matrix, 0)

	ordered := make([]domain.Stop, 0, len(stops))
	orderedShipments := make([]*domain.Shipment, 0, len(stops))
	for _, idx := range tour[1:] {
		ordered = append(ordered, stops[idx-1])
		orderedShipments = append(orderedShipments, stopShipments[idx-1])
	}

	result := &OptimizeResult{CourierID: courierID, Stops: ordered, Degraded: degraded}
	if !degraded {
		total := TourCost(tour, matrix)
		result.TotalMinutes = &total
		result.EncodedPath = o.tourPath(ctx, *courier.Location, ordered)
	}

	routes := o.buildRoutes(ctx, courier, ordered, orderedShipments, degraded)
	if err := o.Routes.UpsertBatch(ctx, routes); err != nil {
		return nil, fmt.Errorf("optimize: persist routes for courier %d: %w", courierID, err)
	}

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	metrics.Optimizations.WithLabelValues(outcome).Inc()

	return result, nil
}

// tourPath fetches the rendered path for the whole tour. It is display
// data only, so failure just means no path.
func (o *Optimizer) tourPath(ctx context.Context, origin domain.Coordinates, ordered []domain.Stop) *string {
	if len(ordered) == 0 {
		return nil
	}

	last := ordered[len(ordered)-1].Coord
	waypoints := make([]domain.Coordinates, 0, len(ordered)-1)
	for _, s := range ordered[:len(ordered)-1] {
		waypoints = append(waypoints, s.Coord)
	}

	res, err := o.Provider.RouteMetrics(ctx, origin, last, waypoints)
	if err != nil {
		log.Printf("optimize: tour path unavailable: %v", err)
		return nil
	}
	if res.EncodedPath == "" {
		return nil
	}
	return &res.EncodedPath
}

// buildRoutes derives one persistable Route row per routed shipment,
// carrying forward resolved coordinates and cluster labels. Estimated
// metrics come from a per-leg directions call and are skipped entirely
// in degraded mode.
func (o *Optimizer) buildRoutes(ctx context.Context, courier *domain.Courier, ordered []domain.Stop, shipments []*domain.Shipment, degraded bool) []*domain.Route {
	routes := make([]*domain.Route, 0, len(ordered))

	for i, stop := range ordered {
		shipmentID := stop.ShipmentID

		rt := &domain.Route{
			CourierID:    courier.CourierID,
			ShipmentID:   &shipmentID,
			Start:        *courier.Location,
			End:          stop.Coord,
			ClusterLabel: stop.ClusterLabel,
		}
		rt.SetCoordsFromShipment(shipments[i])

		if !degraded {
			res, err := o.Provider.RouteMetrics(ctx, rt.Start, rt.End, nil)
			if err != nil {
				log.Printf("optimize: leg estimate unavailable for shipment %d: %v", shipmentID, err)
			} else {
				minutes := res.DurationMinutes
				meters := res.DistanceMeters
				rt.EstimatedMinutes = &minutes
				rt.DistanceMeters = &meters
				if res.EncodedPath != "" {
					path := res.EncodedPath
					rt.EncodedPath = &path
				}
			}
		}

		routes = append(routes, rt)
	}

	return routes
}
