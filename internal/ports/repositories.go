package ports

import (
	"context"
	"courier-route-service/internal/domain"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a requested entity does
// not exist. Callers translate it into their own not-found semantics.
var ErrNotFound = errors.New("not found")

// Port: a boundary for retrieving Shipment entities from a data source.
type ShipmentRepository interface {
	// Retrieve the pending shipments assigned to a courier.
	PendingByCourier(ctx context.Context, courierID int) ([]*domain.Shipment, error)
}

// Port: a boundary for retrieving and updating Courier entities.
type CourierRepository interface {
	// Retrieve a courier by identifier. Returns ErrNotFound when the
	// courier does not exist.
	ByID(ctx context.Context, courierID int) (*domain.Courier, error)

	// Record the courier's current position. Returns ErrNotFound when
	// the courier does not exist.
	UpdateLocation(ctx context.Context, courierID int, loc domain.Coordinates, ts time.Time) error
}

// Port: a boundary for persisting and updating Route records.
type RouteRepository interface {
	// Atomically get-or-create one route row per entry, keyed by
	// (courier, shipment). All rows are written in a single transaction
	// so a cancelled pipeline commits nothing. Existing rows keep their
	// actual-duration fields; estimates and cluster labels are refreshed.
	UpsertBatch(ctx context.Context, routes []*domain.Route) error

	// Retrieve a route by identifier. Returns ErrNotFound when absent.
	ByID(ctx context.Context, routeID int) (*domain.Route, error)

	// List routes for a courier, newest first.
	ListByCourier(ctx context.Context, courierID int) ([]*domain.Route, error)

	// List routes that have a finish timestamp, for zone reclustering.
	ListFinished(ctx context.Context) ([]*domain.Route, error)

	// Record a field start timestamp.
	MarkStarted(ctx context.Context, routeID int, ts time.Time) error

	// Record a field finish timestamp together with the derived actual
	// duration and delay label.
	MarkFinished(ctx context.Context, routeID int, ts time.Time, actualMinutes *int, delayLabel *string) error

	// Persist recomputed cluster labels, keyed by route id.
	UpdateClusterLabels(ctx context.Context, labels map[int]int) error
}
