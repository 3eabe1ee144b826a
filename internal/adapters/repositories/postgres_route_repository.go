package repositories

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

const routeColumns = `
	route_id, courier_id, zone_id, shipment_id, fecha,
	start_lat, start_lng, end_lat, end_lng,
	estimated_minutes, distance_meters, encoded_path,
	actual_minutes, cluster_label, delay_label,
	started_at, finished_at
`

// UpsertBatch writes one route row per entry inside a single
// transaction, keyed by (courier, shipment). Existing rows keep their
// actual-duration fields and any estimate the new row lacks; cluster
// labels always refresh. A cancelled context rolls back the whole batch
// so no partial rows commit.
func (r *PostgresRouteRepository) UpsertBatch(ctx context.Context, routes []*domain.Route) error {
	if r.DB == nil {
		return errors.New("route repository: DB is nil")
	}

	if len(routes) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO routes (
		courier_id, zone_id, shipment_id, fecha,
		start_lat, start_lng, end_lat, end_lng,
		estimated_minutes, distance_meters, encoded_path, cluster_label
	)
	VALUES ($1, $2, $3, CURRENT_DATE, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (courier_id, shipment_id) DO UPDATE
	SET start_lat = EXCLUDED.start_lat,
		start_lng = EXCLUDED.start_lng,
		end_lat = EXCLUDED.end_lat,
		end_lng = EXCLUDED.end_lng,
		estimated_minutes = COALESCE(EXCLUDED.estimated_minutes, routes.estimated_minutes),
		distance_meters = COALESCE(EXCLUDED.distance_meters, routes.distance_meters),
		encoded_path = COALESCE(EXCLUDED.encoded_path, routes.encoded_path),
		cluster_label = EXCLUDED.cluster_label;
	`)
	if err != nil {
		return fmt.Errorf("upsert routes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rt := range routes {
		_, err := stmt.ExecContext(ctx,
			rt.CourierID, rt.ZoneID, rt.ShipmentID,
			rt.Start.Lat, rt.Start.Lng, rt.End.Lat, rt.End.Lng,
			rt.EstimatedMinutes, rt.DistanceMeters, rt.EncodedPath, rt.ClusterLabel,
		)
		if err != nil {
			return fmt.Errorf("upsert routes: courier %d shipment %v: %w", rt.CourierID, rt.ShipmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert routes: commit: %w", err)
	}

	return nil
}

// Retrieve a route by identifier.
func (r *PostgresRouteRepository) ByID(ctx context.Context, routeID int) (*domain.Route, error) {
	if r.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, `
	SELECT `+routeColumns+`
	FROM routes
	WHERE route_id = $1;
	`, routeID)

	rt, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %d: %w", routeID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %d: %w", routeID, err)
	}

	return rt, nil
}

// List routes for a courier, newest first.
func (r *PostgresRouteRepository) ListByCourier(ctx context.Context, courierID int) ([]*domain.Route, error) {
	if r.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT `+routeColumns+`
	FROM routes
	WHERE courier_id = $1
	ORDER BY fecha DESC, route_id DESC;
	`, courierID)
	if err != nil {
		return nil, fmt.Errorf("list routes for courier %d: %w", courierID, err)
	}
	defer rows.Close()

	return collectRoutes(rows)
}

// List routes with a finish timestamp, for zone reclustering.
func (r *PostgresRouteRepository) ListFinished(ctx context.Context) ([]*domain.Route, error) {
	if r.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT `+routeColumns+`
	FROM routes
	WHERE finished_at IS NOT NULL
	ORDER BY route_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list finished routes: %w", err)
	}
	defer rows.Close()

	return collectRoutes(rows)
}

// MarkStarted records the field start timestamp.
func (r *PostgresRouteRepository) MarkStarted(ctx context.Context, routeID int, ts time.Time) error {
	return r.exec(ctx, routeID, `
	UPDATE routes SET started_at = $2 WHERE route_id = $1;
	`, routeID, ts)
}

// MarkFinished records the field finish timestamp along with the
// derived actual duration and delay classification.
func (r *PostgresRouteRepository) MarkFinished(ctx context.Context, routeID int, ts time.Time, actualMinutes *int, delayLabel *string) error {
	return r.exec(ctx, routeID, `
	UPDATE routes
	SET finished_at = $2, actual_minutes = $3, delay_label = $4
	WHERE route_id = $1;
	`, routeID, ts, actualMinutes, delayLabel)
}

// UpdateClusterLabels persists recomputed cluster labels in one
// transaction.
func (r *PostgresRouteRepository) UpdateClusterLabels(ctx context.Context, labels map[int]int) error {
	if r.DB == nil {
		return errors.New("route repository: DB is nil")
	}

	if len(labels) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update cluster labels: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE routes SET cluster_label = $2 WHERE route_id = $1;
	`)
	if err != nil {
		return fmt.Errorf("update cluster labels: prepare: %w", err)
	}
	defer stmt.Close()

	for routeID, label := range labels {
		if _, err := stmt.ExecContext(ctx, routeID, label); err != nil {
			return fmt.Errorf("update cluster labels: route %d: %w", routeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update cluster labels: commit: %w", err)
	}

	return nil
}

func (r *PostgresRouteRepository) exec(ctx context.Context, routeID int, query string, args ...any) error {
	if r.DB == nil {
		return errors.New("route repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update route %d: %w", routeID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update route %d: rows affected: %w", routeID, err)
	}
	if n == 0 {
		return fmt.Errorf("route %d: %w", routeID, ports.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	var rt domain.Route
	var zoneID, shipmentID, estMinutes, distMeters, actMinutes, clusterLabel sql.NullInt64
	var encodedPath, delayLabel sql.NullString
	var startedAt, finishedAt sql.NullTime

	err := row.Scan(
		&rt.RouteID, &rt.CourierID, &zoneID, &shipmentID, &rt.Fecha,
		&rt.Start.Lat, &rt.Start.Lng, &rt.End.Lat, &rt.End.Lng,
		&estMinutes, &distMeters, &encodedPath,
		&actMinutes, &clusterLabel, &delayLabel,
		&startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	rt.ZoneID = intPtr(zoneID)
	rt.ShipmentID = intPtr(shipmentID)
	rt.EstimatedMinutes = intPtr(estMinutes)
	rt.DistanceMeters = intPtr(distMeters)
	rt.ActualMinutes = intPtr(actMinutes)
	rt.ClusterLabel = intPtr(clusterLabel)

	if encodedPath.Valid {
		v := encodedPath.String
		rt.EncodedPath = &v
	}
	if delayLabel.Valid {
		v := delayLabel.String
		rt.DelayLabel = &v
	}
	if startedAt.Valid {
		v := startedAt.Time
		rt.StartedAt = &v
	}
	if finishedAt.Valid {
		v := finishedAt.Time
		rt.FinishedAt = &v
	}

	return &rt, nil
}

func collectRoutes(rows *sql.Rows) ([]*domain.Route, error) {
	routes := make([]*domain.Route, 0, 64)
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route row: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route row iteration: %w", err)
	}
	return routes, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
