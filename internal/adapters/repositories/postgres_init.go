package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the Postgres schema: operational tables plus the
// provider caches.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCouriersQuery := `
	CREATE TABLE IF NOT EXISTS couriers (
		courier_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		updated_at TIMESTAMPTZ
	);
	`

	createShipmentsQuery := `
	CREATE TABLE IF NOT EXISTS shipments (
		shipment_id INTEGER PRIMARY KEY,
		courier_id INTEGER NOT NULL REFERENCES couriers(courier_id),
		role TEXT NOT NULL,
		service_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		origin_lat DOUBLE PRECISION,
		origin_lng DOUBLE PRECISION,
		dest_lat DOUBLE PRECISION,
		dest_lng DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id SERIAL PRIMARY KEY,
		courier_id INTEGER NOT NULL REFERENCES couriers(courier_id),
		zone_id INTEGER,
		shipment_id INTEGER REFERENCES shipments(shipment_id) ON DELETE CASCADE,
		fecha DATE NOT NULL DEFAULT CURRENT_DATE,
		start_lat DOUBLE PRECISION NOT NULL,
		start_lng DOUBLE PRECISION NOT NULL,
		end_lat DOUBLE PRECISION NOT NULL,
		end_lng DOUBLE PRECISION NOT NULL,
		estimated_minutes INTEGER,
		distance_meters INTEGER,
		encoded_path TEXT,
		actual_minutes INTEGER,
		cluster_label INTEGER,
		delay_label TEXT,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		UNIQUE (courier_id, shipment_id)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL
	);
	`

	createTravelTimeCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		seconds DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createRouteIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_courier_fecha
    ON routes(courier_id, fecha DESC);
	`

	statements := []string{
		createCouriersQuery,
		createShipmentsQuery,
		createRoutesQuery,
		createGeocodeCacheQuery,
		createTravelTimeCacheQuery,
		createRouteIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
