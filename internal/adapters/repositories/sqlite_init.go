package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSqliteCacheSchema creates the provider cache tables in a local
// SQLite database. Operational data stays in Postgres; SQLite only
// backs the geocode/travel-time caches for single-node runs.
func InitSqliteCacheSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite cache schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init sqlite cache schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lng REAL NOT NULL
	);
	`

	createTravelTimeCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		seconds REAL NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	statements := []string{
		createGeocodeCacheQuery,
		createTravelTimeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite cache schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init sqlite cache schema: commit tx: %w", err)
	}

	return nil
}
