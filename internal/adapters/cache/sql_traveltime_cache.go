package cache

import (
	"context"
	"courier-route-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLTravelTimeCache is a Postgres-backed cache of directed pairwise
// travel times in seconds, keyed by "originLatLng|destinationLatLng".
type SQLTravelTimeCache struct {
	DB *sql.DB
}

func NewSQLTravelTimeCache(db *sql.DB) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: db}
}

// Fetch cached travel times for the given pair keys. Absent pairs are
// simply missing from the result.
func (s *SQLTravelTimeCache) GetMany(ctx context.Context, pairs []string) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "traveltime.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	uniq := uniqueNonEmpty(pairs)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	q := `
	SELECT origin || '|' || destination, seconds
    FROM travel_time_cache
    WHERE origin || '|' || destination = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: query travel_time_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var pair string
		var seconds float64
		if err := rows.Scan(&pair, &seconds); err != nil {
			return nil, fmt.Errorf("get travel time cache: scan rows: %w", err)
		}
		out[pair] = seconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get travel time cache: row iteration: %w", err)
	}

	return out, nil
}

// Store directed travel times keyed by pair.
func (s *SQLTravelTimeCache) PutMany(ctx context.Context, values map[string]float64) error {
	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	if len(values) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO travel_time_cache (origin, destination, seconds)
    VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	SET seconds = EXCLUDED.seconds;
	`)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for pair, seconds := range values {
		origin, destination, ok := splitPair(pair)
		if !ok {
			return fmt.Errorf("insert travel time cache: malformed pair key %q", pair)
		}

		if _, err := stmt.ExecContext(ctx, origin, destination, seconds); err != nil {
			return fmt.Errorf("insert travel time cache pair=%q: %w", pair, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert travel time cache commit: %w", err)
	}

	return nil
}

func splitPair(pair string) (origin, destination string, ok bool) {
	origin, destination, found := strings.Cut(pair, "|")
	if !found || origin == "" || destination == "" {
		return "", "", false
	}
	return origin, destination, true
}
