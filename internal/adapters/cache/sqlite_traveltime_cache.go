package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite-backed cache of directed pairwise travel times, for
// single-node local runs.
type SqliteTravelTimeCache struct {
	DB *sql.DB
}

func NewSqliteTravelTimeCache(db *sql.DB) *SqliteTravelTimeCache {
	return &SqliteTravelTimeCache{DB: db}
}

// Fetch cached travel times for the given pair keys.
func (s *SqliteTravelTimeCache) GetMany(ctx context.Context, pairs []string) (map[string]float64, error) {
	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	uniq := uniqueNonEmpty(pairs)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	args := make([]any, 0, len(uniq))
	ph := make([]string, 0, len(uniq))
	for _, p := range uniq {
		args = append(args, p)
		ph = append(ph, "?")
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT origin || '|' || destination, seconds
    FROM travel_time_cache
    WHERE origin || '|' || destination IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
func (s *SqliteTravelTimeCache) PutMany(ctx context.Context, values map[string]float64) error {
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
	INSERT OR REPLACE INTO travel_time_cache (origin, destination, seconds)
    VALUES (?, ?, ?);
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
