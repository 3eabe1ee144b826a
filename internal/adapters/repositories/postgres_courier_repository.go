package repositories

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

// Postgres-backed implementation of the CourierRepository port.
type PostgresCourierRepository struct{ DB *sql.DB }

func NewPostgresCourierRepository(db *sql.DB) *PostgresCourierRepository {
	return &PostgresCourierRepository{DB: db}
}

// Retrieve a courier by identifier.
func (r *PostgresCourierRepository) ByID(ctx context.Context, courierID int) (*domain.Courier, error) {
	if r.DB == nil {
		return nil, errors.New("courier repository: DB is nil")
	}

	query := `
	SELECT courier_id, name, lat, lng, updated_at
	FROM couriers
	WHERE courier_id = $1;
	`

	var (
		c         domain.Courier
		lat, lng  sql.NullFloat64
		updatedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, courierID).Scan(&c.CourierID, &c.Name, &lat, &lng, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("courier %d: %w", courierID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get courier %d: %w", courierID, err)
	}

	c.Location = coordFromNullable(lat, lng, "courier", c.CourierID)
	if updatedAt.Valid {
		ts := updatedAt.Time
		c.UpdatedAt = &ts
	}

	return &c, nil
}

// UpdateLocation records the courier's current position. Only the
// courier's own device writes this row; last write wins.
func (r *PostgresCourierRepository) UpdateLocation(ctx context.Context, courierID int, loc domain.Coordinates, ts time.Time) error {
	if r.DB == nil {
		return errors.New("courier repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE couriers
	SET lat = $2, lng = $3, updated_at = $4
	WHERE courier_id = $1;
	`, courierID, loc.Lat, loc.Lng, ts)
	if err != nil {
		return fmt.Errorf("update courier %d location: %w", courierID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update courier %d location: rows affected: %w", courierID, err)
	}
	if n == 0 {
		return fmt.Errorf("courier %d: %w", courierID, ports.ErrNotFound)
	}

	return nil
}

// coordFromNullable converts a nullable lat/lng column pair into an
// optional coordinate. Malformed stored values (half-set pairs, NaN)
// are treated as absent rather than aborting the read.
func coordFromNullable(lat, lng sql.NullFloat64, entity string, id int) *domain.Coordinates {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	if math.IsNaN(lat.Float64) || math.IsNaN(lng.Float64) {
		log.Printf("%s %d has malformed stored coordinate, treating as absent", entity, id)
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
}
