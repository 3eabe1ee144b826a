package repositories

import (
	"context"
	"courier-route-service/internal/domain"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the ShipmentRepository port.
type PostgresShipmentRepository struct{ DB *sql.DB }

func NewPostgresShipmentRepository(db *sql.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{DB: db}
}

// Retrieve the pending shipments assigned to a courier, oldest first.
func (r *PostgresShipmentRepository) PendingByCourier(ctx context.Context, courierID int) ([]*domain.Shipment, error) {
	if r.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	query := `
	SELECT
		shipment_id,
		courier_id,
		role,
		service_type,
		status,
		origin_lat, origin_lng,
		dest_lat, dest_lng,
		created_at
	FROM shipments
	WHERE courier_id = $1 AND status = $2
	ORDER BY shipment_id;
	`

	rows, err := r.DB.QueryContext(ctx, query, courierID, domain.ShipmentPending)
	if err != nil {
		return nil, fmt.Errorf("pending shipments for courier %d: query shipments table: %w", courierID, err)
	}
	defer rows.Close()

	shipments := make([]*domain.Shipment, 0, 32)
	for rows.Next() {
		var s domain.Shipment
		var role string
		var origLat, origLng, destLat, destLng sql.NullFloat64
		err := rows.Scan(
			&s.ShipmentID, &s.CourierID, &role, &s.ServiceType, &s.Status,
			&origLat, &origLng, &destLat, &destLng, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("pending shipments for courier %d: scan row: %w", courierID, err)
		}

		s.Role = domain.StopRole(role)
		s.Origin = coordFromNullable(origLat, origLng, "shipment", s.ShipmentID)
		s.Destination = coordFromNullable(destLat, destLng, "shipment", s.ShipmentID)

		shipments = append(shipments, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending shipments for courier %d: row iteration: %w", courierID, err)
	}

	return shipments, nil
}
