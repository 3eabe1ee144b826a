package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type CourierSeed struct {
	CourierID int      `json:"courier_id"`
	Name      string   `json:"name"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

type ShipmentSeed struct {
	ShipmentID  int      `json:"shipment_id"`
	CourierID   int      `json:"courier_id"`
	Role        string   `json:"role"`
	ServiceType string   `json:"service_type"`
	Status      string   `json:"status"`
	OriginLat   *float64 `json:"origin_lat"`
	OriginLng   *float64 `json:"origin_lng"`
	DestLat     *float64 `json:"dest_lat"`
	DestLng     *float64 `json:"dest_lng"`
}

type SeedFile struct {
	Couriers  []CourierSeed  `json:"couriers"`
	Shipments []ShipmentSeed `json:"shipments"`
}

// Populate the database with courier and shipment data from a JSON
// file. Existing rows with the same identifiers are replaced.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	for i, c := range data.Couriers {
		if c.CourierID <= 0 {
			return fmt.Errorf("seed: invalid courier_id at index %d: %d", i+1, c.CourierID)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("seed: courier at index %d: name cannot be empty", i+1)
		}
	}
	for i, s := range data.Shipments {
		if s.ShipmentID <= 0 {
			return fmt.Errorf("seed: invalid shipment_id at index %d: %d", i+1, s.ShipmentID)
		}
		if s.CourierID <= 0 {
			return fmt.Errorf("seed: shipment %d: invalid courier_id %d", s.ShipmentID, s.CourierID)
		}
		if s.Role != "pickup" && s.Role != "dropoff" {
			return fmt.Errorf("seed: shipment %d: unknown role %q", s.ShipmentID, s.Role)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	courierStmt, err := tx.Prepare(`
	INSERT INTO couriers (courier_id, name, lat, lng)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (courier_id) DO UPDATE
	SET name = EXCLUDED.name, lat = EXCLUDED.lat, lng = EXCLUDED.lng;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare courier insert: %w", err)
	}
	defer courierStmt.Close()

	for _, c := range data.Couriers {
		if _, err := courierStmt.Exec(c.CourierID, strings.TrimSpace(c.Name), c.Lat, c.Lng); err != nil {
			return fmt.Errorf("seed: insert courier_id=%d: %w", c.CourierID, err)
		}
	}

	shipmentStmt, err := tx.Prepare(`
	INSERT INTO shipments (
		shipment_id, courier_id, role, service_type, status,
		origin_lat, origin_lng, dest_lat, dest_lng
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (shipment_id) DO UPDATE
	SET courier_id = EXCLUDED.courier_id,
		role = EXCLUDED.role,
		service_type = EXCLUDED.service_type,
		status = EXCLUDED.status,
		origin_lat = EXCLUDED.origin_lat,
		origin_lng = EXCLUDED.origin_lng,
		dest_lat = EXCLUDED.dest_lat,
		dest_lng = EXCLUDED.dest_lng;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare shipment insert: %w", err)
	}
	defer shipmentStmt.Close()

	for _, s := range data.Shipments {
		status := s.Status
		if strings.TrimSpace(status) == "" {
			status = "pending"
		}
		serviceType := s.ServiceType
		if strings.TrimSpace(serviceType) == "" {
			serviceType = "standard"
		}
		_, err := shipmentStmt.Exec(
			s.ShipmentID, s.CourierID, s.Role, serviceType, status,
			s.OriginLat, s.OriginLng, s.DestLat, s.DestLng,
		)
		if err != nil {
			return fmt.Errorf("seed: insert shipment_id=%d: %w", s.ShipmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
