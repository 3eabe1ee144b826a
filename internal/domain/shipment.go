package domain

import "time"

// Shipment lifecycle states relevant to routing. Only pending shipments
// are considered when building a courier's tour.
const (
	ShipmentPending   = "pending"
	ShipmentEnRoute   = "en-route"
	ShipmentDelivered = "delivered"
)

// Represents a shipment assigned to a courier for pickup or delivery.
// Origin/destination coordinates are resolved by an external geocoding
// step and may be absent; the optimizer skips shipments it cannot place.
type Shipment struct {
	ShipmentID  int
	CourierID   int
	Role        StopRole
	ServiceType string
	Status      string
	Origin      *Coordinates
	Destination *Coordinates
	CreatedAt   time.Time
}

// StopCoord returns the coordinate the courier must actually visit for
// this shipment: the pickup address for pickups, the drop-off address
// for drop-offs. Returns nil when the relevant coordinate is unresolved.
func (s *Shipment) StopCoord() *Coordinates {
	if s.Role == RolePickup {
		return s.Origin
	}
	return s.Destination
}

// A courier with an optionally known current location. The location row
// is written only by the courier's own device (last-write-wins).
type Courier struct {
	CourierID int
	Name      string
	Location  *Coordinates
	UpdatedAt *time.Time
}
