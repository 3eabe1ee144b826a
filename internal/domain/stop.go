package domain

// Role of a stop on a courier's tour.
type StopRole string

const (
	RolePickup  StopRole = "pickup"
	RoleDropoff StopRole = "dropoff"
)

// Represents a single point to visit during route optimization.
// A Stop is created transiently per optimization request from a pending
// shipment; it is not persisted beyond the derived Route record.
// ClusterLabel and Priority are filled in by later pipeline stages and
// stay nil until assigned.
type Stop struct {
	ShipmentID   int
	Role         StopRole
	Coord        Coordinates
	ServiceType  string
	ClusterLabel *int
	Priority     *float64
}
