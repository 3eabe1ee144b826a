package domain

import "time"

// Coarse delay classification attached to a route once field timestamps
// make an actual duration available.
const (
	DelayOnTime   = "on-time"
	DelayExpected = "delay-expected"
)

// delaySlackMinutes is the tolerance before a late delivery is labelled
// as delayed.
const delaySlackMinutes = 10

// Route is the persisted record derived from one optimized shipment leg.
// It associates a courier, an optional zone, and a shipment with the
// resolved start/end coordinates, the provider's estimated metrics, and
// the actual metrics reported later from the field device. Nullable
// fields are pointers; they are filled at different lifecycle points and
// must never be fabricated when absent.
type Route struct {
	RouteID    int
	CourierID  int
	ZoneID     *int
	ShipmentID *int

	Fecha time.Time

	Start Coordinates
	End   Coordinates

	EstimatedMinutes *int
	DistanceMeters   *int
	EncodedPath      *string

	ActualMinutes *int
	ClusterLabel  *int
	DelayLabel    *string

	StartedAt  *time.Time
	FinishedAt *time.Time
}

// SetCoordsFromShipment fixes the start/end coordinates from the
// shipment's resolved addresses. Missing coordinates are left untouched
// so partially geocoded shipments do not clobber existing data.
func (r *Route) SetCoordsFromShipment(s *Shipment) {
	if s == nil {
		return
	}
	if s.Origin != nil {
		r.Start = *s.Origin
	}
	if s.Destination != nil {
		r.End = *s.Destination
	}
}

// RecomputeActualDuration derives the actual duration in whole minutes
// from the field start/finish timestamps. It is a no-op until both
// timestamps are present.
func (r *Route) RecomputeActualDuration() {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return
	}
	minutes := int(r.FinishedAt.Sub(*r.StartedAt).Minutes())
	r.ActualMinutes = &minutes
}

// InferDelayLabel classifies the route as delayed when the actual
// duration exceeds the estimate by more than the slack. It is a no-op
// until both durations are known.
func (r *Route) InferDelayLabel() {
	if r.ActualMinutes == nil || r.EstimatedMinutes == nil {
		return
	}

	label := DelayOnTime
	if *r.ActualMinutes > *r.EstimatedMinutes+delaySlackMinutes {
		label = DelayExpected
	}
	r.DelayLabel = &label
}
