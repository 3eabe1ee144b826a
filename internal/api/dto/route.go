package dto

import "time"

type RouteResponse struct {
	RouteID    int  `json:"route_id"`
	CourierID  int  `json:"courier_id"`
	ZoneID     *int `json:"zone_id"`
	ShipmentID *int `json:"shipment_id"`

	Fecha string `json:"fecha"`

	StartLat float64 `json:"start_lat"`
	StartLng float64 `json:"start_lng"`
	EndLat   float64 `json:"end_lat"`
	EndLng   float64 `json:"end_lng"`

	EstimatedMinutes *int    `json:"estimated_minutes"`
	DistanceMeters   *int    `json:"distance_meters"`
	EncodedPath      *string `json:"encoded_path"`

	ActualMinutes *int    `json:"actual_minutes"`
	ClusterLabel  *int    `json:"cluster_label"`
	DelayLabel    *string `json:"delay_label"`

	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type ListRouteResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type RouteEventRequest struct {
	Event     string     `json:"event"`
	Timestamp *time.Time `json:"timestamp"`
}

type CourierLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type ReclusterRequest struct {
	K int `json:"k"`
}
