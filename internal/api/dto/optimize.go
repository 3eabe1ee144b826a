package dto

type OptimizeRequest struct {
	CourierID int `json:"courier_id"`
}

type StopResponse struct {
	ShipmentID   int      `json:"shipment_id"`
	Role         string   `json:"role"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	ServiceType  string   `json:"service_type"`
	ClusterLabel *int     `json:"cluster_label"`
	Priority     *float64 `json:"priority"`
}

type OptimizeResponse struct {
	CourierID    int            `json:"courier_id"`
	Stops        []StopResponse `json:"stops"`
	TotalMinutes *float64       `json:"total_minutes"`
	EncodedPath  *string        `json:"encoded_path"`
	Degraded     bool           `json:"degraded"`
	Empty        bool           `json:"empty"`
}
