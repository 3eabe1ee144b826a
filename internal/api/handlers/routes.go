package handlers

import (
	"courier-route-service/internal/api/dto"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type RouteHandler struct {
	Routes ports.RouteRepository
}

// List returns a courier's routes, newest first.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	courierID, err := strconv.Atoi(r.URL.Query().Get("courier_id"))
	if err != nil || courierID <= 0 {
		writeError(w, r, http.StatusBadRequest, "courier_id query parameter is required")
		return
	}

	routes, err := h.Routes.ListByCourier(r.Context(), courierID)
	if err != nil {
		log.Printf("list routes failed: courier_id=%d err=%v", courierID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRouteResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, toRouteResponse(rt))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Event applies a field start/finish event to a route. The path is
// /routes/{id}/events.
func (h *RouteHandler) Event(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	routeID, ok := routeIDFromPath(r.URL.Path)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	var req dto.RouteEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	err := services.RecordRouteEvent(r.Context(), h.Routes, routeID, req.Event, ts)
	switch {
	case errors.Is(err, services.ErrRouteNotFound):
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	case errors.Is(err, services.ErrUnknownEvent):
		writeError(w, r, http.StatusBadRequest, "event must be start or finish")
		return
	case err != nil:
		log.Printf("route event failed: route_id=%d event=%q err=%v", routeID, req.Event, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	rt, err := h.Routes.ByID(r.Context(), routeID)
	if err != nil {
		log.Printf("route reload failed: route_id=%d err=%v", routeID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(rt))
}

// routeIDFromPath parses /routes/{id}/events.
func routeIDFromPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/routes/")
	if !ok {
		return 0, false
	}
	idPart, ok := strings.CutSuffix(rest, "/events")
	if !ok {
		return 0, false
	}

	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toRouteResponse(rt *domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		RouteID:          rt.RouteID,
		CourierID:        rt.CourierID,
		ZoneID:           rt.ZoneID,
		ShipmentID:       rt.ShipmentID,
		Fecha:            rt.Fecha.Format("2006-01-02"),
		StartLat:         rt.Start.Lat,
		StartLng:         rt.Start.Lng,
		EndLat:           rt.End.Lat,
		EndLng:           rt.End.Lng,
		EstimatedMinutes: rt.EstimatedMinutes,
		DistanceMeters:   rt.DistanceMeters,
		EncodedPath:      rt.EncodedPath,
		ActualMinutes:    rt.ActualMinutes,
		ClusterLabel:     rt.ClusterLabel,
		DelayLabel:       rt.DelayLabel,
		StartedAt:        rt.StartedAt,
		FinishedAt:       rt.FinishedAt,
	}
}
