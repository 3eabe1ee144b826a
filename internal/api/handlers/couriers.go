package handlers

import (
	"courier-route-service/internal/api/dto"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type CourierHandler struct {
	Couriers ports.CourierRepository
}

// UpdateLocation records a courier's current position, reported by the
// courier's device. The path is /couriers/{id}/location.
func (h *CourierHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", http.MethodPut)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	courierID, ok := courierIDFromPath(r.URL.Path)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	var req dto.CourierLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Lat == nil || req.Lng == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		writeError(w, r, http.StatusBadRequest, "lat/lng out of range")
		return
	}

	loc := domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	err := h.Couriers.UpdateLocation(r.Context(), courierID, loc, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "courier not found")
			return
		}
		log.Printf("update courier location failed: courier_id=%d err=%v", courierID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// courierIDFromPath parses /couriers/{id}/location.
func courierIDFromPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/couriers/")
	if !ok {
		return 0, false
	}
	idPart, ok := strings.CutSuffix(rest, "/location")
	if !ok {
		return 0, false
	}

	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
