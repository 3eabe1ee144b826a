package handlers

import (
	"courier-route-service/internal/api/dto"
	"courier-route-service/internal/services"
	"errors"
	"log"
	"net/http"
)

type OptimizeHandler struct {
	Optimizer *services.Optimizer
}

// Optimize runs the route optimization pipeline for one courier and
// returns the ordered stops. Persisting the derived route rows happens
// inside the pipeline; this handler only shapes the response.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.CourierID <= 0 {
		writeError(w, r, http.StatusBadRequest, "courier_id is required")
		return
	}

	res, err := h.Optimizer.OptimizeCourierRoute(r.Context(), req.CourierID)
	if err != nil {
		if errors.Is(err, services.ErrCourierNotFound) {
			writeError(w, r, http.StatusNotFound, "courier not found")
			return
		}
		log.Printf("optimize failed: courier_id=%d err=%v", req.CourierID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	out := dto.OptimizeResponse{
		CourierID:    res.CourierID,
		Stops:        make([]dto.StopResponse, 0, len(res.Stops)),
		TotalMinutes: res.TotalMinutes,
		EncodedPath:  res.EncodedPath,
		Degraded:     res.Degraded,
		Empty:        res.Empty,
	}
	for _, s := range res.Stops {
		out.Stops = append(out.Stops, dto.StopResponse{
			ShipmentID:   s.ShipmentID,
			Role:         string(s.Role),
			Lat:          s.Coord.Lat,
			Lng:          s.Coord.Lng,
			ServiceType:  s.ServiceType,
			ClusterLabel: s.ClusterLabel,
			Priority:     s.Priority,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}
