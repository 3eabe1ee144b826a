package handlers

import (
	"courier-route-service/internal/api/dto"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"
	"errors"
	"io"
	"log"
	"net/http"
)

type ReclusterHandler struct {
	Routes ports.RouteRepository
}

// Recluster recomputes zone labels over finished routes. This is a
// maintenance operation triggered on demand rather than on a timer.
func (h *ReclusterHandler) Recluster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// An absent body means default parameters.
	var req dto.ReclusterRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.K < 0 || req.K > 100 {
		writeError(w, r, http.StatusBadRequest, "k must be between 0 and 100")
		return
	}

	if err := services.ReclusterFinishedRoutes(r.Context(), h.Routes, req.K); err != nil {
		log.Printf("recluster failed: k=%d err=%v", req.K, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
