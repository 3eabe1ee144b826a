package api

import (
	"net/http"

	"courier-route-service/internal/api/handlers"
	"courier-route-service/internal/metrics"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(optimizer *services.Optimizer, couriers ports.CourierRepository, routes ports.RouteRepository) http.Handler {
	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{Optimizer: optimizer}
	routeHandler := &handlers.RouteHandler{Routes: routes}
	courierHandler := &handlers.CourierHandler{Couriers: couriers}
	reclusterHandler := &handlers.ReclusterHandler{Routes: routes}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)
	mux.HandleFunc("/routes", routeHandler.List)
	mux.HandleFunc("/routes/", routeHandler.Event)
	mux.HandleFunc("/couriers/", courierHandler.UpdateLocation)
	mux.HandleFunc("/recluster", reclusterHandler.Recluster)

	return requestIDMiddleware(loggingMiddleware(mux))
}
