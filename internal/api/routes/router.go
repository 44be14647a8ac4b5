package routes

import (
	"net/http"

	"github.com/medwatch/slot-monitor/internal/api/handlers"
	"github.com/medwatch/slot-monitor/internal/api/middleware"
	"github.com/medwatch/slot-monitor/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler    *handlers.UserHandler
	monitorHandler *handlers.MonitorHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	userHandler *handlers.UserHandler,
	monitorHandler *handlers.MonitorHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		userHandler:    userHandler,
		monitorHandler: monitorHandler,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Monitor endpoints
	r.mux.HandleFunc("GET /api/stats", r.monitorHandler.GetStats)
	r.mux.HandleFunc("POST /api/users/{id}/check", r.monitorHandler.TriggerCheck)

	// User endpoints
	r.mux.HandleFunc("POST /api/users", r.userHandler.UpsertUser)
	r.mux.HandleFunc("GET /api/users/{id}", r.userHandler.GetUser)
	r.mux.HandleFunc("PATCH /api/users/{id}/settings", r.userHandler.UpdateSettings)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	return handler
}
