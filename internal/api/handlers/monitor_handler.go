package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/medwatch/slot-monitor/internal/application/services"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// MonitorService defines the monitoring operations used by the handler.
type MonitorService interface {
	Stats() services.TrackerStats
}

// CheckTrigger runs an immediate check for one user.
type CheckTrigger interface {
	TriggerUser(ctx context.Context, userID int64) error
}

// MonitorHandler exposes monitor state and manual check triggers.
type MonitorHandler struct {
	monitor MonitorService
	trigger CheckTrigger
}

// NewMonitorHandler creates a new monitor handler.
func NewMonitorHandler(monitor MonitorService, trigger CheckTrigger) *MonitorHandler {
	return &MonitorHandler{
		monitor: monitor,
		trigger: trigger,
	}
}

// GetStats handles GET /api/stats
func (h *MonitorHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.monitor.Stats())
}

// TriggerCheck handles POST /api/users/{id}/check
func (h *MonitorHandler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.trigger.TriggerUser(r.Context(), userID); err != nil {
		switch {
		case apperrors.IsType(err, apperrors.ErrorTypeNotFound):
			respondWithError(w, http.StatusNotFound, "user not found")
		case apperrors.IsType(err, apperrors.ErrorTypeValidation):
			respondWithError(w, http.StatusConflict, "user has no patient credentials configured")
		default:
			respondWithError(w, http.StatusInternalServerError, "check failed")
		}
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "check completed"})
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
