package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// UserHandler manages subscriber schedule rows.
type UserHandler struct {
	users repositories.UserScheduleRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users repositories.UserScheduleRepository) *UserHandler {
	return &UserHandler{users: users}
}

type upsertUserRequest struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpsertUser handles POST /api/users: first-contact onboarding. Identity
// fields refresh on every call; scheduling settings keep their values.
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var payload upsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.UserID <= 0 {
		respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	user := &entities.UserSchedule{
		UserID:               payload.UserID,
		Username:             strings.TrimSpace(payload.Username),
		FirstName:            strings.TrimSpace(payload.FirstName),
		LastName:             strings.TrimSpace(payload.LastName),
		CheckIntervalMinutes: 60,
		FilterPeriodDays:     14,
		IsActive:             true,
		NotificationsEnabled: true,
	}

	if err := h.users.Upsert(r.Context(), user); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save user")
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

type updateSettingsRequest struct {
	PatientNumber        *string `json:"patient_number"`
	PatientBirthday      *string `json:"patient_birthday"`
	CheckIntervalMinutes *int    `json:"check_interval_minutes"`
	FilterPeriodDays     *int    `json:"filter_period_days"`
	IsActive             *bool   `json:"is_active"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// UpdateSettings handles PATCH /api/users/{id}/settings. Only the fields
// present in the payload change; interval and period are clamped to their
// allowed ranges by the store.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var payload updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if (payload.PatientNumber == nil) != (payload.PatientBirthday == nil) {
		respondWithError(w, http.StatusBadRequest, "patient_number and patient_birthday must be set together")
		return
	}

	ctx := r.Context()
	apply := func(err error) bool {
		if err == nil {
			return true
		}
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "user not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, "failed to update settings")
		}
		return false
	}

	if payload.PatientNumber != nil {
		creds := entities.PatientCredentials{
			Number:   strings.TrimSpace(*payload.PatientNumber),
			Birthday: strings.TrimSpace(*payload.PatientBirthday),
		}
		if !creds.Complete() {
			respondWithError(w, http.StatusBadRequest, "patient credentials must be non-empty")
			return
		}
		if !apply(h.users.SetCredentials(ctx, userID, creds)) {
			return
		}
	}
	if payload.CheckIntervalMinutes != nil {
		if !apply(h.users.SetCheckInterval(ctx, userID, *payload.CheckIntervalMinutes)) {
			return
		}
	}
	if payload.FilterPeriodDays != nil {
		if !apply(h.users.SetFilterPeriod(ctx, userID, *payload.FilterPeriodDays)) {
			return
		}
	}
	if payload.IsActive != nil {
		if !apply(h.users.SetActive(ctx, userID, *payload.IsActive)) {
			return
		}
	}
	if payload.NotificationsEnabled != nil {
		if !apply(h.users.SetNotificationsEnabled(ctx, userID, *payload.NotificationsEnabled)) {
			return
		}
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}
