package repositories

import (
	"context"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// UserScheduleRepository defines the interface for subscriber schedule rows
type UserScheduleRepository interface {
	// Upsert creates the user on first contact or refreshes identity fields
	Upsert(ctx context.Context, user *entities.UserSchedule) error

	// GetByID retrieves a user's schedule row
	GetByID(ctx context.Context, userID int64) (*entities.UserSchedule, error)

	// ListCheckable retrieves all active users with notifications enabled and
	// complete credentials. Dueness is computed by the caller from
	// last_check_time so that scheduling state never lives in memory.
	ListCheckable(ctx context.Context) ([]*entities.UserSchedule, error)

	// TouchLastCheck advances the user's last check time
	TouchLastCheck(ctx context.Context, userID int64, checkedAt time.Time) error

	// SetCredentials stores the patient credentials gathered during setup
	SetCredentials(ctx context.Context, userID int64, creds entities.PatientCredentials) error

	// SetCheckInterval updates the check cadence, clamped to the allowed range
	SetCheckInterval(ctx context.Context, userID int64, minutes int) error

	// SetFilterPeriod updates the look-ahead window, clamped to the allowed range
	SetFilterPeriod(ctx context.Context, userID int64, days int) error

	// SetActive activates or deactivates the user (opt-out deactivates, never deletes)
	SetActive(ctx context.Context, userID int64, active bool) error

	// SetNotificationsEnabled toggles notification delivery for the user
	SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error
}
