package repositories

import (
	"context"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// NotificationRepository defines the interface for the notification ledger
type NotificationRepository interface {
	// WasNotified reports whether a notification for the exact
	// (user, doctor, date, kind) combination was sent within the window
	WasNotified(ctx context.Context, userID int64, doctorID string, date time.Time, kind entities.NotificationKind, window time.Duration) (bool, error)

	// Record appends a notification record after a successful dispatch
	Record(ctx context.Context, record *entities.NotificationRecord) error
}
