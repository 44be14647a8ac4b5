package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// NotificationAdapter implements the NotificationRepository interface over
// the append-only notification ledger.
type NotificationAdapter struct {
	db *sqlx.DB
}

// NewNotificationAdapter creates a new notification ledger adapter
func NewNotificationAdapter(db *sqlx.DB) repositories.NotificationRepository {
	return &NotificationAdapter{db: db}
}

// WasNotified reports whether a notification for the exact
// (user, doctor, date, kind) combination was sent within the window
func (a *NotificationAdapter) WasNotified(ctx context.Context, userID int64, doctorID string, date time.Time, kind entities.NotificationKind, window time.Duration) (bool, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND doctor_id = $2 AND date = $3 AND kind = $4
		AND sent_at > $5`

	cutoff := time.Now().Add(-window)

	var count int
	err := a.db.GetContext(ctx, &count, query,
		userID, doctorID, date.Format(entities.DateLayout), string(kind), cutoff)
	if err != nil {
		return false, apperrors.NewPersistenceError("failed to query notification ledger", err)
	}

	return count > 0, nil
}

// Record appends a notification record after a successful dispatch
func (a *NotificationAdapter) Record(ctx context.Context, record *entities.NotificationRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.SentAt.IsZero() {
		record.SentAt = time.Now()
	}

	query := `
		INSERT INTO notifications (id, user_id, doctor_id, date, kind, message, sent_at)
		VALUES (:id, :user_id, :doctor_id, :date, :kind, :message, :sent_at)`

	_, err := a.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return apperrors.NewPersistenceError("failed to record notification", err)
	}

	return nil
}
