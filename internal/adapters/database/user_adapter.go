package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/postgres"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

var userColumns = []interface{}{
	"user_id", "username", "first_name", "last_name",
	"patient_number", "patient_birthday",
	"check_interval_minutes", "filter_period_days", "last_check_time",
	"is_active", "notifications_enabled", "created_at", "updated_at",
}

// UserAdapter implements the UserScheduleRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user schedule adapter
func NewUserAdapter(client *postgres.Client) repositories.UserScheduleRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert creates the user on first contact or refreshes identity fields.
// Scheduling settings are preserved on conflict so a returning user keeps
// their configured cadence.
func (a *UserAdapter) Upsert(ctx context.Context, user *entities.UserSchedule) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.CheckIntervalMinutes = entities.ClampCheckInterval(user.CheckIntervalMinutes)
	user.FilterPeriodDays = entities.ClampFilterPeriod(user.FilterPeriodDays)

	record := goqu.Record{
		"user_id":                user.UserID,
		"username":               user.Username,
		"first_name":             user.FirstName,
		"last_name":              user.LastName,
		"patient_number":         user.PatientNumber,
		"patient_birthday":       user.PatientBirthday,
		"check_interval_minutes": user.CheckIntervalMinutes,
		"filter_period_days":     user.FilterPeriodDays,
		"last_check_time":        user.LastCheckTime,
		"is_active":              user.IsActive,
		"notifications_enabled":  user.NotificationsEnabled,
		"created_at":             user.CreatedAt,
		"updated_at":             user.UpdatedAt,
	}

	query, args, err := a.db.Insert("user_schedules").
		Rows(record).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"is_active":  user.IsActive,
			"updated_at": user.UpdatedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build user upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to upsert user", err)
	}

	return nil
}

// GetByID retrieves a user's schedule row
func (a *UserAdapter) GetByID(ctx context.Context, userID int64) (*entities.UserSchedule, error) {
	query, args, err := a.db.Select(userColumns...).
		From("user_schedules").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to build user query", err)
	}

	user, err := a.scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %d not found", userID))
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get user", err)
	}

	return user, nil
}

// ListCheckable retrieves all active users with notifications enabled and
// complete credentials
func (a *UserAdapter) ListCheckable(ctx context.Context) ([]*entities.UserSchedule, error) {
	query, args, err := a.db.Select(userColumns...).
		From("user_schedules").
		Where(goqu.Ex{
			"is_active":             true,
			"notifications_enabled": true,
		}).
		Where(
			goqu.C("patient_number").Neq(""),
			goqu.C("patient_birthday").Neq(""),
		).
		Order(goqu.I("user_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to build checkable query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list checkable users", err)
	}
	defer rows.Close()

	users := make([]*entities.UserSchedule, 0)
	for rows.Next() {
		user, err := a.scanUser(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate users", err)
	}

	return users, nil
}

// TouchLastCheck advances the user's last check time
func (a *UserAdapter) TouchLastCheck(ctx context.Context, userID int64, checkedAt time.Time) error {
	return a.update(ctx, userID, goqu.Record{"last_check_time": checkedAt})
}

// SetCredentials stores the patient credentials gathered during setup
func (a *UserAdapter) SetCredentials(ctx context.Context, userID int64, creds entities.PatientCredentials) error {
	return a.update(ctx, userID, goqu.Record{
		"patient_number":   creds.Number,
		"patient_birthday": creds.Birthday,
	})
}

// SetCheckInterval updates the check cadence, clamped to the allowed range
func (a *UserAdapter) SetCheckInterval(ctx context.Context, userID int64, minutes int) error {
	return a.update(ctx, userID, goqu.Record{
		"check_interval_minutes": entities.ClampCheckInterval(minutes),
	})
}

// SetFilterPeriod updates the look-ahead window, clamped to the allowed range
func (a *UserAdapter) SetFilterPeriod(ctx context.Context, userID int64, days int) error {
	return a.update(ctx, userID, goqu.Record{
		"filter_period_days": entities.ClampFilterPeriod(days),
	})
}

// SetActive activates or deactivates the user
func (a *UserAdapter) SetActive(ctx context.Context, userID int64, active bool) error {
	return a.update(ctx, userID, goqu.Record{"is_active": active})
}

// SetNotificationsEnabled toggles notification delivery for the user
func (a *UserAdapter) SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error {
	return a.update(ctx, userID, goqu.Record{"notifications_enabled": enabled})
}

func (a *UserAdapter) update(ctx context.Context, userID int64, record goqu.Record) error {
	record["updated_at"] = time.Now()

	query, args, err := a.db.Update("user_schedules").
		Set(record).
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build user update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewPersistenceError("failed to update user", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user %d not found", userID))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *UserAdapter) scanUser(row rowScanner) (*entities.UserSchedule, error) {
	user := &entities.UserSchedule{}
	var lastCheck sql.NullTime

	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PatientNumber,
		&user.PatientBirthday,
		&user.CheckIntervalMinutes,
		&user.FilterPeriodDays,
		&lastCheck,
		&user.IsActive,
		&user.NotificationsEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastCheck.Valid {
		t := lastCheck.Time
		user.LastCheckTime = &t
	}

	return user, nil
}
