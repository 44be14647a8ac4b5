package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/postgres"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

func setupUserAdapter(t *testing.T) (*UserAdapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewUserAdapter(postgres.NewClientFromDB(db)).(*UserAdapter)
	return adapter, mock
}

func userRows(users ...*entities.UserSchedule) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"user_id", "username", "first_name", "last_name",
		"patient_number", "patient_birthday",
		"check_interval_minutes", "filter_period_days", "last_check_time",
		"is_active", "notifications_enabled", "created_at", "updated_at",
	})
	for _, u := range users {
		rows.AddRow(
			u.UserID, u.Username, u.FirstName, u.LastName,
			u.PatientNumber, u.PatientBirthday,
			u.CheckIntervalMinutes, u.FilterPeriodDays, u.LastCheckTime,
			u.IsActive, u.NotificationsEnabled, u.CreatedAt, u.UpdatedAt,
		)
	}
	return rows
}

func TestUserAdapterGetByID(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	last := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM "user_schedules"`).
		WillReturnRows(userRows(&entities.UserSchedule{
			UserID:               42,
			Username:             "anna",
			PatientNumber:        "123456",
			PatientBirthday:      "1980-04-02",
			CheckIntervalMinutes: 60,
			FilterPeriodDays:     14,
			LastCheckTime:        &last,
			IsActive:             true,
			NotificationsEnabled: true,
			CreatedAt:            last,
			UpdatedAt:            last,
		}))

	user, err := adapter.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, 60, user.CheckIntervalMinutes)
	require.NotNil(t, user.LastCheckTime)
	assert.Equal(t, last, *user.LastCheckTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapterGetByIDNotFound(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "user_schedules"`).
		WillReturnRows(userRows())

	_, err := adapter.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestUserAdapterListCheckable(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "user_schedules"`).
		WillReturnRows(userRows(
			&entities.UserSchedule{UserID: 1, PatientNumber: "1", PatientBirthday: "1990-01-01", CheckIntervalMinutes: 60, FilterPeriodDays: 14, IsActive: true, NotificationsEnabled: true, CreatedAt: now, UpdatedAt: now},
			&entities.UserSchedule{UserID: 2, PatientNumber: "2", PatientBirthday: "1991-01-01", CheckIntervalMinutes: 30, FilterPeriodDays: 7, IsActive: true, NotificationsEnabled: true, CreatedAt: now, UpdatedAt: now},
		))

	users, err := adapter.ListCheckable(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Nil(t, users[0].LastCheckTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapterUpsertClampsSettings(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	mock.ExpectExec(`INSERT INTO "user_schedules" (.+) ON CONFLICT \(.?user_id.?\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &entities.UserSchedule{
		UserID:               42,
		Username:             "anna",
		CheckIntervalMinutes: 1,
		FilterPeriodDays:     90,
		IsActive:             true,
	}

	require.NoError(t, adapter.Upsert(context.Background(), user))
	assert.Equal(t, entities.MinCheckIntervalMinutes, user.CheckIntervalMinutes)
	assert.Equal(t, entities.MaxFilterPeriodDays, user.FilterPeriodDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapterTouchLastCheck(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	mock.ExpectExec(`UPDATE "user_schedules" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.TouchLastCheck(context.Background(), 42, time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapterUpdateMissingUser(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	mock.ExpectExec(`UPDATE "user_schedules" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.SetActive(context.Background(), 99, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestUserAdapterSetCheckIntervalClamps(t *testing.T) {
	adapter, mock := setupUserAdapter(t)

	// The built SQL carries the clamped literal, not the raw input.
	mock.ExpectExec(`UPDATE "user_schedules" SET (.*)"check_interval_minutes"=1440`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.SetCheckInterval(context.Background(), 42, 10000))
	require.NoError(t, mock.ExpectationsWereMet())
}
