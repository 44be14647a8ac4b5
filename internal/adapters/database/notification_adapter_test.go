package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

func setupNotificationAdapter(t *testing.T) (*NotificationAdapter, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	adapter := NewNotificationAdapter(db).(*NotificationAdapter)
	return adapter, mock
}

func TestNotificationAdapterWasNotified(t *testing.T) {
	adapter, mock := setupNotificationAdapter(t)

	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs(int64(42), "doc-1", "2026-08-26", "new_appointment", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notified, err := adapter.WasNotified(context.Background(), 42, "doc-1", date, entities.KindNewAppointment, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, notified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationAdapterWasNotifiedOutsideWindow(t *testing.T) {
	adapter, mock := setupNotificationAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	notified, err := adapter.WasNotified(context.Background(), 42, "doc-1", time.Now(), entities.KindNewAppointment, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestNotificationAdapterRecord(t *testing.T) {
	adapter, mock := setupNotificationAdapter(t)

	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &entities.NotificationRecord{
		UserID:   42,
		DoctorID: "doc-1",
		Date:     time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		Kind:     entities.KindNewAppointment,
		Message:  "New appointment available",
	}

	require.NoError(t, adapter.Record(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.SentAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
