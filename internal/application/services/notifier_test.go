package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
)

func notifierCandidate() *entities.AppointmentCandidate {
	return &entities.AppointmentCandidate{
		Doctor: entities.Doctor{
			ID:           "doc-1",
			DisplayName:  "Ivanova A.B.",
			Position:     "Therapist",
			FacilityName: "Polyclinic 1",
			Type:         1,
		},
		Date:        time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		TimeFrom:    "09:00",
		TimeTo:      "14:00",
		TicketCount: 2,
	}
}

func TestNotifyUserSendsAndRecords(t *testing.T) {
	ledger := &fakeLedger{}
	dispatcher := &fakeDispatcher{}
	bus := newFakeBus()
	notifier := NewNotifierService(ledger, dispatcher, bus, 24*time.Hour)

	sent, err := notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{notifierCandidate()})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, ledger.records, 1)
	assert.Equal(t, int64(42), ledger.records[0].UserID)
	assert.Equal(t, entities.KindNewAppointment, ledger.records[0].Kind)

	// Published to both the firehose and the user's own channel.
	require.Len(t, bus.published[providers.EventChannelSlotUpdates], 1)
	require.Len(t, bus.published[providers.GetUserChannel(42)], 1)
	event := bus.published[providers.EventChannelSlotUpdates][0]
	assert.Equal(t, entities.KindNewAppointment, event.Kind)
	assert.Equal(t, "doc-1", event.DoctorID)
}

func TestNotifyUserSuppressesWithinWindow(t *testing.T) {
	ledger := &fakeLedger{}
	dispatcher := &fakeDispatcher{}
	notifier := NewNotifierService(ledger, dispatcher, nil, 24*time.Hour)

	candidate := notifierCandidate()

	sent, err := notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{candidate})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// Repeat detection within the window stays silent.
	sent, err = notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{candidate})
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, dispatcher.sent, 1)
}

func TestNotifyUserReAnnouncesAfterWindow(t *testing.T) {
	ledger := &fakeLedger{}
	dispatcher := &fakeDispatcher{}
	notifier := NewNotifierService(ledger, dispatcher, nil, 24*time.Hour)

	candidate := notifierCandidate()

	_, err := notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{candidate})
	require.NoError(t, err)

	// Age the ledger entry past the window.
	ledger.records[0].SentAt = time.Now().Add(-25 * time.Hour)

	sent, err := notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{candidate})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestNotifyUserDispatchFailureLeavesNoRecord(t *testing.T) {
	ledger := &fakeLedger{}
	dispatcher := &fakeDispatcher{err: fmt.Errorf("chat unreachable")}
	notifier := NewNotifierService(ledger, dispatcher, nil, 24*time.Hour)

	sent, err := notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{notifierCandidate()})
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, ledger.records)

	// Once delivery recovers the same opportunity goes out.
	dispatcher.err = nil
	sent, err = notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{notifierCandidate()})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestNotifyUserLedgerErrorPropagates(t *testing.T) {
	ledger := &fakeLedger{wasErr: fmt.Errorf("db down")}
	notifier := NewNotifierService(ledger, &fakeDispatcher{}, nil, 24*time.Hour)

	_, err := notifier.NotifyUser(context.Background(), 42, []*entities.AppointmentCandidate{notifierCandidate()})
	require.Error(t, err)
}

func TestFormatAppointment(t *testing.T) {
	message := FormatAppointment(notifierCandidate())

	assert.Contains(t, message, "Appointment available!")
	assert.Contains(t, message, "<b>Ivanova A.B.</b>")
	assert.Contains(t, message, "Therapist")
	assert.Contains(t, message, "26.08.2026")
	assert.Contains(t, message, "09:00 - 14:00")
	assert.Contains(t, message, "<b>Tickets:</b> 2")
	assert.Contains(t, message, "Polyclinic 1")
}

func TestFormatAppointmentOmitsEmptyFields(t *testing.T) {
	candidate := &entities.AppointmentCandidate{
		Doctor: entities.Doctor{ID: "doc-1", DisplayName: "Room 5"},
		Date:   time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
	}

	message := FormatAppointment(candidate)
	assert.NotContains(t, message, "Tickets")
	assert.NotContains(t, message, "Time")
	assert.Contains(t, message, "🚪")
}
