package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

var trackerNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func trackerUser() *entities.UserSchedule {
	return &entities.UserSchedule{
		UserID:               42,
		PatientNumber:        "123456",
		PatientBirthday:      "1980-04-02",
		CheckIntervalMinutes: 60,
		FilterPeriodDays:     14,
		IsActive:             true,
		NotificationsEnabled: true,
	}
}

func docWithDay(doctorID string, daysFromNow, tickets int) *entities.ScheduleDocument {
	date := trackerNow.AddDate(0, 0, daysFromNow).Format(entities.DateLayout)
	return &entities.ScheduleDocument{
		Items: []entities.FacilityItem{
			{
				LPU: entities.FacilityInfo{Name: "Polyclinic 1"},
				Doctors: []entities.DoctorItem{
					{
						ID:          doctorID,
						DisplayName: "Ivanova A.B.",
						Schedule: []entities.ScheduleItem{
							{Date: date + "T00:00:00", TimeFrom: "09:00", CountTickets: tickets},
						},
					},
				},
			},
		},
	}
}

func newTestTracker(provider *fakeProvider, states *fakeStateRepo, departments ...int) *AppointmentTracker {
	if len(departments) == 0 {
		departments = []int{52}
	}
	tracker := NewAppointmentTracker(provider, NewAppointmentExtractor(nil, nil), states, departments)
	tracker.now = func() time.Time { return trackerNow }
	return tracker
}

func TestCheckUserSurfacesImmediateOpportunity(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 0, 2)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states)

	found, err := tracker.CheckUser(context.Background(), trackerUser())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "doc-1", found[0].ID)

	// Doctor and state written through regardless of verdict.
	assert.Len(t, states.doctors, 1)
	assert.Len(t, states.states, 1)
}

func TestCheckUserHorizonRevealNotSurfacedButPersisted(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 3, 2)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states)

	found, err := tracker.CheckUser(context.Background(), trackerUser())
	require.NoError(t, err)
	assert.Empty(t, found)

	// The observation is still recorded so a later increase is detectable.
	assert.Len(t, states.states, 1)
}

func TestCheckUserFilterPeriodBoundary(t *testing.T) {
	states := newFakeStateRepo()
	user := trackerUser()
	user.FilterPeriodDays = 7

	// Exactly at the boundary: evaluated (and persisted).
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 7, 2)
	tracker := newTestTracker(provider, states)

	_, err := tracker.CheckUser(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, states.states, 1)

	// One past the boundary: dropped before evaluation, nothing recorded.
	states = newFakeStateRepo()
	provider = newFakeProvider()
	provider.docs[52] = docWithDay("doc-2", 8, 2)
	tracker = newTestTracker(provider, states)

	_, err = tracker.CheckUser(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, states.states)
}

func TestCheckUserIdempotentOnUnchangedDocument(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 0, 2)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states)
	user := trackerUser()

	first, err := tracker.CheckUser(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := tracker.CheckUser(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestCheckUserSlotFreedUp(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 1, 1)
	states := newFakeStateRepo()
	states.seed("doc-1", trackerNow.AddDate(0, 0, 1), 0, "")

	tracker := newTestTracker(provider, states)

	found, err := tracker.CheckUser(context.Background(), trackerUser())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].TicketCount)
}

func TestCheckUserDegradedDepartmentSkipped(t *testing.T) {
	provider := newFakeProvider()
	provider.errs[52] = apperrors.NewUpstreamUnavailableError("timeout", nil)
	provider.docs[53] = docWithDay("doc-9", 0, 1)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states, 52, 53)

	found, err := tracker.CheckUser(context.Background(), trackerUser())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "doc-9", found[0].ID)
}

func TestCheckUserReportsUpstreamFailures(t *testing.T) {
	provider := newFakeProvider()
	provider.errs[52] = apperrors.NewUpstreamUnavailableError("timeout", nil)
	provider.docs[53] = docWithDay("doc-9", 0, 1)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states, 52, 53)

	var failed []int
	tracker.SetUpstreamFailureHook(func(ctx context.Context, departmentID int) {
		failed = append(failed, departmentID)
	})

	_, err := tracker.CheckUser(context.Background(), trackerUser())
	require.NoError(t, err)
	// Only the degraded department is reported.
	assert.Equal(t, []int{52}, failed)
}

func TestCheckUserPersistenceErrorAborts(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 0, 2)
	states := newFakeStateRepo()
	states.failSave = apperrors.NewPersistenceError("db down", nil)

	tracker := newTestTracker(provider, states)

	_, err := tracker.CheckUser(context.Background(), trackerUser())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistence))
}

func TestCheckAllUsesGlobalPolicy(t *testing.T) {
	// A far-future first sighting is new under the global policy even though
	// the per-user policy would call it a horizon reveal.
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 10, 2)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states)

	found, err := tracker.CheckAll(context.Background(), entities.PatientCredentials{Number: "1", Birthday: "2"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestLiveSnapshot(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 0, 2)
	provider.errs[53] = apperrors.NewUpstreamUnavailableError("down", nil)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states, 52, 53)

	snapshot := tracker.LiveSnapshot(context.Background(), entities.PatientCredentials{Number: "1", Birthday: "2"})
	require.Len(t, snapshot.Departments, 2)
	assert.Equal(t, 1, snapshot.Total)
	assert.True(t, snapshot.Departments[0].OK)
	assert.False(t, snapshot.Departments[1].OK)

	// Snapshots never touch history.
	assert.Empty(t, states.states)
}

func TestTrackerStats(t *testing.T) {
	provider := newFakeProvider()
	provider.docs[52] = docWithDay("doc-1", 0, 2)
	states := newFakeStateRepo()

	tracker := newTestTracker(provider, states)

	_, err := tracker.CheckUser(context.Background(), trackerUser())
	require.NoError(t, err)

	stats := tracker.Stats()
	assert.Equal(t, int64(1), stats.ChecksRun)
	assert.Equal(t, int64(1), stats.CandidatesSeen)
	assert.Equal(t, int64(1), stats.NewFound)
	require.NotNil(t, stats.LastCheckAt)
}
