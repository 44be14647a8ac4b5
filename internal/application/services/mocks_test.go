package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

func stateKey(doctorID string, date time.Time) string {
	return doctorID + "|" + date.Format(entities.DateLayout)
}

// fakeStateRepo is an in-memory ScheduleStateRepository
type fakeStateRepo struct {
	mu      sync.Mutex
	states  map[string]*entities.ScheduleState
	doctors map[string]*entities.Doctor

	failGet  error
	failSave error
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{
		states:  make(map[string]*entities.ScheduleState),
		doctors: make(map[string]*entities.Doctor),
	}
}

func (r *fakeStateRepo) GetLastState(ctx context.Context, doctorID string, date time.Time) (*entities.ScheduleState, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[stateKey(doctorID, date)]
	if !ok {
		return nil, apperrors.NewNotFoundError("never observed")
	}
	return state, nil
}

func (r *fakeStateRepo) SaveState(ctx context.Context, state *entities.ScheduleState) error {
	if r.failSave != nil {
		return r.failSave
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[stateKey(state.DoctorID, state.Date)] = state
	return nil
}

func (r *fakeStateRepo) SaveDoctor(ctx context.Context, doctor *entities.Doctor) error {
	if r.failSave != nil {
		return r.failSave
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeStateRepo) seed(doctorID string, date time.Time, tickets int, closest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[stateKey(doctorID, date)] = &entities.ScheduleState{
		DoctorID:         doctorID,
		Date:             date,
		TicketCount:      tickets,
		ClosestEntryTime: closest,
		ObservedAt:       time.Now().Add(-time.Hour),
	}
}

// fakeProvider serves canned documents per department
type fakeProvider struct {
	mu    sync.Mutex
	docs  map[int]*entities.ScheduleDocument
	errs  map[int]error
	calls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		docs: make(map[int]*entities.ScheduleDocument),
		errs: make(map[int]error),
	}
}

func (p *fakeProvider) FetchDoctors(ctx context.Context, creds entities.PatientCredentials, departmentID int) (*entities.ScheduleDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if err := p.errs[departmentID]; err != nil {
		return nil, err
	}
	if doc, ok := p.docs[departmentID]; ok {
		return doc, nil
	}
	return &entities.ScheduleDocument{}, nil
}

// fakeUserRepo is an in-memory UserScheduleRepository
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[int64]*entities.UserSchedule
	touched  []int64
	listErr  error
	touchErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*entities.UserSchedule)}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *entities.UserSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID int64) (*entities.UserSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %d not found", userID))
	}
	return user, nil
}

func (r *fakeUserRepo) ListCheckable(ctx context.Context) ([]*entities.UserSchedule, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*entities.UserSchedule, 0, len(r.users))
	for _, user := range r.users {
		if user.IsActive && user.NotificationsEnabled && user.Credentials().Complete() {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) TouchLastCheck(ctx context.Context, userID int64, checkedAt time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, userID)
	if user, ok := r.users[userID]; ok {
		t := checkedAt
		user.LastCheckTime = &t
	}
	return nil
}

func (r *fakeUserRepo) SetCredentials(ctx context.Context, userID int64, creds entities.PatientCredentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.PatientNumber = creds.Number
		user.PatientBirthday = creds.Birthday
	}
	return nil
}

func (r *fakeUserRepo) SetCheckInterval(ctx context.Context, userID int64, minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.CheckIntervalMinutes = entities.ClampCheckInterval(minutes)
	}
	return nil
}

func (r *fakeUserRepo) SetFilterPeriod(ctx context.Context, userID int64, days int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.FilterPeriodDays = entities.ClampFilterPeriod(days)
	}
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.IsActive = active
	}
	return nil
}

func (r *fakeUserRepo) SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.NotificationsEnabled = enabled
	}
	return nil
}

func (r *fakeUserRepo) touchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.touched)
}

// fakeLedger is an in-memory NotificationRepository
type fakeLedger struct {
	mu      sync.Mutex
	records []*entities.NotificationRecord
	wasErr  error
	recErr  error
}

func (l *fakeLedger) WasNotified(ctx context.Context, userID int64, doctorID string, date time.Time, kind entities.NotificationKind, window time.Duration) (bool, error) {
	if l.wasErr != nil {
		return false, l.wasErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-window)
	for _, record := range l.records {
		if record.UserID == userID && record.DoctorID == doctorID &&
			record.Date.Format(entities.DateLayout) == date.Format(entities.DateLayout) &&
			record.Kind == kind && record.SentAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) Record(ctx context.Context, record *entities.NotificationRecord) error {
	if l.recErr != nil {
		return l.recErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// fakeDispatcher records sent messages and can fail on demand
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (d *fakeDispatcher) Send(ctx context.Context, userID int64, text string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, text)
	return fmt.Sprintf("msg-%d", len(d.sent)), nil
}

// fakeBus records published events
type fakeBus struct {
	mu        sync.Mutex
	published map[string][]*entities.SlotEvent
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][]*entities.SlotEvent)}
}

func (b *fakeBus) Publish(ctx context.Context, channel string, event *entities.SlotEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], event)
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SlotEvent, error) {
	ch := make(chan *entities.SlotEvent)
	close(ch)
	return ch, nil
}

func (b *fakeBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *fakeBus) Close() error { return nil }
