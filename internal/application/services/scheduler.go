package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// CheckFunc runs one full check-and-notify cycle for a user
type CheckFunc func(ctx context.Context, user *entities.UserSchedule) error

// UserScheduler drives per-user checks. A cron ticker fires once a minute;
// each tick reads the checkable users from the store, filters to the due
// ones, and runs them through a bounded worker pool. Dueness is always
// derived from the durable last_check_time, never from memory, so a restart
// loses nothing.
type UserScheduler struct {
	users         repositories.UserScheduleRepository
	checkFn       CheckFunc
	maxConcurrent int

	cron *cron.Cron
	now  func() time.Time

	mu      sync.Mutex
	running bool
	inTick  sync.WaitGroup
}

// NewUserScheduler creates a stopped scheduler
func NewUserScheduler(users repositories.UserScheduleRepository, checkFn CheckFunc, maxConcurrent int) *UserScheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &UserScheduler{
		users:         users,
		checkFn:       checkFn,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// Start begins the driver loop. Starting a running scheduler is an error.
func (s *UserScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkFn == nil {
		return fmt.Errorf("check function is not configured")
	}
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@every 1m", s.tick); err != nil {
		return fmt.Errorf("failed to schedule driver tick: %w", err)
	}
	s.cron.Start()
	s.running = true

	log.Info().Msg("User scheduler started")
	return nil
}

// Stop halts the driver loop and waits for the in-flight tick to finish.
// Stopping a stopped scheduler is a no-op.
func (s *UserScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	// cron.Stop returns a context that is done once running jobs complete.
	<-c.Stop().Done()
	s.inTick.Wait()

	log.Info().Msg("User scheduler stopped")
}

// IsRunning reports whether the driver loop is active
func (s *UserScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerUser runs an immediate check for one user, bypassing the due-time
// gate. The last check time still advances afterward.
func (s *UserScheduler) TriggerUser(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Credentials().Complete() {
		return apperrors.NewValidationError(fmt.Sprintf("user %d has no patient credentials configured", userID))
	}

	log.Info().Int64("user_id", userID).Msg("Manual check triggered")
	s.checkOne(ctx, user)
	return nil
}

// tick runs one scheduling pass
func (s *UserScheduler) tick() {
	s.inTick.Add(1)
	defer s.inTick.Done()

	ctx := context.Background()
	now := s.now()

	users, err := s.users.ListCheckable(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list checkable users")
		return
	}

	due := make([]*entities.UserSchedule, 0, len(users))
	for _, user := range users {
		if user.IsDue(now) {
			due = append(due, user)
		}
	}
	if len(due) == 0 {
		return
	}

	// Longest-waiting first.
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextDue().Before(due[j].NextDue())
	})

	log.Info().Int("due", len(due)).Int("checkable", len(users)).Msg("Running due user checks")

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for _, user := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(u *entities.UserSchedule) {
			defer wg.Done()
			defer func() { <-sem }()
			s.checkOne(ctx, u)
		}(user)
	}
	wg.Wait()
}

// checkOne runs the callback for one user and always advances the last check
// time, so a failed check waits for the next interval instead of retrying in
// a tight loop.
func (s *UserScheduler) checkOne(ctx context.Context, user *entities.UserSchedule) {
	if err := s.checkFn(ctx, user); err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("User check failed")
	}

	if err := s.users.TouchLastCheck(ctx, user.UserID, s.now()); err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("Failed to advance last check time")
	}
}
