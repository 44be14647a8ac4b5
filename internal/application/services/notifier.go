package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
)

// NotifierService gates and dispatches appointment notifications. Each
// (user, doctor, date, kind) combination is announced at most once per
// suppression window; a failed dispatch leaves no ledger record, so the
// opportunity is naturally retried on the next check.
type NotifierService struct {
	ledger     repositories.NotificationRepository
	dispatcher providers.MessageDispatcher
	events     providers.EventBus
	window     time.Duration
}

// NewNotifierService creates a new notifier. events may be nil when no bus
// is configured.
func NewNotifierService(
	ledger repositories.NotificationRepository,
	dispatcher providers.MessageDispatcher,
	events providers.EventBus,
	window time.Duration,
) *NotifierService {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &NotifierService{
		ledger:     ledger,
		dispatcher: dispatcher,
		events:     events,
		window:     window,
	}
}

// NotifyUser announces the given candidates to one user, suppressing repeats
// within the window. Returns the number of messages actually sent. Dispatch
// failures are logged and skipped, never propagated: the next scheduled check
// is the retry.
func (s *NotifierService) NotifyUser(ctx context.Context, userID int64, candidates []*entities.AppointmentCandidate) (int, error) {
	sent := 0

	for _, candidate := range candidates {
		notified, err := s.ledger.WasNotified(ctx, userID, candidate.ID, candidate.Date, entities.KindNewAppointment, s.window)
		if err != nil {
			return sent, err
		}
		if notified {
			log.Debug().
				Int64("user_id", userID).
				Str("doctor_id", candidate.ID).
				Str("date", candidate.DateString()).
				Msg("Notification suppressed, already sent within window")
			continue
		}

		message := FormatAppointment(candidate)

		if _, err := s.dispatcher.Send(ctx, userID, message); err != nil {
			// No ledger record on failure so the opportunity can be
			// re-announced next cycle.
			log.Error().Err(err).Int64("user_id", userID).Str("doctor_id", candidate.ID).Msg("Failed to dispatch notification")
			continue
		}

		record := &entities.NotificationRecord{
			ID:       uuid.New().String(),
			UserID:   userID,
			DoctorID: candidate.ID,
			Date:     candidate.Date,
			Kind:     entities.KindNewAppointment,
			Message:  message,
			SentAt:   time.Now(),
		}
		if err := s.ledger.Record(ctx, record); err != nil {
			return sent, err
		}
		sent++

		s.publish(ctx, userID, candidate)

		log.Info().
			Int64("user_id", userID).
			Str("doctor", candidate.DisplayName).
			Str("date", candidate.DateString()).
			Msg("Notification sent")
	}

	return sent, nil
}

func (s *NotifierService) publish(ctx context.Context, userID int64, candidate *entities.AppointmentCandidate) {
	if s.events == nil {
		return
	}

	event := &entities.SlotEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		DoctorID:    candidate.ID,
		DoctorName:  candidate.DisplayName,
		Date:        candidate.DateString(),
		TicketCount: candidate.TicketCount,
		Kind:        entities.KindNewAppointment,
		OccurredAt:  time.Now(),
	}

	for _, channel := range []string{providers.EventChannelSlotUpdates, providers.GetUserChannel(userID)} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish slot event")
		}
	}
}
