package services

import (
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// ChangePolicy decides whether a candidate, compared against the previous
// observation for its (doctor, date) pair, represents a genuine
// notification-worthy change. prior is nil when the pair has never been
// observed.
//
// Two policies exist on purpose. The global policy treats a changed
// closest-slot timestamp as new; the per-user policy ignores closest-slot
// changes and instead guards against horizon reveals. They are kept as
// separate named strategies rather than unified.
type ChangePolicy interface {
	IsNew(candidate *entities.AppointmentCandidate, prior *entities.ScheduleState, now time.Time) bool
}

// GlobalChangePolicy is the context-free policy used for fleet-wide sweeps
// where no per-user horizon is available.
type GlobalChangePolicy struct{}

// NewGlobalChangePolicy creates the global change policy
func NewGlobalChangePolicy() ChangePolicy {
	return &GlobalChangePolicy{}
}

func (p *GlobalChangePolicy) IsNew(candidate *entities.AppointmentCandidate, prior *entities.ScheduleState, now time.Time) bool {
	if prior == nil {
		return true
	}
	if candidate.TicketCount > prior.TicketCount {
		return true
	}
	if candidate.ClosestEntryTime != "" && candidate.ClosestEntryTime != prior.ClosestEntryTime {
		return true
	}
	return false
}

// PerUserChangePolicy is the policy used for individual subscriber checks.
// First sightings of days beyond tomorrow are treated as the provider
// extending its visible window, not as real availability.
type PerUserChangePolicy struct{}

// NewPerUserChangePolicy creates the per-user change policy
func NewPerUserChangePolicy() ChangePolicy {
	return &PerUserChangePolicy{}
}

func (p *PerUserChangePolicy) IsNew(candidate *entities.AppointmentCandidate, prior *entities.ScheduleState, now time.Time) bool {
	if prior == nil {
		if candidate.TicketCount <= 0 {
			return false
		}
		// Horizon reveal: a first sighting further out than tomorrow.
		// Calendar days compare lexically in the ISO layout.
		tomorrow := now.AddDate(0, 0, 1).Format(entities.DateLayout)
		return candidate.DateString() <= tomorrow
	}

	return candidate.TicketCount > prior.TicketCount
}
