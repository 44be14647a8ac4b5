package repositories

import (
	"context"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// ScheduleStateRepository defines the interface for schedule observation history
type ScheduleStateRepository interface {
	// GetLastState retrieves the most recent observation for a doctor and day.
	// A NOT_FOUND error means the pair has never been observed.
	GetLastState(ctx context.Context, doctorID string, date time.Time) (*entities.ScheduleState, error)

	// SaveState appends one observation row. Called once per candidate per
	// poll cycle regardless of the change verdict.
	SaveState(ctx context.Context, state *entities.ScheduleState) error

	// SaveDoctor creates or refreshes the doctor record
	SaveDoctor(ctx context.Context, doctor *entities.Doctor) error
}
