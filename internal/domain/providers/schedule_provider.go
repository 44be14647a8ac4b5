package providers

import (
	"context"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// ScheduleProvider defines the interface for fetching doctor schedules from
// the upstream scheduling system. A fetch either succeeds with a parsed
// document or fails; it never blocks indefinitely.
type ScheduleProvider interface {
	// FetchDoctors retrieves the schedule document for one department using
	// the given patient credentials
	FetchDoctors(ctx context.Context, creds entities.PatientCredentials, departmentID int) (*entities.ScheduleDocument, error)
}
