package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/postgres"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// ScheduleAdapter implements the ScheduleStateRepository interface
type ScheduleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewScheduleAdapter creates a new schedule state adapter
func NewScheduleAdapter(client *postgres.Client) repositories.ScheduleStateRepository {
	return &ScheduleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetLastState retrieves the most recent observation for a doctor and day
func (a *ScheduleAdapter) GetLastState(ctx context.Context, doctorID string, date time.Time) (*entities.ScheduleState, error) {
	query, args, err := a.db.Select(
		"id", "doctor_id", "date", "ticket_count", "time_from", "time_to",
		"busy_type", "closest_entry_time", "observed_at",
	).From("schedule_state").
		Where(goqu.Ex{
			"doctor_id": doctorID,
			"date":      date.Format(entities.DateLayout),
		}).
		Order(goqu.I("observed_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to build state query", err)
	}

	state := &entities.ScheduleState{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&state.ID,
		&state.DoctorID,
		&state.Date,
		&state.TicketCount,
		&state.TimeFrom,
		&state.TimeTo,
		&state.BusyType,
		&state.ClosestEntryTime,
		&state.ObservedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no observation for doctor %s on %s", doctorID, date.Format(entities.DateLayout)))
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get last state", err)
	}

	return state, nil
}

// SaveState appends one observation row
func (a *ScheduleAdapter) SaveState(ctx context.Context, state *entities.ScheduleState) error {
	record := goqu.Record{
		"doctor_id":          state.DoctorID,
		"date":               state.Date.Format(entities.DateLayout),
		"ticket_count":       state.TicketCount,
		"time_from":          state.TimeFrom,
		"time_to":            state.TimeTo,
		"busy_type":          state.BusyType,
		"closest_entry_time": state.ClosestEntryTime,
		"observed_at":        state.ObservedAt,
	}

	query, args, err := a.db.Insert("schedule_state").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build state insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to save state", err)
	}

	return nil
}

// SaveDoctor creates or refreshes the doctor record
func (a *ScheduleAdapter) SaveDoctor(ctx context.Context, doctor *entities.Doctor) error {
	record := goqu.Record{
		"id":               doctor.ID,
		"department_id":    doctor.DepartmentID,
		"display_name":     doctor.DisplayName,
		"person_id":        doctor.PersonID,
		"position":         doctor.Position,
		"position_code":    doctor.PositionCode,
		"room":             doctor.Room,
		"facility_name":    doctor.FacilityName,
		"facility_address": doctor.FacilityAddress,
		"facility_phone":   doctor.FacilityPhone,
		"separation":       doctor.Separation,
		"type":             doctor.Type,
		"type_name":        doctor.TypeName,
		"updated_at":       time.Now(),
	}

	query, args, err := a.db.Insert("doctors").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build doctor upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to save doctor", err)
	}

	return nil
}
