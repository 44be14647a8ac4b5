package entities

import "time"

// ScheduleState is one observation of a doctor's schedule for a calendar day.
// Rows are append-only; only the most recent row per (doctor id, date) is
// semantically current, older rows are retained for auditability.
type ScheduleState struct {
	ID               int64     `json:"id" db:"id"`
	DoctorID         string    `json:"doctor_id" db:"doctor_id"`
	Date             time.Time `json:"date" db:"date"`
	TicketCount      int       `json:"ticket_count" db:"ticket_count"`
	TimeFrom         string    `json:"time_from" db:"time_from"`
	TimeTo           string    `json:"time_to" db:"time_to"`
	BusyType         string    `json:"busy_type" db:"busy_type"`
	ClosestEntryTime string    `json:"closest_entry_time" db:"closest_entry_time"`
	ObservedAt       time.Time `json:"observed_at" db:"observed_at"`
}

// StateFromCandidate builds the observation row for a candidate
func StateFromCandidate(c *AppointmentCandidate, observedAt time.Time) *ScheduleState {
	return &ScheduleState{
		DoctorID:         c.ID,
		Date:             c.Date,
		TicketCount:      c.TicketCount,
		TimeFrom:         c.TimeFrom,
		TimeTo:           c.TimeTo,
		BusyType:         c.BusyType,
		ClosestEntryTime: c.ClosestEntryTime,
		ObservedAt:       observedAt,
	}
}
