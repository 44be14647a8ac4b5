package entities

import (
	"time"
)

// DateLayout is the calendar-day format used for state keys and upstream dates.
const DateLayout = "2006-01-02"

// Doctor is the normalized doctor/cabinet record tracked by the monitor
type Doctor struct {
	ID              string  `json:"id" db:"id"`
	DepartmentID    int     `json:"department_id" db:"department_id"`
	DisplayName     string  `json:"display_name" db:"display_name"`
	PersonID        string  `json:"person_id" db:"person_id"`
	Position        string  `json:"position" db:"position"`
	PositionCode    string  `json:"position_code" db:"position_code"`
	Room            string  `json:"room" db:"room"`
	FacilityName    string  `json:"facility_name" db:"facility_name"`
	FacilityAddress string  `json:"facility_address" db:"facility_address"`
	FacilityPhone   string  `json:"facility_phone" db:"facility_phone"`
	Separation      string  `json:"separation" db:"separation"`
	Type            int     `json:"type" db:"type"`
	TypeName        string  `json:"type_name" db:"type_name"`
}

// AppointmentCandidate is one appointment opportunity for a single doctor/day
// pairing, produced fresh from each upstream poll. Candidates are identified
// for state-tracking purposes by (doctor id, date).
type AppointmentCandidate struct {
	Doctor

	Date             time.Time `json:"date"`
	TimeFrom         string    `json:"time_from"`
	TimeTo           string    `json:"time_to"`
	TicketCount      int       `json:"ticket_count"`
	BusyType         string    `json:"busy_type"`
	BusyTypeCode     string    `json:"busy_type_code"`
	ClosestEntryTime string    `json:"closest_entry_time"`
}

// DateString returns the candidate's calendar day in the state-key format
func (c *AppointmentCandidate) DateString() string {
	return c.Date.Format(DateLayout)
}

// PatientCredentials identify a patient against the upstream scheduling API
type PatientCredentials struct {
	Number   string
	Birthday string
}

// Complete reports whether both credential fields are populated
func (p PatientCredentials) Complete() bool {
	return p.Number != "" && p.Birthday != ""
}
