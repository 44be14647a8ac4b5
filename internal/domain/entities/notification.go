package entities

import "time"

// NotificationKind represents the notification purpose
type NotificationKind string

const (
	// KindNewAppointment announces a newly opened appointment opportunity
	KindNewAppointment NotificationKind = "new_appointment"
)

// NotificationRecord tracks a successfully dispatched notification. Records
// form a sliding suppression window, not a permanent dedup: the same
// opportunity may be re-announced once the window has elapsed.
type NotificationRecord struct {
	ID       string           `json:"id" db:"id"`
	UserID   int64            `json:"user_id" db:"user_id"`
	DoctorID string           `json:"doctor_id" db:"doctor_id"`
	Date     time.Time        `json:"date" db:"date"`
	Kind     NotificationKind `json:"kind" db:"kind"`
	Message  string           `json:"message" db:"message"`
	SentAt   time.Time        `json:"sent_at" db:"sent_at"`
}
