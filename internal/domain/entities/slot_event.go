package entities

import "time"

// SlotEvent is published on the event bus whenever a notification-worthy slot
// is surfaced for a user.
type SlotEvent struct {
	ID          string           `json:"id"`
	UserID      int64            `json:"user_id"`
	DoctorID    string           `json:"doctor_id"`
	DoctorName  string           `json:"doctor_name"`
	Date        string           `json:"date"`
	TicketCount int              `json:"ticket_count"`
	Kind        NotificationKind `json:"kind"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
