package entities

import "time"

// Bounds for per-user scheduling settings.
const (
	MinCheckIntervalMinutes = 5
	MaxCheckIntervalMinutes = 1440
	MinFilterPeriodDays     = 1
	MaxFilterPeriodDays     = 30
)

// UserSchedule is one subscriber's scheduling row: credentials, cadence and
// filter settings, and the last completed check. Users are deactivated on
// opt-out, never deleted.
type UserSchedule struct {
	UserID               int64      `json:"user_id" db:"user_id"`
	Username             string     `json:"username" db:"username"`
	FirstName            string     `json:"first_name" db:"first_name"`
	LastName             string     `json:"last_name" db:"last_name"`
	PatientNumber        string     `json:"patient_number" db:"patient_number"`
	PatientBirthday      string     `json:"patient_birthday" db:"patient_birthday"`
	CheckIntervalMinutes int        `json:"check_interval_minutes" db:"check_interval_minutes"`
	FilterPeriodDays     int        `json:"filter_period_days" db:"filter_period_days"`
	LastCheckTime        *time.Time `json:"last_check_time" db:"last_check_time"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	NotificationsEnabled bool       `json:"notifications_enabled" db:"notifications_enabled"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// Credentials returns the user's patient credentials
func (u *UserSchedule) Credentials() PatientCredentials {
	return PatientCredentials{Number: u.PatientNumber, Birthday: u.PatientBirthday}
}

// IsDue reports whether the user's next check is due at the given instant.
// A user that has never been checked is always due.
func (u *UserSchedule) IsDue(now time.Time) bool {
	if u.LastCheckTime == nil {
		return true
	}
	return !now.Before(u.NextDue())
}

// NextDue returns the instant the user's next check becomes due. Users never
// checked before report the zero time so they sort first.
func (u *UserSchedule) NextDue() time.Time {
	if u.LastCheckTime == nil {
		return time.Time{}
	}
	return u.LastCheckTime.Add(time.Duration(u.CheckIntervalMinutes) * time.Minute)
}

// ClampCheckInterval bounds an interval to the allowed range
func ClampCheckInterval(minutes int) int {
	if minutes < MinCheckIntervalMinutes {
		return MinCheckIntervalMinutes
	}
	if minutes > MaxCheckIntervalMinutes {
		return MaxCheckIntervalMinutes
	}
	return minutes
}

// ClampFilterPeriod bounds a filter period to the allowed range
func ClampFilterPeriod(days int) int {
	if days < MinFilterPeriodDays {
		return MinFilterPeriodDays
	}
	if days > MaxFilterPeriodDays {
		return MaxFilterPeriodDays
	}
	return days
}
