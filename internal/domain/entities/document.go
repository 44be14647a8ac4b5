package entities

// ScheduleDocument is the parsed upstream response for one department: a list
// of facilities, each with its doctors and their day-by-day schedules.
type ScheduleDocument struct {
	Items []FacilityItem `json:"items"`
}

// FacilityItem groups the doctors of a single facility
type FacilityItem struct {
	LPU     FacilityInfo `json:"lpu"`
	Doctors []DoctorItem `json:"doctors"`
}

// FacilityInfo describes a facility
type FacilityInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// DoctorItem is one doctor or cabinet as reported by the upstream API
type DoctorItem struct {
	ID           string         `json:"id"`
	DisplayName  string         `json:"displayName"`
	PersonID     string         `json:"person_id"`
	Position     string         `json:"position"`
	PositionCode string         `json:"positionCode"`
	Room         string         `json:"room"`
	Separation   string         `json:"separation"`
	Type         int            `json:"type"`
	TypeName     string         `json:"type_name"`
	Schedule     []ScheduleItem `json:"schedule"`
	ClosestEntry *ClosestEntry  `json:"closestEntry"`
}

// ScheduleItem is one day of a doctor's schedule
type ScheduleItem struct {
	Date         string   `json:"date"`
	TimeFrom     string   `json:"time_from"`
	TimeTo       string   `json:"time_to"`
	CountTickets int      `json:"count_tickets"`
	DocBusyType  BusyType `json:"docBusyType"`
}

// BusyType labels why a schedule day is open or blocked
type BusyType struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ClosestEntry is the upstream "earliest available slot" marker, reported
// independently of the day-by-day schedule.
type ClosestEntry struct {
	BeginTime string `json:"beginTime"`
}
