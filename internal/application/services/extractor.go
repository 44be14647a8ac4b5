package services

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// ClosestSlotBusyType labels synthetic candidates derived from the upstream
// "earliest available slot" marker rather than the day-by-day schedule.
const (
	ClosestSlotBusyType     = "closest available"
	ClosestSlotBusyTypeCode = "closest"
)

// AppointmentExtractor normalizes raw upstream documents into flat candidate
// lists, applying the configured doctor filters.
type AppointmentExtractor struct {
	allowedDoctors    map[string]struct{}
	excludedPositions map[string]struct{}
}

// NewAppointmentExtractor creates an extractor. A non-empty allow-list of
// doctor display names takes precedence over the position deny-list.
func NewAppointmentExtractor(allowedDoctors, excludedPositions []string) *AppointmentExtractor {
	e := &AppointmentExtractor{
		allowedDoctors:    make(map[string]struct{}, len(allowedDoctors)),
		excludedPositions: make(map[string]struct{}, len(excludedPositions)),
	}
	for _, name := range allowedDoctors {
		if name = strings.TrimSpace(name); name != "" {
			e.allowedDoctors[name] = struct{}{}
		}
	}
	for _, position := range excludedPositions {
		if position = strings.TrimSpace(position); position != "" {
			e.excludedPositions[position] = struct{}{}
		}
	}
	return e
}

// Extract flattens a schedule document into appointment candidates. A nil or
// itemless document yields an empty list, never an error: missing data is
// handled upstream as a degraded department.
func (e *AppointmentExtractor) Extract(doc *entities.ScheduleDocument, departmentID int) []*entities.AppointmentCandidate {
	candidates := make([]*entities.AppointmentCandidate, 0)
	if doc == nil || len(doc.Items) == 0 {
		return candidates
	}

	for _, item := range doc.Items {
		for _, doctorItem := range item.Doctors {
			doctor := normalizeDoctor(&doctorItem, &item.LPU, departmentID)

			if !e.keep(doctor) {
				continue
			}

			closestTime := ""
			if doctorItem.ClosestEntry != nil {
				closestTime = doctorItem.ClosestEntry.BeginTime
			}

			seen := make(map[string]struct{})
			for _, scheduleItem := range doctorItem.Schedule {
				if scheduleItem.CountTickets <= 0 {
					continue
				}
				date, ok := parseDay(scheduleItem.Date)
				if !ok {
					log.Debug().Str("doctor_id", doctor.ID).Str("raw_date", scheduleItem.Date).Msg("Skipping schedule entry with unparsable date")
					continue
				}
				candidates = append(candidates, &entities.AppointmentCandidate{
					Doctor:           *doctor,
					Date:             date,
					TimeFrom:         scheduleItem.TimeFrom,
					TimeTo:           scheduleItem.TimeTo,
					TicketCount:      scheduleItem.CountTickets,
					BusyType:         scheduleItem.DocBusyType.Name,
					BusyTypeCode:     scheduleItem.DocBusyType.Code,
					ClosestEntryTime: closestTime,
				})
				seen[date.Format(entities.DateLayout)] = struct{}{}
			}

			// The closest-slot marker may point at a day the schedule feed
			// does not list with positive tickets. Surface it as a synthetic
			// candidate so the nearest opportunity is never lost.
			if closestTime != "" {
				closestDay := dayPart(closestTime)
				if _, covered := seen[closestDay]; !covered {
					if date, ok := parseDay(closestTime); ok {
						candidates = append(candidates, &entities.AppointmentCandidate{
							Doctor:           *doctor,
							Date:             date,
							TimeFrom:         timePart(closestTime),
							TicketCount:      0,
							BusyType:         ClosestSlotBusyType,
							BusyTypeCode:     ClosestSlotBusyTypeCode,
							ClosestEntryTime: closestTime,
						})
					}
				}
			}
		}
	}

	return candidates
}

func (e *AppointmentExtractor) keep(doctor *entities.Doctor) bool {
	if len(e.allowedDoctors) > 0 {
		_, ok := e.allowedDoctors[doctor.DisplayName]
		return ok
	}
	_, excluded := e.excludedPositions[doctor.Position]
	return !excluded
}

func normalizeDoctor(item *entities.DoctorItem, lpu *entities.FacilityInfo, departmentID int) *entities.Doctor {
	return &entities.Doctor{
		ID:              item.ID,
		DepartmentID:    departmentID,
		DisplayName:     item.DisplayName,
		PersonID:        item.PersonID,
		Position:        item.Position,
		PositionCode:    item.PositionCode,
		Room:            item.Room,
		FacilityName:    lpu.Name,
		FacilityAddress: lpu.Address,
		FacilityPhone:   lpu.Phone,
		Separation:      item.Separation,
		Type:            item.Type,
		TypeName:        item.TypeName,
	}
}

// dayPart returns the calendar-day prefix of an upstream timestamp
func dayPart(raw string) string {
	if idx := strings.Index(raw, "T"); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

// timePart returns the time-of-day portion of an upstream timestamp, with any
// zone offset stripped
func timePart(raw string) string {
	idx := strings.Index(raw, "T")
	if idx < 0 {
		return ""
	}
	rest := raw[idx+1:]
	if offset := strings.IndexAny(rest, "+-Z"); offset >= 0 {
		rest = rest[:offset]
	}
	return rest
}

func parseDay(raw string) (time.Time, bool) {
	date, err := time.Parse(entities.DateLayout, dayPart(raw))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
