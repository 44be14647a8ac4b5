package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
)

// MockAdapter provides deterministic schedule documents for local development.
type MockAdapter struct {
	doctorsPerDept int
	daysAhead      int
}

// NewMockAdapter creates a mock schedule provider.
func NewMockAdapter() providers.ScheduleProvider {
	return &MockAdapter{
		doctorsPerDept: 2,
		daysAhead:      3,
	}
}

// FetchDoctors returns a sample document with a few doctors and near-term slots
func (m *MockAdapter) FetchDoctors(ctx context.Context, creds entities.PatientCredentials, departmentID int) (*entities.ScheduleDocument, error) {
	doctors := make([]entities.DoctorItem, 0, m.doctorsPerDept)
	for i := 0; i < m.doctorsPerDept; i++ {
		schedule := make([]entities.ScheduleItem, 0, m.daysAhead)
		for d := 1; d <= m.daysAhead; d++ {
			date := time.Now().AddDate(0, 0, d).Format(entities.DateLayout)
			schedule = append(schedule, entities.ScheduleItem{
				Date:         date + "T00:00:00",
				TimeFrom:     "09:00",
				TimeTo:       "14:00",
				CountTickets: (i + d) % 4,
				DocBusyType:  entities.BusyType{Name: "Appointment", Code: "busy"},
			})
		}
		doctors = append(doctors, entities.DoctorItem{
			ID:          fmt.Sprintf("mock-%d-%d", departmentID, i),
			DisplayName: fmt.Sprintf("Mock Doctor %d", i+1),
			Position:    "Therapist",
			Schedule:    schedule,
			ClosestEntry: &entities.ClosestEntry{
				BeginTime: time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
			},
		})
	}

	return &entities.ScheduleDocument{
		Items: []entities.FacilityItem{
			{
				LPU: entities.FacilityInfo{
					Name:    fmt.Sprintf("Mock Polyclinic %d", departmentID),
					Address: "Test Street 1",
					Phone:   "+7 000 000-00-00",
				},
				Doctors: doctors,
			},
		},
	}, nil
}
