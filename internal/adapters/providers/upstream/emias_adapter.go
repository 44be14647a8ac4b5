package upstream

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/emias"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// EmiasAdapter implements the ScheduleProvider interface against the regional
// EMIAS API, guarded by a circuit breaker so a failing upstream does not get
// hammered on every user check.
type EmiasAdapter struct {
	client  *emias.Client
	breaker *gobreaker.CircuitBreaker
}

// NewEmiasAdapter creates a new EMIAS schedule provider
func NewEmiasAdapter(client *emias.Client) providers.ScheduleProvider {
	settings := gobreaker.Settings{
		Name:    "emias",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &EmiasAdapter{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// FetchDoctors retrieves the doctors document for one department
func (a *EmiasAdapter) FetchDoctors(ctx context.Context, creds entities.PatientCredentials, departmentID int) (*entities.ScheduleDocument, error) {
	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.client.GetDoctors(ctx, creds, departmentID)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.NewUpstreamUnavailableError("upstream circuit open", err)
	}
	if err != nil {
		return nil, err
	}
	return result.(*entities.ScheduleDocument), nil
}
