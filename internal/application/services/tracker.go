package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
	"github.com/medwatch/slot-monitor/internal/domain/repositories"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// TrackerStats are lightweight in-process counters exposed over the API
type TrackerStats struct {
	ChecksRun      int64      `json:"checks_run"`
	CandidatesSeen int64      `json:"candidates_seen"`
	NewFound       int64      `json:"new_found"`
	LastCheckAt    *time.Time `json:"last_check_at,omitempty"`
}

// DepartmentSnapshot is the live state of one department without any history
// comparison
type DepartmentSnapshot struct {
	DepartmentID int                              `json:"department_id"`
	OK           bool                             `json:"ok"`
	Candidates   []*entities.AppointmentCandidate `json:"candidates"`
}

// Snapshot aggregates live department states
type Snapshot struct {
	Total       int                  `json:"total"`
	Departments []DepartmentSnapshot `json:"departments"`
}

// AppointmentTracker drives the poll-extract-compare-persist cycle. It is
// stateless between invocations: every verdict is re-derived from a fresh
// read of the state store.
type AppointmentTracker struct {
	provider     providers.ScheduleProvider
	extractor    *AppointmentExtractor
	states       repositories.ScheduleStateRepository
	userPolicy   ChangePolicy
	globalPolicy ChangePolicy
	departments  []int

	onUpstreamFailure func(ctx context.Context, departmentID int)

	now func() time.Time

	mu    sync.Mutex
	stats TrackerStats
}

// NewAppointmentTracker creates a new tracker over the configured departments
func NewAppointmentTracker(
	provider providers.ScheduleProvider,
	extractor *AppointmentExtractor,
	states repositories.ScheduleStateRepository,
	departments []int,
) *AppointmentTracker {
	return &AppointmentTracker{
		provider:     provider,
		extractor:    extractor,
		states:       states,
		userPolicy:   NewPerUserChangePolicy(),
		globalPolicy: NewGlobalChangePolicy(),
		departments:  departments,
		now:          time.Now,
	}
}

// SetUpstreamFailureHook registers a callback invoked once per department
// whose fetch fails during a check. Used to feed failure metrics.
func (t *AppointmentTracker) SetUpstreamFailureHook(fn func(ctx context.Context, departmentID int)) {
	t.onUpstreamFailure = fn
}

// CheckUser runs one full check for a subscriber: every configured department
// is polled with the user's credentials, candidates beyond the user's filter
// period are dropped, and the rest are evaluated under the per-user policy.
// Returned candidates are the genuinely new ones.
//
// A failing department is logged and skipped; a persistence failure aborts
// the whole check so no partial state advances.
func (t *AppointmentTracker) CheckUser(ctx context.Context, user *entities.UserSchedule) ([]*entities.AppointmentCandidate, error) {
	newCandidates, err := t.check(ctx, user.Credentials(), t.userPolicy, user.FilterPeriodDays)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", user.UserID).
		Int("new", len(newCandidates)).
		Msg("User check completed")

	return newCandidates, nil
}

// CheckAll runs a context-free sweep under the global policy: no per-user
// horizon, no filter period. Used by one-shot tooling and fleet-wide scans.
func (t *AppointmentTracker) CheckAll(ctx context.Context, creds entities.PatientCredentials) ([]*entities.AppointmentCandidate, error) {
	return t.check(ctx, creds, t.globalPolicy, 0)
}

func (t *AppointmentTracker) check(ctx context.Context, creds entities.PatientCredentials, policy ChangePolicy, filterPeriodDays int) ([]*entities.AppointmentCandidate, error) {
	now := t.now()
	newCandidates := make([]*entities.AppointmentCandidate, 0)
	seen := 0

	for _, departmentID := range t.departments {
		doc, err := t.provider.FetchDoctors(ctx, creds, departmentID)
		if err != nil {
			// Degraded department: no data this cycle, others unaffected.
			log.Warn().Err(err).Int("department_id", departmentID).Msg("No schedule data for department")
			if t.onUpstreamFailure != nil {
				t.onUpstreamFailure(ctx, departmentID)
			}
			continue
		}

		candidates := t.extractor.Extract(doc, departmentID)

		for _, candidate := range candidates {
			if filterPeriodDays > 0 && beyondFilterPeriod(candidate, now, filterPeriodDays) {
				continue
			}
			seen++

			prior, err := t.priorState(ctx, candidate)
			if err != nil {
				return nil, err
			}

			if policy.IsNew(candidate, prior, now) {
				newCandidates = append(newCandidates, candidate)
				log.Info().
					Str("doctor", candidate.DisplayName).
					Str("date", candidate.DateString()).
					Int("tickets", candidate.TicketCount).
					Msg("New appointment opportunity")
			}

			// State tracking never depends on the verdict or on whether a
			// notification later succeeds.
			if err := t.persist(ctx, candidate, now); err != nil {
				return nil, err
			}
		}
	}

	t.recordStats(now, seen, len(newCandidates))
	return newCandidates, nil
}

// LiveSnapshot polls every department and reports current availability
// without consulting or writing history
func (t *AppointmentTracker) LiveSnapshot(ctx context.Context, creds entities.PatientCredentials) *Snapshot {
	snapshot := &Snapshot{
		Departments: make([]DepartmentSnapshot, 0, len(t.departments)),
	}

	for _, departmentID := range t.departments {
		doc, err := t.provider.FetchDoctors(ctx, creds, departmentID)
		if err != nil {
			log.Warn().Err(err).Int("department_id", departmentID).Msg("No schedule data for department")
			snapshot.Departments = append(snapshot.Departments, DepartmentSnapshot{
				DepartmentID: departmentID,
				Candidates:   []*entities.AppointmentCandidate{},
			})
			continue
		}

		candidates := t.extractor.Extract(doc, departmentID)
		snapshot.Total += len(candidates)
		snapshot.Departments = append(snapshot.Departments, DepartmentSnapshot{
			DepartmentID: departmentID,
			OK:           true,
			Candidates:   candidates,
		})
	}

	return snapshot
}

// Stats returns a copy of the in-process counters
func (t *AppointmentTracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *AppointmentTracker) priorState(ctx context.Context, candidate *entities.AppointmentCandidate) (*entities.ScheduleState, error) {
	prior, err := t.states.GetLastState(ctx, candidate.ID, candidate.Date)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return prior, nil
}

func (t *AppointmentTracker) persist(ctx context.Context, candidate *entities.AppointmentCandidate, observedAt time.Time) error {
	if err := t.states.SaveDoctor(ctx, &candidate.Doctor); err != nil {
		return err
	}
	return t.states.SaveState(ctx, entities.StateFromCandidate(candidate, observedAt))
}

func (t *AppointmentTracker) recordStats(checkedAt time.Time, seen, found int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.ChecksRun++
	t.stats.CandidatesSeen += int64(seen)
	t.stats.NewFound += int64(found)
	t.stats.LastCheckAt = &checkedAt
}

// beyondFilterPeriod reports whether a candidate falls outside the user's
// look-ahead window. The boundary day itself is still evaluated.
func beyondFilterPeriod(candidate *entities.AppointmentCandidate, now time.Time, filterPeriodDays int) bool {
	limit := now.AddDate(0, 0, filterPeriodDays).Format(entities.DateLayout)
	return candidate.DateString() > limit
}
