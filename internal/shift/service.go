// Package shift owns the shift state machine: NoShift -> Active -> Ended.
// Ended is terminal per shift; a worker starts over with a fresh shift
// entity. Start is the one check-then-act sequence in the system that must be
// serialized per worker, which the store's conditional insert provides.
package shift

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"shifttrust/internal/audit"
	"shifttrust/internal/binding"
	"shifttrust/internal/domain"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/metrics"
	"shifttrust/internal/risk"
	"shifttrust/internal/token"
	dErrors "shifttrust/pkg/domain-errors"
	"shifttrust/pkg/platform/sentinel"
	"shifttrust/pkg/requestcontext"
)

// End triggers, recorded in metrics and audit events.
const (
	EndTriggerSupervisor = "supervisor"
	EndTriggerExpiry     = "expiry"
)

// Service orchestrates the shift lifecycle. All state lives in the store;
// the service holds only collaborators.
type Service struct {
	store      Store
	bindings   *binding.Service
	identities *identity.Service
	complaints risk.ComplaintStore
	publisher  *audit.Publisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func NewService(store Store, bindings *binding.Service, identities *identity.Service, complaints risk.ComplaintStore, publisher *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:      store,
		bindings:   bindings,
		identities: identities,
		complaints: complaints,
		publisher:  publisher,
		metrics:    m,
		tracer:     otel.Tracer("shifttrust/shift"),
	}
}

// Status is the poll response for a worker's current shift.
type Status struct {
	Active     bool
	ShiftID    uuid.UUID
	Token      string
	RiskBucket domain.RiskBucket
	StartTime  time.Time
	Workplace  string
}

// Start begins a new shift for a bound worker. Validation order: identities
// (NotFound/WrongRole), binding (NotBound), binding consistency
// (WorkplaceMismatch), then the atomic conditional insert (Conflict). The
// risk score is computed from current signals and frozen into the shift; the
// token is encoded once and never re-issued.
func (s *Service) Start(ctx context.Context, workerID, supervisorID uuid.UUID, workplace string) (domain.Shift, error) {
	ctx, span := s.tracer.Start(ctx, "shift.Start")
	defer span.End()

	workplace = strings.TrimSpace(workplace)
	worker, err := s.identities.RequireRole(ctx, workerID, domain.RoleWorker)
	if err != nil {
		return domain.Shift{}, err
	}
	if _, err := s.identities.RequireRole(ctx, supervisorID, domain.RoleSupervisor); err != nil {
		return domain.Shift{}, err
	}

	bnd, bound, err := s.bindings.ActiveBindingFor(ctx, workerID)
	if err != nil {
		return domain.Shift{}, err
	}
	if !bound {
		return domain.Shift{}, dErrors.New(dErrors.CodeNotBound, "worker is not bound to any workplace")
	}
	if bnd.Workplace != workplace {
		return domain.Shift{}, dErrors.New(dErrors.CodeWorkplaceMismatch, "worker is bound to a different workplace")
	}
	if bnd.SupervisorID != supervisorID {
		return domain.Shift{}, dErrors.New(dErrors.CodeWorkplaceMismatch, "worker is bound under a different supervisor")
	}

	now := requestcontext.Now(ctx)
	complaintCount, err := s.complaints.CountByWorker(ctx, workerID)
	if err != nil {
		// Scoring must not block shift start; a missing signal scores as
		// zero complaints and the gap is visible in the logs.
		complaintCount = 0
	}
	score := risk.Score(risk.Signals{
		Now:            now,
		RegisteredAt:   worker.CreatedAt,
		LocationZone:   bnd.Location,
		ComplaintCount: complaintCount,
	})

	sh := domain.Shift{
		ID:           uuid.New(),
		WorkerID:     workerID,
		Start:        now,
		RiskScore:    score,
		RiskBucket:   risk.Bucket(score),
		Workplace:    workplace,
		SupervisorID: supervisorID,
	}
	sh.Token, err = token.Encode(sh, now)
	if err != nil {
		return domain.Shift{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if err := s.store.CreateIfNoneActive(ctx, sh); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return domain.Shift{}, dErrors.New(dErrors.CodeConflict, "worker already has an active shift")
		}
		return domain.Shift{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start shift")
	}

	s.metrics.ObserveShiftStart(string(sh.RiskBucket), score)
	s.publisher.Emit(ctx, audit.Event{
		Action:    audit.ActionShiftStart,
		WorkerID:  workerID.String(),
		ActorID:   supervisorID.String(),
		ShiftID:   sh.ID.String(),
		Workplace: workplace,
		Outcome:   string(sh.RiskBucket),
	})
	return sh, nil
}

// Status reports the worker's latest persisted shift state. Pure read; an
// unbound or off-shift worker gets a zeroed inactive status, not an error.
func (s *Service) Status(ctx context.Context, workerID uuid.UUID) (Status, error) {
	sh, err := s.store.ActiveByWorker(ctx, workerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Status{Active: false}, nil
	}
	if err != nil {
		return Status{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load shift status")
	}
	return Status{
		Active:     true,
		ShiftID:    sh.ID,
		Token:      sh.Token,
		RiskBucket: sh.RiskBucket,
		StartTime:  sh.Start,
		Workplace:  sh.Workplace,
	}, nil
}

// End closes an active shift. Calling End twice is an error (AlreadyEnded),
// not a no-op; only the supervisor snapshotted at start may end the shift.
func (s *Service) End(ctx context.Context, shiftID, supervisorID uuid.UUID) (domain.Shift, error) {
	ctx, span := s.tracer.Start(ctx, "shift.End")
	defer span.End()

	now := requestcontext.Now(ctx)
	sh, err := s.store.Execute(ctx, shiftID,
		func(sh *domain.Shift) error {
			return sh.CanEnd(supervisorID)
		},
		func(sh *domain.Shift) {
			sh.ApplyEnd(now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Shift{}, dErrors.New(dErrors.CodeNotFound, "shift not found")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return domain.Shift{}, err
		}
		return domain.Shift{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to end shift")
	}

	s.metrics.ObserveShiftEnd(EndTriggerSupervisor)
	s.publisher.Emit(ctx, audit.Event{
		Action:   audit.ActionShiftEnd,
		WorkerID: sh.WorkerID.String(),
		ActorID:  supervisorID.String(),
		ShiftID:  sh.ID.String(),
		Outcome:  EndTriggerSupervisor,
	})
	return sh, nil
}

// Resolve loads a shift by ID for the verification path.
func (s *Service) Resolve(ctx context.Context, shiftID uuid.UUID) (domain.Shift, error) {
	sh, err := s.store.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Shift{}, dErrors.New(dErrors.CodeNotFound, "shift not found")
		}
		return domain.Shift{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load shift")
	}
	return sh, nil
}

// HistoryFor lists the worker's past and present shifts, newest first. A
// worker with no shifts gets an empty list, not an error.
func (s *Service) HistoryFor(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.Shift, error) {
	if limit <= 0 {
		limit = 20
	}
	shifts, err := s.store.ListByWorker(ctx, workerID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shift history")
	}
	return shifts, nil
}

// ActiveShifts lists all open shifts, oldest first.
func (s *Service) ActiveShifts(ctx context.Context) ([]domain.Shift, error) {
	shifts, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active shifts")
	}
	return shifts, nil
}

// ExpireOverdue ends every open shift that has exceeded max duration. Called
// by the janitor when expiry is configured; a zero max is a no-op, matching
// the default no-expiry behavior. Returns how many shifts were closed.
func (s *Service) ExpireOverdue(ctx context.Context, max time.Duration) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	now := requestcontext.Now(ctx)
	overdue, err := s.store.ListOverdue(ctx, now.Add(-max))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue shifts")
	}
	ended := 0
	for _, candidate := range overdue {
		sh, err := s.store.Execute(ctx, candidate.ID,
			func(sh *domain.Shift) error {
				if sh.End != nil {
					return dErrors.New(dErrors.CodeAlreadyEnded, "shift has already ended")
				}
				return nil
			},
			func(sh *domain.Shift) {
				sh.ApplyEnd(now)
			},
		)
		if err != nil {
			// Raced with a supervisor end; nothing to do for this shift.
			continue
		}
		ended++
		s.metrics.ObserveShiftEnd(EndTriggerExpiry)
		s.publisher.Emit(ctx, audit.Event{
			Action:   audit.ActionShiftEnd,
			WorkerID: sh.WorkerID.String(),
			ShiftID:  sh.ID.String(),
			Outcome:  EndTriggerExpiry,
		})
	}
	return ended, nil
}
