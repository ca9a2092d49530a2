// Package binding manages the worker-to-workplace assignment relation. A
// binding is created once by a supervisor when a worker joins a workplace,
// not per shift; a worker must be bound before any shift can start.
package binding

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"shifttrust/internal/audit"
	"shifttrust/internal/domain"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/metrics"
	dErrors "shifttrust/pkg/domain-errors"
	"shifttrust/pkg/platform/sentinel"
	"shifttrust/pkg/requestcontext"
)

// Service enforces the binding invariant: at most one active binding per
// worker at any time, guaranteed by the store's conditional insert.
type Service struct {
	store      Store
	identities *identity.Service
	publisher  *audit.Publisher
	metrics    *metrics.Metrics
}

func NewService(store Store, identities *identity.Service, publisher *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, identities: identities, publisher: publisher, metrics: m}
}

// Bind creates a new active binding. Validation order matches the error
// taxonomy: existence (NotFound) before role (WrongRole) before uniqueness
// (Conflict).
func (s *Service) Bind(ctx context.Context, workerID uuid.UUID, workplace, location string, supervisorID uuid.UUID) (domain.WorkplaceBinding, error) {
	workplace = strings.TrimSpace(workplace)
	if workplace == "" {
		return domain.WorkplaceBinding{}, dErrors.New(dErrors.CodeInvalidInput, "workplace is required")
	}

	if _, err := s.identities.RequireRole(ctx, workerID, domain.RoleWorker); err != nil {
		return domain.WorkplaceBinding{}, err
	}
	if _, err := s.identities.RequireRole(ctx, supervisorID, domain.RoleSupervisor); err != nil {
		return domain.WorkplaceBinding{}, err
	}

	b := domain.WorkplaceBinding{
		WorkerID:     workerID,
		Workplace:    workplace,
		Location:     strings.TrimSpace(location),
		SupervisorID: supervisorID,
		Active:       true,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.CreateIfNoneActive(ctx, b); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return domain.WorkplaceBinding{}, dErrors.New(dErrors.CodeConflict, "worker already bound to a workplace")
		}
		return domain.WorkplaceBinding{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create binding")
	}

	s.metrics.ObserveBinding()
	s.publisher.Emit(ctx, audit.Event{
		Action:    audit.ActionBind,
		WorkerID:  workerID.String(),
		ActorID:   supervisorID.String(),
		Workplace: workplace,
	})
	return b, nil
}

// ActiveBindingFor returns the worker's current active binding. The second
// return is false when the worker is unbound; that is not an error.
func (s *Service) ActiveBindingFor(ctx context.Context, workerID uuid.UUID) (domain.WorkplaceBinding, bool, error) {
	b, err := s.store.ActiveByWorker(ctx, workerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.WorkplaceBinding{}, false, nil
	}
	if err != nil {
		return domain.WorkplaceBinding{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load binding")
	}
	return b, true, nil
}

// BindingsFor lists all bindings created by a supervisor, insertion order.
func (s *Service) BindingsFor(ctx context.Context, supervisorID uuid.UUID) ([]domain.WorkplaceBinding, error) {
	if _, err := s.identities.Get(ctx, supervisorID); err != nil {
		return nil, err
	}
	bindings, err := s.store.ListBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list bindings")
	}
	return bindings, nil
}
