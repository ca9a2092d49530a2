// Package verify answers token scans. A scan outcome is never a transport
// error: malformed, unknown and ended tokens all produce a successful
// response with verified=false, so a scanner in the field always gets an
// answer it can display.
package verify

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"shifttrust/internal/audit"
	"shifttrust/internal/binding"
	"shifttrust/internal/domain"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/metrics"
	"shifttrust/internal/shift"
	"shifttrust/internal/token"
	dErrors "shifttrust/pkg/domain-errors"
	"shifttrust/pkg/requestcontext"
)

// Scan outcomes, recorded verbatim in metrics and responses.
const (
	OutcomeVerified  = "verified"
	OutcomeMalformed = "malformed"
	OutcomeUnknown   = "unknown"
	OutcomeEnded     = "ended"
)

type Service struct {
	store      Store
	identities *identity.Service
	bindings   *binding.Service
	shifts     *shift.Service
	publisher  *audit.Publisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func NewService(store Store, identities *identity.Service, bindings *binding.Service, shifts *shift.Service, publisher *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:      store,
		identities: identities,
		bindings:   bindings,
		shifts:     shifts,
		publisher:  publisher,
		metrics:    m,
		tracer:     otel.Tracer("shifttrust/verify"),
	}
}

// Result carries everything a scan can reveal. Transports project it down to
// the caller's role: customers get the worker's name, employer and risk
// bucket; police additionally get the full identity, binding and shift
// timing via the extended fields.
type Result struct {
	Verified bool
	Outcome  string

	Worker        domain.Identity
	Shift         domain.Shift
	Binding       domain.WorkplaceBinding
	BindingActive bool
	Supervisor    domain.Identity
	HasSupervisor bool
}

// Verify resolves a scanned token for a scanner of the given role. The
// scanner must exist and hold scannerRole; those failures are real errors.
// Everything after that is an outcome, not an error. Ended shifts still
// append a verification record so the scan is visible in history.
func (s *Service) Verify(ctx context.Context, tok string, scannerID uuid.UUID, scannerRole domain.Role, location string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "verify.Verify")
	defer span.End()

	if _, err := s.requireScanner(ctx, scannerID, scannerRole); err != nil {
		return Result{}, err
	}

	payload, err := token.Decode(tok)
	if err != nil {
		s.metrics.ObserveScan(string(scannerRole), OutcomeMalformed)
		return Result{Outcome: OutcomeMalformed}, nil
	}

	sh, err := s.shifts.Resolve(ctx, payload.ShiftID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.metrics.ObserveScan(string(scannerRole), OutcomeUnknown)
			return Result{Outcome: OutcomeUnknown}, nil
		}
		return Result{}, err
	}
	// A decodable payload pointing at a real shift must still carry that
	// shift's exact token; anything else is a forgery attempt.
	if sh.Token != tok {
		s.metrics.ObserveScan(string(scannerRole), OutcomeUnknown)
		return Result{Outcome: OutcomeUnknown}, nil
	}

	worker, err := s.identities.Get(ctx, sh.WorkerID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.metrics.ObserveScan(string(scannerRole), OutcomeUnknown)
			return Result{Outcome: OutcomeUnknown}, nil
		}
		return Result{}, err
	}

	record := domain.VerificationRecord{
		WorkerID:  sh.WorkerID,
		ScannerID: scannerID,
		Time:      requestcontext.Now(ctx),
		Location:  location,
	}
	outcome := OutcomeVerified
	if !sh.IsActive() {
		outcome = OutcomeEnded
	}
	if err := s.store.Append(ctx, record); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
	}
	s.metrics.ObserveScan(string(scannerRole), outcome)
	s.publisher.Emit(ctx, audit.Event{
		Action:    audit.ActionScan,
		WorkerID:  sh.WorkerID.String(),
		ActorID:   scannerID.String(),
		ShiftID:   sh.ID.String(),
		Workplace: sh.Workplace,
		Outcome:   outcome,
	})

	if outcome == OutcomeEnded {
		return Result{Outcome: OutcomeEnded, Worker: worker, Shift: sh}, nil
	}

	result := Result{
		Verified: true,
		Outcome:  OutcomeVerified,
		Worker:   worker,
		Shift:    sh,
	}
	if bnd, bound, err := s.bindings.ActiveBindingFor(ctx, sh.WorkerID); err == nil && bound {
		result.Binding = bnd
		result.BindingActive = true
	}
	if sup, err := s.identities.Get(ctx, sh.SupervisorID); err == nil {
		result.Supervisor = sup
		result.HasSupervisor = true
	}
	return result, nil
}

func (s *Service) requireScanner(ctx context.Context, scannerID uuid.UUID, role domain.Role) (domain.Identity, error) {
	switch role {
	case domain.RoleCustomer:
		return s.identities.RequireRole(ctx, scannerID, domain.RoleCustomer)
	case domain.RolePolice:
		scanner, err := s.identities.Get(ctx, scannerID)
		if err != nil {
			return domain.Identity{}, err
		}
		if scanner.Role != domain.RolePolice {
			return domain.Identity{}, dErrors.New(dErrors.CodeForbidden, "caller is not authorized law enforcement")
		}
		return scanner, nil
	default:
		return domain.Identity{}, dErrors.New(dErrors.CodeWrongRole, "role cannot scan tokens")
	}
}

// HistoryEntry is a past scan enriched with the worker's name.
type HistoryEntry struct {
	Record     domain.VerificationRecord
	WorkerName string
}

// HistoryByScanner returns a scanner's past scans, most recent first.
func (s *Service) HistoryByScanner(ctx context.Context, scannerID uuid.UUID, limit int) ([]HistoryEntry, error) {
	if _, err := s.identities.Get(ctx, scannerID); err != nil {
		return nil, err
	}
	records, err := s.store.ListByScanner(ctx, scannerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
	}
	sortRecent(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return s.enrich(ctx, records), nil
}

// Stats summarizes how often a worker has been verified.
type Stats struct {
	WorkerID   uuid.UUID
	WorkerName string
	Total      int
	Recent     []domain.VerificationRecord
}

func (s *Service) StatsByWorker(ctx context.Context, workerID uuid.UUID) (Stats, error) {
	worker, err := s.identities.Get(ctx, workerID)
	if err != nil {
		return Stats{}, err
	}
	total, err := s.store.CountByWorker(ctx, workerID)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count verifications")
	}
	recent, err := s.store.ListByWorker(ctx, workerID)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifications")
	}
	sortRecent(recent)
	if len(recent) > 10 {
		recent = recent[:10]
	}
	return Stats{
		WorkerID:   workerID,
		WorkerName: worker.Name,
		Total:      total,
		Recent:     recent,
	}, nil
}

// RecentEvents is the system-wide scan feed, most recent first.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]HistoryEntry, error) {
	records, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent events")
	}
	return s.enrich(ctx, records), nil
}

func (s *Service) enrich(ctx context.Context, records []domain.VerificationRecord) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		name := "Unknown"
		if worker, err := s.identities.Get(ctx, r.WorkerID); err == nil {
			name = worker.Name
		}
		out = append(out, HistoryEntry{Record: r, WorkerName: name})
	}
	return out
}

func sortRecent(records []domain.VerificationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.After(records[j].Time)
	})
}
