package identity

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"shifttrust/internal/audit"
	"shifttrust/internal/domain"
	"shifttrust/internal/platform/metrics"
	dErrors "shifttrust/pkg/domain-errors"
	"shifttrust/pkg/platform/sentinel"
	platformstrings "shifttrust/pkg/platform/strings"
	"shifttrust/pkg/requestcontext"
)

// Service owns identity registration and lookup. It is the leaf dependency:
// every other service resolves parties through it.
type Service struct {
	store     Store
	publisher *audit.Publisher
	metrics   *metrics.Metrics
}

func NewService(store Store, publisher *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, publisher: publisher, metrics: m}
}

// RegisterInput carries the registration request. FaceImage and IDImage are
// raw payloads; only their hashes are persisted.
type RegisterInput struct {
	Role         string
	Name         string
	Phone        string
	FaceImage    string
	IDImage      string
	PlatformLink string
}

// Register creates a new identity. Fails with CodeInvalidInput on a short
// name or phone and CodeConflict when the phone is already registered.
func (s *Service) Register(ctx context.Context, input RegisterInput) (domain.Identity, error) {
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidInput, "valid name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if len(phone) < 10 {
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidInput, "valid phone number is required")
	}

	ident := domain.Identity{
		ID:        uuid.New(),
		Role:      role,
		Name:      name,
		Phone:     phone,
		FaceHash:  hashBiometric(input.FaceImage),
		IDHash:    hashBiometric(input.IDImage),
		CreatedAt: requestcontext.Now(ctx),
	}
	if link := strings.TrimSpace(input.PlatformLink); link != "" {
		ident.PlatformLinks = []string{link}
	}

	if err := s.store.CreateIfPhoneAvailable(ctx, ident); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return domain.Identity{}, dErrors.New(dErrors.CodeConflict, "phone number already registered")
		}
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register identity")
	}

	s.metrics.ObserveRegistration(role.String())
	s.publisher.Emit(ctx, audit.Event{
		Action:  audit.ActionRegister,
		ActorID: ident.ID.String(),
		Outcome: role.String(),
	})
	return ident, nil
}

// Get resolves an identity by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Identity, error) {
	ident, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Identity{}, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return ident, nil
}

// RequireRole resolves an identity and checks its role. A missing identity is
// CodeNotFound; a present identity of the wrong kind is CodeWrongRole.
func (s *Service) RequireRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.Identity, error) {
	ident, err := s.Get(ctx, id)
	if err != nil {
		return domain.Identity{}, err
	}
	if ident.Role != role {
		return domain.Identity{}, dErrors.New(dErrors.CodeWrongRole, "identity is not a "+role.String())
	}
	return ident, nil
}

// LookupPhone reports whether a phone number is registered and for whom.
func (s *Service) LookupPhone(ctx context.Context, phone string) (domain.Identity, bool, error) {
	ident, err := s.store.FindByPhone(ctx, strings.TrimSpace(phone))
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check phone")
	}
	return ident, true, nil
}

// AddPlatformLink appends a gig-platform profile link to an identity.
// Idempotent: appending a link the identity already carries is a no-op.
func (s *Service) AddPlatformLink(ctx context.Context, id uuid.UUID, link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "platform link is required")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if platformstrings.Contains(existing.PlatformLinks, link) {
		return nil
	}
	if err := s.store.AddPlatformLink(ctx, id, link); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add platform link")
	}
	return nil
}

// hashBiometric produces the stored reference for a biometric input. SHA3-256
// of the raw payload; empty input stores an empty reference.
func hashBiometric(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
