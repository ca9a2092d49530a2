package identity

import (
	"context"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

// Store persists registered identities. Implementations return
// sentinel.ErrNotFound / sentinel.ErrConflict; the service translates.
type Store interface {
	// CreateIfPhoneAvailable inserts the identity unless the phone number is
	// already registered, in which case it fails with sentinel.ErrConflict.
	CreateIfPhoneAvailable(ctx context.Context, ident domain.Identity) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Identity, error)
	FindByPhone(ctx context.Context, phone string) (domain.Identity, error)
	// AddPlatformLink appends a link; platform links are the only mutable
	// identity field.
	AddPlatformLink(ctx context.Context, id uuid.UUID, link string) error
}
