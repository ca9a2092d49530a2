package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "shifttrust/pkg/domain-errors"
)

// Role is one of the four registered party kinds.
type Role string

const (
	RoleWorker     Role = "worker"
	RoleCustomer   Role = "customer"
	RoleSupervisor Role = "supervisor"
	RolePolice     Role = "police"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleWorker:
		return RoleWorker, nil
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleSupervisor:
		return RoleSupervisor, nil
	case RolePolice:
		return RolePolice, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
}

func (r Role) String() string { return string(r) }

// Identity is a registered party. Immutable after registration except
// PlatformLinks. Biometric inputs are stored only as hashes; the raw images
// never reach the store.
type Identity struct {
	ID            uuid.UUID `json:"uuid"`
	Role          Role      `json:"role"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	FaceHash      string    `json:"face_hash,omitempty"`
	IDHash        string    `json:"id_hash,omitempty"`
	PlatformLinks []string  `json:"platform_links"`
	CreatedAt     time.Time `json:"created_at"`
}

// AccountAge returns how long the identity has existed as of now.
func (i Identity) AccountAge(now time.Time) time.Duration {
	return now.Sub(i.CreatedAt)
}

// ParseID validates a party identifier. IDs must be valid, non-nil UUIDs.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid identifier")
	}
	return id, nil
}
