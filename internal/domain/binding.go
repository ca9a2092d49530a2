package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkplaceBinding is the assignment relation between a worker and a
// workplace, created by a supervisor.
//
// Invariant: at most one binding with Active=true per worker at any time.
// Bindings are deactivated, never deleted.
type WorkplaceBinding struct {
	WorkerID     uuid.UUID `json:"worker_uuid"`
	Workplace    string    `json:"workplace"`
	Location     string    `json:"location"`
	SupervisorID uuid.UUID `json:"supervisor_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
