package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationRecord is one row of the scan audit log: a scanner resolved a
// worker's token at a point in time. Append-only; never mutated or deleted.
// Written for attempted scans against ended shifts too, so the log captures
// stale-token presentations and not only successful ones.
type VerificationRecord struct {
	WorkerID  uuid.UUID `json:"worker_uuid"`
	ScannerID uuid.UUID `json:"scanner_uuid"`
	Time      time.Time `json:"time"`
	Location  string    `json:"location,omitempty"`
}
