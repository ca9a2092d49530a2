package domain

import (
	"time"

	"github.com/google/uuid"

	dErrors "shifttrust/pkg/domain-errors"
)

// RiskBucket classifies a 0-100 risk score.
type RiskBucket string

const (
	RiskGreen  RiskBucket = "green"
	RiskYellow RiskBucket = "yellow"
	RiskRed    RiskBucket = "red"
)

// Shift is one work period for a worker at their bound workplace. Shifts are
// append-only history: End is set exactly once, nothing is ever deleted.
//
// Invariant: at most one shift with End=nil per worker at any time.
type Shift struct {
	ID           uuid.UUID  `json:"shift_id"`
	WorkerID     uuid.UUID  `json:"worker_uuid"`
	Start        time.Time  `json:"start"`
	End          *time.Time `json:"end"`
	Token        string     `json:"stt"`
	RiskScore    int        `json:"risk_score"`
	RiskBucket   RiskBucket `json:"risk_state"`
	Workplace    string     `json:"workplace"`
	SupervisorID uuid.UUID  `json:"supervisor_id"`
}

// IsActive reports whether the shift is still open.
func (s Shift) IsActive() bool { return s.End == nil }

// Duration returns the elapsed shift time: up to End if set, else up to now.
func (s Shift) Duration(now time.Time) time.Duration {
	if s.End != nil {
		return s.End.Sub(s.Start)
	}
	return now.Sub(s.Start)
}

// CanEnd checks the shift may transition to ended.
func (s *Shift) CanEnd(supervisorID uuid.UUID) error {
	if s.End != nil {
		return dErrors.New(dErrors.CodeAlreadyEnded, "shift has already ended")
	}
	if s.SupervisorID != supervisorID {
		return dErrors.New(dErrors.CodeForbidden, "only the supervising supervisor can end this shift")
	}
	return nil
}

// ApplyEnd transitions the shift to ended. Call CanEnd first.
func (s *Shift) ApplyEnd(now time.Time) {
	end := now
	s.End = &end
}
