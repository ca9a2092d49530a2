// Package token encodes and decodes the Shift Trust Token (STT), the opaque
// string a worker displays and a scanner reads. The wire format is
// base64(JSON) of the payload fields. The token is a capability reference,
// not a cryptographic proof: it carries no signature, so possession proves
// nothing beyond knowledge of the string. Changing that would change the
// external format every deployed scanner reads.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

// ErrMalformed reports structurally invalid token input: bad base64, bad
// JSON, or missing required fields. It is distinct from "valid structure but
// unknown shift", which only the verification service can determine.
var ErrMalformed = errors.New("malformed token")

// Payload is the decoded content of an STT. Derived deterministically from
// the shift at issuance; encoded once and never re-issued.
type Payload struct {
	ShiftID   uuid.UUID `json:"shift_id"`
	WorkerID  uuid.UUID `json:"worker_uuid"`
	Workplace string    `json:"workplace"`
	StartTime time.Time `json:"start_time"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Encode serializes the identifying fields of a shift into a transportable
// token string. issuedAt is stamped into the payload so stale tokens can be
// distinguished on inspection.
func Encode(shift domain.Shift, issuedAt time.Time) (string, error) {
	payload := Payload{
		ShiftID:   shift.ID,
		WorkerID:  shift.WorkerID,
		Workplace: shift.Workplace,
		StartTime: shift.Start.UTC(),
		IssuedAt:  issuedAt.UTC(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode parses a presented token. Any structural failure returns
// ErrMalformed; Decode never panics on hostile input.
func Decode(tok string) (Payload, error) {
	if tok == "" {
		return Payload{}, ErrMalformed
	}
	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return Payload{}, ErrMalformed
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Payload{}, ErrMalformed
	}
	if payload.ShiftID == uuid.Nil || payload.WorkerID == uuid.Nil || payload.Workplace == "" {
		return Payload{}, ErrMalformed
	}
	return payload, nil
}
