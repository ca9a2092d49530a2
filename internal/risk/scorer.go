// Package risk computes the dynamic risk classification assigned to a worker
// at shift start. Scoring is a pure function over explicit signals so the same
// inputs always reproduce the same score, which the audit trail depends on.
package risk

import (
	"strings"
	"time"

	"shifttrust/internal/domain"
)

// Signals are the inputs to one scoring decision. Callers gather them;
// the scorer has no I/O.
type Signals struct {
	Now            time.Time
	RegisteredAt   time.Time
	LocationZone   string
	ComplaintCount int
}

// Sub-score caps. The four caps sum to exactly 100, so the total needs no
// explicit clamp.
const (
	timeRiskPoints      = 30
	zoneRiskPoints      = 25
	complaintRiskCap    = 30
	complaintRiskPer    = 10
	accountAgeRiskPoint = 15

	newAccountThreshold = 7 * 24 * time.Hour
)

// High-risk late-night window, inclusive start hour, exclusive end hour,
// spanning midnight.
const (
	highRiskStartHour = 22
	highRiskEndHour   = 5
)

// highRiskZones are the flagged location zones. In a full deployment this
// would be fed from a crime-data source; the set matches the pilot rollout.
var highRiskZones = map[string]struct{}{
	"zone_red_1":          {},
	"zone_red_2":          {},
	"isolated_area":       {},
	"low_visibility_zone": {},
}

// Score computes the 0-100 risk score as the unweighted sum of four
// independently-capped sub-scores. Each sub-score is binary except the
// complaint term, which saturates at three complaints.
func Score(s Signals) int {
	score := 0
	if inHighRiskWindow(s.Now) {
		score += timeRiskPoints
	}
	if _, flagged := highRiskZones[strings.ToLower(s.LocationZone)]; flagged {
		score += zoneRiskPoints
	}
	complaint := s.ComplaintCount * complaintRiskPer
	if complaint > complaintRiskCap {
		complaint = complaintRiskCap
	}
	if complaint > 0 {
		score += complaint
	}
	if !s.RegisteredAt.IsZero() && s.Now.Sub(s.RegisteredAt) < newAccountThreshold {
		score += accountAgeRiskPoint
	}
	return score
}

// Bucket maps a score to its color classification. Monotonic: a higher score
// never maps to a lower bucket.
func Bucket(score int) domain.RiskBucket {
	switch {
	case score <= 30:
		return domain.RiskGreen
	case score <= 60:
		return domain.RiskYellow
	default:
		return domain.RiskRed
	}
}

func inHighRiskWindow(t time.Time) bool {
	h := t.UTC().Hour()
	return h >= highRiskStartHour || h < highRiskEndHour
}
