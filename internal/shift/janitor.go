package shift

import (
	"context"
	"log/slog"
	"time"

	"shifttrust/pkg/requestcontext"
)

// Janitor periodically closes shifts that ran past the configured maximum
// duration. It only exists when expiry is enabled.
type Janitor struct {
	service  *Service
	max      time.Duration
	interval time.Duration
	log      *slog.Logger
}

func NewJanitor(service *Service, max, interval time.Duration, log *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{service: service, max: max, interval: interval, log: log}
}

// Run sweeps until the context is canceled. Sweep failures are logged and
// retried on the next tick; the janitor never brings the process down.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sweepCtx := requestcontext.WithTime(ctx, time.Now().UTC())
			ended, err := j.service.ExpireOverdue(sweepCtx, j.max)
			if err != nil {
				j.log.Error("shift expiry sweep failed", "error", err)
				continue
			}
			if ended > 0 {
				j.log.Info("expired overdue shifts", "count", ended)
			}
		}
	}
}
