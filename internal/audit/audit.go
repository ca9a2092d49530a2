// Package audit carries the best-effort operational event stream: bindings
// created, shifts started and ended, tokens scanned. It is separate from the
// verification record log, which is the durable scan audit owned by the
// verification service. Publishing never fails a request; events are dropped
// if the pipeline is saturated.
package audit

import (
	"context"
	"time"

	"shifttrust/pkg/requestcontext"
)

// Actions emitted by the domain services.
const (
	ActionRegister   = "identity.register"
	ActionBind       = "binding.create"
	ActionShiftStart = "shift.start"
	ActionShiftEnd   = "shift.end"
	ActionScan       = "token.scan"
)

// Event is one audit entry. Keep it transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	WorkerID  string    `json:"worker_uuid,omitempty"`
	ActorID   string    `json:"actor_uuid,omitempty"`
	ShiftID   string    `json:"shift_id,omitempty"`
	Workplace string    `json:"workplace,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Sink receives drained events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Publisher accepts events from request paths and hands them to the worker
// through a buffered channel. A nil Publisher discards everything, which
// keeps unit tests free of pipeline wiring.
type Publisher struct {
	inbox chan Event
}

// NewPublisher creates a publisher with the given buffer size.
func NewPublisher(buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{inbox: make(chan Event, buffer)}
}

// Emit enqueues an event, stamping timestamp and request ID from context.
// Non-blocking: a full buffer drops the event rather than stalling the
// request path.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case p.inbox <- event:
	default:
	}
}

// Inbox exposes the drain side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Worker consumes audit events from the publisher and writes them to a sink.
type Worker struct {
	inbox <-chan Event
	sink  Sink
}

func NewWorker(inbox <-chan Event, sink Sink) *Worker {
	return &Worker{inbox: inbox, sink: sink}
}

// Run drains events until ctx is cancelled. Sink errors are swallowed after
// the sink has had its chance to log; audit is best-effort by contract.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			_ = w.sink.Write(ctx, event)
		}
	}
}
