package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventRequestSubmitted   = "request.submitted"
	EventStepActivated      = "step.activated"
	EventStepSentBack       = "step.sent_back"
	EventRequestRejected    = "request.rejected"
	EventEscalationNotify   = "escalation.notify"
	EventEscalationReassign = "escalation.reassign"
)

// Event is the JSON document published for approval workflow changes.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	RequestID  uint64         `json:"request_id"`
	RequestNo  string         `json:"request_no,omitempty"`
	ActorID    uint64         `json:"actor_id,omitempty"`
	Recipients []uint64       `json:"recipients"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New stamps a fresh id and time. Zero recipient ids are dropped.
func New(typ string, requestID uint64, requestNo string, actorID uint64, recipients ...uint64) Event {
	rs := make([]uint64, 0, len(recipients))
	for _, r := range recipients {
		if r != 0 {
			rs = append(rs, r)
		}
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		RequestID:  requestID,
		RequestNo:  requestNo,
		ActorID:    actorID,
		Recipients: rs,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Dispatch publishes each event and only logs failures. It runs after the
// transaction has committed, so nothing can be rolled back at this point.
func Dispatch(ctx context.Context, pub Publisher, log *zap.Logger, events ...Event) {
	if pub == nil {
		return
	}
	for _, e := range events {
		if err := pub.Publish(ctx, e); err != nil && log != nil {
			log.Warn("publish event failed",
				zap.String("event", e.Type),
				zap.Uint64("request_id", e.RequestID),
				zap.Error(err))
		}
	}
}
