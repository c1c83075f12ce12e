package approval

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBatch inserts the progress rows of a freshly submitted request.
	CreateBatch(ctx context.Context, rows []*Detail) error

	// ListByRequest returns rows ordered by StepOrder ascending.
	ListByRequest(ctx context.Context, requestID uint64) ([]*Detail, error)
	// ListByRequestForUpdate is ListByRequest with row locks held until the
	// surrounding transaction ends.
	ListByRequestForUpdate(ctx context.Context, requestID uint64) ([]*Detail, error)
	GetForUpdate(ctx context.Context, id uint64) (*Detail, error)

	Save(ctx context.Context, d *Detail) error

	// ListActedBy returns every row the actor has acted on, newest update first.
	ListActedBy(ctx context.Context, actorID uint64) ([]Detail, error)
	// ListPending returns every pending row across requests.
	ListPending(ctx context.Context) ([]Detail, error)
	// MarkEscalated stamps escalated_at and, when assignee is set, reassigns
	// the row. updated_at is left alone so the SLA clock keeps running.
	MarkEscalated(ctx context.Context, id uint64, assignee *uint64, at time.Time) error
}
