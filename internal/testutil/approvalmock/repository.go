package approvalmock

import (
	"context"
	"time"

	domain "procurement-approval/internal/domain/approval"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops; single-row reads default to ErrRecordNotFound.
type Repo struct {
	CreateBatchFn            func(ctx context.Context, rows []*domain.Detail) error
	ListByRequestFn          func(ctx context.Context, requestID uint64) ([]*domain.Detail, error)
	ListByRequestForUpdateFn func(ctx context.Context, requestID uint64) ([]*domain.Detail, error)
	GetForUpdateFn           func(ctx context.Context, id uint64) (*domain.Detail, error)
	SaveFn                   func(ctx context.Context, d *domain.Detail) error
	ListActedByFn            func(ctx context.Context, actorID uint64) ([]domain.Detail, error)
	ListPendingFn            func(ctx context.Context) ([]domain.Detail, error)
	MarkEscalatedFn          func(ctx context.Context, id uint64, assignee *uint64, at time.Time) error
}

func (m *Repo) CreateBatch(ctx context.Context, rows []*domain.Detail) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, rows)
	}
	return nil
}

func (m *Repo) ListByRequest(ctx context.Context, requestID uint64) ([]*domain.Detail, error) {
	if m.ListByRequestFn != nil {
		return m.ListByRequestFn(ctx, requestID)
	}
	return nil, nil
}

func (m *Repo) ListByRequestForUpdate(ctx context.Context, requestID uint64) ([]*domain.Detail, error) {
	if m.ListByRequestForUpdateFn != nil {
		return m.ListByRequestForUpdateFn(ctx, requestID)
	}
	return nil, nil
}

func (m *Repo) GetForUpdate(ctx context.Context, id uint64) (*domain.Detail, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Save(ctx context.Context, d *domain.Detail) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListActedBy(ctx context.Context, actorID uint64) ([]domain.Detail, error) {
	if m.ListActedByFn != nil {
		return m.ListActedByFn(ctx, actorID)
	}
	return nil, nil
}

func (m *Repo) ListPending(ctx context.Context) ([]domain.Detail, error) {
	if m.ListPendingFn != nil {
		return m.ListPendingFn(ctx)
	}
	return nil, nil
}

func (m *Repo) MarkEscalated(ctx context.Context, id uint64, assignee *uint64, at time.Time) error {
	if m.MarkEscalatedFn != nil {
		return m.MarkEscalatedFn(ctx, id, assignee, at)
	}
	return nil
}
