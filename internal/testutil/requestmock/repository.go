package requestmock

import (
	"context"

	domain "procurement-approval/internal/domain/request"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, r *domain.Request) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Request, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Request, error)
	ListByIDsFn        func(ctx context.Context, ids []uint64) ([]domain.Request, error)
	SaveFn             func(ctx context.Context, r *domain.Request) error
	ReplaceDocumentsFn func(ctx context.Context, requestID uint64, docs []domain.Document) error
	SoftDeleteFn       func(ctx context.Context, r *domain.Request, by uint64) error
	NextSequenceFn     func(ctx context.Context, year int) (int, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Request, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Request, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListByIDs(ctx context.Context, ids []uint64) ([]domain.Request, error) {
	if m.ListByIDsFn != nil {
		return m.ListByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Request) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) ReplaceDocuments(ctx context.Context, requestID uint64, docs []domain.Document) error {
	if m.ReplaceDocumentsFn != nil {
		return m.ReplaceDocumentsFn(ctx, requestID, docs)
	}
	return nil
}

func (m *Repo) SoftDelete(ctx context.Context, r *domain.Request, by uint64) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, r, by)
	}
	return nil
}

// NextSequence defaults to 1.
func (m *Repo) NextSequence(ctx context.Context, year int) (int, error) {
	if m.NextSequenceFn != nil {
		return m.NextSequenceFn(ctx, year)
	}
	return 1, nil
}
