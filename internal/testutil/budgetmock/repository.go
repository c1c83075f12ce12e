package budgetmock

import (
	"context"

	domain "procurement-approval/internal/domain/budget"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Sums default to zero and LastCodeForDepartment to "".
type Repo struct {
	CreateFn                func(ctx context.Context, c *domain.Code) error
	SaveFn                  func(ctx context.Context, c *domain.Code) error
	GetByIDForUpdateFn      func(ctx context.Context, id uint64) (*domain.Code, error)
	SumByDepartmentFn       func(ctx context.Context, departmentID, excludeID uint64) (decimal.Decimal, error)
	SumByEntityFn           func(ctx context.Context, entityID, excludeID uint64) (decimal.Decimal, error)
	LastCodeForDepartmentFn func(ctx context.Context, departmentID uint64) (string, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Code) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, c *domain.Code) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Code, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SumByDepartment(ctx context.Context, departmentID, excludeID uint64) (decimal.Decimal, error) {
	if m.SumByDepartmentFn != nil {
		return m.SumByDepartmentFn(ctx, departmentID, excludeID)
	}
	return decimal.Zero, nil
}

func (m *Repo) SumByEntity(ctx context.Context, entityID, excludeID uint64) (decimal.Decimal, error) {
	if m.SumByEntityFn != nil {
		return m.SumByEntityFn(ctx, entityID, excludeID)
	}
	return decimal.Zero, nil
}

func (m *Repo) LastCodeForDepartment(ctx context.Context, departmentID uint64) (string, error) {
	if m.LastCodeForDepartmentFn != nil {
		return m.LastCodeForDepartmentFn(ctx, departmentID)
	}
	return "", nil
}
