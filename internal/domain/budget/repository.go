package budget

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, c *Code) error
	Save(ctx context.Context, c *Code) error
	GetByIDForUpdate(ctx context.Context, id uint64) (*Code, error)

	// Sums of budget_limit, leaving out excludeID (0 excludes nothing).
	SumByDepartment(ctx context.Context, departmentID, excludeID uint64) (decimal.Decimal, error)
	SumByEntity(ctx context.Context, entityID, excludeID uint64) (decimal.Decimal, error)

	// LastCodeForDepartment returns "" when the department has no codes yet.
	LastCodeForDepartment(ctx context.Context, departmentID uint64) (string, error)
}
