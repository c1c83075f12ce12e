package mysql

import (
	"context"
	"errors"

	budgetDomain "procurement-approval/internal/domain/budget"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository struct{ db *gorm.DB }

func NewBudgetRepository(db *gorm.DB) *BudgetRepository { return &BudgetRepository{db: db} }

func (r *BudgetRepository) Create(ctx context.Context, c *budgetDomain.Code) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *BudgetRepository) Save(ctx context.Context, c *budgetDomain.Code) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *BudgetRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*budgetDomain.Code, error) {
	var out budgetDomain.Code
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *BudgetRepository) SumByDepartment(ctx context.Context, departmentID, excludeID uint64) (decimal.Decimal, error) {
	return r.sum(ctx, "department_id = ?", departmentID, excludeID)
}

func (r *BudgetRepository) SumByEntity(ctx context.Context, entityID, excludeID uint64) (decimal.Decimal, error) {
	return r.sum(ctx, "entity_id = ?", entityID, excludeID)
}

// sum adds limits in Go so the arithmetic stays exact across drivers.
func (r *BudgetRepository) sum(ctx context.Context, where string, id, excludeID uint64) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&budgetDomain.Code{}).Select("id", "budget_limit").Where(where, id)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var codes []budgetDomain.Code
	if err := q.Find(&codes).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, c := range codes {
		total = total.Add(c.BudgetLimit)
	}
	return total, nil
}

func (r *BudgetRepository) LastCodeForDepartment(ctx context.Context, departmentID uint64) (string, error) {
	var out budgetDomain.Code
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("id DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out.Code, nil
}
