package budget

import (
	"context"
	"errors"

	domain "procurement-approval/internal/domain/budget"
	"procurement-approval/internal/domain/reference"
	"procurement-approval/internal/domain/uow"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/shared/apperror"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ScopeDepartment = "department"
	ScopeEntity     = "entity"
)

// Usecase issues budget codes. Limit checks and the write share one
// transaction holding the entity and department row locks, taken in that
// order, so two codes cannot both squeeze into the same remaining budget.
type Usecase struct {
	uow uow.UnitOfWork
	log *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{uow: tx, log: logger.OrNop(log).Named("budget.service")}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Code, error) {
	if in.DepartmentID == 0 {
		return nil, apperror.Validation("department_id", "is required")
	}
	if !in.BudgetLimit.IsPositive() {
		return nil, apperror.Validation("budget_limit", "must be greater than 0")
	}

	var out *domain.Code
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		found, err := r.References.GetDepartment(ctx, in.DepartmentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Validation("department_id", "unknown department")
		}
		if err != nil {
			return err
		}
		ent, dept, err := lockScope(ctx, r, found.EntityID, found.ID)
		if err != nil {
			return err
		}
		if err := checkLimits(ctx, r, dept, ent, in.BudgetLimit, 0); err != nil {
			return err
		}

		last, err := r.Budgets.LastCodeForDepartment(ctx, dept.ID)
		if err != nil {
			return err
		}
		out = &domain.Code{
			EntityID:     ent.ID,
			DepartmentID: dept.ID,
			Code:         domain.FormatCode(ent.Name, dept.Name, domain.NextSequence(last)),
			BudgetLimit:  in.BudgetLimit,
			Description:  in.Description,
			Status:       reference.StatusActive,
		}
		return r.Budgets.Create(ctx, out)
	})
	if err != nil {
		u.logFailure("create budget code failed", err, zap.Uint64("department_id", in.DepartmentID))
		return nil, apperror.Internal(err)
	}
	u.log.Info("budget code created", zap.String("code", out.Code), zap.String("limit", out.BudgetLimit.String()))
	return out, nil
}

// Update re-checks both limits when the amount changes, leaving the code's
// own current allocation out of the sums.
func (u *Usecase) Update(ctx context.Context, id uint64, in UpdateInput) (*domain.Code, error) {
	if in.BudgetLimit != nil && !in.BudgetLimit.IsPositive() {
		return nil, apperror.Validation("budget_limit", "must be greater than 0")
	}
	if in.Status != nil && *in.Status != reference.StatusActive && *in.Status != reference.StatusInactive {
		return nil, apperror.Validation("status", "must be active or inactive")
	}

	var out *domain.Code
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		code, err := r.Budgets.GetByIDForUpdate(ctx, id)
		if err != nil {
			return apperror.FromRepository(err, "budget code")
		}
		if in.BudgetLimit != nil && !in.BudgetLimit.Equal(code.BudgetLimit) {
			ent, dept, err := lockScope(ctx, r, code.EntityID, code.DepartmentID)
			if err != nil {
				return err
			}
			if err := checkLimits(ctx, r, dept, ent, *in.BudgetLimit, code.ID); err != nil {
				return err
			}
			code.BudgetLimit = *in.BudgetLimit
		}
		if in.Description != nil {
			code.Description = *in.Description
		}
		if in.Status != nil {
			code.Status = *in.Status
		}
		out = code
		return r.Budgets.Save(ctx, code)
	})
	if err != nil {
		u.logFailure("update budget code failed", err, zap.Uint64("budget_code_id", id))
		return nil, apperror.Internal(err)
	}
	u.log.Info("budget code updated", zap.String("code", out.Code), zap.String("limit", out.BudgetLimit.String()))
	return out, nil
}

// lockScope locks the entity row first and the department second. Every
// writer takes them in this order, so codes in sibling departments still
// serialize on the shared entity total.
func lockScope(ctx context.Context, r uow.Repos, entityID, deptID uint64) (*reference.Entity, *reference.Department, error) {
	ent, err := r.References.GetEntityForUpdate(ctx, entityID)
	if err != nil {
		return nil, nil, apperror.FromRepository(err, "entity")
	}
	dept, err := r.References.GetDepartmentForUpdate(ctx, deptID)
	if err != nil {
		return nil, nil, apperror.FromRepository(err, "department")
	}
	if dept.EntityID != ent.ID {
		return nil, nil, apperror.Validation("department_id", "department does not belong to entity")
	}
	return ent, dept, nil
}

// checkLimits allows allocated+requested == budget.
func checkLimits(ctx context.Context, r uow.Repos, dept *reference.Department, ent *reference.Entity, requested decimal.Decimal, excludeID uint64) error {
	allocated, err := r.Budgets.SumByDepartment(ctx, dept.ID, excludeID)
	if err != nil {
		return err
	}
	if err := within(ScopeDepartment, dept.Budget, allocated, requested); err != nil {
		return err
	}
	allocated, err = r.Budgets.SumByEntity(ctx, ent.ID, excludeID)
	if err != nil {
		return err
	}
	return within(ScopeEntity, ent.Budget, allocated, requested)
}

func within(scope string, budget, allocated, requested decimal.Decimal) error {
	if allocated.Add(requested).LessThanOrEqual(budget) {
		return nil
	}
	remaining := budget.Sub(allocated)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return apperror.ErrBudgetExceeded.
		WithMessage(scope + " budget exceeded").
		WithDetails(Exceeded{Scope: scope, Budget: budget, Allocated: allocated, Requested: requested, Remaining: remaining})
}

func (u *Usecase) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ae, ok := apperror.As(err); ok && ae.HTTPStatus < 500 {
		u.log.Warn(msg, fields...)
		return
	}
	u.log.Error(msg, fields...)
}
