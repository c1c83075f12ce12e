package mysql

import (
	"context"

	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Requests:   &RequestRepository{db: tx},
		Approvals:  &ApprovalRepository{db: tx},
		Workflows:  &WorkflowRepository{db: tx},
		References: &ReferenceRepository{db: tx},
		Budgets:    &BudgetRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID uint64, fn func(r uow.Repos, req *request.Request) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the request row up-front to serialize actions on it
		req, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, req)
	})
}
