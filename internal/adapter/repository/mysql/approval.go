package mysql

import (
	"context"
	"time"

	approvalDomain "procurement-approval/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

// Tx binds this repo to a transaction.
func (r *ApprovalRepository) Tx(ctx context.Context, fn func(repo *ApprovalRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ApprovalRepository{db: tx})
	})
}

func (r *ApprovalRepository) CreateBatch(ctx context.Context, rows []*approvalDomain.Detail) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *ApprovalRepository) ListByRequest(ctx context.Context, requestID uint64) ([]*approvalDomain.Detail, error) {
	var out []*approvalDomain.Detail
	res := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("step_order ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) ListByRequestForUpdate(ctx context.Context, requestID uint64) ([]*approvalDomain.Detail, error) {
	var out []*approvalDomain.Detail
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		Order("step_order ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) GetForUpdate(ctx context.Context, id uint64) (*approvalDomain.Detail, error) {
	var out approvalDomain.Detail
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *ApprovalRepository) Save(ctx context.Context, d *approvalDomain.Detail) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *ApprovalRepository) ListActedBy(ctx context.Context, actorID uint64) ([]approvalDomain.Detail, error) {
	var out []approvalDomain.Detail
	res := r.db.WithContext(ctx).
		Where("action_taken_by = ?", actorID).
		Order("updated_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) ListPending(ctx context.Context) ([]approvalDomain.Detail, error) {
	var out []approvalDomain.Detail
	res := r.db.WithContext(ctx).
		Where("status = ?", approvalDomain.StatusPending).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) MarkEscalated(ctx context.Context, id uint64, assignee *uint64, at time.Time) error {
	cols := map[string]any{"escalated_at": at}
	if assignee != nil {
		cols["assigned_user_id"] = *assignee
	}
	return r.db.WithContext(ctx).
		Model(&approvalDomain.Detail{}).
		Where("id = ?", id).
		UpdateColumns(cols).Error
}
