package mysql

import (
	"context"

	wfDomain "procurement-approval/internal/domain/workflow"

	"gorm.io/gorm"
)

type WorkflowRepository struct{ db *gorm.DB }

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository { return &WorkflowRepository{db: db} }

func (r *WorkflowRepository) CreateDefinition(ctx context.Context, d *wfDomain.Definition) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *WorkflowRepository) GetDefinition(ctx context.Context, id uint64) (*wfDomain.Definition, error) {
	var out wfDomain.Definition
	res := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("order_id ASC") }).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *WorkflowRepository) ListActiveByRequestType(ctx context.Context, requestType string) ([]wfDomain.Definition, error) {
	var out []wfDomain.Definition
	res := r.db.WithContext(ctx).
		Where("request_type = ? AND status = ?", requestType, wfDomain.StatusActive).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *WorkflowRepository) ListSteps(ctx context.Context, workflowID uint64) ([]wfDomain.Step, error) {
	var out []wfDomain.Step
	res := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("order_id ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *WorkflowRepository) GetStep(ctx context.Context, workflowID, stepID uint64) (*wfDomain.Step, error) {
	var out wfDomain.Step
	res := r.db.WithContext(ctx).
		Where("workflow_id = ? AND id = ?", workflowID, stepID).
		First(&out)
	return &out, res.Error
}

func (r *WorkflowRepository) CreateStep(ctx context.Context, s *wfDomain.Step) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *WorkflowRepository) SaveStep(ctx context.Context, s *wfDomain.Step) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// DeleteStep removes the step with its role assignment and escalation config.
func (r *WorkflowRepository) DeleteStep(ctx context.Context, s *wfDomain.Step) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("workflow_id = ? AND step_id = ?", s.WorkflowID, s.ID).Delete(&wfDomain.RoleAssignment{}).Error; err != nil {
		return err
	}
	if err := db.Where("workflow_id = ? AND step_id = ?", s.WorkflowID, s.ID).Delete(&wfDomain.Escalation{}).Error; err != nil {
		return err
	}
	return db.Delete(s).Error
}

func (r *WorkflowRepository) GetRoleAssignment(ctx context.Context, workflowID, stepID uint64) (*wfDomain.RoleAssignment, error) {
	var out wfDomain.RoleAssignment
	res := r.db.WithContext(ctx).
		Where("workflow_id = ? AND step_id = ?", workflowID, stepID).
		First(&out)
	return &out, res.Error
}

func (r *WorkflowRepository) SaveRoleAssignment(ctx context.Context, a *wfDomain.RoleAssignment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *WorkflowRepository) GetEscalation(ctx context.Context, workflowID, stepID uint64) (*wfDomain.Escalation, error) {
	var out wfDomain.Escalation
	res := r.db.WithContext(ctx).
		Where("workflow_id = ? AND step_id = ?", workflowID, stepID).
		First(&out)
	return &out, res.Error
}

func (r *WorkflowRepository) SaveEscalation(ctx context.Context, e *wfDomain.Escalation) error {
	return r.db.WithContext(ctx).Save(e).Error
}
