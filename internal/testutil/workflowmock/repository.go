package workflowmock

import (
	"context"

	domain "procurement-approval/internal/domain/workflow"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateDefinitionFn        func(ctx context.Context, d *domain.Definition) error
	GetDefinitionFn           func(ctx context.Context, id uint64) (*domain.Definition, error)
	ListActiveByRequestTypeFn func(ctx context.Context, requestType string) ([]domain.Definition, error)
	ListStepsFn               func(ctx context.Context, workflowID uint64) ([]domain.Step, error)
	GetStepFn                 func(ctx context.Context, workflowID, stepID uint64) (*domain.Step, error)
	CreateStepFn              func(ctx context.Context, s *domain.Step) error
	SaveStepFn                func(ctx context.Context, s *domain.Step) error
	DeleteStepFn              func(ctx context.Context, s *domain.Step) error
	GetRoleAssignmentFn       func(ctx context.Context, workflowID, stepID uint64) (*domain.RoleAssignment, error)
	SaveRoleAssignmentFn      func(ctx context.Context, a *domain.RoleAssignment) error
	GetEscalationFn           func(ctx context.Context, workflowID, stepID uint64) (*domain.Escalation, error)
	SaveEscalationFn          func(ctx context.Context, e *domain.Escalation) error
}

func (m *Repo) CreateDefinition(ctx context.Context, d *domain.Definition) error {
	if m.CreateDefinitionFn != nil {
		return m.CreateDefinitionFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetDefinition(ctx context.Context, id uint64) (*domain.Definition, error) {
	if m.GetDefinitionFn != nil {
		return m.GetDefinitionFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListActiveByRequestType(ctx context.Context, requestType string) ([]domain.Definition, error) {
	if m.ListActiveByRequestTypeFn != nil {
		return m.ListActiveByRequestTypeFn(ctx, requestType)
	}
	return nil, nil
}

func (m *Repo) ListSteps(ctx context.Context, workflowID uint64) ([]domain.Step, error) {
	if m.ListStepsFn != nil {
		return m.ListStepsFn(ctx, workflowID)
	}
	return nil, nil
}

func (m *Repo) GetStep(ctx context.Context, workflowID, stepID uint64) (*domain.Step, error) {
	if m.GetStepFn != nil {
		return m.GetStepFn(ctx, workflowID, stepID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) CreateStep(ctx context.Context, s *domain.Step) error {
	if m.CreateStepFn != nil {
		return m.CreateStepFn(ctx, s)
	}
	return nil
}

func (m *Repo) SaveStep(ctx context.Context, s *domain.Step) error {
	if m.SaveStepFn != nil {
		return m.SaveStepFn(ctx, s)
	}
	return nil
}

func (m *Repo) DeleteStep(ctx context.Context, s *domain.Step) error {
	if m.DeleteStepFn != nil {
		return m.DeleteStepFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetRoleAssignment(ctx context.Context, workflowID, stepID uint64) (*domain.RoleAssignment, error) {
	if m.GetRoleAssignmentFn != nil {
		return m.GetRoleAssignmentFn(ctx, workflowID, stepID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SaveRoleAssignment(ctx context.Context, a *domain.RoleAssignment) error {
	if m.SaveRoleAssignmentFn != nil {
		return m.SaveRoleAssignmentFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetEscalation(ctx context.Context, workflowID, stepID uint64) (*domain.Escalation, error) {
	if m.GetEscalationFn != nil {
		return m.GetEscalationFn(ctx, workflowID, stepID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SaveEscalation(ctx context.Context, e *domain.Escalation) error {
	if m.SaveEscalationFn != nil {
		return m.SaveEscalationFn(ctx, e)
	}
	return nil
}
