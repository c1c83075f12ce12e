package workflow

import "context"

type Repository interface {
	CreateDefinition(ctx context.Context, d *Definition) error
	GetDefinition(ctx context.Context, id uint64) (*Definition, error)
	// ListActiveByRequestType returns active definitions, lowest id first.
	ListActiveByRequestType(ctx context.Context, requestType string) ([]Definition, error)

	// ListSteps returns steps ordered by OrderID ascending.
	ListSteps(ctx context.Context, workflowID uint64) ([]Step, error)
	GetStep(ctx context.Context, workflowID, stepID uint64) (*Step, error)
	CreateStep(ctx context.Context, s *Step) error
	SaveStep(ctx context.Context, s *Step) error
	DeleteStep(ctx context.Context, s *Step) error

	GetRoleAssignment(ctx context.Context, workflowID, stepID uint64) (*RoleAssignment, error)
	SaveRoleAssignment(ctx context.Context, a *RoleAssignment) error

	GetEscalation(ctx context.Context, workflowID, stepID uint64) (*Escalation, error)
	SaveEscalation(ctx context.Context, e *Escalation) error
}
