package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
	wf "procurement-approval/internal/domain/workflow"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/shared/apperror"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Usecase manages workflow definitions and turns them into progress rows
// for submitted requests.
type Usecase struct {
	uow uow.UnitOfWork
	log *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{uow: tx, log: logger.OrNop(log).Named("workflow.service")}
}

func (u *Usecase) CreateDefinition(ctx context.Context, in CreateDefinitionInput) (*wf.Definition, error) {
	name, rtype := strings.TrimSpace(in.Name), strings.TrimSpace(in.RequestType)
	if name == "" {
		return nil, apperror.Validation("name", "is required")
	}
	if rtype == "" {
		return nil, apperror.Validation("request_type", "is required")
	}
	status := in.Status
	if status == "" {
		status = wf.StatusActive
	}
	if status != wf.StatusActive && status != wf.StatusInactive {
		return nil, apperror.Validation("status", "must be active or inactive")
	}

	d := &wf.Definition{
		Name:        name,
		RequestType: rtype,
		CategoryIDs: datatypes.NewJSONSlice(uniqueIDs(in.CategoryIDs)),
		Status:      status,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Workflows.CreateDefinition(ctx, d)
	})
	if err != nil {
		u.log.Error("create definition failed", zap.Error(err))
		return nil, apperror.Internal(err)
	}
	u.log.Info("workflow created", zap.Uint64("workflow_id", d.ID), zap.String("request_type", d.RequestType))
	return d, nil
}

func (u *Usecase) GetDefinition(ctx context.Context, id uint64) (*wf.Definition, error) {
	var out *wf.Definition
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Workflows.GetDefinition(ctx, id)
		if err != nil {
			return apperror.FromRepository(err, "workflow")
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// AddStep appends a step after the current last one.
func (u *Usecase) AddStep(ctx context.Context, workflowID uint64, in AddStepInput) (*wf.Step, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation("name", "is required")
	}
	if in.RoleID == 0 {
		return nil, apperror.Validation("role_id", "is required")
	}
	if in.SLAHours < 0 {
		return nil, apperror.Validation("sla_hours", "must not be negative")
	}

	var step *wf.Step
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Workflows.GetDefinition(ctx, workflowID); err != nil {
			return apperror.FromRepository(err, "workflow")
		}
		steps, err := r.Workflows.ListSteps(ctx, workflowID)
		if err != nil {
			return err
		}
		next := 1
		for _, s := range steps {
			if s.OrderID >= next {
				next = s.OrderID + 1
			}
		}
		step = &wf.Step{
			WorkflowID: workflowID,
			Name:       strings.TrimSpace(in.Name),
			OrderID:    next,
			RoleID:     in.RoleID,
			SLAHours:   in.SLAHours,
			Status:     wf.StatusActive,
		}
		return r.Workflows.CreateStep(ctx, step)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.log.Info("step added", zap.Uint64("workflow_id", workflowID), zap.Uint64("step_id", step.ID), zap.Int("order", step.OrderID))
	return step, nil
}

// MoveStep puts the step at position newOrder and renumbers every step
// 1..n. Steps between the old and new positions shift by one.
func (u *Usecase) MoveStep(ctx context.Context, workflowID, stepID uint64, newOrder int) ([]wf.Step, error) {
	var out []wf.Step
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		steps, err := r.Workflows.ListSteps(ctx, workflowID)
		if err != nil {
			return err
		}
		idx := indexOfStep(steps, stepID)
		if idx < 0 {
			return apperror.NotFound("workflow step")
		}
		if newOrder < 1 || newOrder > len(steps) {
			return apperror.Validation("order_id", fmt.Sprintf("must be between 1 and %d", len(steps)))
		}

		moved := steps[idx]
		rest := append(append([]wf.Step{}, steps[:idx]...), steps[idx+1:]...)
		reordered := make([]wf.Step, 0, len(steps))
		reordered = append(reordered, rest[:newOrder-1]...)
		reordered = append(reordered, moved)
		reordered = append(reordered, rest[newOrder-1:]...)

		out, err = renumber(ctx, r.Workflows, reordered)
		return err
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.log.Info("step moved", zap.Uint64("workflow_id", workflowID), zap.Uint64("step_id", stepID), zap.Int("order", newOrder))
	return out, nil
}

// RemoveStep deletes the step with its role assignment and escalation and
// closes the gap in the ordering.
func (u *Usecase) RemoveStep(ctx context.Context, workflowID, stepID uint64) ([]wf.Step, error) {
	var out []wf.Step
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		steps, err := r.Workflows.ListSteps(ctx, workflowID)
		if err != nil {
			return err
		}
		idx := indexOfStep(steps, stepID)
		if idx < 0 {
			return apperror.NotFound("workflow step")
		}
		if err := r.Workflows.DeleteStep(ctx, &steps[idx]); err != nil {
			return err
		}
		rest := append(append([]wf.Step{}, steps[:idx]...), steps[idx+1:]...)
		out, err = renumber(ctx, r.Workflows, rest)
		return err
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.log.Info("step removed", zap.Uint64("workflow_id", workflowID), zap.Uint64("step_id", stepID))
	return out, nil
}

// AssignRole upserts the single role assignment of a step. A specific user
// on a "single" step must hold the bound role.
func (u *Usecase) AssignRole(ctx context.Context, in AssignRoleInput) (*wf.RoleAssignment, error) {
	if !in.Logic.Valid() {
		return nil, apperror.Validation("approval_logic", "must be one of single, and, or")
	}
	specific := in.Logic == wf.LogicSingle && in.IsSpecificUser
	if specific && (in.UserID == nil || *in.UserID == 0) {
		return nil, apperror.Validation("user_id", "is required for a specific-user step")
	}

	var out *wf.RoleAssignment
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		step, err := r.Workflows.GetStep(ctx, in.WorkflowID, in.StepID)
		if err != nil {
			return apperror.FromRepository(err, "workflow step")
		}
		roleID := in.RoleID
		if roleID == 0 {
			roleID = step.RoleID
		}

		var userID *uint64
		if specific {
			ok, err := r.References.RoleHasMember(ctx, roleID, *in.UserID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.Validation("user_id", "user does not hold the step role")
			}
			uid := *in.UserID
			userID = &uid
		}

		a, err := r.Workflows.GetRoleAssignment(ctx, in.WorkflowID, in.StepID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			a = &wf.RoleAssignment{WorkflowID: in.WorkflowID, StepID: in.StepID}
		case err != nil:
			return err
		}
		a.RoleID = roleID
		a.Logic = in.Logic
		a.IsSpecificUser = specific
		a.UserID = userID
		if err := r.Workflows.SaveRoleAssignment(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			u.log.Warn("role assignment refused", zap.Uint64("step_id", in.StepID), zap.Error(err))
		}
		return nil, apperror.Internal(err)
	}
	u.log.Info("role assigned",
		zap.Uint64("workflow_id", in.WorkflowID),
		zap.Uint64("step_id", in.StepID),
		zap.String("logic", string(out.Logic)))
	return out, nil
}

// EligibleUsers resolves the current roster of a step.
func (u *Usecase) EligibleUsers(ctx context.Context, workflowID, stepID uint64) (*EligibleUsersDTO, error) {
	var out *EligibleUsersDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Workflows.GetRoleAssignment(ctx, workflowID, stepID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Configuration("step has no role assignment")
		}
		if err != nil {
			return err
		}
		res := wf.ResolverFor(*a)
		users, err := res.Roster(ctx, r.References)
		if err != nil {
			return err
		}
		if users == nil {
			users = []uint64{}
		}
		out = &EligibleUsersDTO{
			WorkflowID: workflowID,
			StepID:     stepID,
			Logic:      a.Logic,
			Resolver:   res.Kind.String(),
			UserIDs:    users,
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// Applicable returns the first active definition for the request type whose
// category set covers categoryID.
func (u *Usecase) Applicable(ctx context.Context, requestType string, categoryID uint64) (*wf.Definition, error) {
	var out *wf.Definition
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := applicable(ctx, r.Workflows, requestType, categoryID)
		out = d
		return err
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func applicable(ctx context.Context, repo wf.Repository, requestType string, categoryID uint64) (*wf.Definition, error) {
	defs, err := repo.ListActiveByRequestType(ctx, requestType)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		if defs[i].CoversCategory(categoryID) {
			return &defs[i], nil
		}
	}
	return nil, apperror.Configuration(fmt.Sprintf("no active workflow for request type %q", requestType))
}

// Instantiate creates one progress row per active step, in step order. The
// first row starts pending, the rest stay dormant. It must run inside the
// caller's transaction.
func (u *Usecase) Instantiate(ctx context.Context, r uow.Repos, req *request.Request) ([]*approval.Detail, error) {
	def, err := applicable(ctx, r.Workflows, req.RequestType, req.CategoryID)
	if err != nil {
		return nil, err
	}
	all, err := r.Workflows.ListSteps(ctx, def.ID)
	if err != nil {
		return nil, err
	}
	steps := make([]wf.Step, 0, len(all))
	for _, s := range all {
		if s.Status != wf.StatusInactive {
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		return nil, apperror.Configuration(fmt.Sprintf("workflow %q has no steps", def.Name))
	}

	rows := make([]*approval.Detail, 0, len(steps))
	for i, s := range steps {
		a, err := r.Workflows.GetRoleAssignment(ctx, def.ID, s.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Configuration(fmt.Sprintf("step %q has no role assignment", s.Name))
		}
		if err != nil {
			return nil, err
		}

		res := wf.ResolverFor(*a)
		roster, err := res.Roster(ctx, r.References)
		if err != nil {
			return nil, err
		}
		assignee, err := res.Assignee(roster)
		if errors.Is(err, wf.ErrEmptyRoster) {
			return nil, apperror.Configuration(fmt.Sprintf("step %q has no eligible approver", s.Name))
		}
		if err != nil {
			return nil, err
		}

		row := &approval.Detail{
			RequestID:        req.ID,
			WorkflowID:       def.ID,
			WorkflowStepID:   s.ID,
			WorkflowRoleID:   a.ID,
			StepOrder:        s.OrderID,
			AssignedUserID:   assignee,
			CandidateUserIDs: datatypes.NewJSONSlice(roster),
			ApprovalLogic:    a.Logic,
		}
		if i == 0 {
			row.Status = approval.StatusPending
		}
		rows = append(rows, row)
	}

	if err := r.Approvals.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}
	u.log.Info("workflow instantiated",
		zap.Uint64("request_id", req.ID),
		zap.Uint64("workflow_id", def.ID),
		zap.Int("steps", len(rows)),
		zap.Uint64("first_assignee", rows[0].AssignedUserID))
	return rows, nil
}

// ConfigureEscalation upserts the SLA policy of a step.
func (u *Usecase) ConfigureEscalation(ctx context.Context, in EscalationInput) (*wf.Escalation, error) {
	if !in.NotifyType.Valid() {
		return nil, apperror.Validation("notify_type", "must be one of reassign, notify, notify_and_reassign")
	}
	if in.SLAHour <= 0 {
		return nil, apperror.Validation("sla_hour", "must be greater than 0")
	}
	if in.EscalationHour < 0 {
		return nil, apperror.Validation("escalation_hour", "must not be negative")
	}
	if in.UserID == 0 {
		return nil, apperror.Validation("user_id", "is required")
	}

	var out *wf.Escalation
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		step, err := r.Workflows.GetStep(ctx, in.WorkflowID, in.StepID)
		if err != nil {
			return apperror.FromRepository(err, "workflow step")
		}
		if _, err := r.References.GetUser(ctx, in.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Validation("user_id", "unknown user")
			}
			return err
		}
		roleID := in.RoleID
		if roleID == 0 {
			roleID = step.RoleID
		}

		e, err := r.Workflows.GetEscalation(ctx, in.WorkflowID, in.StepID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			e = &wf.Escalation{WorkflowID: in.WorkflowID, StepID: in.StepID}
		case err != nil:
			return err
		}
		e.RoleID = roleID
		e.UserID = in.UserID
		e.SLAHour = in.SLAHour
		e.EscalationHour = in.EscalationHour
		e.NotifyType = in.NotifyType
		if err := r.Workflows.SaveEscalation(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.log.Info("escalation configured",
		zap.Uint64("workflow_id", in.WorkflowID),
		zap.Uint64("step_id", in.StepID),
		zap.String("notify_type", string(in.NotifyType)))
	return out, nil
}

func indexOfStep(steps []wf.Step, stepID uint64) int {
	for i := range steps {
		if steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// renumber assigns 1..n in slice order and saves only the steps that moved.
func renumber(ctx context.Context, repo wf.Repository, steps []wf.Step) ([]wf.Step, error) {
	for i := range steps {
		want := i + 1
		if steps[i].OrderID == want {
			continue
		}
		steps[i].OrderID = want
		if err := repo.SaveStep(ctx, &steps[i]); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
