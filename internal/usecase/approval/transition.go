package approval

import (
	"context"
	"errors"

	domain "procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
	"procurement-approval/internal/shared/apperror"

	"gorm.io/gorm"
)

// transition carries one engine call inside its transaction.
type transition struct {
	ctx  context.Context
	r    uow.Repos
	req  *request.Request
	rows []*domain.Detail
	cur  int
	in   ActionInput

	activated *domain.Detail
	rejected  []int
	events    []notification.Event
}

func (t *transition) current() *domain.Detail { return t.rows[t.cur] }

func (t *transition) approve() error {
	actor, err := t.r.References.GetUser(t.ctx, t.in.ActorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("user")
	}
	if err != nil {
		return err
	}
	if t.req.Amount.GreaterThan(actor.LOA) {
		return apperror.ErrInsufficientAuthority.WithDetails(map[string]string{
			"amount": t.req.Amount.String(),
			"loa":    actor.LOA.String(),
		})
	}

	cur := t.current()
	cur.Status = domain.StatusApproved
	cur.IsSendback = false
	cur.SendbackRemark = ""
	cur.ActionTakenBy = &t.in.ActorID
	cur.Remark = t.in.Remark
	if err := t.r.Approvals.Save(t.ctx, cur); err != nil {
		return err
	}

	next := t.neighbour(+1)
	if next == nil {
		return nil
	}
	next.Status = domain.StatusPending
	if err := t.r.Approvals.Save(t.ctx, next); err != nil {
		return err
	}
	t.activated = next
	t.events = append(t.events, t.stepActivated(next))
	return nil
}

func (t *transition) reject() error {
	cur := t.current()
	cur.Status = domain.StatusRejected
	cur.IsSendback = false
	cur.ActionTakenBy = &t.in.ActorID
	cur.Remark = t.in.Remark
	if err := t.r.Approvals.Save(t.ctx, cur); err != nil {
		return err
	}

	for i, d := range t.rows {
		if i == t.cur || d.Status != domain.StatusPending {
			continue
		}
		d.Status = domain.StatusRejected
		if err := t.r.Approvals.Save(t.ctx, d); err != nil {
			return err
		}
		t.rejected = append(t.rejected, d.StepOrder)
	}

	e := notification.New(notification.EventRequestRejected, t.req.ID, t.req.RequestNo, t.in.ActorID, t.req.RequesterID)
	e.Payload = map[string]any{"step_order": cur.StepOrder, "remark": t.in.Remark}
	t.events = append(t.events, e)
	return nil
}

// sendback flags the current row and reactivates the previous one. The
// current row stays pending.
func (t *transition) sendback() error {
	cur := t.current()
	cur.IsSendback = true
	cur.SendbackRemark = t.in.Remark
	cur.Remark = ""
	cur.ActionTakenBy = &t.in.ActorID
	if err := t.r.Approvals.Save(t.ctx, cur); err != nil {
		return err
	}

	recipient := t.req.RequesterID
	prev := t.neighbour(-1)
	if prev != nil {
		prev.Status = domain.StatusPending
		if err := t.r.Approvals.Save(t.ctx, prev); err != nil {
			return err
		}
		t.activated = prev
		recipient = prev.AssignedUserID
	}

	e := notification.New(notification.EventStepSentBack, t.req.ID, t.req.RequestNo, t.in.ActorID, recipient)
	e.Payload = map[string]any{"step_order": cur.StepOrder, "remark": t.in.Remark}
	t.events = append(t.events, e)
	return nil
}

// neighbour returns the row with the closest order after (dir > 0) or
// before (dir < 0) the current row.
func (t *transition) neighbour(dir int) *domain.Detail {
	order := t.current().StepOrder
	var best *domain.Detail
	for _, d := range t.rows {
		switch {
		case dir > 0 && d.StepOrder > order:
			if best == nil || d.StepOrder < best.StepOrder {
				best = d
			}
		case dir < 0 && d.StepOrder < order:
			if best == nil || d.StepOrder > best.StepOrder {
				best = d
			}
		}
	}
	return best
}

func (t *transition) stepActivated(d *domain.Detail) notification.Event {
	e := notification.New(notification.EventStepActivated, t.req.ID, t.req.RequestNo, t.in.ActorID, d.AssignedUserID)
	e.Payload = map[string]any{"step_order": d.StepOrder, "amount": t.req.Amount.String()}
	return e
}

func (t *transition) result() *ActionResult {
	cur := t.current()
	res := &ActionResult{
		RequestID:     t.req.ID,
		RequestNo:     t.req.RequestNo,
		Action:        t.in.Action,
		StepOrder:     cur.StepOrder,
		StepStatus:    cur.Status,
		IsSendback:    cur.IsSendback,
		RequestStatus: t.req.Status,
		RejectedSteps: t.rejected,
	}
	if t.activated != nil {
		res.ActivatedStep = &ActivatedStep{StepOrder: t.activated.StepOrder, AssignedUserID: t.activated.AssignedUserID}
	}
	if t.in.Action == domain.ActionApprove {
		res.Completed = true
		for _, d := range t.rows {
			if d.Status != domain.StatusApproved {
				res.Completed = false
				break
			}
		}
	}
	return res
}
