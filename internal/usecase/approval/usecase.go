package approval

import (
	"context"
	"errors"
	"strings"

	domain "procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/infrastructure/metrics"
	"procurement-approval/internal/shared/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Usecase is the approval engine. Every action runs in one transaction that
// holds the request row lock, so concurrent actions on a request serialize
// and the loser sees the precondition already gone.
type Usecase struct {
	uow uow.UnitOfWork
	pub notification.Publisher
	log *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, pub notification.Publisher, log *zap.Logger) *Usecase {
	if pub == nil {
		pub = notification.Nop{}
	}
	return &Usecase{uow: tx, pub: pub, log: logger.OrNop(log).Named("approval.engine")}
}

// TakeAction applies approve, reject or sendback on the request's actionable
// row. The row must be pending, have the lowest order among pending rows and
// be assigned to the actor.
func (u *Usecase) TakeAction(ctx context.Context, in ActionInput) (*ActionResult, error) {
	in.Action = domain.Action(strings.ToLower(strings.TrimSpace(string(in.Action))))
	if !in.Action.Valid() {
		return nil, apperror.Validation("action", "must be one of approve, reject, sendback")
	}
	if in.ActorID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	var (
		res    *ActionResult
		events []notification.Event
	)
	err := u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *request.Request) error {
		if req.Status != request.StatusSubmitted {
			return apperror.ErrNoPendingStepForActor
		}
		rows, err := r.Approvals.ListByRequestForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		cur := actionable(rows)
		if cur < 0 || rows[cur].AssignedUserID != in.ActorID {
			return apperror.ErrNoPendingStepForActor
		}

		t := &transition{ctx: ctx, r: r, req: req, rows: rows, cur: cur, in: in}
		switch in.Action {
		case domain.ActionApprove:
			err = t.approve()
		case domain.ActionReject:
			err = t.reject()
		case domain.ActionSendback:
			err = t.sendback()
		}
		if err != nil {
			return err
		}
		if err := syncRequestStatus(ctx, r, req); err != nil {
			return err
		}
		res, events = t.result(), t.events
		return nil
	})
	if err != nil {
		outcome := "error"
		if ae, ok := apperror.As(err); ok {
			outcome = strings.ToLower(ae.Code)
		}
		metrics.WorkflowActionsTotal.WithLabelValues(string(in.Action), outcome).Inc()
		u.logFailure(err,
			zap.Uint64("request_id", in.RequestID),
			zap.Uint64("actor_id", in.ActorID),
			zap.String("action", string(in.Action)))
		return nil, apperror.FromRepository(err, "request")
	}

	metrics.WorkflowActionsTotal.WithLabelValues(string(in.Action), "ok").Inc()
	u.log.Info("workflow action applied",
		zap.Uint64("request_id", res.RequestID),
		zap.Uint64("actor_id", in.ActorID),
		zap.String("action", string(in.Action)),
		zap.Int("step_order", res.StepOrder),
		zap.Bool("completed", res.Completed))
	notification.Dispatch(ctx, u.pub, u.log, events...)
	return res, nil
}

// MyActions lists every request the actor has acted on, each shown through
// the actor's most recently updated row.
func (u *Usecase) MyActions(ctx context.Context, actorID uint64) (*MyActionsDTO, error) {
	out := &MyActionsDTO{Items: []MyActionItem{}}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rows, err := r.Approvals.ListActedBy(ctx, actorID)
		if err != nil {
			return err
		}
		latest := make(map[uint64]domain.Detail, len(rows))
		var ids []uint64
		for _, d := range rows {
			if _, seen := latest[d.RequestID]; seen {
				continue
			}
			latest[d.RequestID] = d
			ids = append(ids, d.RequestID)
		}
		reqs, err := r.Requests.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint64]request.Request, len(reqs))
		for _, q := range reqs {
			byID[q.ID] = q
		}

		for _, id := range ids {
			q, ok := byID[id]
			if !ok {
				continue // deleted
			}
			d := latest[id]
			item := MyActionItem{
				RequestID:     q.ID,
				RequestNo:     q.RequestNo,
				RequestType:   q.RequestType,
				Amount:        q.Amount,
				RequestStatus: q.Status,
				Status:        d.Status.Display(),
				StepOrder:     d.StepOrder,
				Remark:        d.Remark,
				ActedAt:       d.UpdatedAt,
			}
			switch item.Status {
			case domain.StatusApproved:
				out.Counts.Approved++
			case domain.StatusRejected:
				out.Counts.Rejected++
			default:
				out.Counts.Pending++
			}
			out.Items = append(out.Items, item)
		}
		return nil
	})
	if err != nil {
		u.log.Error("list actor actions failed", zap.Uint64("actor_id", actorID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (u *Usecase) logFailure(err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ae, ok := apperror.As(err); ok && ae.HTTPStatus < 500 {
		u.log.Warn("workflow action refused", fields...)
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u.log.Warn("workflow action refused", fields...)
		return
	}
	u.log.Error("workflow action failed", fields...)
}

// actionable returns the index of the pending row with the lowest step
// order, or -1. rows must be ordered by step order.
func actionable(rows []*domain.Detail) int {
	for i, d := range rows {
		if d.Status == domain.StatusPending {
			return i
		}
	}
	return -1
}

// syncRequestStatus keeps the header at submitted once the workflow runs.
// Completion and rejection are read from the progress rows.
func syncRequestStatus(ctx context.Context, r uow.Repos, req *request.Request) error {
	if req.Status == request.StatusSubmitted {
		return nil
	}
	req.Status = request.StatusSubmitted
	return r.Requests.Save(ctx, req)
}
