package request

import (
	"context"
	"errors"
	"strings"
	"time"

	"procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/domain/reference"
	domain "procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/infrastructure/metrics"
	"procurement-approval/internal/shared/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Instantiator creates the progress rows of a request inside the caller's
// transaction.
type Instantiator interface {
	Instantiate(ctx context.Context, r uow.Repos, req *domain.Request) ([]*approval.Detail, error)
}

type Usecase struct {
	uow       uow.UnitOfWork
	workflows Instantiator
	pub       notification.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, workflows Instantiator, pub notification.Publisher, log *zap.Logger) *Usecase {
	if pub == nil {
		pub = notification.Nop{}
	}
	return &Usecase{
		uow:       tx,
		workflows: workflows,
		pub:       pub,
		log:       logger.OrNop(log).Named("request.service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the request with its documents and, unless it is a draft,
// starts its workflow. Everything commits together.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*RequestDTO, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	var (
		req  *domain.Request
		rows []*approval.Detail
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		dept, err := r.References.GetDepartment(ctx, in.DepartmentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Validation("department_id", "unknown department")
		}
		if err != nil {
			return err
		}
		if dept.EntityID != in.EntityID {
			return apperror.Validation("department_id", "department does not belong to entity")
		}

		year := u.now().Year()
		seq, err := r.Requests.NextSequence(ctx, year)
		if err != nil {
			return err
		}

		status := domain.StatusSubmitted
		if in.Draft {
			status = domain.StatusDraft
		}
		req = &domain.Request{
			RequestNo:             domain.FormatNumber(year, seq),
			RequesterID:           in.RequesterID,
			EntityID:              in.EntityID,
			DepartmentID:          in.DepartmentID,
			CategoryID:            in.CategoryID,
			RequestType:           strings.TrimSpace(in.RequestType),
			SupplierID:            in.SupplierID,
			Amount:                in.Amount,
			ExpectedDate:          in.ExpectedDate.UTC(),
			BehalfOf:              in.BehalfOf,
			BehalfDepartmentID:    in.BehalfDepartmentID,
			Description:           in.Description,
			BusinessJustification: in.BusinessJustification,
			Status:                status,
			Documents:             toDocuments(in.Attachments),
		}
		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		if in.Draft {
			return nil
		}
		rows, err = u.workflows.Instantiate(ctx, r, req)
		return err
	})
	if err != nil {
		u.logFailure("create request failed", err, zap.Uint64("requester_id", in.RequesterID))
		return nil, apperror.Internal(err)
	}

	u.log.Info("request created",
		zap.Uint64("request_id", req.ID),
		zap.String("request_no", req.RequestNo),
		zap.String("status", string(req.Status)))
	if !in.Draft {
		u.afterSubmit(ctx, req, rows)
	}
	return toDTO(req), nil
}

// Submit moves a draft into the approval workflow. The request number
// assigned at creation is kept.
func (u *Usecase) Submit(ctx context.Context, actorID, id uint64) (*RequestDTO, error) {
	var (
		req  *domain.Request
		rows []*approval.Detail
	)
	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, locked *domain.Request) error {
		if locked.RequesterID != actorID {
			return apperror.ErrForbidden.WithMessage("only the requester can submit")
		}
		if locked.Status != domain.StatusDraft {
			return apperror.Validation("status", "only draft requests can be submitted")
		}
		locked.Status = domain.StatusSubmitted
		if err := r.Requests.Save(ctx, locked); err != nil {
			return err
		}
		var err error
		if rows, err = u.workflows.Instantiate(ctx, r, locked); err != nil {
			return err
		}
		req = locked
		return nil
	})
	if err != nil {
		u.logFailure("submit request failed", err, zap.Uint64("request_id", id))
		return nil, apperror.FromRepository(err, "request")
	}
	u.log.Info("request submitted", zap.Uint64("request_id", req.ID), zap.String("request_no", req.RequestNo))
	u.afterSubmit(ctx, req, rows)
	return u.Get(ctx, id)
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*RequestDTO, error) {
	var out *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toDTO(req)
		return nil
	})
	if err != nil {
		return nil, apperror.FromRepository(err, "request")
	}
	return out, nil
}

// Update applies a partial change. Only the requester may edit, and only
// while the request is a draft or still in approval. The amount is frozen
// once the workflow has started.
func (u *Usecase) Update(ctx context.Context, actorID, id uint64, in UpdateInput) (*RequestDTO, error) {
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, apperror.Validation("amount", "must be greater than 0")
	}
	if in.Attachments != nil {
		if err := validateDocuments(*in.Attachments); err != nil {
			return nil, err
		}
	}

	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, req *domain.Request) error {
		if req.RequesterID != actorID {
			return apperror.ErrForbidden.WithMessage("only the requester can update")
		}
		if req.Status != domain.StatusDraft && req.Status != domain.StatusSubmitted {
			return apperror.Validation("status", "request can no longer be changed")
		}
		if in.Amount != nil && !in.Amount.Equal(req.Amount) && req.Status != domain.StatusDraft {
			return apperror.Validation("amount", "amount can only change while draft")
		}

		if in.Description != nil {
			req.Description = *in.Description
		}
		if in.BusinessJustification != nil {
			req.BusinessJustification = *in.BusinessJustification
		}
		if in.ExpectedDate != nil {
			req.ExpectedDate = in.ExpectedDate.UTC()
		}
		if in.SupplierID != nil {
			req.SupplierID = in.SupplierID
		}
		if in.Amount != nil {
			req.Amount = *in.Amount
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		if in.Attachments != nil {
			return r.Requests.ReplaceDocuments(ctx, req.ID, toDocuments(*in.Attachments))
		}
		return nil
	})
	if err != nil {
		u.logFailure("update request failed", err, zap.Uint64("request_id", id))
		return nil, apperror.FromRepository(err, "request")
	}
	u.log.Info("request updated", zap.Uint64("request_id", id))
	return u.Get(ctx, id)
}

// Withdraw takes the request out of approval; the engine refuses further
// actions on it.
func (u *Usecase) Withdraw(ctx context.Context, actorID, id uint64) (*RequestDTO, error) {
	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, req *domain.Request) error {
		if req.RequesterID != actorID {
			return apperror.ErrForbidden.WithMessage("only the requester can withdraw")
		}
		if req.Status != domain.StatusDraft && req.Status != domain.StatusSubmitted {
			return apperror.Validation("status", "only draft or submitted requests can be withdrawn")
		}
		req.Status = domain.StatusWithdraw
		return r.Requests.Save(ctx, req)
	})
	if err != nil {
		u.logFailure("withdraw request failed", err, zap.Uint64("request_id", id))
		return nil, apperror.FromRepository(err, "request")
	}
	u.log.Info("request withdrawn", zap.Uint64("request_id", id))
	return u.Get(ctx, id)
}

// Delete is a soft business delete by the requester or an admin. Progress
// rows stay as history.
func (u *Usecase) Delete(ctx context.Context, actorID, id uint64) error {
	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, req *domain.Request) error {
		if req.RequesterID != actorID {
			admin, err := r.References.UserHasRole(ctx, actorID, reference.RoleAdmin)
			if err != nil {
				return err
			}
			if !admin {
				return apperror.ErrForbidden.WithMessage("only the requester or an admin can delete")
			}
		}
		return r.Requests.SoftDelete(ctx, req, actorID)
	})
	if err != nil {
		u.logFailure("delete request failed", err, zap.Uint64("request_id", id))
		return apperror.FromRepository(err, "request")
	}
	u.log.Info("request deleted", zap.Uint64("request_id", id), zap.Uint64("deleted_by", actorID))
	return nil
}

// History returns the progress rows of a request in step order.
func (u *Usecase) History(ctx context.Context, id uint64) (*HistoryDTO, error) {
	var out *HistoryDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		rows, err := r.Approvals.ListByRequest(ctx, id)
		if err != nil {
			return err
		}
		out = &HistoryDTO{RequestID: req.ID, RequestNo: req.RequestNo, Status: req.Status, Steps: make([]StepDTO, 0, len(rows))}
		done := len(rows) > 0
		for _, d := range rows {
			out.Steps = append(out.Steps, toStepDTO(d))
			if d.Status != approval.StatusApproved {
				done = false
			}
		}
		out.Completed = done
		return nil
	})
	if err != nil {
		return nil, apperror.FromRepository(err, "request")
	}
	return out, nil
}

func (u *Usecase) afterSubmit(ctx context.Context, req *domain.Request, rows []*approval.Detail) {
	metrics.RequestsSubmittedTotal.Inc()
	events := []notification.Event{
		notification.New(notification.EventRequestSubmitted, req.ID, req.RequestNo, req.RequesterID, req.RequesterID),
	}
	if len(rows) > 0 {
		e := notification.New(notification.EventStepActivated, req.ID, req.RequestNo, req.RequesterID, rows[0].AssignedUserID)
		e.Payload = map[string]any{"step_order": rows[0].StepOrder, "amount": req.Amount.String()}
		events = append(events, e)
	}
	notification.Dispatch(ctx, u.pub, u.log, events...)
}

// logFailure logs business refusals at Warn and everything else at Error.
func (u *Usecase) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ae, ok := apperror.As(err); ok && ae.HTTPStatus < 500 {
		u.log.Warn(msg, fields...)
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u.log.Warn(msg, fields...)
		return
	}
	u.log.Error(msg, fields...)
}

func validateCreate(in CreateInput) error {
	switch {
	case in.RequesterID == 0:
		return apperror.ErrUnauthorized
	case in.EntityID == 0:
		return apperror.Validation("entity_id", "is required")
	case in.DepartmentID == 0:
		return apperror.Validation("department_id", "is required")
	case in.CategoryID == 0:
		return apperror.Validation("category_id", "is required")
	case strings.TrimSpace(in.RequestType) == "":
		return apperror.Validation("request_type", "is required")
	case !in.Amount.IsPositive():
		return apperror.Validation("amount", "must be greater than 0")
	case in.ExpectedDate.IsZero():
		return apperror.Validation("expected_date", "is required")
	}
	return validateDocuments(in.Attachments)
}

func validateDocuments(docs []DocumentInput) error {
	for _, d := range docs {
		if d.DocumentTypeID == 0 {
			return apperror.Validation("attachments.document_type_id", "is required")
		}
		if strings.TrimSpace(d.FileRef) == "" {
			return apperror.Validation("attachments.file_ref", "is required")
		}
	}
	return nil
}
