package approval

import (
	"context"
	"errors"
	"testing"

	domain "procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/reference"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
	"procurement-approval/internal/shared/apperror"
	"procurement-approval/internal/testutil/approvalmock"
	"procurement-approval/internal/testutil/referencemock"
	"procurement-approval/internal/testutil/requestmock"
	"procurement-approval/internal/testutil/uowmock"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestUsecase_TakeAction(t *testing.T) {
	submitted := func() *request.Request {
		return &request.Request{ID: 7, RequestNo: "REQ-2026-007", RequesterID: 1, Amount: decimal.NewFromInt(300), Status: request.StatusSubmitted}
	}
	twoRows := func() []*domain.Detail {
		return []*domain.Detail{
			{ID: 1, RequestID: 7, StepOrder: 1, AssignedUserID: 10, Status: domain.StatusPending},
			{ID: 2, RequestID: 7, StepOrder: 2, AssignedUserID: 20},
		}
	}
	manager := &reference.User{ID: 10, LOA: decimal.NewFromInt(1000)}

	tests := []struct {
		name    string
		in      ActionInput
		repos   func() uow.Repos
		wantErr error
		check   func(*ActionResult) error
	}{
		{
			name: "approve activates next row",
			in:   ActionInput{RequestID: 7, ActorID: 10, Action: "Approve"},
			repos: func() uow.Repos {
				var saved []domain.Status
				return uow.Repos{
					Requests: &requestmock.Repo{GetByIDForUpdateFn: func(context.Context, uint64) (*request.Request, error) { return submitted(), nil }},
					Approvals: &approvalmock.Repo{
						ListByRequestForUpdateFn: func(context.Context, uint64) ([]*domain.Detail, error) { return twoRows(), nil },
						SaveFn: func(_ context.Context, d *domain.Detail) error {
							saved = append(saved, d.Status)
							if len(saved) == 2 && (saved[0] != domain.StatusApproved || saved[1] != domain.StatusPending) {
								t.Fatalf("unexpected save order %v", saved)
							}
							return nil
						},
					},
					References: &referencemock.Repo{GetUserFn: func(context.Context, uint64) (*reference.User, error) { return manager, nil }},
				}
			},
			check: func(res *ActionResult) error {
				if res.ActivatedStep == nil || res.ActivatedStep.AssignedUserID != 20 {
					return errors.New("expected step 2 assigned to 20 to be activated")
				}
				if res.Action != domain.ActionApprove {
					return errors.New("action should be normalised")
				}
				return nil
			},
		},
		{
			name: "request missing",
			in:   ActionInput{RequestID: 7, ActorID: 10, Action: domain.ActionApprove},
			repos: func() uow.Repos {
				return uow.Repos{Requests: &requestmock.Repo{}}
			},
			wantErr: apperror.ErrNotFound,
		},
		{
			name: "approver record missing",
			in:   ActionInput{RequestID: 7, ActorID: 10, Action: domain.ActionApprove},
			repos: func() uow.Repos {
				return uow.Repos{
					Requests:   &requestmock.Repo{GetByIDForUpdateFn: func(context.Context, uint64) (*request.Request, error) { return submitted(), nil }},
					Approvals:  &approvalmock.Repo{ListByRequestForUpdateFn: func(context.Context, uint64) ([]*domain.Detail, error) { return twoRows(), nil }},
					References: &referencemock.Repo{},
				}
			},
			wantErr: apperror.ErrNotFound,
		},
		{
			name: "save failure is internal",
			in:   ActionInput{RequestID: 7, ActorID: 10, Action: domain.ActionReject},
			repos: func() uow.Repos {
				return uow.Repos{
					Requests: &requestmock.Repo{GetByIDForUpdateFn: func(context.Context, uint64) (*request.Request, error) { return submitted(), nil }},
					Approvals: &approvalmock.Repo{
						ListByRequestForUpdateFn: func(context.Context, uint64) ([]*domain.Detail, error) { return twoRows(), nil },
						SaveFn:                   func(context.Context, *domain.Detail) error { return errors.New("deadlock") },
					},
				}
			},
			wantErr: apperror.ErrInternal,
		},
		{
			name: "no rows at all",
			in:   ActionInput{RequestID: 7, ActorID: 10, Action: domain.ActionSendback},
			repos: func() uow.Repos {
				return uow.Repos{
					Requests:  &requestmock.Repo{GetByIDForUpdateFn: func(context.Context, uint64) (*request.Request, error) { return submitted(), nil }},
					Approvals: &approvalmock.Repo{},
				}
			},
			wantErr: apperror.ErrNoPendingStepForActor,
		},
		{
			name:    "anonymous actor",
			in:      ActionInput{RequestID: 7, Action: domain.ActionApprove},
			repos:   func() uow.Repos { return uow.Repos{} },
			wantErr: apperror.ErrUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewUsecase(uowmock.Passthrough(tc.repos()), nil, zap.NewNop())
			res, err := uc.TakeAction(context.Background(), tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tc.check != nil {
				if cerr := tc.check(res); cerr != nil {
					t.Fatal(cerr)
				}
			}
		})
	}
}

func TestUsecase_MyActions_RepoError(t *testing.T) {
	repos := uow.Repos{
		Approvals: &approvalmock.Repo{ListActedByFn: func(context.Context, uint64) ([]domain.Detail, error) {
			return nil, gorm.ErrInvalidDB
		}},
	}
	uc := NewUsecase(uowmock.Passthrough(repos), nil, nil)
	if _, err := uc.MyActions(context.Background(), 1); !errors.Is(err, apperror.ErrInternal) {
		t.Fatalf("want internal error, got %v", err)
	}
}
