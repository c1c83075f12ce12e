package uowmock

import (
	"context"
	"errors"

	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn        func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinRequestTxFn func(ctx context.Context, requestID uint64, fn func(r uow.Repos, req *request.Request) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough runs every transaction body directly against repos. The
// request-scoped variant loads the request through repos.Requests.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinRequestTxFn: func(ctx context.Context, requestID uint64, fn func(uow.Repos, *request.Request) error) error {
			req, err := repos.Requests.GetByIDForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			return fn(repos, req)
		},
	}
}

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinRequestTx(fn func(context.Context, uint64, func(uow.Repos, *request.Request) error) error) *UoW {
	m.WithinRequestTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinRequestTx(ctx context.Context, requestID uint64, fn func(r uow.Repos, req *request.Request) error) error {
	if m.WithinRequestTxFn != nil {
		return m.WithinRequestTxFn(ctx, requestID, fn)
	}
	return errUnimplemented
}
