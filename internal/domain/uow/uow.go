package uow

import (
	"context"

	"procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/budget"
	"procurement-approval/internal/domain/reference"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/workflow"
)

// Repos are bound to one transaction.
type Repos struct {
	Requests   request.Repository
	Approvals  approval.Repository
	Workflows  workflow.Repository
	References reference.Repository
	Budgets    budget.Repository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinRequestTx locks the request row first, then passes it in.
	WithinRequestTx(ctx context.Context, requestID uint64, fn func(r Repos, req *request.Request) error) error
}
