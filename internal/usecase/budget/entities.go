package budget

import "github.com/shopspring/decimal"

type CreateInput struct {
	DepartmentID uint64          `json:"department_id" validate:"required"`
	BudgetLimit  decimal.Decimal `json:"budget_limit" validate:"gt=0"`
	Description  string          `json:"description"`
}

// UpdateInput is partial; nil fields are left alone.
type UpdateInput struct {
	BudgetLimit *decimal.Decimal `json:"budget_limit"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Exceeded is the detail payload of a BUDGET_EXCEEDED error.
type Exceeded struct {
	Scope     string          `json:"scope"`
	Budget    decimal.Decimal `json:"budget"`
	Allocated decimal.Decimal `json:"allocated"`
	Requested decimal.Decimal `json:"requested"`
	Remaining decimal.Decimal `json:"remaining"`
}
