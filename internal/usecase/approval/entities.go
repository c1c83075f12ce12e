package approval

import (
	"time"

	domain "procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/request"

	"github.com/shopspring/decimal"
)

type ActionInput struct {
	RequestID uint64
	ActorID   uint64
	Action    domain.Action
	Remark    string
}

// ActionResult describes what one engine call changed.
type ActionResult struct {
	RequestID     uint64         `json:"request_id"`
	RequestNo     string         `json:"request_no"`
	Action        domain.Action  `json:"action"`
	StepOrder     int            `json:"step_order"`
	StepStatus    domain.Status  `json:"step_status"`
	IsSendback    bool           `json:"is_sendback"`
	RequestStatus request.Status `json:"request_status"`
	// ActivatedStep is the row that became pending, if any.
	ActivatedStep *ActivatedStep `json:"activated_step,omitempty"`
	// RejectedSteps lists the other rows cancelled by a reject.
	RejectedSteps []int `json:"rejected_steps,omitempty"`
	Completed     bool  `json:"completed"`
}

type ActivatedStep struct {
	StepOrder      int    `json:"step_order"`
	AssignedUserID uint64 `json:"assigned_user_id"`
}

// MyActionItem is one request seen through the actor's most recent row.
type MyActionItem struct {
	RequestID     uint64          `json:"request_id"`
	RequestNo     string          `json:"request_no"`
	RequestType   string          `json:"request_type"`
	Amount        decimal.Decimal `json:"amount"`
	RequestStatus request.Status  `json:"request_status"`
	Status        domain.Status   `json:"status"`
	StepOrder     int             `json:"step_order"`
	Remark        string          `json:"remark"`
	ActedAt       time.Time       `json:"acted_at"`
}

type Counts struct {
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

type MyActionsDTO struct {
	Items  []MyActionItem `json:"items"`
	Counts Counts         `json:"counts"`
}
