package approval

import (
	"time"

	"gorm.io/datatypes"

	"procurement-approval/internal/domain/workflow"
)

// Status of one progress row. The zero value is a dormant row that has not
// been activated yet.
type Status string

const (
	StatusDormant  Status = ""
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Display maps the stored status to what the per-actor view shows.
func (s Status) Display() Status {
	if s == StatusDormant {
		return StatusPending
	}
	return s
}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSendback Action = "sendback"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionSendback:
		return true
	}
	return false
}

// Table: request_workflow_details (one row per workflow step per request).
// Rows are mutated in place and never deleted; the set is the audit trail.
type Detail struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequestID      uint64 `gorm:"column:request_id;not null;index:idx_rwd_request_order" json:"request_id"`
	WorkflowID     uint64 `gorm:"column:workflow_id;not null" json:"workflow_id"`
	WorkflowStepID uint64 `gorm:"column:workflow_step_id;not null" json:"workflow_step_id"`
	WorkflowRoleID uint64 `gorm:"column:workflow_role_id;not null" json:"workflow_role_id"`
	// Snapshot of the step order at instantiation; later reordering of the
	// definition does not affect running requests.
	StepOrder        int                         `gorm:"column:step_order;not null;index:idx_rwd_request_order" json:"step_order"`
	AssignedUserID   uint64                      `gorm:"column:assigned_user_id;not null;index" json:"assigned_user_id"`
	CandidateUserIDs datatypes.JSONSlice[uint64] `gorm:"column:candidate_user_ids" json:"candidate_user_ids"`
	ApprovalLogic    workflow.Logic              `gorm:"column:approval_logic;size:10;not null" json:"approval_logic"`
	ActionTakenBy    *uint64                     `gorm:"column:action_taken_by;index" json:"action_taken_by,omitempty"`
	Remark           string                      `gorm:"column:remark;type:text" json:"remark"`
	Status           Status                      `gorm:"column:status;size:20;index" json:"status"`
	IsSendback       bool                        `gorm:"column:is_sendback;not null;default:false" json:"is_sendback"`
	SendbackRemark   string                      `gorm:"column:sendback_remark;type:text" json:"sendback_remark"`
	EscalatedAt      *time.Time                  `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	CreatedAt        time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Detail) TableName() string { return "request_workflow_details" }
