package workflow

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Logic decides who may act on a step.
type Logic string

const (
	LogicSingle Logic = "single"
	LogicAnd    Logic = "and"
	LogicOr     Logic = "or"
)

func (l Logic) Valid() bool {
	switch l {
	case LogicSingle, LogicAnd, LogicOr:
		return true
	}
	return false
}

type NotifyType string

const (
	NotifyReassign    NotifyType = "reassign"
	NotifyOnly        NotifyType = "notify"
	NotifyAndReassign NotifyType = "notify_and_reassign"
)

func (n NotifyType) Valid() bool {
	switch n {
	case NotifyReassign, NotifyOnly, NotifyAndReassign:
		return true
	}
	return false
}

func (n NotifyType) Reassigns() bool { return n == NotifyReassign || n == NotifyAndReassign }
func (n NotifyType) Notifies() bool  { return n == NotifyOnly || n == NotifyAndReassign }

// Table: workflows
type Definition struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"column:name;size:150;not null" json:"name"`
	RequestType string `gorm:"column:request_type;size:50;not null;index" json:"request_type"`
	// Ordered set of category ids; empty means every category.
	CategoryIDs datatypes.JSONSlice[uint64] `gorm:"column:category_ids" json:"category_ids"`
	Status      Status                      `gorm:"column:status;size:20;not null;default:active" json:"status"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Steps []Step `gorm:"foreignKey:WorkflowID" json:"steps,omitempty"`
}

func (Definition) TableName() string { return "workflows" }

// CoversCategory reports whether the definition applies to categoryID.
func (d *Definition) CoversCategory(categoryID uint64) bool {
	if len(d.CategoryIDs) == 0 {
		return true
	}
	for _, id := range d.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Table: workflow_steps. OrderID is unique and contiguous (1..n) within a workflow.
type Step struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkflowID uint64    `gorm:"column:workflow_id;not null;index:idx_workflow_steps_order" json:"workflow_id"`
	Name       string    `gorm:"column:name;size:150;not null" json:"name"`
	OrderID    int       `gorm:"column:order_id;not null;index:idx_workflow_steps_order" json:"order_id"`
	RoleID     uint64    `gorm:"column:role_id;not null" json:"role_id"`
	SLAHours   int       `gorm:"column:sla_hours;not null;default:0" json:"sla_hours"`
	Status     Status    `gorm:"column:status;size:20;not null;default:active" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Step) TableName() string { return "workflow_steps" }

// Table: workflow_roles. One assignment per (workflow, step).
type RoleAssignment struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkflowID     uint64    `gorm:"column:workflow_id;not null;uniqueIndex:ux_workflow_roles_step" json:"workflow_id"`
	StepID         uint64    `gorm:"column:step_id;not null;uniqueIndex:ux_workflow_roles_step" json:"step_id"`
	RoleID         uint64    `gorm:"column:role_id;not null" json:"role_id"`
	Logic          Logic     `gorm:"column:approval_logic;size:10;not null" json:"approval_logic"`
	IsSpecificUser bool      `gorm:"column:is_specific_user;not null;default:false" json:"is_specific_user"`
	UserID         *uint64   `gorm:"column:user_id" json:"user_id,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RoleAssignment) TableName() string { return "workflow_roles" }

// Table: escalations. Read by the SLA monitor only.
type Escalation struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkflowID     uint64     `gorm:"column:workflow_id;not null;uniqueIndex:ux_escalations_step" json:"workflow_id"`
	StepID         uint64     `gorm:"column:step_id;not null;uniqueIndex:ux_escalations_step" json:"step_id"`
	RoleID         uint64     `gorm:"column:role_id;not null" json:"role_id"`
	UserID         uint64     `gorm:"column:user_id;not null" json:"user_id"`
	SLAHour        int        `gorm:"column:sla_hour;not null" json:"sla_hour"`
	EscalationHour int        `gorm:"column:escalation_hour;not null" json:"escalation_hour"`
	NotifyType     NotifyType `gorm:"column:notify_type;size:30;not null" json:"notify_type"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Escalation) TableName() string { return "escalations" }
