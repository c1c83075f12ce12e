package workflow

import (
	wf "procurement-approval/internal/domain/workflow"
)

type CreateDefinitionInput struct {
	Name        string    `json:"name" validate:"required,max=150"`
	RequestType string    `json:"request_type" validate:"required,max=50"`
	CategoryIDs []uint64  `json:"category_ids"`
	Status      wf.Status `json:"status" validate:"omitempty,oneof=active inactive"`
}

type AddStepInput struct {
	Name     string `json:"name" validate:"required,max=150"`
	RoleID   uint64 `json:"role_id" validate:"required"`
	SLAHours int    `json:"sla_hours" validate:"gte=0"`
}

type AssignRoleInput struct {
	WorkflowID     uint64   `json:"-"`
	StepID         uint64   `json:"-"`
	RoleID         uint64   `json:"role_id"`
	Logic          wf.Logic `json:"approval_logic" validate:"required,oneof=single and or"`
	IsSpecificUser bool     `json:"is_specific_user"`
	UserID         *uint64  `json:"user_id"`
}

type EscalationInput struct {
	WorkflowID     uint64        `json:"-"`
	StepID         uint64        `json:"-"`
	RoleID         uint64        `json:"role_id"`
	UserID         uint64        `json:"user_id" validate:"required"`
	SLAHour        int           `json:"sla_hour" validate:"gt=0"`
	EscalationHour int           `json:"escalation_hour" validate:"gte=0"`
	NotifyType     wf.NotifyType `json:"notify_type" validate:"required,oneof=reassign notify notify_and_reassign"`
}

// EligibleUsersDTO is the roster a step resolves to today.
type EligibleUsersDTO struct {
	WorkflowID uint64   `json:"workflow_id"`
	StepID     uint64   `json:"step_id"`
	Logic      wf.Logic `json:"approval_logic"`
	Resolver   string   `json:"resolver"`
	UserIDs    []uint64 `json:"user_ids"`
}
