package request

import (
	"time"

	"procurement-approval/internal/domain/approval"
	domain "procurement-approval/internal/domain/request"

	"github.com/shopspring/decimal"
)

type DocumentInput struct {
	DocumentTypeID uint64 `json:"document_type_id" validate:"required"`
	FileRef        string `json:"file_ref" validate:"required,max=500"`
}

type CreateInput struct {
	RequesterID           uint64          `json:"-"`
	EntityID              uint64          `json:"entity_id" validate:"required"`
	DepartmentID          uint64          `json:"department_id" validate:"required"`
	CategoryID            uint64          `json:"category_id" validate:"required"`
	RequestType           string          `json:"request_type" validate:"required,max=50"`
	Amount                decimal.Decimal `json:"amount" validate:"gt=0"`
	Description           string          `json:"description"`
	SupplierID            *uint64         `json:"supplier_id"`
	ExpectedDate          time.Time       `json:"expected_date" validate:"required"`
	BehalfOf              *uint64         `json:"behalf_of"`
	BehalfDepartmentID    *uint64         `json:"behalf_department_id"`
	BusinessJustification string          `json:"business_justification"`
	Attachments           []DocumentInput `json:"attachments" validate:"dive"`
	// Draft keeps the request out of the workflow until Submit.
	Draft bool `json:"draft"`
}

// UpdateInput is partial: nil fields are left alone. Attachments, when set,
// replace the current documents.
type UpdateInput struct {
	Description           *string          `json:"description"`
	BusinessJustification *string          `json:"business_justification"`
	ExpectedDate          *time.Time       `json:"expected_date"`
	SupplierID            *uint64          `json:"supplier_id"`
	Amount                *decimal.Decimal `json:"amount"`
	Attachments           *[]DocumentInput `json:"attachments"`
}

type DocumentDTO struct {
	ID             uint64 `json:"id"`
	DocumentTypeID uint64 `json:"document_type_id"`
	FileRef        string `json:"file_ref"`
}

type RequestDTO struct {
	ID                    uint64          `json:"id"`
	RequestNo             string          `json:"request_no"`
	RequesterID           uint64          `json:"requester_id"`
	EntityID              uint64          `json:"entity_id"`
	DepartmentID          uint64          `json:"department_id"`
	CategoryID            uint64          `json:"category_id"`
	RequestType           string          `json:"request_type"`
	SupplierID            *uint64         `json:"supplier_id,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	ExpectedDate          time.Time       `json:"expected_date"`
	BehalfOf              *uint64         `json:"behalf_of,omitempty"`
	BehalfDepartmentID    *uint64         `json:"behalf_department_id,omitempty"`
	Description           string          `json:"description"`
	BusinessJustification string          `json:"business_justification"`
	Status                domain.Status   `json:"status"`
	Documents             []DocumentDTO   `json:"documents"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// StepDTO is one progress row in the audit trail. State is "dormant" for
// rows that were never activated.
type StepDTO struct {
	ID             uint64     `json:"id"`
	StepOrder      int        `json:"step_order"`
	WorkflowStepID uint64     `json:"workflow_step_id"`
	ApprovalLogic  string     `json:"approval_logic"`
	AssignedUserID uint64     `json:"assigned_user_id"`
	ActionTakenBy  *uint64    `json:"action_taken_by,omitempty"`
	State          string     `json:"state"`
	Remark         string     `json:"remark"`
	IsSendback     bool       `json:"is_sendback"`
	SendbackRemark string     `json:"sendback_remark,omitempty"`
	EscalatedAt    *time.Time `json:"escalated_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type HistoryDTO struct {
	RequestID uint64        `json:"request_id"`
	RequestNo string        `json:"request_no"`
	Status    domain.Status `json:"status"`
	Steps     []StepDTO     `json:"steps"`
	// Completed is true once no row is pending or dormant and none was rejected.
	Completed bool `json:"completed"`
}

func toDTO(r *domain.Request) *RequestDTO {
	docs := make([]DocumentDTO, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, DocumentDTO{ID: d.ID, DocumentTypeID: d.DocumentTypeID, FileRef: d.FileRef})
	}
	return &RequestDTO{
		ID:                    r.ID,
		RequestNo:             r.RequestNo,
		RequesterID:           r.RequesterID,
		EntityID:              r.EntityID,
		DepartmentID:          r.DepartmentID,
		CategoryID:            r.CategoryID,
		RequestType:           r.RequestType,
		SupplierID:            r.SupplierID,
		Amount:                r.Amount,
		ExpectedDate:          r.ExpectedDate,
		BehalfOf:              r.BehalfOf,
		BehalfDepartmentID:    r.BehalfDepartmentID,
		Description:           r.Description,
		BusinessJustification: r.BusinessJustification,
		Status:                r.Status,
		Documents:             docs,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func toStepDTO(d *approval.Detail) StepDTO {
	state := string(d.Status)
	if d.Status == approval.StatusDormant {
		state = "dormant"
	}
	return StepDTO{
		ID:             d.ID,
		StepOrder:      d.StepOrder,
		WorkflowStepID: d.WorkflowStepID,
		ApprovalLogic:  string(d.ApprovalLogic),
		AssignedUserID: d.AssignedUserID,
		ActionTakenBy:  d.ActionTakenBy,
		State:          state,
		Remark:         d.Remark,
		IsSendback:     d.IsSendback,
		SendbackRemark: d.SendbackRemark,
		EscalatedAt:    d.EscalatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toDocuments(in []DocumentInput) []domain.Document {
	out := make([]domain.Document, 0, len(in))
	for _, d := range in {
		out = append(out, domain.Document{DocumentTypeID: d.DocumentTypeID, FileRef: d.FileRef})
	}
	return out
}
