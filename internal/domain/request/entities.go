package request

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusRejected  Status = "rejected"
	StatusDeleted   Status = "deleted"
	StatusWithdraw  Status = "withdraw"
)

// Table: requests
type Request struct {
	ID                    uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequestNo             string          `gorm:"column:request_no;size:20;not null;uniqueIndex" json:"request_no"`
	RequesterID           uint64          `gorm:"column:requester_id;not null;index" json:"requester_id"`
	EntityID              uint64          `gorm:"column:entity_id;not null;index" json:"entity_id"`
	DepartmentID          uint64          `gorm:"column:department_id;not null;index" json:"department_id"`
	CategoryID            uint64          `gorm:"column:category_id;not null" json:"category_id"`
	RequestType           string          `gorm:"column:request_type;size:50;not null" json:"request_type"`
	SupplierID            *uint64         `gorm:"column:supplier_id" json:"supplier_id,omitempty"`
	Amount                decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	ExpectedDate          time.Time       `gorm:"column:expected_date;type:date" json:"expected_date"`
	BehalfOf              *uint64         `gorm:"column:behalf_of" json:"behalf_of,omitempty"`
	BehalfDepartmentID    *uint64         `gorm:"column:behalf_department_id" json:"behalf_department_id,omitempty"`
	Description           string          `gorm:"column:description;type:text" json:"description"`
	BusinessJustification string          `gorm:"column:business_justification;type:text" json:"business_justification"`
	Status                Status          `gorm:"column:status;size:20;not null;default:draft;index" json:"status"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
	DeletedBy             *uint64         `gorm:"column:deleted_by" json:"-"`

	Documents []Document `gorm:"foreignKey:RequestID" json:"documents"`
}

func (Request) TableName() string { return "requests" }

// Table: request_documents
type Document struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequestID      uint64         `gorm:"column:request_id;not null;index" json:"request_id"`
	DocumentTypeID uint64         `gorm:"column:document_type_id;not null" json:"document_type_id"`
	FileRef        string         `gorm:"column:file_ref;size:500;not null" json:"file_ref"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Document) TableName() string { return "request_documents" }

// Table: request_counters. One row per calendar year.
type Counter struct {
	Year      int       `gorm:"column:year;primaryKey;autoIncrement:false"`
	LastValue int       `gorm:"column:last_value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Counter) TableName() string { return "request_counters" }

// FormatNumber renders REQ-<yyyy>-<seq>, seq zero-padded to three digits.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("REQ-%04d-%03d", year, seq)
}
