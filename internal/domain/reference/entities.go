package reference

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Table: entities
type Entity struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"column:name;size:150;not null" json:"name"`
	Budget    decimal.Decimal `gorm:"column:budget;type:decimal(18,2);not null" json:"budget"`
	Status    string          `gorm:"column:status;size:20;default:active" json:"status"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Entity) TableName() string { return "entities" }

// Table: departments
type Department struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityID  uint64          `gorm:"column:entity_id;not null;index" json:"entity_id"`
	Name      string          `gorm:"column:name;size:150;not null" json:"name"`
	Budget    decimal.Decimal `gorm:"column:budget;type:decimal(18,2);not null" json:"budget"`
	Status    string          `gorm:"column:status;size:20;default:active" json:"status"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Department) TableName() string { return "departments" }

// RoleAdmin holders may delete any request.
const RoleAdmin = "admin"

// Table: roles
type Role struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// Table: users. LOA is the largest request amount the user may approve.
type User struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"column:name;size:150;not null" json:"name"`
	Email        string          `gorm:"column:email;size:190;uniqueIndex" json:"email"`
	RoleID       uint64          `gorm:"column:role_id;index" json:"role_id"`
	DepartmentID uint64          `gorm:"column:department_id;index" json:"department_id"`
	LOA          decimal.Decimal `gorm:"column:loa;type:decimal(18,2);not null" json:"loa"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Table: role_members (one row per role held by a user)
type RoleMember struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	RoleID uint64 `gorm:"column:role_id;not null;uniqueIndex:ux_role_members_role_user"`
	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:ux_role_members_role_user;index"`
}

func (RoleMember) TableName() string { return "role_members" }
