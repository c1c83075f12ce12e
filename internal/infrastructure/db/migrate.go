package db

import (
	"procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/budget"
	"procurement-approval/internal/domain/reference"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/workflow"

	"gorm.io/gorm"
)

// Models lists every table owned by this service, parents first.
func Models() []any {
	return []any{
		&reference.Entity{},
		&reference.Department{},
		&reference.Role{},
		&reference.User{},
		&reference.RoleMember{},
		&workflow.Definition{},
		&workflow.Step{},
		&workflow.RoleAssignment{},
		&workflow.Escalation{},
		&request.Request{},
		&request.Document{},
		&request.Counter{},
		&approval.Detail{},
		&budget.Code{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
