package referencemock

import (
	"context"

	domain "procurement-approval/internal/domain/reference"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetUserFn                func(ctx context.Context, id uint64) (*domain.User, error)
	GetEntityFn              func(ctx context.Context, id uint64) (*domain.Entity, error)
	GetEntityForUpdateFn     func(ctx context.Context, id uint64) (*domain.Entity, error)
	GetDepartmentFn          func(ctx context.Context, id uint64) (*domain.Department, error)
	GetDepartmentForUpdateFn func(ctx context.Context, id uint64) (*domain.Department, error)
	RoleHasMemberFn          func(ctx context.Context, roleID, userID uint64) (bool, error)
	RoleHoldersFn            func(ctx context.Context, roleID uint64) ([]uint64, error)
	UserHasRoleFn            func(ctx context.Context, userID uint64, roleName string) (bool, error)
	CreateEntityFn           func(ctx context.Context, e *domain.Entity) error
	CreateDepartmentFn       func(ctx context.Context, d *domain.Department) error
	CreateRoleFn             func(ctx context.Context, r *domain.Role) error
	CreateUserFn             func(ctx context.Context, u *domain.User) error
	AddRoleMemberFn          func(ctx context.Context, roleID, userID uint64) error
}

func (m *Repo) GetUser(ctx context.Context, id uint64) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetEntity(ctx context.Context, id uint64) (*domain.Entity, error) {
	if m.GetEntityFn != nil {
		return m.GetEntityFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

// GetEntityForUpdate falls back to GetEntityFn when only that is set.
func (m *Repo) GetEntityForUpdate(ctx context.Context, id uint64) (*domain.Entity, error) {
	if m.GetEntityForUpdateFn != nil {
		return m.GetEntityForUpdateFn(ctx, id)
	}
	return m.GetEntity(ctx, id)
}

func (m *Repo) GetDepartment(ctx context.Context, id uint64) (*domain.Department, error) {
	if m.GetDepartmentFn != nil {
		return m.GetDepartmentFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

// GetDepartmentForUpdate falls back to GetDepartmentFn when only that is set.
func (m *Repo) GetDepartmentForUpdate(ctx context.Context, id uint64) (*domain.Department, error) {
	if m.GetDepartmentForUpdateFn != nil {
		return m.GetDepartmentForUpdateFn(ctx, id)
	}
	return m.GetDepartment(ctx, id)
}

func (m *Repo) RoleHasMember(ctx context.Context, roleID, userID uint64) (bool, error) {
	if m.RoleHasMemberFn != nil {
		return m.RoleHasMemberFn(ctx, roleID, userID)
	}
	return false, nil
}

func (m *Repo) RoleHolders(ctx context.Context, roleID uint64) ([]uint64, error) {
	if m.RoleHoldersFn != nil {
		return m.RoleHoldersFn(ctx, roleID)
	}
	return nil, nil
}

func (m *Repo) UserHasRole(ctx context.Context, userID uint64, roleName string) (bool, error) {
	if m.UserHasRoleFn != nil {
		return m.UserHasRoleFn(ctx, userID, roleName)
	}
	return false, nil
}

func (m *Repo) CreateEntity(ctx context.Context, e *domain.Entity) error {
	if m.CreateEntityFn != nil {
		return m.CreateEntityFn(ctx, e)
	}
	return nil
}

func (m *Repo) CreateDepartment(ctx context.Context, d *domain.Department) error {
	if m.CreateDepartmentFn != nil {
		return m.CreateDepartmentFn(ctx, d)
	}
	return nil
}

func (m *Repo) CreateRole(ctx context.Context, r *domain.Role) error {
	if m.CreateRoleFn != nil {
		return m.CreateRoleFn(ctx, r)
	}
	return nil
}

func (m *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, u)
	}
	return nil
}

func (m *Repo) AddRoleMember(ctx context.Context, roleID, userID uint64) error {
	if m.AddRoleMemberFn != nil {
		return m.AddRoleMemberFn(ctx, roleID, userID)
	}
	return nil
}
