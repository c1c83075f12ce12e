package reference

import "context"

// Repository is the read side of master data consulted by the engine.
// The Create* methods exist for seeding and tests.
type Repository interface {
	GetUser(ctx context.Context, id uint64) (*User, error)
	GetEntity(ctx context.Context, id uint64) (*Entity, error)
	// Locks the entity row until the surrounding transaction ends. Take it
	// before any department lock.
	GetEntityForUpdate(ctx context.Context, id uint64) (*Entity, error)
	GetDepartment(ctx context.Context, id uint64) (*Department, error)
	// Locks the department row until the surrounding transaction ends.
	GetDepartmentForUpdate(ctx context.Context, id uint64) (*Department, error)

	RoleHasMember(ctx context.Context, roleID, userID uint64) (bool, error)
	// RoleHolders returns holder user ids in ascending order.
	RoleHolders(ctx context.Context, roleID uint64) ([]uint64, error)
	// UserHasRole matches the role name case-insensitively.
	UserHasRole(ctx context.Context, userID uint64, roleName string) (bool, error)

	CreateEntity(ctx context.Context, e *Entity) error
	CreateDepartment(ctx context.Context, d *Department) error
	CreateRole(ctx context.Context, r *Role) error
	CreateUser(ctx context.Context, u *User) error
	AddRoleMember(ctx context.Context, roleID, userID uint64) error
}
