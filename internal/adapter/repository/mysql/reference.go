package mysql

import (
	"context"

	refDomain "procurement-approval/internal/domain/reference"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferenceRepository struct{ db *gorm.DB }

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) GetUser(ctx context.Context, id uint64) (*refDomain.User, error) {
	var out refDomain.User
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ReferenceRepository) GetEntity(ctx context.Context, id uint64) (*refDomain.Entity, error) {
	var out refDomain.Entity
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ReferenceRepository) GetEntityForUpdate(ctx context.Context, id uint64) (*refDomain.Entity, error) {
	var out refDomain.Entity
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *ReferenceRepository) GetDepartment(ctx context.Context, id uint64) (*refDomain.Department, error) {
	var out refDomain.Department
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ReferenceRepository) GetDepartmentForUpdate(ctx context.Context, id uint64) (*refDomain.Department, error) {
	var out refDomain.Department
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *ReferenceRepository) RoleHasMember(ctx context.Context, roleID, userID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&refDomain.RoleMember{}).
		Where("role_id = ? AND user_id = ?", roleID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReferenceRepository) RoleHolders(ctx context.Context, roleID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&refDomain.RoleMember{}).
		Where("role_id = ?", roleID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ReferenceRepository) UserHasRole(ctx context.Context, userID uint64, roleName string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&refDomain.RoleMember{}).
		Joins("JOIN roles ON roles.id = role_members.role_id").
		Where("role_members.user_id = ? AND LOWER(roles.name) = LOWER(?)", userID, roleName).
		Count(&n).Error
	return n > 0, err
}

func (r *ReferenceRepository) CreateEntity(ctx context.Context, e *refDomain.Entity) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ReferenceRepository) CreateDepartment(ctx context.Context, d *refDomain.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *ReferenceRepository) CreateRole(ctx context.Context, role *refDomain.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *ReferenceRepository) CreateUser(ctx context.Context, u *refDomain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *ReferenceRepository) AddRoleMember(ctx context.Context, roleID, userID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&refDomain.RoleMember{RoleID: roleID, UserID: userID}).Error
}
