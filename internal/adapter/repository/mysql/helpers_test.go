package mysql

import (
	"context"
	"testing"

	refDomain "procurement-approval/internal/domain/reference"
	"procurement-approval/internal/testutil/dbtest"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t)
}

func seedUser(t *testing.T, db *gorm.DB, name string, loa int64, roles ...uint64) *refDomain.User {
	t.Helper()
	ctx := context.Background()
	repo := NewReferenceRepository(db)
	u := &refDomain.User{Name: name, Email: name + "@example.com", LOA: decimal.NewFromInt(loa)}
	if len(roles) > 0 {
		u.RoleID = roles[0]
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, r := range roles {
		if err := repo.AddRoleMember(ctx, r, u.ID); err != nil {
			t.Fatalf("add role member: %v", err)
		}
	}
	return u
}
