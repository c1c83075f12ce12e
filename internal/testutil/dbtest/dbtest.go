// Package dbtest opens migrated in-memory sqlite databases and seeds
// reference data for tests.
package dbtest

import (
	"testing"

	"procurement-approval/internal/domain/reference"
	wf "procurement-approval/internal/domain/workflow"
	infradb "procurement-approval/internal/infrastructure/db"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated sqlite database limited to one connection, since
// every new :memory: connection would be a fresh empty database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := infradb.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

type Seed struct {
	t  testing.TB
	DB *gorm.DB
}

func NewSeed(t testing.TB, db *gorm.DB) *Seed { return &Seed{t: t, DB: db} }

func (s *Seed) create(v any) {
	s.t.Helper()
	if err := s.DB.Create(v).Error; err != nil {
		s.t.Fatalf("seed %T: %v", v, err)
	}
}

func (s *Seed) Entity(name, budget string) *reference.Entity {
	e := &reference.Entity{Name: name, Budget: decimal.RequireFromString(budget), Status: reference.StatusActive}
	s.create(e)
	return e
}

func (s *Seed) Department(entityID uint64, name, budget string) *reference.Department {
	d := &reference.Department{EntityID: entityID, Name: name, Budget: decimal.RequireFromString(budget), Status: reference.StatusActive}
	s.create(d)
	return d
}

func (s *Seed) Role(name string) *reference.Role {
	r := &reference.Role{Name: name}
	s.create(r)
	return r
}

// User creates a user holding every given role; the first one is primary.
func (s *Seed) User(name, loa string, roleIDs ...uint64) *reference.User {
	u := &reference.User{Name: name, Email: name + "@example.com", LOA: decimal.RequireFromString(loa)}
	if len(roleIDs) > 0 {
		u.RoleID = roleIDs[0]
	}
	s.create(u)
	for _, r := range roleIDs {
		s.create(&reference.RoleMember{RoleID: r, UserID: u.ID})
	}
	return u
}

type StepSpec struct {
	Name   string
	RoleID uint64
	Logic  wf.Logic
	// UserID makes a "single" step specific to that user.
	UserID uint64
	// SkipAssignment leaves the step without a role assignment.
	SkipAssignment bool
}

// Workflow creates an active definition covering every category with the
// steps in order 1..n.
func (s *Seed) Workflow(requestType string, specs ...StepSpec) (*wf.Definition, []wf.Step) {
	def := &wf.Definition{Name: requestType + " approval", RequestType: requestType, Status: wf.StatusActive}
	s.create(def)

	steps := make([]wf.Step, 0, len(specs))
	for i, sp := range specs {
		st := wf.Step{WorkflowID: def.ID, Name: sp.Name, OrderID: i + 1, RoleID: sp.RoleID, SLAHours: 24, Status: wf.StatusActive}
		s.create(&st)
		steps = append(steps, st)
		if sp.SkipAssignment {
			continue
		}
		logic := sp.Logic
		if logic == "" {
			logic = wf.LogicOr
		}
		a := &wf.RoleAssignment{WorkflowID: def.ID, StepID: st.ID, RoleID: sp.RoleID, Logic: logic}
		if sp.UserID != 0 {
			uid := sp.UserID
			a.IsSpecificUser = true
			a.UserID = &uid
		}
		s.create(a)
	}
	return def, steps
}
