package escalation

import (
	"context"
	"sync"
	"testing"
	"time"

	repo "procurement-approval/internal/adapter/repository/mysql"
	"procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/notification"
	wf "procurement-approval/internal/domain/workflow"
	"procurement-approval/internal/testutil/dbtest"
	apuc "procurement-approval/internal/usecase/approval"
	requc "procurement-approval/internal/usecase/request"
	wfuc "procurement-approval/internal/usecase/workflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type capture struct {
	mu     sync.Mutex
	events []notification.Event
}

func (c *capture) Publish(_ context.Context, e notification.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

type fixture struct {
	db       *gorm.DB
	monitor  *Monitor
	requests *requc.Usecase
	engine   *apuc.Usecase
	pub      *capture
	now      time.Time

	requester, first, second, backup uint64
	entityID, deptID                 uint64
	steps                            []wf.Step
}

func setup(t *testing.T, notify wf.NotifyType) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	seed := dbtest.NewSeed(t, db)
	tx := repo.NewGormUoW(db)

	ent := seed.Entity("Acme", "100000")
	dept := seed.Department(ent.ID, "Ops", "50000")
	r1, r2 := seed.Role("Lead"), seed.Role("Head")
	f := &fixture{
		db:        db,
		pub:       &capture{},
		now:       time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		requester: seed.User("req", "0").ID,
		first:     seed.User("lead", "1000", r1.ID).ID,
		second:    seed.User("head", "1000", r2.ID).ID,
		backup:    seed.User("backup", "1000", r1.ID).ID,
		entityID:  ent.ID,
		deptID:    dept.ID,
	}
	// "lead" has the lower id, so the or-step is assigned to them.
	var def *wf.Definition
	def, f.steps = seed.Workflow("purchase",
		dbtest.StepSpec{Name: "Lead", RoleID: r1.ID},
		dbtest.StepSpec{Name: "Head", RoleID: r2.ID},
	)
	require.NoError(t, db.Create(&wf.Escalation{
		WorkflowID: def.ID, StepID: f.steps[0].ID, RoleID: r1.ID, UserID: f.backup,
		SLAHour: 24, EscalationHour: 12, NotifyType: notify,
	}).Error)

	f.monitor = NewMonitor(tx, f.pub, zap.NewNop())
	f.monitor.now = func() time.Time { return f.now }
	f.requests = requc.NewUsecase(tx, wfuc.NewUsecase(tx, zap.NewNop()), nil, zap.NewNop())
	f.engine = apuc.NewUsecase(tx, nil, zap.NewNop())
	return f
}

func (f *fixture) submit(t *testing.T) uint64 {
	t.Helper()
	dto, err := f.requests.Create(context.Background(), requc.CreateInput{
		RequesterID: f.requester, EntityID: f.entityID, DepartmentID: f.deptID, CategoryID: 1,
		RequestType: "purchase", Amount: decimal.NewFromInt(100), ExpectedDate: f.now,
	})
	require.NoError(t, err)
	return dto.ID
}

// age moves every row of the request to the given updated_at.
func (f *fixture) age(t *testing.T, requestID uint64, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&approval.Detail{}).
		Where("request_id = ?", requestID).
		UpdateColumn("updated_at", at).Error)
}

func (f *fixture) row(t *testing.T, requestID uint64, order int) approval.Detail {
	t.Helper()
	var d approval.Detail
	require.NoError(t, f.db.Where("request_id = ? AND step_order = ?", requestID, order).First(&d).Error)
	return d
}

func TestDueForEscalation_SLAWindow(t *testing.T) {
	f := setup(t, wf.NotifyOnly)
	ctx := context.Background()

	fresh := f.submit(t)
	f.age(t, fresh, f.now.Add(-23*time.Hour))
	stale := f.submit(t)
	f.age(t, stale, f.now.Add(-25*time.Hour))

	due, err := f.monitor.DueForEscalation(ctx, f.now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, stale, due[0].Row.RequestID)
	require.Equal(t, 1, due[0].Row.StepOrder)
	require.NotEmpty(t, due[0].RequestNo)
}

func TestDueForEscalation_IgnoresUnconfiguredAndClosed(t *testing.T) {
	f := setup(t, wf.NotifyOnly)
	ctx := context.Background()

	// moved on to step 2, which has no escalation config
	moved := f.submit(t)
	_, err := f.engine.TakeAction(ctx, apuc.ActionInput{RequestID: moved, ActorID: f.first, Action: approval.ActionApprove})
	require.NoError(t, err)
	f.age(t, moved, f.now.Add(-48*time.Hour))

	withdrawn := f.submit(t)
	_, err = f.requests.Withdraw(ctx, f.requester, withdrawn)
	require.NoError(t, err)
	f.age(t, withdrawn, f.now.Add(-48*time.Hour))

	due, err := f.monitor.DueForEscalation(ctx, f.now)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestRun_ReassignKeepsSLAClockAndRespectsInterval(t *testing.T) {
	f := setup(t, wf.NotifyAndReassign)
	ctx := context.Background()

	id := f.submit(t)
	aged := f.now.Add(-30 * time.Hour)
	f.age(t, id, aged)

	rep, err := f.monitor.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, Report{Due: 1, Escalated: 1}, rep)

	row := f.row(t, id, 1)
	require.Equal(t, f.backup, row.AssignedUserID)
	require.NotNil(t, row.EscalatedAt)
	require.True(t, row.EscalatedAt.Equal(f.now))
	require.True(t, row.UpdatedAt.Equal(aged), "updated_at must not move")
	require.Equal(t, approval.StatusPending, row.Status)

	require.Len(t, f.pub.events, 2)
	require.Equal(t, notification.EventEscalationReassign, f.pub.events[0].Type)
	require.Equal(t, []uint64{f.backup, f.first}, f.pub.events[0].Recipients)
	require.Equal(t, notification.EventEscalationNotify, f.pub.events[1].Type)

	// within escalation_hour nothing happens
	f.now = f.now.Add(11 * time.Hour)
	rep, err = f.monitor.Run(ctx)
	require.NoError(t, err)
	require.Zero(t, rep.Due)

	// after it the row is due again
	f.now = f.now.Add(time.Hour)
	rep, err = f.monitor.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Escalated)

	// the new assignee can act; the old one cannot
	_, err = f.engine.TakeAction(ctx, apuc.ActionInput{RequestID: id, ActorID: f.first, Action: approval.ActionApprove})
	require.Error(t, err)
	_, err = f.engine.TakeAction(ctx, apuc.ActionInput{RequestID: id, ActorID: f.backup, Action: approval.ActionApprove})
	require.NoError(t, err)
}

func TestRun_NotifyOnlyKeepsAssignee(t *testing.T) {
	f := setup(t, wf.NotifyOnly)
	id := f.submit(t)
	f.age(t, id, f.now.Add(-30*time.Hour))

	rep, err := f.monitor.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rep.Escalated)
	require.Equal(t, f.first, f.row(t, id, 1).AssignedUserID)
	require.Len(t, f.pub.events, 1)
	require.Equal(t, notification.EventEscalationNotify, f.pub.events[0].Type)
	require.Equal(t, []uint64{f.backup, f.first}, f.pub.events[0].Recipients)
}

func TestEscalate_SkipsRowActedOnAfterSelection(t *testing.T) {
	f := setup(t, wf.NotifyReassign)
	ctx := context.Background()
	id := f.submit(t)
	f.age(t, id, f.now.Add(-30*time.Hour))

	due, err := f.monitor.DueForEscalation(ctx, f.now)
	require.NoError(t, err)
	require.Len(t, due, 1)

	_, err = f.engine.TakeAction(ctx, apuc.ActionInput{RequestID: id, ActorID: f.first, Action: approval.ActionApprove})
	require.NoError(t, err)

	done, err := f.monitor.escalate(ctx, due[0], f.now)
	require.NoError(t, err)
	require.False(t, done)
	require.Nil(t, f.row(t, id, 1).EscalatedAt)
	require.Empty(t, f.pub.events)
}
