package approval

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	repo "procurement-approval/internal/adapter/repository/mysql"
	domain "procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/shared/apperror"
	"procurement-approval/internal/testutil/dbtest"
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

func (c *capture) last() notification.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
}

type env struct {
	engine    *Usecase
	requests  *requc.Usecase
	db        *gorm.DB
	seed      *dbtest.Seed
	pub       *capture
	requester uint64
	entityID  uint64
	deptID    uint64
	// approvers[i] is the only holder of the role bound to step i+1.
	approvers []uint64
}

// newEnv builds a workflow with one step per LOA value.
func newEnv(t *testing.T, loas ...string) *env {
	t.Helper()
	db := dbtest.Open(t)
	seed := dbtest.NewSeed(t, db)
	tx := repo.NewGormUoW(db)

	ent := seed.Entity("Acme", "1000000")
	dept := seed.Department(ent.ID, "Ops", "500000")
	requester := seed.User("requester", "0")

	e := &env{db: db, seed: seed, pub: &capture{}, requester: requester.ID, entityID: ent.ID, deptID: dept.ID}
	specs := make([]dbtest.StepSpec, 0, len(loas))
	for i, loa := range loas {
		role := seed.Role(fmt.Sprintf("role-%d", i+1))
		u := seed.User(fmt.Sprintf("approver-%d", i+1), loa, role.ID)
		e.approvers = append(e.approvers, u.ID)
		specs = append(specs, dbtest.StepSpec{Name: role.Name, RoleID: role.ID})
	}
	seed.Workflow("purchase", specs...)

	e.engine = NewUsecase(tx, e.pub, zap.NewNop())
	e.requests = requc.NewUsecase(tx, wfuc.NewUsecase(tx, zap.NewNop()), nil, zap.NewNop())
	return e
}

func (e *env) submit(t *testing.T, amount int64) uint64 {
	t.Helper()
	dto, err := e.requests.Create(context.Background(), requc.CreateInput{
		RequesterID:  e.requester,
		EntityID:     e.entityID,
		DepartmentID: e.deptID,
		CategoryID:   1,
		RequestType:  "purchase",
		Amount:       decimal.NewFromInt(amount),
		ExpectedDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return dto.ID
}

func (e *env) act(requestID, actor uint64, action domain.Action, remark string) (*ActionResult, error) {
	return e.engine.TakeAction(context.Background(), ActionInput{RequestID: requestID, ActorID: actor, Action: action, Remark: remark})
}

func (e *env) rows(t *testing.T, requestID uint64) []domain.Detail {
	t.Helper()
	var out []domain.Detail
	require.NoError(t, e.db.Where("request_id = ?", requestID).Order("step_order").Find(&out).Error)
	return out
}

func statuses(rows []domain.Detail) []domain.Status {
	out := make([]domain.Status, len(rows))
	for i, d := range rows {
		out[i] = d.Status
	}
	return out
}

func TestApproveChainCompletes(t *testing.T) {
	e := newEnv(t, "1000", "1000", "1000")
	id := e.submit(t, 500)

	for i, actor := range e.approvers {
		res, err := e.act(id, actor, domain.ActionApprove, "ok")
		require.NoError(t, err)
		require.Equal(t, i+1, res.StepOrder)
		require.Equal(t, domain.StatusApproved, res.StepStatus)
		if i < len(e.approvers)-1 {
			require.False(t, res.Completed)
			require.NotNil(t, res.ActivatedStep)
			require.Equal(t, i+2, res.ActivatedStep.StepOrder)
			require.Equal(t, e.approvers[i+1], res.ActivatedStep.AssignedUserID)
			require.Equal(t, notification.EventStepActivated, e.pub.last().Type)
			require.Equal(t, []uint64{e.approvers[i+1]}, e.pub.last().Recipients)
		} else {
			require.True(t, res.Completed)
			require.Nil(t, res.ActivatedStep)
		}
	}

	rows := e.rows(t, id)
	require.Equal(t, []domain.Status{domain.StatusApproved, domain.StatusApproved, domain.StatusApproved}, statuses(rows))
	for i, d := range rows {
		require.NotNil(t, d.ActionTakenBy)
		require.Equal(t, e.approvers[i], *d.ActionTakenBy)
		require.Equal(t, "ok", d.Remark)
	}

	// header stays submitted; completion is read from the rows
	got, err := e.requests.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "submitted", string(got.Status))

	_, err = e.act(id, e.approvers[2], domain.ActionApprove, "again")
	require.ErrorIs(t, err, apperror.ErrNoPendingStepForActor)
}

func TestRejectCancelsOtherPendingRows(t *testing.T) {
	e := newEnv(t, "1000", "1000", "1000")
	id := e.submit(t, 100)

	_, err := e.act(id, e.approvers[0], domain.ActionApprove, "")
	require.NoError(t, err)
	_, err = e.act(id, e.approvers[1], domain.ActionSendback, "need quote")
	require.NoError(t, err)
	require.Equal(t, []domain.Status{domain.StatusPending, domain.StatusPending, domain.StatusDormant}, statuses(e.rows(t, id)))

	res, err := e.act(id, e.approvers[0], domain.ActionReject, "cancel")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, res.StepStatus)
	require.Equal(t, []int{2}, res.RejectedSteps)

	rows := e.rows(t, id)
	require.Equal(t, []domain.Status{domain.StatusRejected, domain.StatusRejected, domain.StatusDormant}, statuses(rows))
	require.Equal(t, "cancel", rows[0].Remark)
	require.False(t, rows[0].IsSendback)

	ev := e.pub.last()
	require.Equal(t, notification.EventRequestRejected, ev.Type)
	require.Equal(t, []uint64{e.requester}, ev.Recipients)

	for _, actor := range e.approvers {
		_, err = e.act(id, actor, domain.ActionApprove, "")
		require.ErrorIs(t, err, apperror.ErrNoPendingStepForActor)
	}
}

func TestRejectAtFirstStepLeavesLaterRowsDormant(t *testing.T) {
	e := newEnv(t, "1000", "1000")
	id := e.submit(t, 100)

	res, err := e.act(id, e.approvers[0], domain.ActionReject, "no budget")
	require.NoError(t, err)
	require.Empty(t, res.RejectedSteps)
	require.Equal(t, []domain.Status{domain.StatusRejected, domain.StatusDormant}, statuses(e.rows(t, id)))
}

func TestSendbackReactivatesPreviousStep(t *testing.T) {
	e := newEnv(t, "1000", "1000", "1000")
	id := e.submit(t, 100)

	_, err := e.act(id, e.approvers[0], domain.ActionApprove, "")
	require.NoError(t, err)
	_, err = e.act(id, e.approvers[1], domain.ActionApprove, "looks fine")
	require.NoError(t, err)

	res, err := e.act(id, e.approvers[2], domain.ActionSendback, "wrong supplier")
	require.NoError(t, err)
	require.True(t, res.IsSendback)
	require.Equal(t, domain.StatusPending, res.StepStatus)
	require.Equal(t, &ActivatedStep{StepOrder: 2, AssignedUserID: e.approvers[1]}, res.ActivatedStep)

	rows := e.rows(t, id)
	require.Equal(t, []domain.Status{domain.StatusApproved, domain.StatusPending, domain.StatusPending}, statuses(rows))
	require.True(t, rows[2].IsSendback)
	require.Equal(t, "wrong supplier", rows[2].SendbackRemark)
	require.Empty(t, rows[2].Remark)
	require.Equal(t, "looks fine", rows[1].Remark)

	ev := e.pub.last()
	require.Equal(t, notification.EventStepSentBack, ev.Type)
	require.Equal(t, []uint64{e.approvers[1]}, ev.Recipients)

	// the reactivated earlier step is now the actionable one
	_, err = e.act(id, e.approvers[2], domain.ActionApprove, "")
	require.ErrorIs(t, err, apperror.ErrNoPendingStepForActor)

	_, err = e.act(id, e.approvers[1], domain.ActionApprove, "fixed")
	require.NoError(t, err)
	require.True(t, e.rows(t, id)[2].IsSendback, "flag persists until step 3 acts")

	res, err = e.act(id, e.approvers[2], domain.ActionApprove, "")
	require.NoError(t, err)
	require.True(t, res.Completed)
	rows = e.rows(t, id)
	require.False(t, rows[2].IsSendback)
	require.Empty(t, rows[2].SendbackRemark)
}

func TestSendbackAtFirstStepOnlyFlags(t *testing.T) {
	e := newEnv(t, "1000", "1000")
	id := e.submit(t, 100)

	res, err := e.act(id, e.approvers[0], domain.ActionSendback, "attach quote")
	require.NoError(t, err)
	require.Nil(t, res.ActivatedStep)

	rows := e.rows(t, id)
	require.Equal(t, []domain.Status{domain.StatusPending, domain.StatusDormant}, statuses(rows))
	require.True(t, rows[0].IsSendback)
	require.Equal(t, []uint64{e.requester}, e.pub.last().Recipients)

	// still actionable by the same approver
	_, err = e.act(id, e.approvers[0], domain.ActionApprove, "")
	require.NoError(t, err)
}

func TestInsufficientAuthorityMutatesNothing(t *testing.T) {
	// Manager LOA 1000, Finance LOA 200, amount 500.
	e := newEnv(t, "1000", "200")
	id := e.submit(t, 500)

	res, err := e.act(id, e.approvers[0], domain.ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, 2, res.ActivatedStep.StepOrder)

	before := e.rows(t, id)
	_, err = e.act(id, e.approvers[1], domain.ActionApprove, "")
	require.ErrorIs(t, err, apperror.ErrInsufficientAuthority)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, 403, ae.HTTPStatus)
	require.Equal(t, map[string]string{"amount": "500", "loa": "200"}, ae.Details)

	after := e.rows(t, id)
	require.Equal(t, []domain.Status{domain.StatusApproved, domain.StatusPending}, statuses(after))
	for i := range before {
		require.True(t, before[i].UpdatedAt.Equal(after[i].UpdatedAt), "row %d touched", i+1)
		require.Equal(t, before[i].ActionTakenBy, after[i].ActionTakenBy)
	}

	// reject and sendback need no authority
	_, err = e.act(id, e.approvers[1], domain.ActionSendback, "too large for me")
	require.NoError(t, err)
}

func TestAmountEqualToLOAIsApprovable(t *testing.T) {
	e := newEnv(t, "500")
	id := e.submit(t, 500)
	res, err := e.act(id, e.approvers[0], domain.ActionApprove, "")
	require.NoError(t, err)
	require.True(t, res.Completed)
}

func TestRefusals(t *testing.T) {
	e := newEnv(t, "1000", "1000")
	ctx := context.Background()

	cases := []struct {
		name    string
		prepare func(t *testing.T) uint64
		actor   func() uint64
		action  domain.Action
		wantErr error
	}{
		{
			name:    "not the assignee",
			prepare: func(t *testing.T) uint64 { return e.submit(t, 100) },
			actor:   func() uint64 { return e.approvers[1] },
			action:  domain.ActionApprove,
			wantErr: apperror.ErrNoPendingStepForActor,
		},
		{
			name:    "requester cannot act",
			prepare: func(t *testing.T) uint64 { return e.submit(t, 100) },
			actor:   func() uint64 { return e.requester },
			action:  domain.ActionReject,
			wantErr: apperror.ErrNoPendingStepForActor,
		},
		{
			name:    "unknown request",
			prepare: func(*testing.T) uint64 { return 9999 },
			actor:   func() uint64 { return e.approvers[0] },
			action:  domain.ActionApprove,
			wantErr: apperror.ErrNotFound,
		},
		{
			name: "withdrawn request",
			prepare: func(t *testing.T) uint64 {
				id := e.submit(t, 100)
				_, err := e.requests.Withdraw(ctx, e.requester, id)
				require.NoError(t, err)
				return id
			},
			actor:   func() uint64 { return e.approvers[0] },
			action:  domain.ActionApprove,
			wantErr: apperror.ErrNoPendingStepForActor,
		},
		{
			name:    "unknown action",
			prepare: func(t *testing.T) uint64 { return e.submit(t, 100) },
			actor:   func() uint64 { return e.approvers[0] },
			action:  "escalate",
			wantErr: apperror.ErrValidation,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := tc.prepare(t)
			_, err := e.act(id, tc.actor(), tc.action, "")
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestConcurrentApprovalsSerialize(t *testing.T) {
	e := newEnv(t, "1000", "1000")
	id := e.submit(t, 100)

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.act(id, e.approvers[0], domain.ActionApprove, "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, apperror.ErrNoPendingStepForActor)
	}
	require.Equal(t, 1, ok)
	require.Equal(t, []domain.Status{domain.StatusApproved, domain.StatusPending}, statuses(e.rows(t, id)))
}

func TestReassignedRowFollowsNewAssignee(t *testing.T) {
	e := newEnv(t, "1000")
	id := e.submit(t, 100)
	stand := e.seed.User("standin", "1000")

	row := e.rows(t, id)[0]
	require.NoError(t, repo.NewApprovalRepository(e.db).MarkEscalated(context.Background(), row.ID, &stand.ID, time.Now().UTC()))

	_, err := e.act(id, e.approvers[0], domain.ActionApprove, "")
	require.ErrorIs(t, err, apperror.ErrNoPendingStepForActor)
	res, err := e.act(id, stand.ID, domain.ActionApprove, "")
	require.NoError(t, err)
	require.True(t, res.Completed)
}

func TestMyActionsShowsLatestRowPerRequest(t *testing.T) {
	e := newEnv(t, "1000", "1000")
	ctx := context.Background()
	manager, finance := e.approvers[0], e.approvers[1]

	r1 := e.submit(t, 100)
	r2 := e.submit(t, 200)
	r3 := e.submit(t, 300)
	for _, id := range []uint64{r1, r2, r3} {
		_, err := e.act(id, manager, domain.ActionApprove, "")
		require.NoError(t, err)
	}
	_, err := e.act(r1, finance, domain.ActionSendback, "redo")
	require.NoError(t, err)
	_, err = e.act(r2, finance, domain.ActionReject, "no")
	require.NoError(t, err)

	got, err := e.engine.MyActions(ctx, manager)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	status := map[uint64]domain.Status{}
	for _, it := range got.Items {
		status[it.RequestID] = it.Status
	}
	require.Equal(t, domain.StatusPending, status[r1], "sent back to manager")
	require.Equal(t, domain.StatusApproved, status[r2])
	require.Equal(t, domain.StatusApproved, status[r3])
	require.Equal(t, Counts{Approved: 2, Pending: 1}, got.Counts)

	got, err = e.engine.MyActions(ctx, finance)
	require.NoError(t, err)
	require.Equal(t, Counts{Rejected: 1, Pending: 1}, got.Counts)

	// deleted requests drop out of the view
	require.NoError(t, e.requests.Delete(ctx, e.requester, r3))
	got, err = e.engine.MyActions(ctx, manager)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, Counts{Approved: 1, Pending: 1}, got.Counts)

	got, err = e.engine.MyActions(ctx, e.requester)
	require.NoError(t, err)
	require.Empty(t, got.Items)
}
