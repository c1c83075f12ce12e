package escalation

import (
	"context"
	"errors"
	"time"

	"procurement-approval/internal/domain/approval"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/domain/request"
	"procurement-approval/internal/domain/uow"
	wf "procurement-approval/internal/domain/workflow"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/infrastructure/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Due is a pending row that has sat past its step's SLA.
type Due struct {
	Row        approval.Detail
	Escalation wf.Escalation
	RequestNo  string
}

type Report struct {
	Due       int `json:"due"`
	Escalated int `json:"escalated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Monitor finds overdue actionable rows and escalates them by reassigning,
// notifying, or both.
type Monitor struct {
	uow uow.UnitOfWork
	pub notification.Publisher
	log *zap.Logger
	now func() time.Time
}

func NewMonitor(tx uow.UnitOfWork, pub notification.Publisher, log *zap.Logger) *Monitor {
	if pub == nil {
		pub = notification.Nop{}
	}
	return &Monitor{
		uow: tx,
		pub: pub,
		log: logger.OrNop(log).Named("escalation.monitor"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// DueForEscalation returns, per submitted request, its actionable row when
// that row is older than sla_hour and was not escalated within the last
// escalation_hour hours. Steps without an escalation config are ignored.
func (m *Monitor) DueForEscalation(ctx context.Context, now time.Time) ([]Due, error) {
	var out []Due
	err := m.uow.WithinTx(ctx, func(r uow.Repos) error {
		pending, err := r.Approvals.ListPending(ctx)
		if err != nil {
			return err
		}

		head := make(map[uint64]approval.Detail)
		var ids []uint64
		for _, d := range pending {
			cur, ok := head[d.RequestID]
			if !ok {
				ids = append(ids, d.RequestID)
			}
			if !ok || d.StepOrder < cur.StepOrder {
				head[d.RequestID] = d
			}
		}

		reqs, err := r.Requests.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		numbers := make(map[uint64]string, len(reqs))
		for _, q := range reqs {
			if q.Status == request.StatusSubmitted {
				numbers[q.ID] = q.RequestNo
			}
		}

		for _, id := range ids {
			no, ok := numbers[id]
			if !ok {
				continue
			}
			row := head[id]
			cfg, err := r.Workflows.GetEscalation(ctx, row.WorkflowID, row.WorkflowStepID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if overdue(row, *cfg, now) {
				out = append(out, Due{Row: row, Escalation: *cfg, RequestNo: no})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func overdue(row approval.Detail, cfg wf.Escalation, now time.Time) bool {
	if now.Sub(row.UpdatedAt) <= hours(cfg.SLAHour) {
		return false
	}
	if row.EscalatedAt == nil {
		return true
	}
	if cfg.EscalationHour <= 0 {
		return false
	}
	return now.Sub(*row.EscalatedAt) >= hours(cfg.EscalationHour)
}

func hours(n int) time.Duration { return time.Duration(n) * time.Hour }

// Run escalates every due row in its own transaction. A failing row is
// logged and counted; the sweep carries on until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) (Report, error) {
	now := m.now()
	due, err := m.DueForEscalation(ctx, now)
	if err != nil {
		m.log.Error("load due rows failed", zap.Error(err))
		return Report{}, err
	}

	rep := Report{Due: len(due)}
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			m.log.Warn("escalation sweep interrupted", zap.Int("remaining", rep.Due-rep.Escalated-rep.Skipped-rep.Failed))
			return rep, err
		}
		done, err := m.escalate(ctx, d, now)
		switch {
		case err != nil:
			rep.Failed++
			m.log.Error("escalation failed",
				zap.Uint64("request_id", d.Row.RequestID),
				zap.Uint64("row_id", d.Row.ID),
				zap.Error(err))
		case done:
			rep.Escalated++
		default:
			rep.Skipped++
		}
	}
	if rep.Due > 0 {
		m.log.Info("escalation sweep finished",
			zap.Int("due", rep.Due),
			zap.Int("escalated", rep.Escalated),
			zap.Int("skipped", rep.Skipped),
			zap.Int("failed", rep.Failed))
	}
	return rep, nil
}

// escalate re-reads the row under the request lock; if someone acted on it
// since selection it is skipped.
func (m *Monitor) escalate(ctx context.Context, d Due, now time.Time) (bool, error) {
	var events []notification.Event
	err := m.uow.WithinRequestTx(ctx, d.Row.RequestID, func(r uow.Repos, req *request.Request) error {
		if req.Status != request.StatusSubmitted {
			return errSkip
		}
		row, err := r.Approvals.GetForUpdate(ctx, d.Row.ID)
		if err != nil {
			return err
		}
		if row.Status != approval.StatusPending || row.AssignedUserID != d.Row.AssignedUserID || !row.UpdatedAt.Equal(d.Row.UpdatedAt) {
			return errSkip
		}

		cfg := d.Escalation
		previous := row.AssignedUserID
		var assignee *uint64
		if cfg.NotifyType.Reassigns() && cfg.UserID != 0 && cfg.UserID != previous {
			to := cfg.UserID
			assignee = &to
		}
		if err := r.Approvals.MarkEscalated(ctx, row.ID, assignee, now); err != nil {
			return err
		}

		payload := map[string]any{
			"step_order":       row.StepOrder,
			"previous_user_id": previous,
			"sla_hour":         cfg.SLAHour,
		}
		if assignee != nil {
			e := notification.New(notification.EventEscalationReassign, req.ID, req.RequestNo, 0, *assignee, previous)
			e.Payload = payload
			events = append(events, e)
		}
		if cfg.NotifyType.Notifies() {
			e := notification.New(notification.EventEscalationNotify, req.ID, req.RequestNo, 0, cfg.UserID, previous)
			e.Payload = payload
			events = append(events, e)
		}
		return nil
	})
	if errors.Is(err, errSkip) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.EscalationsTotal.WithLabelValues(string(d.Escalation.NotifyType)).Inc()
	m.log.Info("row escalated",
		zap.Uint64("request_id", d.Row.RequestID),
		zap.Uint64("row_id", d.Row.ID),
		zap.String("notify_type", string(d.Escalation.NotifyType)))
	notification.Dispatch(ctx, m.pub, m.log, events...)
	return true, nil
}

var errSkip = errors.New("row no longer due")
