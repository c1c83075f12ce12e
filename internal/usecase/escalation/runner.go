package escalation

import (
	"context"
	"time"

	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// Locker guards a sweep across escalator instances. Extend pushes the
// expiry out by TTL while the holder still owns the key.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Extend(ctx context.Context) error
	TTL() time.Duration
}

type Sweeper interface {
	Run(ctx context.Context) (Report, error)
}

type Runner struct {
	sweeper  Sweeper
	lock     Locker
	interval time.Duration
	log      *zap.Logger
}

func NewRunner(s Sweeper, lock Locker, interval time.Duration, log *zap.Logger) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{sweeper: s, lock: lock, interval: interval, log: logger.OrNop(log).Named("escalation.runner")}
}

// Sweep runs one pass if the lock can be taken. ran is false when another
// instance holds it.
func (r *Runner) Sweep(ctx context.Context) (ran bool, err error) {
	ok, err := r.lock.TryLock(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		r.log.Debug("sweep skipped, lock held elsewhere")
		return false, nil
	}
	defer func() {
		if uerr := r.lock.Unlock(context.WithoutCancel(ctx)); uerr != nil {
			r.log.Warn("release sweep lock failed", zap.Error(uerr))
		}
	}()

	sweepCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.heartbeat(sweepCtx, cancel)
	}()

	start := time.Now()
	_, err = r.sweeper.Run(sweepCtx)
	metrics.EscalationSweepDuration.Observe(time.Since(start).Seconds())
	cancel()
	<-done
	return true, err
}

// heartbeat extends the lock every third of its TTL while a sweep runs. A
// lost lock cancels the sweep so two instances never work side by side.
func (r *Runner) heartbeat(ctx context.Context, cancel context.CancelFunc) {
	every := r.lock.TTL() / 3
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.lock.Extend(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.log.Warn("sweep lock lost, stopping sweep", zap.Error(err))
				cancel()
				return
			}
		}
	}
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("escalation runner started", zap.Duration("interval", r.interval))
	for {
		if _, err := r.Sweep(ctx); err != nil {
			r.log.Error("escalation sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			r.log.Info("escalation runner stopped")
			return
		case <-ticker.C:
		}
	}
}
