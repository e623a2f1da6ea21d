package admin

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/posts"
	"go.uber.org/zap"
)

const reconcileTimeout = 10 * time.Minute

// ReconcileFunc repairs drifted counters and returns how many were fixed.
type ReconcileFunc func(ctx context.Context) (int, error)

// Counters repairs post comment counters and scores left behind by writes
// that could not run in a transaction.
var Counters = NewReconciler(posts.ReconcileAll)

type Reconciler struct {
	cron *cron.Cron
	run  ReconcileFunc

	mu        sync.Mutex
	lastRun   time.Time
	lastFixed int
	lastErr   error
}

type RunStatus struct {
	LastRun time.Time
	Fixed   int
	Err     error
}

func NewReconciler(run ReconcileFunc) *Reconciler {
	log := cronLogger{}
	return &Reconciler{
		cron: cron.New(
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		run: run,
	}
}

// Schedule registers the pass on a cron spec. An empty spec disables it.
func (r *Reconciler) Schedule(spec string) error {
	if spec == "" {
		return nil
	}
	_, err := r.cron.AddFunc(spec, func() {
		_, _ = r.RunOnce(context.Background())
	})
	return err
}

func (r *Reconciler) Start() {
	r.cron.Start()
}

// Stop waits for a running pass to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	started := time.Now()
	fixed, err := r.run(ctx)

	r.mu.Lock()
	r.lastRun = started
	r.lastFixed = fixed
	r.lastErr = err
	r.mu.Unlock()

	if err != nil {
		logger.L.Error("counter reconciliation failed", zap.Int("fixed", fixed), zap.Error(err))
		sentry.CaptureException(err)
	} else {
		logger.L.Info("counter reconciliation finished",
			zap.Int("fixed", fixed),
			zap.Duration("took", time.Since(started)),
		)
	}
	return fixed, err
}

func (r *Reconciler) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunStatus{LastRun: r.lastRun, Fixed: r.lastFixed, Err: r.lastErr}
}

// cronLogger routes cron's own logging to the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.L.Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.L.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
