package worker

import (
	"context"
	"time"

	"venue-booking/internal/service"
	"venue-booking/pkg/logger"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// ReconcileJob periodically retries payments that were captured but not
// recorded locally.
type ReconcileJob struct {
	svc       service.ReconciliationService
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewReconcileJob(svc service.ReconciliationService, interval time.Duration) *ReconcileJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReconcileJob{svc: svc, interval: interval}
}

func (j *ReconcileJob) Start() error {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(j.RunOnce),
		gocron.WithName("reconcile-payments"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}

	j.scheduler = s
	s.Start()
	logger.WithComponent("worker").Info("reconcile job started", zap.Duration("interval", j.interval))
	return nil
}

// RunOnce 執行一輪重試；gocron 會注入 job 的 context
func (j *ReconcileJob) RunOnce(ctx context.Context) {
	log := logger.WithComponent("worker")

	summary, err := j.svc.RetryPending(ctx)
	if err != nil {
		log.Error("reconcile sweep failed", zap.Error(err))
		return
	}
	if summary.Attempted == 0 {
		return
	}
	log.Info("reconcile sweep finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("resolved", summary.Resolved),
		zap.Int("failed", summary.Failed))
}

func (j *ReconcileJob) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	return j.scheduler.Shutdown()
}
