package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/birthday-reminder/internal/config"
)

// Worker runs Reconcile on a fixed interval.
type Worker struct {
	svc      *Service
	interval time.Duration
	cron     *cron.Cron
}

// NewWorker returns a stopped worker. A non-positive interval means
// config.DefaultReconcileInterval.
func NewWorker(svc *Service, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = config.DefaultReconcileInterval
	}
	return &Worker{svc: svc, interval: interval, cron: cron.New()}
}

// Start registers the periodic job. ctx is handed to every run.
func (w *Worker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(config.CronEveryPrefix+w.interval.String(), func() {
		w.svc.Reconcile(ctx, config.TriggerPeriodic)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrCronSchedule, err)
	}
	w.cron.Start()

	slog.Info(config.MsgWorkerStart,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyInterval, w.interval.String())
	return nil
}

// Stop waits for a running pass to finish.
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
	slog.Info(config.MsgWorkerStop, config.LogKeyComponent, config.CompWorker)
}
