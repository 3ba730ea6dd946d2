// Package jobs provides scheduled background tasks.
//
// The only job today is the reconciliation job: once a minute it asks every
// notifier to compare its derived records against the order store and repair
// whatever a missed event left behind. Together with the fire-and-forget
// event bus this gives the system eventual consistency without a durable
// broker.
package jobs

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// ReconciliationJob periodically runs every registered reconciler.
type ReconciliationJob struct {
	reconcilers []namedReconciler
	cron        *cron.Cron
	logger      *slog.Logger
}

type namedReconciler struct {
	name       string
	reconciler ports.Reconciler
}

// NewReconciliationJob creates the job. Reconcilers run sequentially in
// registration order; one failing does not stop the others.
func NewReconciliationJob(logger *slog.Logger) *ReconciliationJob {
	return &ReconciliationJob{
		cron:   cron.New(),
		logger: logger.With("component", "reconciliation_job"),
	}
}

// Register adds a reconciler under the given name.
func (j *ReconciliationJob) Register(name string, reconciler ports.Reconciler) {
	j.reconcilers = append(j.reconcilers, namedReconciler{name: name, reconciler: reconciler})
}

// Start begins the reconciliation job, running every minute.
func (j *ReconciliationJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", j.RunOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation job started (running every minute)",
		"reconcilers", len(j.reconcilers))
	return nil
}

// RunOnce runs every registered reconciler a single time.
func (j *ReconciliationJob) RunOnce() {
	ctx := context.Background()
	for _, entry := range j.reconcilers {
		if err := entry.reconciler.Reconcile(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Reconciliation failed",
				"reconciler", entry.name, "error", err)
		}
	}
}

// Stop stops the reconciliation job.
func (j *ReconciliationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Reconciliation job stopped")
}
