package background

import (
	"context"
	"encoding/json"
	"time"

	"gatewarden/internal/caching"
	"gatewarden/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// JobScheduler runs the backend's periodic maintenance: pruning archived
// gate snapshots past retention and refreshing the cached audit summary the
// admin dashboard reads.
type JobScheduler struct {
	scheduler         gocron.Scheduler
	audit             services.AuditLogsService
	snapshots         services.SnapshotService
	cache             caching.CacheService
	snapshotRetention time.Duration
	log               *logrus.Logger
}

func NewJobScheduler(
	audit services.AuditLogsService,
	snapshots services.SnapshotService,
	cache caching.CacheService,
	snapshotRetention time.Duration,
	log *logrus.Logger,
) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:         scheduler,
		audit:             audit,
		snapshots:         snapshots,
		cache:             cache,
		snapshotRetention: snapshotRetention,
		log:               log,
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.pruneSnapshots),
		gocron.WithName("snapshot-prune"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	_, err = js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshAuditSummary),
		gocron.WithName("audit-summary-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Shutdown stops the scheduler and waits for running jobs.
func (js *JobScheduler) Shutdown() error {
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) pruneSnapshots() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-js.snapshotRetention)
	removed, err := js.snapshots.PruneOlderThan(ctx, cutoff)
	if err != nil {
		js.log.WithError(err).Error("snapshot prune failed")
		return
	}
	if removed > 0 {
		js.log.WithField("removed", removed).Info("pruned expired snapshots")
	}
}

func (js *JobScheduler) refreshAuditSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := js.audit.Summary(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		js.log.WithError(err).Error("audit summary refresh failed")
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		js.log.WithError(err).Error("audit summary marshal failed")
		return
	}
	if err := js.cache.SetString(ctx, "audit:summary:24h", string(raw), time.Hour); err != nil {
		js.log.WithError(err).Error("audit summary cache write failed")
	}
}
