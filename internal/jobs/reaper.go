package jobs

import (
	"context"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
)

const (
	reaperInterval = 1 * time.Minute
	// pendingGracePeriod is how long a pending job may sit untouched before
	// the reaper assumes its enqueue was lost and resubmits it.
	pendingGracePeriod = 5 * time.Minute
)

// Enqueuer is the slice of the queue client the reaper needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, args ProcessVideoArgs) (int64, error)
}

// Reaper is the recovery path for jobs whose creation succeeded but whose
// enqueue did not: it periodically re-enqueues pending jobs that have been
// sitting past the grace period, so no record is left silently orphaned.
type Reaper struct {
	store  store.Store
	client Enqueuer
}

func NewReaper(s store.Store, client Enqueuer) *Reaper {
	return &Reaper{store: s, client: client}
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := jitterbug.New(reaperInterval, &jitterbug.Norm{Stdev: 5 * time.Second})
	defer ticker.Stop()

	logger := zap.S().Named("reaper")
	logger.Infof("reaper started, grace period %s", pendingGracePeriod)

	for {
		select {
		case <-ctx.Done():
			logger.Info("reaper stopped")
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				logger.Errorw("sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one recovery pass over stale pending jobs.
func (r *Reaper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-pendingGracePeriod)
	stale, err := r.store.Job().List(ctx,
		store.NewJobQueryFilter().ByStatus(model.JobStatusPending).ByUpdatedBefore(cutoff),
		store.NewJobQueryOptions().WithSortOrder(store.SortByCreatedTime),
	)
	if err != nil {
		return err
	}

	logger := zap.S().Named("reaper")
	for _, job := range stale {
		video := job.Video.Data
		if _, err := r.client.Enqueue(ctx, ProcessVideoArgs{
			JobID:    job.ID,
			UserID:   job.UserID,
			VideoURL: video.Url,
			Source:   video.Source,
		}); err != nil {
			logger.Errorw("failed to re-enqueue stale job", "job_id", job.ID, "error", err)
			continue
		}
		logger.Infow("re-enqueued stale pending job", "job_id", job.ID)
	}
	return nil
}
