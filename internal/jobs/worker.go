package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
	"github.com/clipforge/clipforge/pkg/metrics"
)

const JobTimeout = 10 * time.Minute

// ProcessVideoWorker is the single writer of a job record after creation. It
// walks the job through processing into a terminal state and attaches the
// clip result. A failed transition guard means another attempt already moved
// the job on, in which case the work is dropped rather than retried.
type ProcessVideoWorker struct {
	river.WorkerDefaults[ProcessVideoArgs]
	store      store.Store
	prober     MediaProber
	clipLength float64
}

func NewProcessVideoWorker(s store.Store, prober MediaProber, clipLengthSeconds int) *ProcessVideoWorker {
	if clipLengthSeconds <= 0 {
		clipLengthSeconds = 60
	}
	return &ProcessVideoWorker{
		store:      s,
		prober:     prober,
		clipLength: float64(clipLengthSeconds),
	}
}

func (w *ProcessVideoWorker) Timeout(job *river.Job[ProcessVideoArgs]) time.Duration {
	return JobTimeout
}

func (w *ProcessVideoWorker) Work(ctx context.Context, job *river.Job[ProcessVideoArgs]) error {
	logger := zap.S().Named("worker").With("job_id", job.Args.JobID)

	record, err := w.store.Job().Get(ctx, job.Args.JobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			logger.Warn("job record vanished before processing, dropping task")
			return nil
		}
		return err
	}

	if model.TerminalStatus(record.Status) {
		logger.Infow("job already terminal, dropping task", "status", record.Status)
		return nil
	}

	if record.Status == model.JobStatusPending {
		if _, err := w.store.Job().UpdateStatus(ctx, record.ID, model.JobStatusProcessing, nil); err != nil {
			if errors.Is(err, store.ErrInvalidTransition) {
				logger.Info("lost the transition race, dropping task")
				return nil
			}
			return err
		}
	}

	clips, err := w.process(ctx, record)
	if err != nil {
		logger.Errorw("processing failed", "error", err)
		msg := err.Error()
		if _, uerr := w.store.Job().UpdateStatus(ctx, record.ID, model.JobStatusFailed, &msg); uerr != nil {
			logger.Errorw("failed to record job failure", "error", uerr)
		}
		metrics.IncreaseJobsFinishedTotal(model.JobStatusFailed)
		// The terminal state is recorded on the job; do not let river retry.
		return nil
	}

	// The completed status and its result land in one transaction so an
	// interrupted attempt never leaves a terminal job without clips.
	txCtx, err := w.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	if _, err := w.store.Job().UpdateStatus(txCtx, record.ID, model.JobStatusCompleted, nil); err != nil {
		_, _ = store.Rollback(txCtx)
		if errors.Is(err, store.ErrInvalidTransition) {
			logger.Info("lost the terminal transition race, dropping task")
			return nil
		}
		return err
	}
	if _, err := w.store.Job().SetResult(txCtx, record.ID, model.ClipsResult(clips)); err != nil {
		_, _ = store.Rollback(txCtx)
		return err
	}
	if _, err := store.Commit(txCtx); err != nil {
		return err
	}

	metrics.IncreaseJobsFinishedTotal(model.JobStatusCompleted)
	logger.Infow("job completed", "clips", len(clips))
	return nil
}

func (w *ProcessVideoWorker) process(ctx context.Context, record *model.Job) ([]model.Clip, error) {
	video := record.Video.Data

	duration := video.Duration
	if duration == 0 {
		probed, err := w.prober.Duration(ctx, video.Url)
		if err != nil {
			return nil, fmt.Errorf("failed to probe video duration: %w", err)
		}
		duration = probed
	}
	if duration <= 0 {
		return nil, fmt.Errorf("video has no measurable duration")
	}

	return w.segment(video.Url, duration), nil
}

// segment cuts the timeline into fixed-length clips; the final clip is
// shorter when the timeline does not divide evenly.
func (w *ProcessVideoWorker) segment(videoURL string, duration float64) []model.Clip {
	var clips []model.Clip
	base := strings.TrimSuffix(videoURL, "/")

	for start := 0.0; start < duration; start += w.clipLength {
		end := start + w.clipLength
		if end > duration {
			end = duration
		}
		clips = append(clips, model.Clip{
			ClipUrl:   fmt.Sprintf("%s/clips/clip_%03d.mp4", base, len(clips)+1),
			StartTime: start,
			EndTime:   end,
			Duration:  end - start,
		})
	}
	return clips
}
