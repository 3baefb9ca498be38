package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const (
	DefaultQueue  = "videos"
	MaxJobRetries = 3

	// EnqueueDelay postpones pickup slightly so the submission response wins
	// the race with the first status poll.
	EnqueueDelay = 1 * time.Second
)

// ProcessVideoArgs is the queue task payload referencing a Job record and
// its stored asset. Stored in river_job.args as JSON.
type ProcessVideoArgs struct {
	JobID    uuid.UUID `json:"job_id"`
	UserID   uuid.UUID `json:"user_id"`
	VideoURL string    `json:"video_url"`
	Source   string    `json:"source"`
}

func (ProcessVideoArgs) Kind() string {
	return "process_video"
}

func (ProcessVideoArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobRetries,
	}
}

// Client wraps the river client used to enqueue and run processing tasks.
type Client struct {
	*river.Client[pgx.Tx]
}

// NewClient builds a river client on the given pool. A nil worker registers
// an insert-only client (used by tools that enqueue but never process).
func NewClient(pool *pgxpool.Pool, worker *ProcessVideoWorker) (*Client, error) {
	cfg := &river.Config{
		FetchCooldown:     100 * time.Millisecond,
		FetchPollInterval: 500 * time.Millisecond,

		CompletedJobRetentionPeriod: 24 * time.Hour,
		DiscardedJobRetentionPeriod: 7 * 24 * time.Hour,
	}

	if worker != nil {
		workers := river.NewWorkers()
		river.AddWorker(workers, worker)
		cfg.Workers = workers
		cfg.Queues = map[string]river.QueueConfig{
			DefaultQueue: {MaxWorkers: 4},
		}
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), cfg)
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}

// Enqueue inserts a processing task for the job. The queue applies its own
// retry policy after this point.
func (c *Client) Enqueue(ctx context.Context, args ProcessVideoArgs) (int64, error) {
	result, err := c.Insert(ctx, args, &river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobRetries,
		ScheduledAt: time.Now().Add(EnqueueDelay),
	})
	if err != nil {
		return 0, err
	}
	return result.Job.ID, nil
}
