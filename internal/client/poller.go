package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	api "github.com/clipforge/clipforge/api/v1"
)

// Outcome is the terminal state of one polling run.
type Outcome string

const (
	// OutcomeCompleted: the job reached completed; Result.Job carries clips.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed: the job reached failed.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimeout: the attempt budget ran out before a terminal status.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeStopped: the caller cancelled before a terminal status.
	OutcomeStopped Outcome = "stopped"
)

// StatusReader is the single endpoint the poller depends on.
type StatusReader interface {
	JobStatus(ctx context.Context, jobID string) (*api.Job, error)
}

// Update is emitted after every poll attempt, successful or not.
type Update struct {
	Attempt int
	Job     *api.Job
	Err     error
}

// Result is the final report of a polling run.
type Result struct {
	Outcome  Outcome
	Job      *api.Job
	Attempts int
}

// Poller repeatedly reads a job's status on a fixed interval until the job
// settles or the attempt budget is exhausted. Attempts never overlap: the
// next read is scheduled only after the previous one resolved. Transport
// errors are logged and consume an attempt but do not end the run.
type Poller struct {
	reader      StatusReader
	interval    time.Duration
	maxAttempts int
}

func NewPoller(reader StatusReader, interval time.Duration, maxAttempts int) *Poller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Poller{reader: reader, interval: interval, maxAttempts: maxAttempts}
}

// Handle controls one polling run. Updates streams per-attempt observations;
// Done yields exactly one Result. Stop cancels future attempts; an in-flight
// request may still resolve, its observation is then discarded.
type Handle struct {
	updates <-chan Update
	done    <-chan Result
	cancel  context.CancelFunc
}

func (h *Handle) Updates() <-chan Update { return h.updates }
func (h *Handle) Done() <-chan Result    { return h.done }
func (h *Handle) Stop()                  { h.cancel() }

// Wait blocks until the run finishes and returns its result.
func (h *Handle) Wait() Result {
	return <-h.done
}

// Start begins polling jobID. The first read is issued immediately.
func (p *Poller) Start(ctx context.Context, jobID string) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	updates := make(chan Update, p.maxAttempts)
	done := make(chan Result, 1)

	go p.loop(ctx, jobID, updates, done)

	return &Handle{updates: updates, done: done, cancel: cancel}
}

func (p *Poller) loop(ctx context.Context, jobID string, updates chan<- Update, done chan<- Result) {
	defer close(updates)

	logger := zap.S().Named("poller").With("job_id", jobID)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		job, err := p.reader.JobStatus(ctx, jobID)

		// A cancellation that raced the request wins: the observation is
		// discarded and no further attempts run.
		if ctx.Err() != nil {
			done <- Result{Outcome: OutcomeStopped, Attempts: attempt}
			return
		}

		updates <- Update{Attempt: attempt, Job: job, Err: err}

		if err != nil {
			logger.Warnw("poll attempt failed", "attempt", attempt, "error", err)
		} else {
			switch job.Status {
			case "completed":
				done <- Result{Outcome: OutcomeCompleted, Job: job, Attempts: attempt}
				return
			case "failed":
				done <- Result{Outcome: OutcomeFailed, Job: job, Attempts: attempt}
				return
			}
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			done <- Result{Outcome: OutcomeStopped, Attempts: attempt}
			return
		}
	}

	logger.Warnw("polling budget exhausted", "attempts", p.maxAttempts)
	done <- Result{Outcome: OutcomeTimeout, Attempts: p.maxAttempts}
}
