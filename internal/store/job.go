package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipforge/clipforge/internal/store/model"
)

type Job interface {
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error)
	Count(ctx context.Context, filter *JobQueryFilter) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) (*model.Job, error)
	SetResult(ctx context.Context, id uuid.UUID, result model.JobResult) (*model.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (j *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if job.ID == (uuid.UUID{}) {
		job.ID = uuid.New()
	}
	result := j.getDB(ctx).Clauses(clause.Returning{}).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &job, nil
}

func (j *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	result := j.getDB(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

func (j *JobStore) List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error) {
	var jobs model.JobList
	tx := j.getDB(ctx).Model(&jobs)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&jobs); result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (j *JobStore) Count(ctx context.Context, filter *JobQueryFilter) (int64, error) {
	var count int64
	tx := j.getDB(ctx).Model(&model.Job{})
	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if result := tx.Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// UpdateStatus moves a job to the given status. The update is guarded by the
// allowed predecessor set, so a terminal job can never be resurrected and a
// stale writer loses: zero affected rows on an existing job means the
// transition was rejected.
func (j *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) (*model.Job, error) {
	predecessors := model.StatusPredecessors(status)
	if len(predecessors) == 0 {
		return nil, ErrInvalidTransition
	}

	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if errMsg != nil {
		updates["error"] = *errMsg
	}

	result := j.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Where("status IN ?", predecessors).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing job from a rejected transition.
		if _, err := j.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	return j.Get(ctx, id)
}

// SetResult stores the result payload of a completed job. Only meaningful
// once the job reached completed status.
func (j *JobStore) SetResult(ctx context.Context, id uuid.UUID, result model.JobResult) (*model.Job, error) {
	res := j.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Where("status = ?", model.JobStatusCompleted).
		Updates(map[string]any{
			"result":     model.MakeJSONField(result),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := j.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return j.Get(ctx, id)
}

func (j *JobStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := j.getDB(ctx).Unscoped().Delete(&model.Job{}, "id = ?", id.String())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (j *JobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return j.db
}
