package jobs_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/jobs"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
)

type fakeEnqueuer struct {
	mu       sync.Mutex
	enqueued []jobs.ProcessVideoArgs
	err      error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, args jobs.ProcessVideoArgs) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.enqueued = append(f.enqueued, args)
	return int64(len(f.enqueued)), nil
}

var _ = Describe("reaper", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from jobs;")
	})

	seed := func(status string, age time.Duration) *model.Job {
		job, err := s.Job().Create(context.TODO(), model.Job{
			UserID: uuid.New(),
			Video: model.MakeJSONField(model.Video{
				Url:    "https://storage.example.com/videos/test.mp4",
				Source: model.VideoSourceUpload,
			}),
			Status: status,
		})
		Expect(err).To(BeNil())
		if age > 0 {
			gormdb.Exec("UPDATE jobs SET updated_at = ? WHERE id = ?", time.Now().Add(-age), job.ID)
		}
		return job
	}

	It("re-enqueues pending jobs past the grace period", func() {
		stale := seed(model.JobStatusPending, time.Hour)
		seed(model.JobStatusPending, 0)

		queue := &fakeEnqueuer{}
		reaper := jobs.NewReaper(s, queue)
		Expect(reaper.Sweep(context.TODO())).To(BeNil())

		Expect(queue.enqueued).To(HaveLen(1))
		Expect(queue.enqueued[0].JobID).To(Equal(stale.ID))
	})

	It("ignores jobs that already moved on", func() {
		seed(model.JobStatusProcessing, time.Hour)
		seed(model.JobStatusCompleted, time.Hour)
		seed(model.JobStatusFailed, time.Hour)

		queue := &fakeEnqueuer{}
		reaper := jobs.NewReaper(s, queue)
		Expect(reaper.Sweep(context.TODO())).To(BeNil())
		Expect(queue.enqueued).To(BeEmpty())
	})

	It("keeps sweeping when the queue keeps rejecting", func() {
		seed(model.JobStatusPending, time.Hour)
		seed(model.JobStatusPending, time.Hour)

		queue := &fakeEnqueuer{err: errors.New("queue down")}
		reaper := jobs.NewReaper(s, queue)
		Expect(reaper.Sweep(context.TODO())).To(BeNil())
		Expect(queue.enqueued).To(BeEmpty())
	})
})
