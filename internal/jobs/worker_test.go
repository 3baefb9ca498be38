package jobs_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/jobs"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
)

type fakeProber struct {
	duration float64
	err      error
	calls    int
}

func (p *fakeProber) Duration(_ context.Context, _ string) (float64, error) {
	p.calls++
	return p.duration, p.err
}

func riverJob(args jobs.ProcessVideoArgs) *river.Job[jobs.ProcessVideoArgs] {
	return &river.Job[jobs.ProcessVideoArgs]{JobRow: &rivertype.JobRow{}, Args: args}
}

// jobStoreHooks wraps the real job store to simulate transient write
// failures and stale reads.
type jobStoreHooks struct {
	store.Job
	failSetResult int
	getStatus     string
}

func (h *jobStoreHooks) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := h.Job.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.getStatus != "" {
		job.Status = h.getStatus
	}
	return job, nil
}

func (h *jobStoreHooks) SetResult(ctx context.Context, id uuid.UUID, result model.JobResult) (*model.Job, error) {
	if h.failSetResult > 0 {
		h.failSetResult--
		return nil, errors.New("connection reset by peer")
	}
	return h.Job.SetResult(ctx, id, result)
}

type storeHooks struct {
	store.Store
	jobStore store.Job
}

func (h *storeHooks) Job() store.Job { return h.jobStore }

var _ = Describe("ProcessVideoWorker", func() {
	Describe("Timeout", func() {
		It("returns the processing deadline", func() {
			worker := jobs.NewProcessVideoWorker(nil, nil, 60)
			Expect(worker.Timeout(nil)).To(Equal(jobs.JobTimeout))
		})
	})
})

var _ = Describe("processing", Ordered, func() {
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

	createJob := func(status string, duration float64) *model.Job {
		job, err := s.Job().Create(context.TODO(), model.Job{
			UserID: uuid.New(),
			Video: model.MakeJSONField(model.Video{
				Url:      "https://storage.example.com/videos/test.mp4",
				FileName: "test.mp4",
				Size:     1024,
				Type:     "video/mp4",
				Duration: duration,
				Source:   model.VideoSourceUpload,
			}),
			Status: status,
		})
		Expect(err).To(BeNil())
		return job
	}

	It("walks a pending job to completed and attaches the clips", func() {
		record := createJob(model.JobStatusPending, 150)
		worker := jobs.NewProcessVideoWorker(s, &fakeProber{}, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusCompleted))
		Expect(final.Result).ToNot(BeNil())

		clips := final.Result.Data.Clips
		Expect(clips).To(HaveLen(3))
		Expect(clips[0].StartTime).To(Equal(0.0))
		Expect(clips[0].EndTime).To(Equal(60.0))
		Expect(clips[2].StartTime).To(Equal(120.0))
		Expect(clips[2].EndTime).To(Equal(150.0))
		Expect(clips[2].Duration).To(Equal(30.0))
	})

	It("probes the duration when the submission did not know it", func() {
		record := createJob(model.JobStatusPending, 0)
		prober := &fakeProber{duration: 90}
		worker := jobs.NewProcessVideoWorker(s, prober, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())
		Expect(prober.calls).To(Equal(1))

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusCompleted))
		Expect(final.Result.Data.Clips).To(HaveLen(2))
	})

	It("does not probe when the duration is already known", func() {
		record := createJob(model.JobStatusPending, 45)
		prober := &fakeProber{err: errors.New("should not be called")}
		worker := jobs.NewProcessVideoWorker(s, prober, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())
		Expect(prober.calls).To(Equal(0))
	})

	It("fails the job without a river retry when the probe fails", func() {
		record := createJob(model.JobStatusPending, 0)
		worker := jobs.NewProcessVideoWorker(s, &fakeProber{err: errors.New("ffprobe exited 1")}, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusFailed))
		Expect(final.Error).To(ContainSubstring("ffprobe exited 1"))
	})

	It("drops a task whose job record vanished", func() {
		worker := jobs.NewProcessVideoWorker(s, &fakeProber{}, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: uuid.New()}))
		Expect(err).To(BeNil())
	})

	It("drops a task whose job is already terminal", func() {
		record := createJob(model.JobStatusCompleted, 150)
		prober := &fakeProber{err: errors.New("should not be called")}
		worker := jobs.NewProcessVideoWorker(s, prober, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())
		Expect(prober.calls).To(Equal(0))

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusCompleted))
	})

	It("leaves the job processing when the terminal write is interrupted", func() {
		record := createJob(model.JobStatusPending, 90)
		hooked := &storeHooks{Store: s, jobStore: &jobStoreHooks{Job: s.Job(), failSetResult: 1}}
		worker := jobs.NewProcessVideoWorker(hooked, &fakeProber{}, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).ToNot(BeNil())

		// The interrupted attempt must not leave a completed job without
		// its clips. The status rolls back so the retry can finish the work.
		mid, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(mid.Status).To(Equal(model.JobStatusProcessing))

		err = worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusCompleted))
		Expect(final.Result).ToNot(BeNil())
		Expect(final.Result.Data.Clips).To(HaveLen(2))
	})

	It("drops the task when the job turned terminal mid-flight", func() {
		record := createJob(model.JobStatusCompleted, 150)
		hooked := &storeHooks{Store: s, jobStore: &jobStoreHooks{Job: s.Job(), getStatus: model.JobStatusProcessing}}
		worker := jobs.NewProcessVideoWorker(hooked, &fakeProber{}, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusCompleted))
	})

	It("resumes a job already marked processing", func() {
		record := createJob(model.JobStatusProcessing, 60)
		worker := jobs.NewProcessVideoWorker(s, &fakeProber{}, 60)

		err := worker.Work(context.TODO(), riverJob(jobs.ProcessVideoArgs{JobID: record.ID}))
		Expect(err).To(BeNil())

		final, err := s.Job().Get(context.TODO(), record.ID)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(model.JobStatusCompleted))
		Expect(final.Result.Data.Clips).To(HaveLen(1))
	})
})
