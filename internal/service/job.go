package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/jobs"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
	"github.com/clipforge/clipforge/internal/youtube"
	"github.com/clipforge/clipforge/pkg/metrics"
)

const (
	videoMimePrefix = "video/"

	defaultPageSize = 10
	maxPageSize     = 100
)

// UploadForm carries a file-based submission into the service.
type UploadForm struct {
	FileName    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Pagination is the list envelope described by the jobs endpoint.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type JobService struct {
	store       store.Store
	objectStore ObjectStore
	metadata    MetadataResolver
	queue       TaskQueue
	maxFileSize int64
}

func NewJobService(s store.Store, objectStore ObjectStore, metadata MetadataResolver, queue TaskQueue, maxFileSize int64) *JobService {
	return &JobService{
		store:       s,
		objectStore: objectStore,
		metadata:    metadata,
		queue:       queue,
		maxFileSize: maxFileSize,
	}
}

// SubmitUpload validates and stores a file upload, creates a pending Job for
// it and enqueues the processing task. Validation and storage failures abort
// before any Job record exists; an enqueue failure does not, the reaper picks
// the pending record up later.
func (s *JobService) SubmitUpload(ctx context.Context, user auth.User, form UploadForm) (*model.Job, error) {
	if !strings.HasPrefix(form.ContentType, videoMimePrefix) {
		return nil, NewErrInvalidVideoFile(fmt.Sprintf("unsupported content type %q", form.ContentType))
	}
	if form.Size <= 0 {
		return nil, NewErrInvalidVideoFile("empty file")
	}
	if form.Size > s.maxFileSize {
		return nil, NewErrInvalidVideoFile(fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
	}

	key := uploadKey(user.ID, form.FileName)
	url, err := s.objectStore.Put(ctx, key, form.Content, form.Size, form.ContentType)
	if err != nil {
		return nil, NewErrStorageUnavailable(err)
	}

	job, err := s.store.Job().Create(ctx, model.Job{
		UserID: user.ID,
		Video: model.MakeJSONField(model.Video{
			Url:      url,
			FileName: form.FileName,
			Size:     form.Size,
			Type:     form.ContentType,
			Duration: 0, // resolved during processing
			Source:   model.VideoSourceUpload,
		}),
		Status: model.JobStatusPending,
		Result: model.MakeJSONField(model.JobResult{Kind: model.ResultKindClips}),
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(ctx, job)
	metrics.IncreaseJobsSubmittedTotal(model.VideoSourceUpload)
	return job, nil
}

// SubmitYouTube validates the URL, resolves metadata (with the degraded
// oEmbed fallback inside the resolver) and creates a pending Job pointing at
// the storage location the download worker will fill.
func (s *JobService) SubmitYouTube(ctx context.Context, user auth.User, youtubeURL string) (*model.Job, error) {
	if !youtube.ValidateURL(youtubeURL) {
		return nil, NewErrInvalidYouTubeURL(youtubeURL)
	}

	md, err := s.metadata.Metadata(ctx, youtubeURL)
	if err != nil {
		return nil, NewErrMetadataUnavailable(err)
	}

	key := youtubeKey(user.ID, md)
	job, err := s.store.Job().Create(ctx, model.Job{
		UserID: user.ID,
		Video: model.MakeJSONField(model.Video{
			Url:      s.objectStore.ObjectURL(key),
			FileName: youtubeFileName(md),
			Size:     0, // known once the download worker fetched the asset
			Type:     "video/mp4",
			Duration: md.Duration,
			Source:   model.VideoSourceYouTube,
		}),
		Status: model.JobStatusPending,
		Result: model.MakeJSONField(model.JobResult{Kind: model.ResultKindClips}),
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(ctx, job)
	metrics.IncreaseJobsSubmittedTotal(model.VideoSourceYouTube)
	return job, nil
}

// enqueue hands the job to the queue. Failure is logged, not returned: the
// record already exists and the reaper re-enqueues stale pending jobs.
func (s *JobService) enqueue(ctx context.Context, job *model.Job) {
	video := job.Video.Data
	if _, err := s.queue.Enqueue(ctx, jobs.ProcessVideoArgs{
		JobID:    job.ID,
		UserID:   job.UserID,
		VideoURL: video.Url,
		Source:   video.Source,
	}); err != nil {
		zap.S().Named("job_service").Errorw("failed to enqueue processing task, leaving job pending for the reaper",
			"job_id", job.ID, "error", err)
	}
}

// GetJob returns the caller's job. A job owned by someone else yields the
// same not-found error as a missing id.
func (s *JobService) GetJob(ctx context.Context, user auth.User, jobID uuid.UUID) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(jobID)
		}
		return nil, err
	}
	if job.UserID != user.ID {
		return nil, NewErrJobNotFound(jobID)
	}
	return job, nil
}

// ListJobs returns one page of the caller's jobs, newest first, optionally
// filtered by status.
func (s *JobService) ListJobs(ctx context.Context, user auth.User, page, limit int, status string) (model.JobList, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := store.NewJobQueryFilter().ByUserID(user.ID.String())
	if status != "" {
		filter = filter.ByStatus(status)
	}

	total, err := s.store.Job().Count(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	// Filters are consumed by the count query above, so rebuild for the page
	// query.
	filter = store.NewJobQueryFilter().ByUserID(user.ID.String())
	if status != "" {
		filter = filter.ByStatus(status)
	}

	jobList, err := s.store.Job().List(ctx, filter,
		store.NewJobQueryOptions().
			WithSortOrder(store.SortByCreatedTimeDesc).
			WithOffset((page-1)*limit).
			WithLimit(limit),
	)
	if err != nil {
		return nil, nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return jobList, &Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}, nil
}

func uploadKey(userID uuid.UUID, fileName string) string {
	return fmt.Sprintf("%s/videos/%d-%s", userID, time.Now().UnixNano(), sanitizeFileName(fileName))
}

func youtubeKey(userID uuid.UUID, md *youtube.Metadata) string {
	return fmt.Sprintf("%s/videos/youtube-%s-%d.mp4", userID, md.VideoID, time.Now().UnixNano())
}

func youtubeFileName(md *youtube.Metadata) string {
	return fmt.Sprintf("youtube_%s_%s.mp4", md.VideoID, sanitizeFileName(md.Title))
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}
