package v1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/clipforge/clipforge/api/v1"
	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/service"
)

// UploadVideo handles POST /upload/video (multipart, field "video").
func (h *ServiceHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	// Cap the request body slightly above the configured file limit so the
	// multipart overhead does not reject a maximal file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	file, header, err := r.FormFile("video")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "No video file provided", "please select a video file to upload")
		return
	}
	defer file.Close()

	job, err := h.jobSrv.SubmitUpload(r.Context(), user, service.UploadForm{
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		switch err.(type) {
		case *service.ErrValidation:
			respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		case *service.ErrStorageUnavailable:
			zap.S().Named("upload_handler").Errorw("storage failure", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to store video")
		default:
			zap.S().Named("upload_handler").Errorw("upload failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to create job")
		}
		return
	}

	video := job.Video.Data
	respond(w, r, http.StatusCreated, "Video uploaded successfully", api.UploadData{
		JobID:     job.ID.String(),
		Status:    job.Status,
		VideoUrl:  video.Url,
		FileName:  video.FileName,
		FileSize:  video.Size,
		CreatedAt: job.CreatedAt,
	})
}

// UploadYouTube handles POST /upload/youtube.
func (h *ServiceHandler) UploadYouTube(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	var req api.YouTubeUploadRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "YouTube URL is required", "please provide a valid YouTube URL")
		return
	}

	job, err := h.jobSrv.SubmitYouTube(r.Context(), user, req.YoutubeUrl)
	if err != nil {
		switch err.(type) {
		case *service.ErrValidation:
			respondError(w, r, http.StatusBadRequest, "Invalid YouTube URL", "please provide a valid YouTube URL")
		case *service.ErrMetadataUnavailable:
			zap.S().Named("upload_handler").Errorw("metadata failure", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to resolve video metadata")
		default:
			zap.S().Named("upload_handler").Errorw("youtube upload failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to create job")
		}
		return
	}

	video := job.Video.Data
	respond(w, r, http.StatusCreated, "YouTube video accepted", api.YouTubeUploadData{
		JobID:      job.ID.String(),
		Status:     job.Status,
		VideoUrl:   video.Url,
		FileName:   video.FileName,
		FileSize:   video.Size,
		Duration:   video.Duration,
		YoutubeUrl: req.YoutubeUrl,
		CreatedAt:  job.CreatedAt,
	})
}

// JobStatus handles GET /upload/status/{jobId}.
func (h *ServiceHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		// An unparseable id is indistinguishable from an absent one.
		respondError(w, r, http.StatusNotFound, "Job not found", "job not found or access denied")
		return
	}

	job, err := h.jobSrv.GetJob(r.Context(), user, jobID)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			respondError(w, r, http.StatusNotFound, "Job not found", "job not found or access denied")
		default:
			zap.S().Named("upload_handler").Errorw("status lookup failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to load job")
		}
		return
	}

	respond(w, r, http.StatusOK, "Job status retrieved successfully", api.JobStatusData{Job: jobToApi(job)})
}

// ListJobs handles GET /upload/jobs?page&limit&status.
func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")

	jobList, pagination, err := h.jobSrv.ListJobs(r.Context(), user, page, limit, status)
	if err != nil {
		zap.S().Named("upload_handler").Errorw("list jobs failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error", "failed to list jobs")
		return
	}

	respond(w, r, http.StatusOK, "User jobs retrieved successfully", api.JobListData{
		Jobs: jobListToApi(jobList),
		Pagination: api.Pagination{
			CurrentPage:  pagination.CurrentPage,
			TotalPages:   pagination.TotalPages,
			TotalItems:   pagination.TotalItems,
			ItemsPerPage: pagination.ItemsPerPage,
		},
	})
}
