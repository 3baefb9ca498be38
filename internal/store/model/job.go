package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job statuses. Transitions are monotonic along
// pending -> processing -> {completed, failed}; a terminal status never
// changes again. Retries create a new Job instead of resurrecting one.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Video sources.
const (
	VideoSourceUpload  = "upload"
	VideoSourceYouTube = "youtube"
)

// Result kinds for the tagged result union.
const (
	ResultKindClips  = "clips"
	ResultKindOpaque = "opaque"
)

// Video is the immutable source descriptor of a Job.
type Video struct {
	Url      string  `json:"url"`
	FileName string  `json:"fileName"`
	Size     int64   `json:"size"`
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
	Source   string  `json:"source"`
}

// Clip describes one produced output segment.
type Clip struct {
	ClipUrl   string  `json:"clipUrl"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Duration  float64 `json:"duration"`
}

// JobResult is a tagged union over known result shapes. Unrecognized worker
// payloads are preserved under the opaque variant.
type JobResult struct {
	Kind   string          `json:"kind"`
	Clips  []Clip          `json:"clips,omitempty"`
	Opaque json.RawMessage `json:"opaque,omitempty"`
}

func ClipsResult(clips []Clip) JobResult {
	return JobResult{Kind: ResultKindClips, Clips: clips}
}

func OpaqueResult(raw json.RawMessage) JobResult {
	return JobResult{Kind: ResultKindOpaque, Opaque: raw}
}

// IsEmpty reports whether the result carries no payload yet.
func (r JobResult) IsEmpty() bool {
	return len(r.Clips) == 0 && len(r.Opaque) == 0
}

type Job struct {
	ID        uuid.UUID             `gorm:"primaryKey;"`
	UserID    uuid.UUID             `gorm:"not null;index:jobs_user_id_status_idx,priority:1"`
	Video     *JSONField[Video]     `gorm:"type:jsonb;not null"`
	Status    string                `gorm:"not null;type:VARCHAR(32);index;index:jobs_user_id_status_idx,priority:2"`
	Error     string                `gorm:"type:TEXT"`
	Result    *JSONField[JobResult] `gorm:"type:jsonb"`
	CreatedAt time.Time             `gorm:"not null;index:jobs_created_at_idx,sort:desc"`
	UpdatedAt time.Time             `gorm:"not null"`
}

type JobList []Job

// TerminalStatus reports whether status admits no further transitions.
func TerminalStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// statusPredecessors lists, per status, the statuses a job may move from.
var statusPredecessors = map[string][]string{
	JobStatusProcessing: {JobStatusPending},
	JobStatusCompleted:  {JobStatusProcessing},
	JobStatusFailed:     {JobStatusPending, JobStatusProcessing},
}

// StatusPredecessors returns the set of statuses allowed to transition into
// the given one. An empty slice means no transition may produce it.
func StatusPredecessors(status string) []string {
	return statusPredecessors[status]
}

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}
