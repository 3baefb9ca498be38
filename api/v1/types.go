// Package v1 holds the wire types of the public HTTP surface. Every
// response body follows the same envelope.
package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the uniform response body shape.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type YouTubeUploadRequest struct {
	YoutubeUrl string `json:"youtubeUrl" validate:"required,url"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthData struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type UserData struct {
	User User `json:"user"`
}

type Video struct {
	Url      string  `json:"url"`
	FileName string  `json:"fileName"`
	Size     int64   `json:"size"`
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
	Source   string  `json:"source"`
}

type Clip struct {
	ClipUrl   string  `json:"clipUrl"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Duration  float64 `json:"duration"`
}

type Job struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Video     Video     `json:"video"`
	Result    []Clip    `json:"result"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadData is the submission echo for file uploads.
type UploadData struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	VideoUrl  string    `json:"videoUrl"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
}

// YouTubeUploadData additionally echoes the source URL and known duration.
type YouTubeUploadData struct {
	JobID      string    `json:"jobId"`
	Status     string    `json:"status"`
	VideoUrl   string    `json:"videoUrl"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	Duration   float64   `json:"duration"`
	YoutubeUrl string    `json:"youtubeUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}

type JobStatusData struct {
	Job Job `json:"job"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type JobListData struct {
	Jobs       []Job      `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}
