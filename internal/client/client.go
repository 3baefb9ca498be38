// Package client is the Go consumer of the clipforge HTTP surface: a typed
// API client plus the polling loop that watches a job until it settles.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	api "github.com/clipforge/clipforge/api/v1"
)

const defaultRequestTimeout = 30 * time.Second

// AuthError marks a 401: the caller should discard its stored token and
// re-authenticate.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected: %s", e.Message)
}

// APIError carries a non-2xx envelope response.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Message, e.Detail)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Signup creates an account and stores the returned token on the client.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*api.AuthData, error) {
	var data api.AuthData
	err := c.doJSON(ctx, http.MethodPost, "/auth/signup", api.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &data)
	if err != nil {
		return nil, err
	}
	c.token = data.Token
	return &data, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthData, error) {
	var data api.AuthData
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", api.LoginRequest{
		Email:    email,
		Password: password,
	}, &data)
	if err != nil {
		return nil, err
	}
	c.token = data.Token
	return &data, nil
}

// Me fetches the authenticated caller's profile.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var data api.UserData
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// UploadVideo submits a file-based job.
func (c *Client) UploadVideo(ctx context.Context, fileName, contentType string, content io.Reader) (*api.UploadData, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("video", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/video", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var data api.UploadData
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// UploadYouTube submits a YouTube import job.
func (c *Client) UploadYouTube(ctx context.Context, youtubeURL string) (*api.YouTubeUploadData, error) {
	var data api.YouTubeUploadData
	err := c.doJSON(ctx, http.MethodPost, "/upload/youtube", api.YouTubeUploadRequest{YoutubeUrl: youtubeURL}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// JobStatus reads the current state of one job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*api.Job, error) {
	var data api.JobStatusData
	if err := c.doJSON(ctx, http.MethodGet, "/upload/status/"+jobID, nil, &data); err != nil {
		return nil, err
	}
	return &data.Job, nil
}

// ListJobs reads one page of the caller's jobs.
func (c *Client) ListJobs(ctx context.Context, page, limit int, status string) (*api.JobListData, error) {
	path := fmt.Sprintf("/upload/jobs?page=%d&limit=%d", page, limit)
	if status != "" {
		path += "&status=" + status
	}
	var data api.JobListData
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Message: string(bytes.TrimSpace(raw))}
	}

	var envelope api.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("unexpected response (%d): %w", resp.StatusCode, err)
	}

	if !envelope.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message, Detail: envelope.Error}
	}

	if out != nil && envelope.Data != nil {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}
