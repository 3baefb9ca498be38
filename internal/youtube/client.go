package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	oEmbedEndpoint = "https://www.youtube.com/oembed"
	watchURLFormat = "https://www.youtube.com/watch?v=%s"

	requestTimeout = 10 * time.Second
)

var ErrMetadataUnavailable = errors.New("youtube metadata unavailable")

// Metadata describes a YouTube video as far as we could resolve it. Duration
// is zero when only the degraded oEmbed lookup succeeded; the worker fills it
// in during processing.
type Metadata struct {
	VideoID  string
	Title    string
	Duration float64
	Uploader string
}

// Resolver looks up metadata for a single video id. Implemented by the
// primary extraction backend; swapped for a fake in tests.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*Metadata, error)
}

// Client resolves video metadata with bounded retries against the primary
// resolver and falls back to the public oEmbed lookup when every attempt
// fails. oEmbed supplies at least a title, accepting duration 0.
type Client struct {
	resolver Resolver
	http     *http.Client
	retries  int
	backoff  time.Duration
}

func NewClient(resolver Resolver, retries int, backoff time.Duration) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		resolver: resolver,
		http:     &http.Client{Timeout: requestTimeout},
		retries:  retries,
		backoff:  backoff,
	}
}

func (c *Client) Metadata(ctx context.Context, videoURL string) (*Metadata, error) {
	videoID, ok := ExtractVideoID(videoURL)
	if !ok {
		return nil, fmt.Errorf("not a youtube url: %s", videoURL)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			zap.S().Named("youtube").Debugf("retrying metadata extraction (%d/%d)", attempt, c.retries)
			select {
			case <-time.After(c.backoff * time.Duration(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		md, err := c.resolver.Resolve(ctx, videoID)
		if err == nil {
			return md, nil
		}
		lastErr = err
	}

	zap.S().Named("youtube").Warnw("primary metadata lookup exhausted, falling back to oembed",
		"video_id", videoID, "error", lastErr)

	md, err := c.oEmbed(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, lastErr)
	}
	return md, nil
}

func (c *Client) oEmbed(ctx context.Context, videoID string) (*Metadata, error) {
	target := fmt.Sprintf(watchURLFormat, videoID)
	reqURL := fmt.Sprintf("%s?url=%s&format=json", oEmbedEndpoint, url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed lookup returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	title := payload.Title
	if title == "" {
		title = fmt.Sprintf("YouTube Video %s", videoID)
	}

	return &Metadata{
		VideoID:  videoID,
		Title:    title,
		Duration: 0,
		Uploader: payload.AuthorName,
	}, nil
}
