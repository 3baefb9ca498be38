package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"

	// Public web client identity expected by the player endpoint.
	clientName    = "WEB"
	clientVersion = "2.20240726.00.00"
)

// InnertubeResolver is the primary metadata backend. It queries the player
// endpoint the YouTube web client uses; transient failures here are retried
// by Client before it degrades to oEmbed.
type InnertubeResolver struct {
	http *http.Client
}

var _ Resolver = (*InnertubeResolver)(nil)

func NewInnertubeResolver() *InnertubeResolver {
	return &InnertubeResolver{http: &http.Client{Timeout: 15 * time.Second}}
}

func (r *InnertubeResolver) Resolve(ctx context.Context, videoID string) (*Metadata, error) {
	payload := map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    clientName,
				"clientVersion": clientVersion,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player endpoint returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		VideoDetails struct {
			Title         string `json:"title"`
			LengthSeconds string `json:"lengthSeconds"`
			Author        string `json:"author"`
		} `json:"videoDetails"`
		PlayabilityStatus struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"playabilityStatus"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	if parsed.VideoDetails.Title == "" {
		return nil, fmt.Errorf("video %s not resolvable: %s %s",
			videoID, parsed.PlayabilityStatus.Status, parsed.PlayabilityStatus.Reason)
	}

	duration, _ := strconv.ParseFloat(parsed.VideoDetails.LengthSeconds, 64)

	return &Metadata{
		VideoID:  videoID,
		Title:    parsed.VideoDetails.Title,
		Duration: duration,
		Uploader: parsed.VideoDetails.Author,
	}, nil
}
