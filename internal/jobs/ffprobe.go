package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// MediaProber resolves the duration of a stored asset. Swapped for a fake in
// tests; the default implementation shells out to ffprobe.
type MediaProber interface {
	Duration(ctx context.Context, url string) (float64, error)
}

type FFProbe struct{}

var _ MediaProber = (*FFProbe)(nil)

func NewFFProbe() *FFProbe {
	return &FFProbe{}
}

// Duration runs ffprobe against the given URL and returns format.duration in
// seconds. ffprobe reads http(s) inputs directly, so no local download is
// needed.
func (f *FFProbe) Duration(ctx context.Context, url string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		url,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, stderr.String())
	}

	var probed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out.Bytes(), &probed); err != nil {
		return 0, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}

	if probed.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in ffprobe output for %s", url)
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe duration %q: %w", probed.Format.Duration, err)
	}

	return duration, nil
}
