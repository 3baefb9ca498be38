package youtube_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipforge/clipforge/internal/youtube"
)

// flakyResolver fails until the configured attempt succeeds.
type flakyResolver struct {
	succeedOn int
	calls     int
}

func (r *flakyResolver) Resolve(_ context.Context, videoID string) (*youtube.Metadata, error) {
	r.calls++
	if r.calls < r.succeedOn {
		return nil, errors.New("extraction backend unavailable")
	}
	return &youtube.Metadata{VideoID: videoID, Title: "Test Video", Duration: 212}, nil
}

var _ = Describe("metadata client", func() {
	It("resolves on the first attempt", func() {
		resolver := &flakyResolver{succeedOn: 1}
		c := youtube.NewClient(resolver, 3, time.Millisecond)

		md, err := c.Metadata(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		Expect(err).To(BeNil())
		Expect(md.VideoID).To(Equal("dQw4w9WgXcQ"))
		Expect(md.Duration).To(Equal(float64(212)))
		Expect(resolver.calls).To(Equal(1))
	})

	It("retries the primary resolver before giving up", func() {
		resolver := &flakyResolver{succeedOn: 3}
		c := youtube.NewClient(resolver, 3, time.Millisecond)

		md, err := c.Metadata(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		Expect(err).To(BeNil())
		Expect(md.Title).To(Equal("Test Video"))
		Expect(resolver.calls).To(Equal(3))
	})

	It("rejects a url it cannot parse without calling the resolver", func() {
		resolver := &flakyResolver{succeedOn: 1}
		c := youtube.NewClient(resolver, 3, time.Millisecond)

		_, err := c.Metadata(context.Background(), "https://vimeo.com/12345")
		Expect(err).ToNot(BeNil())
		Expect(resolver.calls).To(Equal(0))
	})

	It("stops retrying when the context is cancelled", func() {
		resolver := &flakyResolver{succeedOn: 100}
		c := youtube.NewClient(resolver, 5, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := c.Metadata(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		Expect(err).To(Equal(context.Canceled))
		Expect(resolver.calls).To(Equal(1))
	})
})
