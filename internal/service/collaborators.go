package service

import (
	"context"
	"io"

	"github.com/clipforge/clipforge/internal/jobs"
	"github.com/clipforge/clipforge/internal/youtube"
)

// ObjectStore persists raw source assets. Implemented by storage.MinioStore.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// ObjectURL returns the durable URL for a key without writing anything.
	ObjectURL(key string) string
}

// MetadataResolver looks up YouTube video metadata, degrading to a
// title-only result when the primary backend is unreachable. Implemented by
// youtube.Client.
type MetadataResolver interface {
	Metadata(ctx context.Context, url string) (*youtube.Metadata, error)
}

// TaskQueue enqueues processing tasks. Implemented by jobs.Client.
type TaskQueue interface {
	Enqueue(ctx context.Context, args jobs.ProcessVideoArgs) (int64, error)
}
