package service

import "context"

// MediaInfo is what probing a local asset reports.
type MediaInfo struct {
	Width      int
	Height     int
	DurationMs int64
}

// ImageProcessor performs the local, no-network photo transforms.
//
// Optimize degrades gracefully: on any internal failure it returns the
// input path unchanged with a nil error, so callers must not assume the
// optimization happened. Thumbnails are required outputs and fail loudly.
type ImageProcessor interface {
	Optimize(ctx context.Context, path string) (string, error)
	Thumbnails(ctx context.Context, path string) (small string, large string, err error)
}

// VideoProcessor performs the local video transforms. Every method fails
// loudly; a zero-byte output is an error, never a success.
type VideoProcessor interface {
	Compress(ctx context.Context, path string) (string, error)
	Thumbnail(ctx context.Context, path string, atMs int64) (string, error)
	Probe(ctx context.Context, path string) (*MediaInfo, error)
}

// TrimResult describes a completed trim.
type TrimResult struct {
	Path       string
	DurationMs int64
}

// Trimmer shortens a clip to at most maxDurationMs. A (nil, nil) return
// means the interactive trim was cancelled by the user; orchestrators
// translate that into "nothing selected", never into an error.
type Trimmer interface {
	Trim(ctx context.Context, path string, maxDurationMs int64) (*TrimResult, error)
}
