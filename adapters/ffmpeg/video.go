package ffmpeg

import (
	"context"
	"fmt"

	"github.com/spothop/media-service/internal/application/service"
)

// Compress transcodes a clip to H.264 at the configured bitrate, clamping
// the longer dimension. Abort policy: failures and empty outputs are fatal
// for the asset.
func (o *Ops) Compress(ctx context.Context, path string) (string, error) {
	out := o.tempPath(".mp4")

	maxDim := o.cfg.VideoMaxDimension
	args := []string{
		"-y",
		"-i", path,
		"-vf", fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease:force_divisible_by=2", maxDim, maxDim),
		"-c:v", "libx264",
		"-preset", "medium",
		"-b:v", fmt.Sprintf("%dk", o.cfg.VideoBitrateKbps),
		"-c:a", "aac",
		"-movflags", "+faststart",
		out,
	}
	if _, err := o.runner.Run(ctx, o.cfg.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("compress video: %w", err)
	}
	if _, err := statNonEmpty(out); err != nil {
		return "", fmt.Errorf("compress video: %w", err)
	}
	return out, nil
}

// Thumbnail extracts a poster frame at atMs as a JPEG clamped to the
// configured width. Abort policy: fatal on failure.
func (o *Ops) Thumbnail(ctx context.Context, path string, atMs int64) (string, error) {
	out := o.tempPath(".jpg")

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", float64(atMs)/1000),
		"-i", path,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':-2", o.cfg.VideoThumbWidth),
		"-q:v", jpegQualityThumb,
		out,
	}
	if _, err := o.runner.Run(ctx, o.cfg.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("generate video thumbnail at %dms: %w", atMs, err)
	}
	if _, err := statNonEmpty(out); err != nil {
		return "", fmt.Errorf("generate video thumbnail: %w", err)
	}
	return out, nil
}

// Probe reports dimensions and duration of a local asset.
func (o *Ops) Probe(ctx context.Context, path string) (*service.MediaInfo, error) {
	return o.probe(ctx, path)
}
