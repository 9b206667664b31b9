package ffmpeg

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fitWithin returns the output dimensions for a proportional resize whose
// longer edge is clamped to maxEdge. Assets already within bounds keep
// their dimensions; nothing is ever upscaled.
func fitWithin(width, height, maxEdge int) (int, int) {
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}
	if width >= height {
		scaled := int(float64(height)*float64(maxEdge)/float64(width) + 0.5)
		return maxEdge, scaled
	}
	scaled := int(float64(width)*float64(maxEdge)/float64(height) + 0.5)
	return scaled, maxEdge
}

// Optimize re-encodes a photo as JPEG, clamping its longer edge to the
// configured maximum. Degrade policy: any failure returns the input path
// unchanged with a nil error, so display paths keep working with the
// unoptimized original.
func (o *Ops) Optimize(ctx context.Context, path string) (string, error) {
	info, err := o.probe(ctx, path)
	if err != nil {
		o.logger.Warn("image optimize skipped, probe failed", zap.String("path", path), zap.Error(err))
		return path, nil
	}

	w, h := fitWithin(info.Width, info.Height, o.cfg.MaxImageEdge)
	out := o.tempPath(".jpg")

	args := []string{
		"-y",
		"-i", path,
		"-vf", fmt.Sprintf("scale=%d:%d", w, h),
		"-q:v", jpegQualityMain,
		"-frames:v", "1",
		out,
	}
	if _, err := o.runner.Run(ctx, o.cfg.FFmpegPath, args...); err != nil {
		o.logger.Warn("image optimize failed, using original", zap.String("path", path), zap.Error(err))
		return path, nil
	}
	if _, err := statNonEmpty(out); err != nil {
		o.logger.Warn("image optimize produced no output, using original", zap.String("path", path), zap.Error(err))
		return path, nil
	}
	return out, nil
}

// Thumbnails renders the small and large derivatives concurrently. Abort
// policy: these are required outputs, so the first failure propagates.
func (o *Ops) Thumbnails(ctx context.Context, path string) (string, string, error) {
	small := o.tempPath(".jpg")
	large := o.tempPath(".jpg")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.resizeToWidth(gctx, path, small, o.cfg.ThumbSmallWidth) })
	g.Go(func() error { return o.resizeToWidth(gctx, path, large, o.cfg.ThumbLargeWidth) })
	if err := g.Wait(); err != nil {
		return "", "", fmt.Errorf("generate thumbnails: %w", err)
	}
	return small, large, nil
}

func (o *Ops) resizeToWidth(ctx context.Context, in, out string, width int) error {
	args := []string{
		"-y",
		"-i", in,
		"-vf", fmt.Sprintf("scale=%d:-2", width),
		"-q:v", jpegQualityThumb,
		"-frames:v", "1",
		out,
	}
	if _, err := o.runner.Run(ctx, o.cfg.FFmpegPath, args...); err != nil {
		return fmt.Errorf("resize to width %d: %w", width, err)
	}
	_, err := statNonEmpty(out)
	return err
}
