package ffmpeg

import (
	"context"
	"fmt"

	"github.com/spothop/media-service/internal/application/service"
)

// Trim cuts a clip down to maxDurationMs from its start, stream-copying so
// no re-encode happens before compression. This implementation never
// cancels; interactive cancellation is modelled by the caller substituting
// a declining Trimmer.
func (o *Ops) Trim(ctx context.Context, path string, maxDurationMs int64) (*service.TrimResult, error) {
	out := o.tempPath(".mp4")

	args := []string{
		"-y",
		"-i", path,
		"-t", fmt.Sprintf("%.3f", float64(maxDurationMs)/1000),
		"-c", "copy",
		out,
	}
	if _, err := o.runner.Run(ctx, o.cfg.FFmpegPath, args...); err != nil {
		return nil, fmt.Errorf("trim video: %w", err)
	}
	if _, err := statNonEmpty(out); err != nil {
		return nil, fmt.Errorf("trim video: %w", err)
	}

	info, err := o.probe(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("probe trimmed video: %w", err)
	}
	return &service.TrimResult{Path: out, DurationMs: info.DurationMs}, nil
}

// DecliningTrimmer reports cancellation for every trim request. Handlers
// use it when the uploader refused the interactive trim step.
type DecliningTrimmer struct{}

func (DecliningTrimmer) Trim(context.Context, string, int64) (*service.TrimResult, error) {
	return nil, nil
}
