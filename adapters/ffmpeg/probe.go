package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spothop/media-service/internal/application/service"
)

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width,omitempty"`
		Height    int    `json:"height,omitempty"`
		Duration  string `json:"duration,omitempty"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probe runs ffprobe on a local asset (image or video) and reports
// dimensions plus duration in milliseconds. Still images report zero
// duration.
func (o *Ops) probe(ctx context.Context, path string) (*service.MediaInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	out, err := o.runner.Run(ctx, o.cfg.FFprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(out, &probeData); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &service.MediaInfo{}

	if probeData.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probeData.Format.Duration, 64); err == nil {
			info.DurationMs = int64(d * 1000)
		}
	}

	for _, stream := range probeData.Streams {
		if stream.CodecType != "video" || info.Width != 0 {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		if info.DurationMs == 0 && stream.Duration != "" {
			if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				info.DurationMs = int64(d * 1000)
			}
		}
	}

	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("no video stream found in %s", path)
	}

	return info, nil
}
