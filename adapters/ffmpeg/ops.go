package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spothop/media-service/pkg/logger"
)

// jpeg qscale values (2 best .. 31 worst); 3 tracks the q0.8 re-encode of
// optimized originals, 5 the q0.7 thumbnails.
const (
	jpegQualityMain  = "3"
	jpegQualityThumb = "5"
)

type Config struct {
	FFmpegPath  string
	FFprobePath string
	TempDir     string

	MaxImageEdge    int
	ThumbSmallWidth int
	ThumbLargeWidth int
	VideoThumbWidth int

	VideoMaxDimension int
	VideoBitrateKbps  int
}

// Ops implements the image, video and trim transform ports on top of
// ffmpeg/ffprobe subprocesses.
type Ops struct {
	cfg    Config
	runner Runner
	logger logger.Logger
}

func NewOps(cfg Config, runner Runner, log logger.Logger) (*Ops, error) {
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir %s: %w", cfg.TempDir, err)
	}
	return &Ops{cfg: cfg, runner: runner, logger: log}, nil
}

func (o *Ops) tempPath(ext string) string {
	return filepath.Join(o.cfg.TempDir, uuid.New().String()+ext)
}
