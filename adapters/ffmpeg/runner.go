package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner abstracts process execution so transforms can be tested without
// ffmpeg installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type CommandRunner struct{}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, truncate(out, 512))
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// statNonEmpty enforces the pipeline invariant that every produced artifact
// must exist and be non-zero-byte before it is trusted.
func statNonEmpty(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("output file %s missing: %w", path, err)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("output file %s is empty", path)
	}
	return info.Size(), nil
}
