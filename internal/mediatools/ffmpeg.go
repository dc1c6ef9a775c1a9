package mediatools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FrameExtractor grabs single frames from a video with ffmpeg.
type FrameExtractor struct {
	Binary string
	Run    Runner
}

func NewFrameExtractor(binary string) *FrameExtractor {
	return &FrameExtractor{Binary: binaryOr(binary, "ffmpeg"), Run: ExecRunner}
}

// Extract writes the frame at second to out as JPEG.
func (f *FrameExtractor) Extract(ctx context.Context, path string, second int, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create frame dir: %w", err)
	}
	_, err := f.Run(ctx, binaryOr(f.Binary, "ffmpeg"),
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", strconv.Itoa(second),
		"-i", path,
		"-frames:v", "1",
		"-q:v", "2",
		out,
	)
	return err
}

// FrameSeconds returns n evenly spaced positions strictly inside a video of
// the given duration.
func FrameSeconds(duration, n int) []int {
	if duration <= 0 || n <= 0 {
		return nil
	}
	out := make([]int, 0, n)
	seen := map[int]bool{}
	for i := 1; i <= n; i++ {
		s := duration * i / (n + 1)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
