package timelapse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegEncoder drives the ffmpeg binary through its concat demuxer:
// a generated list file names every frame with the uniform duration,
// and ffmpeg muxes them into a single H.264 video.
type FFmpegEncoder struct {
	// Binary is the ffmpeg executable, "ffmpeg" by default.
	Binary string
}

func NewFFmpegEncoder(binary string) *FFmpegEncoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegEncoder{Binary: binary}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, job EncodeJob) error {
	if len(job.Frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	listPath := filepath.Join(filepath.Dir(job.OutPath), "frames.ffconcat")
	if err := os.WriteFile(listPath, concatList(job), 0o600); err != nil {
		return fmt.Errorf("write frame list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	if job.Width > 0 && job.Height > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", job.Width, job.Height))
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", job.FPS),
		"-pix_fmt", "yuv420p",
		"-an",
		job.OutPath,
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Binary, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderrTail(stderr.String()))
	}
	return nil
}

func concatList(job EncodeJob) []byte {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, frame := range job.Frames {
		fmt.Fprintf(&b, "file '%s'\nduration %g\n", frame, job.FrameDuration)
	}
	// The concat demuxer ignores the duration of the last entry unless
	// the file is repeated.
	fmt.Fprintf(&b, "file '%s'\n", job.Frames[len(job.Frames)-1])
	return []byte(b.String())
}

func stderrTail(s string) string {
	const maxTail = 512
	s = strings.TrimSpace(s)
	if len(s) > maxTail {
		s = "..." + s[len(s)-maxTail:]
	}
	return s
}
