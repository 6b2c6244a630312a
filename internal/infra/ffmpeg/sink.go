package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

// Sink encodes RGB24 frames to an H.264 video by piping raw pixels into
// ffmpeg's stdin.
type Sink struct {
	logger *zap.Logger
}

func NewSink(logger *zap.Logger) *Sink {
	return &Sink{logger: logger}
}

func (s *Sink) WriteVideo(ctx context.Context, path string, frames []*entity.Frame, fps float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode for %s", path)
	}

	width := frames[0].Width
	height := frames[0].Height

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y",
		path,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg encode: %w", err)
	}

	for i, frame := range frames {
		if frame.Width != width || frame.Height != height {
			stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("frame %d is %dx%d, expected %dx%d", i, frame.Width, frame.Height, width, height)
		}
		if _, err := stdin.Write(frame.Pixels); err != nil {
			stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encode %s: %w", path, err)
	}

	s.logger.Info("annotated video encoded",
		zap.String("path", path),
		zap.Int("frames", len(frames)),
		zap.Float64("fps", fps),
	)
	return nil
}
