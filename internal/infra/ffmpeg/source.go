package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
	"github.com/mocapkit/skeleton-processing-service/internal/domain/port"
)

// Opener creates frame sources that stream decoded RGB24 frames from
// ffmpeg over a pipe, one fixed-size read per frame.
type Opener struct {
	logger *zap.Logger
}

func NewOpener(logger *zap.Logger) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) Open(ctx context.Context, videoPath string) (port.FrameSource, error) {
	meta, err := Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("ffprobe reported invalid dimensions %dx%d for %s", meta.Width, meta.Height, videoPath)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg for %s: %w", videoPath, err)
	}

	o.logger.Debug("ffmpeg decode started",
		zap.String("video", videoPath),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
	)

	return &source{
		cmd:       cmd,
		stdout:    stdout,
		meta:      meta,
		frameSize: meta.Width * meta.Height * 3,
	}, nil
}

type source struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	meta      Meta
	frameSize int
	next      int
}

func (s *source) Meta() port.VideoMeta {
	return port.VideoMeta{Width: s.meta.Width, Height: s.meta.Height, FPS: s.meta.FPS}
}

// Next reads one frame from the decode pipe. Returns io.EOF cleanly at
// end-of-stream; a short read mid-frame is an error, not an EOF.
func (s *source) Next() (*entity.Frame, error) {
	pixels := make([]byte, s.frameSize)
	n, err := io.ReadFull(s.stdout, pixels)
	if err == io.EOF && n == 0 {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read frame %d: %w", s.next, err)
	}

	frame := &entity.Frame{
		Index:  s.next,
		Width:  s.meta.Width,
		Height: s.meta.Height,
		Pixels: pixels,
	}
	s.next++
	return frame, nil
}

func (s *source) Close() error {
	s.stdout.Close()
	// Wait reaps the process; decode errors already surfaced as short
	// reads, so the exit status only matters for cleanup.
	return s.cmd.Wait()
}
