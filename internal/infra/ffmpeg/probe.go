package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Meta describes a probed video stream.
type Meta struct {
	Width  int
	Height int
	FPS    float64
}

// Probe queries ffprobe for the first video stream's dimensions and
// frame rate.
func Probe(ctx context.Context, videoPath string) (Meta, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-of", "csv=p=0",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return Meta{}, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	return parseProbeOutput(string(output))
}

// parseProbeOutput parses ffprobe csv output of the form
// "1280,720,30000/1001".
func parseProbeOutput(output string) (Meta, error) {
	fields := strings.Split(strings.TrimSpace(output), ",")
	if len(fields) < 3 {
		return Meta{}, fmt.Errorf("unexpected ffprobe output %q", output)
	}

	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return Meta{}, fmt.Errorf("parse width %q: %w", fields[0], err)
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return Meta{}, fmt.Errorf("parse height %q: %w", fields[1], err)
	}
	fps, err := parseRate(fields[2])
	if err != nil {
		return Meta{}, err
	}

	return Meta{Width: width, Height: height, FPS: fps}, nil
}

// parseRate parses an ffprobe rational frame rate such as "30000/1001"
// or a plain "30".
func parseRate(rate string) (float64, error) {
	if num, den, ok := strings.Cut(rate, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", rate, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", rate, err)
		}
		if d == 0 {
			return 0, nil
		}
		return n / d, nil
	}
	f, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", rate, err)
	}
	return f, nil
}
