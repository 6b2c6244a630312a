package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Meta
	}{
		{"rational rate", "1280,720,30000/1001\n", Meta{Width: 1280, Height: 720, FPS: 30000.0 / 1001.0}},
		{"integer rate", "640,480,30\n", Meta{Width: 640, Height: 480, FPS: 30}},
		{"zero denominator", "640,480,0/0\n", Meta{Width: 640, Height: 480, FPS: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeOutput(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Width, got.Width)
			assert.Equal(t, tt.want.Height, got.Height)
			assert.InDelta(t, tt.want.FPS, got.FPS, 1e-9)
		})
	}
}

func TestParseProbeOutputMalformed(t *testing.T) {
	for _, output := range []string{"", "1280,720", "w,h,30", "640,480,abc"} {
		_, err := parseProbeOutput(output)
		assert.Error(t, err, "output %q", output)
	}
}
