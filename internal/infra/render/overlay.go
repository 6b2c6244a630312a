// Package render draws detected landmarks onto frames for the annotated
// video side channel. Output quality is best effort; the numeric
// pipeline never depends on it.
package render

import (
	"math"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

type color struct{ r, g, b byte }

var (
	bodyColor = color{66, 245, 96}
	handColor = color{245, 197, 66}
	faceColor = color{66, 135, 245}
	boneColor = color{230, 230, 230}
)

// poseConnections pairs body point indices to draw the skeleton limbs,
// following the MediaPipe pose topology.
var poseConnections = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 7}, {0, 4}, {4, 5}, {5, 6}, {6, 8}, {9, 10},
	{11, 12}, {11, 13}, {13, 15}, {12, 14}, {14, 16},
	{15, 17}, {15, 19}, {15, 21}, {17, 19}, {16, 18}, {16, 20}, {16, 22}, {18, 20},
	{11, 23}, {12, 24}, {23, 24},
	{23, 25}, {25, 27}, {27, 29}, {29, 31}, {27, 31},
	{24, 26}, {26, 28}, {28, 30}, {30, 32}, {28, 32},
}

type Overlay struct {
	dotRadius int
}

func NewOverlay() *Overlay {
	return &Overlay{dotRadius: 1}
}

// Annotate draws the frame's detections onto a copy. The input frame is
// never mutated: the detector may still be holding it.
func (o *Overlay) Annotate(frame *entity.Frame, set entity.LandmarkSet) *entity.Frame {
	out := frame.Clone()

	for _, conn := range poseConnections {
		if conn[0] < len(set.Body) && conn[1] < len(set.Body) {
			o.drawLine(out, set.Body[conn[0]], set.Body[conn[1]], boneColor)
		}
	}

	o.drawPoints(out, set.Body, bodyColor)
	o.drawPoints(out, set.RightHand, handColor)
	o.drawPoints(out, set.LeftHand, handColor)
	o.drawPoints(out, set.Face, faceColor)
	return out
}

func (o *Overlay) drawPoints(f *entity.Frame, lms []entity.Landmark, c color) {
	for _, lm := range lms {
		x := int(math.Round(lm.X * float64(f.Width)))
		y := int(math.Round(lm.Y * float64(f.Height)))
		for dy := -o.dotRadius; dy <= o.dotRadius; dy++ {
			for dx := -o.dotRadius; dx <= o.dotRadius; dx++ {
				setPixel(f, x+dx, y+dy, c)
			}
		}
	}
}

func (o *Overlay) drawLine(f *entity.Frame, a, b entity.Landmark, c color) {
	x0 := int(math.Round(a.X * float64(f.Width)))
	y0 := int(math.Round(a.Y * float64(f.Height)))
	x1 := int(math.Round(b.X * float64(f.Width)))
	y1 := int(math.Round(b.Y * float64(f.Height)))

	// Bresenham
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setPixel(f, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setPixel(f *entity.Frame, x, y int, c color) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 3
	f.Pixels[i] = c.r
	f.Pixels[i+1] = c.g
	f.Pixels[i+2] = c.b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
