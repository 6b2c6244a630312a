package skeleton

import (
	"errors"
	"fmt"
)

// Shape describes aggregated per-camera data as (frames, points, dims).
type Shape struct {
	Frames int
	Points int
	Dims   int
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d, %d, %d]", s.Frames, s.Points, s.Dims)
}

// ShapeMismatchError reports a camera whose aggregated arrays disagree
// with the first camera on frame count, point count or dimensionality.
// Assembly never truncates or pads to paper over the difference.
type ShapeMismatchError struct {
	Camera   int
	Expected Shape
	Actual   Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("camera %d shape %v does not match expected %v",
		e.Camera, e.Actual, e.Expected)
}

// ErrNoCameras is returned when assembly is attempted with no per-camera
// input at all.
var ErrNoCameras = errors.New("no per-camera arrays to assemble")

// Stacked is the final [cameras, frames, pointsTotal, 2] multi-camera
// series, column order body, right hand, left hand, face. It is built
// once from immutable per-camera inputs and read-only thereafter.
type Stacked struct {
	Cameras int
	Frames  int
	Points  int
	Data    []float64 // row-major [camera][frame][point][xy]
}

// Shape returns the array dimensions as (cameras, frames, points, dims).
func (s *Stacked) Shape() [4]int {
	return [4]int{s.Cameras, s.Frames, s.Points, SpatialDims}
}

// At returns one coordinate cell.
func (s *Stacked) At(camera, frame, point, dim int) float64 {
	return s.Data[((camera*s.Frames+frame)*s.Points+point)*SpatialDims+dim]
}

// Stack concatenates each camera's part blocks along the point axis and
// stacks the cameras into one dense array. Every camera must agree with
// the first on frame count, total point count and dimensionality; a
// disagreement is a fatal precondition failure reported as
// ShapeMismatchError.
func Stack(cameras []*PerCameraArrays) (*Stacked, error) {
	if len(cameras) == 0 {
		return nil, ErrNoCameras
	}

	expected := Shape{
		Frames: cameras[0].Frames(),
		Points: cameras[0].TotalPoints(),
		Dims:   SpatialDims,
	}
	if expected.Dims != 2 {
		return nil, fmt.Errorf("expected 2D pixel coordinates, got %d spatial dimensions", expected.Dims)
	}

	for i, cam := range cameras {
		actual := Shape{Frames: cam.Frames(), Points: cam.TotalPoints(), Dims: SpatialDims}
		if actual != expected {
			return nil, &ShapeMismatchError{Camera: i, Expected: expected, Actual: actual}
		}
	}

	stacked := &Stacked{
		Cameras: len(cameras),
		Frames:  expected.Frames,
		Points:  expected.Points,
		Data:    make([]float64, len(cameras)*expected.Frames*expected.Points*SpatialDims),
	}

	at := 0
	for _, cam := range cameras {
		for frame := 0; frame < expected.Frames; frame++ {
			for _, p := range Parts {
				row := cam.Block(p).frameRow(frame)
				copy(stacked.Data[at:], row)
				at += len(row)
			}
		}
	}
	return stacked, nil
}
