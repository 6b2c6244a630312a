package skeleton

import "math"

// SpatialDims is the coordinate dimensionality of the 2D pipeline.
const SpatialDims = 2

// Block is a dense [frames, points, 2] pixel-coordinate series for one
// part. Every cell holds the NaN sentinel until a detection fills it, so
// the shape never depends on what the detector found.
type Block struct {
	frames int
	points int
	data   []float64
}

func newBlock(frames, points int) *Block {
	data := make([]float64, frames*points*SpatialDims)
	fillNaN(data)
	return &Block{frames: frames, points: points, data: data}
}

func (b *Block) Frames() int { return b.frames }
func (b *Block) Points() int { return b.points }

// At returns the pixel coordinate stored for a point in a frame. Either
// value is NaN when the point was not detected.
func (b *Block) At(frame, point int) (x, y float64) {
	i := (frame*b.points + point) * SpatialDims
	return b.data[i], b.data[i+1]
}

func (b *Block) set(frame, point int, x, y float64) {
	i := (frame*b.points + point) * SpatialDims
	b.data[i] = x
	b.data[i+1] = y
}

// frameRow returns the [points*2] backing slice for one frame.
func (b *Block) frameRow(frame int) []float64 {
	i := frame * b.points * SpatialDims
	return b.data[i : i+b.points*SpatialDims]
}

// Confidence is a dense [frames, points] visibility-score series. Only
// the body part gets one; hands and face are pure coordinates.
type Confidence struct {
	frames int
	points int
	data   []float64
}

func newConfidence(frames, points int) *Confidence {
	data := make([]float64, frames*points)
	fillNaN(data)
	return &Confidence{frames: frames, points: points, data: data}
}

func (c *Confidence) Frames() int { return c.frames }
func (c *Confidence) Points() int { return c.points }

func (c *Confidence) At(frame, point int) float64 {
	return c.data[frame*c.points+point]
}

func (c *Confidence) set(frame, point int, v float64) {
	c.data[frame*c.points+point] = v
}

// PerCameraArrays holds one camera's full detection series: four
// coordinate blocks plus the body confidence block. It is created fully
// sentinel, mutated only by its own camera's aggregation pass, and is
// immutable once that pass finishes.
type PerCameraArrays struct {
	body           *Block
	rightHand      *Block
	leftHand       *Block
	face           *Block
	bodyConfidence *Confidence
}

// NewPerCameraArrays allocates all blocks for a video of the given frame
// count, every cell set to the missing-data sentinel.
func NewPerCameraArrays(frames int) *PerCameraArrays {
	return &PerCameraArrays{
		body:           newBlock(frames, PointCount(Body)),
		rightHand:      newBlock(frames, PointCount(RightHand)),
		leftHand:       newBlock(frames, PointCount(LeftHand)),
		face:           newBlock(frames, PointCount(Face)),
		bodyConfidence: newConfidence(frames, PointCount(Body)),
	}
}

// Block returns the coordinate block for a part.
func (a *PerCameraArrays) Block(p Part) *Block {
	switch p {
	case Body:
		return a.body
	case RightHand:
		return a.rightHand
	case LeftHand:
		return a.leftHand
	case Face:
		return a.face
	}
	return nil
}

// BodyConfidence returns the body visibility-score block.
func (a *PerCameraArrays) BodyConfidence() *Confidence { return a.bodyConfidence }

// Frames returns the camera's frame count.
func (a *PerCameraArrays) Frames() int { return a.body.frames }

// TotalPoints returns the per-frame point count summed over all parts.
func (a *PerCameraArrays) TotalPoints() int {
	n := 0
	for _, p := range Parts {
		n += a.Block(p).points
	}
	return n
}

func fillNaN(s []float64) {
	nan := math.NaN()
	for i := range s {
		s[i] = nan
	}
}
