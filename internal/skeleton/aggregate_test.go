package skeleton

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

// distinctLandmarks builds n landmarks whose coordinates all differ, so a
// test can tell which landmark ended up at which point index.
func distinctLandmarks(n int) []entity.Landmark {
	lms := make([]entity.Landmark, n)
	for i := range lms {
		lms[i] = entity.Landmark{
			X:          float64(i) / float64(n),
			Y:          float64(n-i) / float64(n),
			Visibility: float64(i) / float64(n),
		}
	}
	return lms
}

func TestAggregateAbsentPartLeavesSentinel(t *testing.T) {
	sets := []entity.LandmarkSet{
		{Body: distinctLandmarks(PointCount(Body))}, // hands and face absent
	}

	arrays := Aggregate(sets, 640, 480)

	for _, p := range []Part{RightHand, LeftHand, Face} {
		blk := arrays.Block(p)
		for point := 0; point < blk.Points(); point++ {
			x, y := blk.At(0, point)
			assert.True(t, math.IsNaN(x), "%s point %d x should be sentinel", p, point)
			assert.True(t, math.IsNaN(y), "%s point %d y should be sentinel", p, point)
		}
	}
}

// The reference implementation overwrote the whole per-frame slice on
// every landmark iteration, collapsing each block to the last landmark's
// position. This pins the corrected indexed assignment: landmark k must
// land on point k and nowhere else.
func TestAggregateAssignsEachLandmarkToItsOwnPoint(t *testing.T) {
	const width, height = 1000, 500
	n := PointCount(Body)
	lms := distinctLandmarks(n)

	arrays := Aggregate([]entity.LandmarkSet{{Body: lms}}, width, height)

	blk := arrays.Block(Body)
	for k := 0; k < n; k++ {
		x, y := blk.At(0, k)
		assert.InDelta(t, lms[k].X*width, x, 1e-12, "point %d x", k)
		assert.InDelta(t, lms[k].Y*height, y, 1e-12, "point %d y", k)
	}

	// Observably different across k: the broadcast defect would make all
	// rows equal to the last landmark's position.
	x0, _ := blk.At(0, 0)
	xLast, _ := blk.At(0, n-1)
	assert.NotEqual(t, x0, xLast)
}

func TestAggregateBodyConfidencePerPoint(t *testing.T) {
	n := PointCount(Body)
	lms := distinctLandmarks(n)

	arrays := Aggregate([]entity.LandmarkSet{{Body: lms}}, 640, 480)

	conf := arrays.BodyConfidence()
	for k := 0; k < n; k++ {
		assert.InDelta(t, lms[k].Visibility, conf.At(0, k), 1e-12, "point %d visibility", k)
	}
}

func TestAggregateConfidenceStaysSentinelWithoutBody(t *testing.T) {
	arrays := Aggregate([]entity.LandmarkSet{{Face: distinctLandmarks(FacePointCount)}}, 640, 480)

	conf := arrays.BodyConfidence()
	for k := 0; k < conf.Points(); k++ {
		assert.True(t, math.IsNaN(conf.At(0, k)))
	}
}

func TestAggregateScalesNormalizedToPixels(t *testing.T) {
	sets := []entity.LandmarkSet{
		{RightHand: []entity.Landmark{{X: 0.5, Y: 0.25}}},
	}

	arrays := Aggregate(sets, 1280, 720)

	x, y := arrays.Block(RightHand).At(0, 0)
	assert.Equal(t, 640.0, x)
	assert.Equal(t, 180.0, y)
}

func TestAggregateTruncatesOverlongLandmarkList(t *testing.T) {
	n := PointCount(RightHand)
	sets := []entity.LandmarkSet{
		{RightHand: distinctLandmarks(n + 5)},
	}

	arrays := Aggregate(sets, 100, 100)

	blk := arrays.Block(RightHand)
	require.Equal(t, n, blk.Points())
	x, _ := blk.At(0, n-1)
	assert.False(t, math.IsNaN(x))
}

func TestAggregateConstantShapeAcrossSparseFrames(t *testing.T) {
	sets := []entity.LandmarkSet{
		{Body: distinctLandmarks(PointCount(Body))},
		{}, // nothing detected
		{Face: distinctLandmarks(FacePointCount)},
	}

	arrays := Aggregate(sets, 640, 480)

	require.Equal(t, 3, arrays.Frames())
	require.Equal(t, TotalPoints(), arrays.TotalPoints())

	// frame 1 is entirely sentinel
	for _, p := range Parts {
		blk := arrays.Block(p)
		for point := 0; point < blk.Points(); point++ {
			x, y := blk.At(1, point)
			assert.True(t, math.IsNaN(x) && math.IsNaN(y))
		}
	}
}
