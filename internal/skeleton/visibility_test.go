package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

func fullSet() entity.LandmarkSet {
	return entity.LandmarkSet{
		Body:      distinctLandmarks(PointCount(Body)),
		RightHand: distinctLandmarks(PointCount(RightHand)),
		LeftHand:  distinctLandmarks(PointCount(LeftHand)),
		Face:      distinctLandmarks(PointCount(Face)),
	}
}

func TestPartVisibleAllPresent(t *testing.T) {
	arrays := Aggregate([]entity.LandmarkSet{fullSet()}, 640, 480)

	for _, p := range Parts {
		assert.True(t, arrays.PartVisible(0, p), "%s should be fully visible", p)
	}
	assert.True(t, arrays.FrameVisible(0))
}

func TestPartVisiblePartiallyPresent(t *testing.T) {
	// One landmark short of a full hand: the remaining point keeps its
	// sentinel, so the part is not fully visible.
	set := fullSet()
	set.LeftHand = set.LeftHand[:PointCount(LeftHand)-1]

	arrays := Aggregate([]entity.LandmarkSet{set}, 640, 480)

	assert.False(t, arrays.PartVisible(0, LeftHand))
	assert.True(t, arrays.PartVisible(0, Body))
	assert.False(t, arrays.FrameVisible(0), "overall visibility is the AND of all parts")
}

func TestVisibilityFlagsPerFrame(t *testing.T) {
	sets := []entity.LandmarkSet{
		fullSet(),
		{Body: distinctLandmarks(PointCount(Body))},
		{},
	}

	flags := Aggregate(sets, 640, 480).Visibility()

	require.Len(t, flags.All, 3)
	assert.Equal(t, []bool{true, true, false}, flags.Body)
	assert.Equal(t, []bool{true, false, false}, flags.Face)
	assert.Equal(t, []bool{true, false, false}, flags.All)
}
