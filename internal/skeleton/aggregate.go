package skeleton

import (
	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

// Aggregate converts one camera's ordered detection results into dense
// per-part arrays. All blocks are allocated fully sentinel up front and
// filled frame by frame, so the output shape is constant regardless of
// per-frame detection variability — downstream triangulation needs frame
// alignment across cameras.
//
// Normalized coordinates are scaled to pixels by the frame dimensions.
// Each landmark is written to its own point index; landmark lists longer
// than the catalog are truncated, shorter lists leave the tail sentinel.
func Aggregate(sets []entity.LandmarkSet, width, height int) *PerCameraArrays {
	arrays := NewPerCameraArrays(len(sets))
	w := float64(width)
	h := float64(height)

	for frame, set := range sets {
		arrays.writeFrame(frame, set, w, h)
	}
	return arrays
}

// writeFrame stores one frame's detections in pixel space. Absent parts
// are skipped, leaving their sentinel rows untouched: absence is an
// expected state, never an error. Confidence is recorded only for the
// body part.
func (a *PerCameraArrays) writeFrame(frame int, set entity.LandmarkSet, width, height float64) {
	a.writePart(frame, a.body, set.Body, width, height)
	a.writePart(frame, a.rightHand, set.RightHand, width, height)
	a.writePart(frame, a.leftHand, set.LeftHand, width, height)
	a.writePart(frame, a.face, set.Face, width, height)

	for i, lm := range set.Body {
		if i >= a.bodyConfidence.points {
			break
		}
		a.bodyConfidence.set(frame, i, lm.Visibility)
	}
}

func (a *PerCameraArrays) writePart(frame int, blk *Block, lms []entity.Landmark, width, height float64) {
	for i, lm := range lms {
		if i >= blk.points {
			break
		}
		blk.set(frame, i, lm.X*width, lm.Y*height)
	}
}
