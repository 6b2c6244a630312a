package skeleton

import "gonum.org/v1/gonum/floats"

// VisibilityFlags holds per-frame booleans, one slice per part plus the
// combined flag. Derived from PerCameraArrays on demand; never persisted.
type VisibilityFlags struct {
	Body      []bool
	RightHand []bool
	LeftHand  []bool
	Face      []bool
	All       []bool
}

// PartVisible reports whether every tracked point of the part was
// detected in the frame, i.e. its block row contains no sentinel cells.
func (a *PerCameraArrays) PartVisible(frame int, p Part) bool {
	return !floats.HasNaN(a.Block(p).frameRow(frame))
}

// FrameVisible reports whether all four parts are fully visible in the
// frame.
func (a *PerCameraArrays) FrameVisible(frame int) bool {
	for _, p := range Parts {
		if !a.PartVisible(frame, p) {
			return false
		}
	}
	return true
}

// Visibility computes flags for every frame of the camera's series.
func (a *PerCameraArrays) Visibility() VisibilityFlags {
	n := a.Frames()
	flags := VisibilityFlags{
		Body:      make([]bool, n),
		RightHand: make([]bool, n),
		LeftHand:  make([]bool, n),
		Face:      make([]bool, n),
		All:       make([]bool, n),
	}
	for frame := 0; frame < n; frame++ {
		flags.Body[frame] = a.PartVisible(frame, Body)
		flags.RightHand[frame] = a.PartVisible(frame, RightHand)
		flags.LeftHand[frame] = a.PartVisible(frame, LeftHand)
		flags.Face[frame] = a.PartVisible(frame, Face)
		flags.All[frame] = flags.Body[frame] && flags.RightHand[frame] &&
			flags.LeftHand[frame] && flags.Face[frame]
	}
	return flags
}
