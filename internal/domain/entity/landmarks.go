package entity

// Landmark is one detected anatomical point in normalized image
// coordinates (0..1, relative to frame width/height). Visibility is the
// detector's confidence that the point is present and unoccluded; it is
// only populated for body landmarks.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility,omitempty"`
}

// LandmarkSet is one frame's holistic detection result. A nil slice means
// the detector found no such part in the frame — absence is an expected
// state, not an error.
type LandmarkSet struct {
	Body      []Landmark `json:"body,omitempty"`
	RightHand []Landmark `json:"right_hand,omitempty"`
	LeftHand  []Landmark `json:"left_hand,omitempty"`
	Face      []Landmark `json:"face,omitempty"`
}

// Empty reports whether the detector found nothing at all in the frame.
func (s LandmarkSet) Empty() bool {
	return s.Body == nil && s.RightHand == nil && s.LeftHand == nil && s.Face == nil
}
