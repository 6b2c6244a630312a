package skeleton

// Part identifies one of the landmark groups produced by the holistic
// detector. Stacked output orders its columns Body, RightHand, LeftHand,
// Face; the numeric values fix that order.
type Part int

const (
	Body Part = iota
	RightHand
	LeftHand
	Face
)

// Parts lists all tracked parts in stacking order.
var Parts = [...]Part{Body, RightHand, LeftHand, Face}

func (p Part) String() string {
	switch p {
	case Body:
		return "body"
	case RightHand:
		return "right_hand"
	case LeftHand:
		return "left_hand"
	case Face:
		return "face"
	}
	return "unknown"
}

// HasConfidence reports whether the detector emits a per-landmark
// visibility score for this part. Only body landmarks carry one.
func (p Part) HasConfidence() bool { return p == Body }

// bodyPointNames follows the MediaPipe pose topology. Index i always
// names the same anatomical point, across every frame and every camera.
var bodyPointNames = []string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// handPointNames follows the MediaPipe hand topology; it applies to both
// hands.
var handPointNames = []string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_finger_mcp", "index_finger_pip", "index_finger_dip", "index_finger_tip",
	"middle_finger_mcp", "middle_finger_pip", "middle_finger_dip", "middle_finger_tip",
	"ring_finger_mcp", "ring_finger_pip", "ring_finger_dip", "ring_finger_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

// FacePointCount is the FaceMesh landmark count with iris points
// included. Face points are indexed, not named.
const FacePointCount = 478

// PointCount returns the number of tracked points in the part.
func PointCount(p Part) int {
	switch p {
	case Body:
		return len(bodyPointNames)
	case RightHand, LeftHand:
		return len(handPointNames)
	case Face:
		return FacePointCount
	}
	return 0
}

// PointNames returns the ordered point names for the part, or nil for the
// face, whose points are identified by index only.
func PointNames(p Part) []string {
	switch p {
	case Body:
		return bodyPointNames
	case RightHand, LeftHand:
		return handPointNames
	}
	return nil
}

// TotalPoints is the stacked per-frame point count across all parts.
func TotalPoints() int {
	n := 0
	for _, p := range Parts {
		n += PointCount(p)
	}
	return n
}
