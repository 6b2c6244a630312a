package entity

// Frame is one decoded video frame as packed RGB24 pixels.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pixels []byte // len = Width*Height*3
}

// Clone returns a deep copy of the frame. Renderers draw on clones so the
// frame handed to the detector is never mutated.
func (f *Frame) Clone() *Frame {
	pixels := make([]byte, len(f.Pixels))
	copy(pixels, f.Pixels)
	return &Frame{
		Index:  f.Index,
		Width:  f.Width,
		Height: f.Height,
		Pixels: pixels,
	}
}
