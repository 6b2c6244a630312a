package usecase

import "fmt"

// FirstFrameError means the first frame of a video could not be decoded.
// The whole session aborts: a camera that cannot produce frame 0 can
// never be aligned with the others, so this is not retried or recovered.
type FirstFrameError struct {
	Video string
	Err   error
}

func (e *FirstFrameError) Error() string {
	return fmt.Sprintf("failed to decode first frame of %s: %v", e.Video, e.Err)
}

func (e *FirstFrameError) Unwrap() error { return e.Err }
