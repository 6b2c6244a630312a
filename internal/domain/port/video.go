package port

import (
	"context"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

// VideoMeta describes a probed video stream.
type VideoMeta struct {
	Width  int
	Height int
	FPS    float64
}

// FrameSource reads decoded frames sequentially. Next returns io.EOF
// after the last frame; frames arrive strictly in decode order.
type FrameSource interface {
	Meta() VideoMeta
	Next() (*entity.Frame, error)
	Close() error
}

type VideoOpener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

// VideoSink encodes an ordered frame sequence to a video file at the
// given frame rate.
type VideoSink interface {
	WriteVideo(ctx context.Context, path string, frames []*entity.Frame, fps float64) error
}

// Renderer draws detected landmarks onto a copy of a frame for the
// annotated-video side channel. It never mutates its input.
type Renderer interface {
	Annotate(frame *entity.Frame, set entity.LandmarkSet) *entity.Frame
}
