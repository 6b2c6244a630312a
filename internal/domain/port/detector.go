package port

import (
	"context"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

// Detector is the external pose-estimation model. Implementations hold
// model weights and are expensive to construct; one long-lived handle is
// injected into the pipeline and reused for every frame.
type Detector interface {
	Detect(ctx context.Context, frame *entity.Frame) (entity.LandmarkSet, error)
}
