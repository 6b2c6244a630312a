package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.SessionJob) error
	Update(ctx context.Context, job *entity.SessionJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SessionJob, error)
}
