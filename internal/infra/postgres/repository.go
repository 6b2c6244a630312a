package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.SessionJob) error {
	query := `
		INSERT INTO session_jobs (
			id, session_id, status, camera_count, frame_count, point_count,
			artifact_key, attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.SessionID, string(job.Status),
		job.CameraCount, job.FrameCount, job.PointCount,
		job.ArtifactKey, job.Attempt, job.MaxAttempts, job.ErrorMessage,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.SessionJob) error {
	query := `
		UPDATE session_jobs SET
			status=$2, camera_count=$3, frame_count=$4, point_count=$5,
			artifact_key=$6, attempt=$7, error_message=$8,
			updated_at=$9, completed_at=$10
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status),
		job.CameraCount, job.FrameCount, job.PointCount,
		job.ArtifactKey, job.Attempt, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SessionJob, error) {
	query := `
		SELECT id, session_id, status, camera_count, frame_count, point_count,
			artifact_key, attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		FROM session_jobs WHERE id=$1`

	job := &entity.SessionJob{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.SessionID, &status,
		&job.CameraCount, &job.FrameCount, &job.PointCount,
		&job.ArtifactKey, &job.Attempt, &job.MaxAttempts, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	job.Status = entity.SessionJobStatus(status)
	return job, nil
}
