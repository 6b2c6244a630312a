package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionJobStatus string

const (
	SessionJobStatusPending    SessionJobStatus = "PENDING"
	SessionJobStatusProcessing SessionJobStatus = "PROCESSING"
	SessionJobStatusCompleted  SessionJobStatus = "COMPLETED"
	SessionJobStatusFailed     SessionJobStatus = "FAILED"
)

// SessionJob tracks one skeleton-detection run over a session's
// synchronized camera videos.
type SessionJob struct {
	ID           uuid.UUID
	SessionID    string
	Status       SessionJobStatus
	CameraCount  int
	FrameCount   int
	PointCount   int
	ArtifactKey  string
	Attempt      int
	MaxAttempts  int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewSessionJob(sessionID string, maxAttempts int) *SessionJob {
	now := time.Now().UTC()
	return &SessionJob{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Status:      SessionJobStatusPending,
		Attempt:     0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (j *SessionJob) MarkProcessing() {
	j.Status = SessionJobStatusProcessing
	j.Attempt++
	j.UpdatedAt = time.Now().UTC()
}

func (j *SessionJob) MarkCompleted(artifactKey string, cameras, frames, points int) {
	now := time.Now().UTC()
	j.Status = SessionJobStatusCompleted
	j.ArtifactKey = artifactKey
	j.CameraCount = cameras
	j.FrameCount = frames
	j.PointCount = points
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *SessionJob) MarkFailed(errMsg string) {
	j.Status = SessionJobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *SessionJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}
