package entity

import "github.com/google/uuid"

// SessionProcessingMessage is the inbound message from the session.processing queue.
type SessionProcessingMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	SessionID string    `json:"session_id"`
	UserEmail string    `json:"user_email"`
}

// SessionStatusMessage is the outbound message published to the session.status queue.
type SessionStatusMessage struct {
	JobID        uuid.UUID        `json:"job_id"`
	SessionID    string           `json:"session_id"`
	Status       SessionJobStatus `json:"status"`
	ArtifactKey  string           `json:"artifact_key,omitempty"`
	CameraCount  int              `json:"camera_count,omitempty"`
	FrameCount   int              `json:"frame_count,omitempty"`
	PointCount   int              `json:"point_count,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Attempt      int              `json:"attempt"`
	MaxAttempts  int              `json:"max_attempts"`
}
