package port

import (
	"context"
	"io"
)

// SessionStorage moves session inputs and outputs between the worker and
// the object store.
type SessionStorage interface {
	// DownloadVideos fetches every synchronized video recorded for the
	// session into destDir and returns the local paths.
	DownloadVideos(ctx context.Context, sessionID string, destDir string) ([]string, error)

	// UploadArtifact stores a session output artifact under its name in
	// the session's output prefix and returns the object key.
	UploadArtifact(ctx context.Context, sessionID string, name string, reader io.Reader, size int64) (string, error)

	// UploadAnnotatedVideo stores a rendered overlay video.
	UploadAnnotatedVideo(ctx context.Context, sessionID string, localPath string) error
}
