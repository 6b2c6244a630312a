package port

// SessionLocator resolves the on-disk layout of a recording session.
type SessionLocator interface {
	// SynchronizedVideos lists the session's camera video files, sorted
	// by filename. Directory listing order is not stable across
	// filesystems, so the sort is what fixes camera identity.
	SynchronizedVideos(sessionID string) ([]string, error)

	// SynchronizedVideosDir returns (and creates) the folder the
	// session's camera videos live in.
	SynchronizedVideosDir(sessionID string) (string, error)

	// OutputDataDir returns (and creates) the folder session artifacts
	// are written to.
	OutputDataDir(sessionID string) (string, error)

	// AnnotatedVideosDir returns (and creates) the folder annotated
	// copies are written to.
	AnnotatedVideosDir(sessionID string) (string, error)
}
