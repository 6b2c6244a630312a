// Package session resolves the on-disk folder layout of a recording
// session: synchronized camera videos in, output artifacts and annotated
// copies out.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	synchronizedVideosFolder = "synchronized_videos"
	outputDataFolder         = "output_data"
	annotatedVideosFolder    = "annotated_videos"
)

type Locator struct {
	baseDir string
}

func NewLocator(baseDir string) *Locator {
	return &Locator{baseDir: baseDir}
}

func (l *Locator) SynchronizedVideosDir(sessionID string) (string, error) {
	return l.ensureDir(sessionID, synchronizedVideosFolder)
}

func (l *Locator) OutputDataDir(sessionID string) (string, error) {
	return l.ensureDir(sessionID, outputDataFolder)
}

func (l *Locator) AnnotatedVideosDir(sessionID string) (string, error) {
	return l.ensureDir(sessionID, annotatedVideosFolder)
}

// SynchronizedVideos lists the session's camera videos sorted by
// filename. Globbing order varies across filesystems; the explicit sort
// is what keeps camera indices stable between runs.
func (l *Locator) SynchronizedVideos(sessionID string) ([]string, error) {
	dir, err := l.SynchronizedVideosDir(sessionID)
	if err != nil {
		return nil, err
	}
	videos, err := filepath.Glob(filepath.Join(dir, "*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("glob videos: %w", err)
	}
	sort.Strings(videos)
	return videos, nil
}

func (l *Locator) ensureDir(sessionID, folder string) (string, error) {
	dir := filepath.Join(l.baseDir, sessionID, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
