package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage keeps session recordings and outputs in two buckets. Videos
// live under "{sessionID}/" prefixes in the recordings bucket; artifacts
// and annotated videos go to the outputs bucket under the same prefix.
type Storage struct {
	client           *miniogo.Client
	recordingsBucket string
	outputsBucket    string
}

type StorageConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	UseSSL           bool
	RecordingsBucket string
	OutputsBucket    string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:           client,
		recordingsBucket: cfg.RecordingsBucket,
		outputsBucket:    cfg.OutputsBucket,
	}, nil
}

func (s *Storage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.recordingsBucket, s.outputsBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// DownloadVideos fetches every object under the session's prefix into
// destDir, keeping base filenames, and returns the local paths.
func (s *Storage) DownloadVideos(ctx context.Context, sessionID string, destDir string) ([]string, error) {
	prefix := sessionID + "/"
	var local []string

	for obj := range s.client.ListObjects(ctx, s.recordingsBucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list session videos: %w", obj.Err)
		}
		dest := filepath.Join(destDir, path.Base(obj.Key))
		if err := s.client.FGetObject(ctx, s.recordingsBucket, obj.Key, dest, miniogo.GetObjectOptions{}); err != nil {
			return nil, fmt.Errorf("download %s: %w", obj.Key, err)
		}
		local = append(local, dest)
	}
	return local, nil
}

func (s *Storage) UploadArtifact(ctx context.Context, sessionID string, name string, reader io.Reader, size int64) (string, error) {
	key := path.Join(sessionID, name)
	_, err := s.client.PutObject(ctx, s.outputsBucket, key, reader, size, miniogo.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("upload artifact: %w", err)
	}
	return key, nil
}

func (s *Storage) UploadAnnotatedVideo(ctx context.Context, sessionID string, localPath string) error {
	key := path.Join(sessionID, "annotated", filepath.Base(localPath))
	_, err := s.client.FPutObject(ctx, s.outputsBucket, key, localPath, miniogo.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		return fmt.Errorf("upload annotated video: %w", err)
	}
	return nil
}
