package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SnapshotService archives the images each gate decision was made from, so
// operators can review what the cameras saw. Snapshots live in object
// storage under category/date prefixes and are pruned after the retention
// window.
type SnapshotService interface {
	Store(ctx context.Context, category string, img Image) (string, error)
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	EnsureBucket(ctx context.Context) error
}

type minioSnapshots struct {
	client *minio.Client
	bucket string
}

func NewMinioSnapshotService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (SnapshotService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioSnapshots{client: client, bucket: bucket}, nil
}

func (s *minioSnapshots) Store(ctx context.Context, category string, img Image) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s.jpg", category, time.Now().Format("2006-01-02"), uuid.NewString())
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(img.Data), int64(len(img.Data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *minioSnapshots) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *minioSnapshots) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return removed, object.Err
		}
		if object.LastModified.After(cutoff) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *minioSnapshots) EnsureBucket(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
