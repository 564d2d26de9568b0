package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ResumeStorage stores participant resumes in a MinIO bucket. Object keys
// are derived from the owning user's document id.
type ResumeStorage struct {
	client *minio.Client
	bucket string
}

// NewResumeStorage creates the MinIO client and ensures the resume bucket exists.
func NewResumeStorage(cfg *MinIOConfig) (*ResumeStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &ResumeStorage{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Key returns the object key for a user's resume.
func (s *ResumeStorage) Key(uid string) string {
	return "resumes/" + uid
}

// Upload stores a resume for the given user, replacing any previous one.
func (s *ResumeStorage) Upload(ctx context.Context, uid string, reader io.Reader, size int64, contentType string) (string, error) {
	key := s.Key(uid)
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", err
	}
	return key, nil
}

// PresignedURL returns a presigned GET URL for a user's resume, valid for
// the given duration.
func (s *ResumeStorage) PresignedURL(ctx context.Context, uid string, expires time.Duration) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, s.Key(uid), expires, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
