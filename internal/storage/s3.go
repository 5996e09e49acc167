package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"notesvilla/internal/config"
)

// S3 stores files in an S3-compatible bucket (AWS, MinIO, R2). The object
// key is the storedName; ProviderID records the key for later removal.
type S3 struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewS3(cfg config.S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &S3{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (s *S3) Store(ctx context.Context, f StagedFile) (FileRef, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, f.StoredName, f.Path, minio.PutObjectOptions{
		ContentType: ContentTypeByName(f.OriginalName),
	})
	if err != nil {
		return FileRef{}, fmt.Errorf("s3 put %s: %w", f.StoredName, err)
	}

	return FileRef{
		URL:          s.publicURL + "/" + f.StoredName,
		StoredName:   f.StoredName,
		OriginalName: f.OriginalName,
		ProviderID:   f.StoredName,
	}, nil
}

func (s *S3) Remove(ctx context.Context, ref FileRef) error {
	err := s.client.RemoveObject(ctx, s.bucket, ref.ProviderID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("s3 remove %s: %w", ref.ProviderID, err)
	}
	return nil
}

func (s *S3) Name() string { return "s3" }
