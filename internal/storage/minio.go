package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures the object store connection.
type Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UseSSL        bool
}

// ObjectStore persists generated images into an S3-compatible bucket with
// public-read visibility and hands back the canonical retrieval URL.
type ObjectStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewObjectStore initializes the S3 client. The bucket is expected to exist
// and allow public reads; creating or policing it is an operational concern.
func NewObjectStore(opts Options) (*ObjectStore, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("storage: endpoint is required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	publicBaseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if publicBaseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		publicBaseURL = scheme + "://" + opts.Endpoint
	}
	return &ObjectStore{
		client:        client,
		bucket:        opts.Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// Put writes data under key with the given content type and returns the
// public URL of the stored object. Failed writes are not retried here; a
// retry would risk duplicate billable writes.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("storage: no store configured")
	}
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object: %w", err)
	}
	return s.publicBaseURL + "/" + s.bucket + "/" + key, nil
}
