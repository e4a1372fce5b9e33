// Package storage resolves artifact URIs to the backend that holds them.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"mederror/internal/domain"
	"mederror/internal/port"
)

const s3Scheme = "s3://"

// Router dispatches artifact reads and writes by URI scheme. Plain paths and
// file:// go to the local store, s3://bucket/key to object storage.
type Router struct {
	local   port.ArtifactStore
	objects port.ObjectStorage
}

// NewRouter builds a Router. objects may be nil when S3 is not configured.
func NewRouter(local port.ArtifactStore, objects port.ObjectStorage) *Router {
	return &Router{local: local, objects: objects}
}

var _ port.ArtifactStore = (*Router)(nil)

// SplitS3URI returns the bucket and key of an s3://bucket/key URI.
func SplitS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q: expected s3://bucket/key", uri)
	}
	return bucket, key, nil
}

func (r *Router) backend(uri string) (remote bool, err error) {
	switch {
	case strings.HasPrefix(uri, s3Scheme):
		if r.objects == nil {
			return false, fmt.Errorf("%s: object storage not configured: %w", uri, domain.ErrUnsupportedScheme)
		}
		return true, nil
	case strings.HasPrefix(uri, "file://"), !strings.Contains(uri, "://"):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", uri, domain.ErrUnsupportedScheme)
	}
}

func (r *Router) Read(ctx context.Context, uri string) ([]byte, error) {
	remote, err := r.backend(uri)
	if err != nil {
		return nil, err
	}
	if !remote {
		return r.local.Read(ctx, uri)
	}
	bucket, key, err := SplitS3URI(uri)
	if err != nil {
		return nil, err
	}
	return r.objects.Download(ctx, bucket, key)
}

func (r *Router) Write(ctx context.Context, uri string, data []byte, contentType string) (string, error) {
	remote, err := r.backend(uri)
	if err != nil {
		return "", err
	}
	if !remote {
		return r.local.Write(ctx, uri, data, contentType)
	}
	bucket, key, err := SplitS3URI(uri)
	if err != nil {
		return "", err
	}
	out, err := r.objects.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return out.Location, nil
}
