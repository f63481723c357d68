package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// predefinedACL maps canned ACL names to their Cloud Storage spelling.
var predefinedACL = map[string]string{
	"private":                   "private",
	"public-read":               "publicRead",
	"authenticated-read":        "authenticatedRead",
	"bucket-owner-read":         "bucketOwnerRead",
	"bucket-owner-full-control": "bucketOwnerFullControl",
}

// GCSBackend stores objects in a Cloud Storage bucket.
type GCSBackend struct {
	client *storage.Client
	bucket string
}

// NewGCSBackend connects with the service account key at credentialsFile,
// or with application default credentials when it is empty.
func NewGCSBackend(ctx context.Context, bucket, credentialsFile string) (*GCSBackend, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", credentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSBackend{client: client, bucket: bucket}, nil
}

func (g *GCSBackend) Put(ctx context.Context, obj Object) error {
	w := g.client.Bucket(g.bucket).Object(obj.Name).NewWriter(ctx)
	w.ContentType = obj.ContentType
	if w.ContentType == "" {
		w.ContentType = "application/octet-stream"
	}
	w.ContentEncoding = obj.ContentEncoding
	w.CacheControl = obj.CacheControl
	w.Metadata = obj.Metadata
	if acl, ok := predefinedACL[obj.ACL]; ok {
		w.PredefinedACL = acl
	}

	if _, err := w.Write(obj.Data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write GCS object %s: %w", obj.Name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", obj.Name, err)
	}
	return nil
}

// Get returns the stored bytes without transcoding.
func (g *GCSBackend) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(name).ReadCompressed(true).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open GCS object %s: %w", name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (g *GCSBackend) Close() error {
	return g.client.Close()
}
