// Package blobstore stores named binary payloads, gzip-compressed by
// default.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	DefaultACL          = "private"
	DefaultCacheControl = "public, max-age=86400"
)

var ErrNotFound = errors.New("blobstore: object not found")

// Object is a payload together with the attributes it is stored with.
type Object struct {
	Name            string
	Data            []byte
	ACL             string
	ContentType     string
	ContentEncoding string
	CacheControl    string
	Metadata        map[string]string
}

// Backend persists objects as given.
type Backend interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, name string) ([]byte, error)
}

type UploadOptions struct {
	ACL string
	// Compress gzips the payload before storing it. Nil means true.
	Compress        *bool
	ContentType     string
	ContentEncoding string
	Metadata        map[string]string
}

type DownloadOptions struct {
	// ExpectCompressed gunzips the stored payload. Nil means true. It must
	// match the Compress flag the object was uploaded with.
	ExpectCompressed *bool
}

// Bool returns a pointer to b, for the optional flags above.
func Bool(b bool) *bool {
	return &b
}

type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) Upload(ctx context.Context, name string, data []byte, opts UploadOptions) error {
	obj := Object{
		Name:            name,
		Data:            data,
		ACL:             opts.ACL,
		ContentType:     opts.ContentType,
		ContentEncoding: opts.ContentEncoding,
		CacheControl:    DefaultCacheControl,
		Metadata:        map[string]string{"name": name},
	}
	if obj.ACL == "" {
		obj.ACL = DefaultACL
	}
	for k, v := range opts.Metadata {
		obj.Metadata[k] = v
	}

	if opts.Compress == nil || *opts.Compress {
		zipped, err := compress(data)
		if err != nil {
			return fmt.Errorf("gzip %s: %w", name, err)
		}
		obj.Data = zipped
		if obj.ContentEncoding == "" {
			obj.ContentEncoding = "gzip"
		}
	}

	if err := s.backend.Put(ctx, obj); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (s *Store) Download(ctx context.Context, name string, opts DownloadOptions) ([]byte, error) {
	data, err := s.backend.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	if opts.ExpectCompressed != nil && !*opts.ExpectCompressed {
		return data, nil
	}
	out, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", name, err)
	}
	return out, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
