package dropzone

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// File is a user-selected file.
type File struct {
	// ID is the unique identifier for this selection.
	ID string

	// Name is the original filename from the client.
	Name string

	// ContentType is the detected MIME type of the file.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	open    func(ctx context.Context) (io.ReadCloser, error)
	release func() error
}

// NewFile creates a File whose bytes are produced by open. release may be nil.
func NewFile(name, contentType string, size int64, open func(ctx context.Context) (io.ReadCloser, error), release func() error) *File {
	return &File{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
		open:        open,
		release:     release,
	}
}

// FromBytes creates an in-memory File.
func FromBytes(name, contentType string, data []byte) *File {
	return NewFile(name, contentType, int64(len(data)), func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil)
}

// FromPath creates a File backed by a local file. The content type is
// detected from the file's contents.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}
	name := filepath.Base(path)
	return NewFile(name, Normalize(contentType, name), info.Size(), func(context.Context) (io.ReadCloser, error) {
		return os.Open(path)
	}, nil), nil
}

// Open returns a reader over the file's bytes. Callers must close it.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	if f.open == nil {
		return nil, ErrNotFound
	}
	return f.open(ctx)
}

// Release frees any staged storage behind the file.
func (f *File) Release() error {
	if f == nil || f.release == nil {
		return nil
	}
	return f.release()
}
