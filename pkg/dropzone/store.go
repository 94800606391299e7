package dropzone

import (
	"context"
	"io"
	"time"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

// ErrNotFound is returned when a staged file doesn't exist.
var ErrNotFound = errors.New("E042")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("E041")

// Store holds dropped files between intake and upload.
type Store interface {
	// Save stages the bytes of r and returns a File that reads them back.
	// Releasing the File removes the staged bytes.
	Save(ctx context.Context, name, contentType string, r io.Reader) (*File, error)

	// Open returns a reader over a staged file.
	Open(ctx context.Context, id string) (io.ReadCloser, error)

	// Remove deletes a staged file. Removing a missing file is not an error.
	Remove(ctx context.Context, id string) error

	// Cleanup removes staged files older than maxAge.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}

// stagedFile builds a File backed by store.
func stagedFile(store Store, id, name, contentType string, size int64) *File {
	return &File{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		open: func(ctx context.Context) (io.ReadCloser, error) {
			return store.Open(ctx, id)
		},
		release: func() error {
			return store.Remove(context.Background(), id)
		},
	}
}

// RunCleanup sweeps store every interval until ctx is done.
func RunCleanup(ctx context.Context, store Store, interval, maxAge time.Duration, onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx, maxAge); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
