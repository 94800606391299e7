package clipboard

import (
	"context"

	sysclip "github.com/atotto/clipboard"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

// Writer places text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// WriterFunc adapts a function to a Writer.
type WriterFunc func(ctx context.Context, text string) error

// WriteText calls f.
func (f WriterFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// SystemWriter writes to the clipboard of the machine the process runs on.
type SystemWriter struct{}

// WriteText implements Writer.
func (SystemWriter) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sysclip.Unsupported {
		return errors.New("E020").WithDetail("No clipboard utility is available on this system.")
	}
	if err := sysclip.WriteAll(text); err != nil {
		return errors.New("E020").Wrap(err)
	}
	return nil
}
