package uploader

import (
	"context"
	"log/slog"
	"time"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/reactive"
)

// User-facing alert texts.
const (
	MsgNoFile       = "Please upload a file!"
	MsgUploadFailed = "Failed to upload file. Please try again."
)

// Uploader sends a file and returns its public URL. *Client implements it.
type Uploader interface {
	Upload(ctx context.Context, f *dropzone.File) (string, error)
}

// Alerter shows messages to the user.
type Alerter interface {
	Warning(message string)
	Error(message string)
}

// Config configures a Controller.
type Config struct {
	// Client performs the upload. Default: NewClient(DefaultBaseURL).
	Client Uploader

	// Dispatch runs fn on the owner's event loop. When nil, Trigger
	// completes the upload before returning.
	Dispatch func(fn func())

	// Alerts receives the no-file warning and the failure alert.
	// Default: alerts are logged.
	Alerts Alerter

	// Timeout bounds a single upload. Zero means no limit beyond ctx.
	Timeout time.Duration

	// Logger is used for upload diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// Controller holds the upload lifecycle of one widget.
//
// All methods must be called from a single goroutine (the session loop, or
// the caller in synchronous mode).
type Controller struct {
	client   Uploader
	dispatch func(fn func())
	alerts   Alerter
	timeout  time.Duration
	logger   *slog.Logger

	state *reactive.Signal[State]

	// gen identifies the current selection. Responses started under an
	// older generation are stale.
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// New creates a Controller in the Idle phase.
func New(cfg Config) *Controller {
	c := &Controller{
		client:   cfg.Client,
		dispatch: cfg.Dispatch,
		alerts:   cfg.Alerts,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		state:    reactive.NewSignal(State{}).WithEquals(sameState),
	}
	if c.client == nil {
		c.client = NewClient(DefaultBaseURL)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.alerts == nil {
		c.alerts = logAlerter{c.logger}
	}
	return c
}

// Select makes f the file to upload. Any in-flight upload becomes stale.
func (c *Controller) Select(f *dropzone.File) {
	if f == nil || c.closed {
		return
	}
	prev := c.state.Get()
	if prev.Phase == Uploading {
		c.logger.Info("selection replaced during upload", "previous", prev.File.Name, "file", f.Name)
	}
	c.gen++
	c.state.Set(State{Phase: Ready, File: f})
}

// Trigger uploads the selected file.
//
// With no file it shows the no-file warning and returns E001 without touching
// the network. While an upload is running it does nothing and returns E003.
// In synchronous mode the upload error, if any, is returned; otherwise the
// outcome is applied later through Dispatch.
func (c *Controller) Trigger(ctx context.Context) error {
	if c.closed {
		return errors.New("E061")
	}
	st := c.state.Get()
	if st.File == nil {
		c.alerts.Warning(MsgNoFile)
		return errors.New("E001")
	}
	if st.Phase == Uploading {
		return errors.New("E003")
	}

	c.gen++
	gen, file := c.gen, st.File
	c.state.Set(State{Phase: Uploading, File: file})
	c.logger.Info("upload started", "file", file.Name, "size", file.Size)

	if c.dispatch == nil {
		url, err := c.upload(ctx, file)
		c.finish(gen, file, url, err)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go func() {
		defer cancel()
		url, err := c.upload(ctx, file)
		c.dispatch(func() {
			c.finish(gen, file, url, err)
		})
	}()
	return nil
}

func (c *Controller) upload(ctx context.Context, f *dropzone.File) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.client.Upload(ctx, f)
}

// finish applies an upload outcome unless a newer selection or upload has
// superseded it.
func (c *Controller) finish(gen uint64, f *dropzone.File, url string, err error) {
	if c.closed || gen != c.gen {
		c.logger.Info("discarding stale upload response", "file", f.Name, "url", url, "error", err)
		return
	}
	c.cancel = nil

	if err != nil {
		c.logger.Error("upload failed", "file", f.Name, "error", err)
		c.state.Set(State{Phase: Failed, File: f, Err: err})
		c.alerts.Error(MsgUploadFailed)
		return
	}

	c.logger.Info("upload complete", "file", f.Name, "url", url)
	c.state.Set(State{Phase: Succeeded, File: f, URL: url})
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.state.Get()
}

// File returns the selected file, or nil.
func (c *Controller) File() *dropzone.File {
	return c.state.Get().File
}

// Uploading reports whether an upload is in flight.
func (c *Controller) Uploading() bool {
	return c.state.Get().Phase == Uploading
}

// ResultURL returns the URL of the last successful upload of the current
// selection, or "".
func (c *Controller) ResultURL() string {
	st := c.state.Get()
	if st.Phase != Succeeded {
		return ""
	}
	return st.URL
}

// Subscribe calls fn after every state change.
func (c *Controller) Subscribe(fn func()) func() {
	return c.state.Subscribe(fn)
}

// Close cancels any in-flight upload. Its response is discarded.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

type logAlerter struct {
	logger *slog.Logger
}

func (a logAlerter) Warning(message string) { a.logger.Warn(message) }
func (a logAlerter) Error(message string)   { a.logger.Error(message) }
