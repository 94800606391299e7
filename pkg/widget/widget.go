package widget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vortex-oo/clouddrop/pkg/clipboard"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/reactive"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

// Client event types.
const (
	EventDragEnter = "dragenter"
	EventDragLeave = "dragleave"
	EventUpload    = "upload"
	EventCopy      = "copy"
)

// Config configures a Widget.
type Config struct {
	// Client performs uploads. Default: uploader.NewClient(uploader.DefaultBaseURL).
	Client uploader.Uploader

	// Clipboard receives copied links.
	Clipboard clipboard.Writer

	// Alerts shows the no-file and failure alerts.
	Alerts uploader.Alerter

	// Dispatch runs callbacks on the owning event loop. When nil the
	// widget runs synchronously.
	Dispatch func(fn func())

	// Accept is the drop zone allow-list. Default: dropzone.DefaultAccept.
	Accept dropzone.Accept

	// UploadTimeout bounds a single upload.
	UploadTimeout time.Duration

	// CopyWindow is how long "Copied!" shows. Default: clipboard.DefaultWindow.
	CopyWindow time.Duration

	// AfterFunc schedules the copy confirmation timer. Default: time.AfterFunc.
	AfterFunc func(d time.Duration, fn func()) clipboard.Timer

	// Logger is used for diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// Widget is one CloudDrop widget instance.
type Widget struct {
	zone   *dropzone.Zone
	ctrl   *uploader.Controller
	panel  *clipboard.Panel
	logger *slog.Logger
}

// New creates a Widget with nothing selected.
func New(cfg Config) *Widget {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Widget{logger: logger}
	w.ctrl = uploader.New(uploader.Config{
		Client:   cfg.Client,
		Dispatch: cfg.Dispatch,
		Alerts:   cfg.Alerts,
		Timeout:  cfg.UploadTimeout,
		Logger:   logger,
	})
	w.panel = clipboard.NewPanel(clipboard.PanelConfig{
		Writer:    cfg.Clipboard,
		Window:    cfg.CopyWindow,
		Dispatch:  cfg.Dispatch,
		AfterFunc: cfg.AfterFunc,
		Logger:    logger,
	})
	w.zone = dropzone.NewZone(dropzone.ZoneConfig{
		Accept:   cfg.Accept,
		OnSelect: w.selected,
		Logger:   logger,
	})
	return w
}

func (w *Widget) selected(f *dropzone.File) {
	w.panel.Reset()
	w.ctrl.Select(f)
}

// Drop offers files to the drop zone. It implements dropzone.Target.
func (w *Widget) Drop(_ context.Context, files ...*dropzone.File) (*dropzone.File, error) {
	return w.zone.Drop(files...)
}

// HandleEvent applies a client event.
func (w *Widget) HandleEvent(ctx context.Context, event string) error {
	switch event {
	case EventDragEnter:
		w.zone.SetDragActive(true)
	case EventDragLeave:
		w.zone.SetDragActive(false)
	case EventUpload:
		return w.ctrl.Trigger(ctx)
	case EventCopy:
		return w.panel.Copy(ctx, w.ctrl.ResultURL())
	default:
		return fmt.Errorf("widget: unknown event %q", event)
	}
	return nil
}

// Upload starts an upload of the selected file.
func (w *Widget) Upload(ctx context.Context) error {
	return w.ctrl.Trigger(ctx)
}

// Copy copies the result link.
func (w *Widget) Copy(ctx context.Context) error {
	return w.panel.Copy(ctx, w.ctrl.ResultURL())
}

// Selected returns the selected file, or nil.
func (w *Widget) Selected() *dropzone.File {
	return w.zone.Selected()
}

// State returns the upload state.
func (w *Widget) State() uploader.State {
	return w.ctrl.State()
}

// ResultURL returns the uploaded file's URL, or "".
func (w *Widget) ResultURL() string {
	return w.ctrl.ResultURL()
}

// Copied reports whether the copy confirmation is showing.
func (w *Widget) Copied() bool {
	return w.panel.Copied()
}

// OnChange calls fn after any change that affects rendering.
func (w *Widget) OnChange(fn func()) func() {
	return reactive.Watch(fn, w.zone, w.ctrl, w.panel)
}

// Close cancels in-flight work and releases the staged file.
func (w *Widget) Close() {
	w.ctrl.Close()
	w.panel.Close()
	w.zone.Close()
}
