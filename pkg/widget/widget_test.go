package widget_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/clipboard"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/widget"
)

type scriptedUploader struct {
	calls   int
	replies chan result
}

type result struct {
	url string
	err error
}

func (u *scriptedUploader) Upload(ctx context.Context, f *dropzone.File) (string, error) {
	u.calls++
	select {
	case r := <-u.replies:
		return r.url, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type alerts struct {
	warnings, errors []string
}

func (a *alerts) Warning(m string) { a.warnings = append(a.warnings, m) }
func (a *alerts) Error(m string)   { a.errors = append(a.errors, m) }

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.stopped = true
	return true
}

type harness struct {
	w        *widget.Widget
	up       *scriptedUploader
	alerts   *alerts
	loop     chan func()
	timers   []*manualTimer
	copied   []string
	renders  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		up:     &scriptedUploader{replies: make(chan result, 1)},
		alerts: &alerts{},
		loop:   make(chan func(), 8),
	}
	h.w = widget.New(widget.Config{
		Client: h.up,
		Clipboard: clipboard.WriterFunc(func(_ context.Context, text string) error {
			h.copied = append(h.copied, text)
			return nil
		}),
		Alerts:   h.alerts,
		Dispatch: func(fn func()) { h.loop <- fn },
		AfterFunc: func(d time.Duration, fn func()) clipboard.Timer {
			tm := &manualTimer{fn: fn}
			h.timers = append(h.timers, tm)
			return tm
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.w.OnChange(func() { h.renders++ })
	t.Cleanup(h.w.Close)
	return h
}

// settle runs one dispatched callback, as the session loop would.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	select {
	case fn := <-h.loop:
		fn()
	case <-time.After(time.Second):
		t.Fatal("nothing was dispatched")
	}
}

func (h *harness) html(t *testing.T) string {
	t.Helper()
	out, err := h.w.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	return string(out)
}

func TestWidget_InitialRender(t *testing.T) {
	h := newHarness(t)
	html := h.html(t)

	for _, want := range []string{
		"CloudDrop",
		"Upload and share your files securely",
		"Drag &amp; drop your file here",
		"or click to browse",
		"Select a file first",
		`accept="application/msword,application/pdf,image/*,.doc,.docx,.gif,.jpeg,.jpg,.pdf,.png"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("initial render missing %q", want)
		}
	}
	if !strings.Contains(html, "disabled") {
		t.Error("upload button should be disabled with no file")
	}
	if strings.Contains(html, "Copy Link") {
		t.Error("result panel should be hidden before an upload")
	}
}

func TestWidget_UploadWithoutFile(t *testing.T) {
	h := newHarness(t)

	err := h.w.HandleEvent(context.Background(), widget.EventUpload)

	if errors.Code(err) != "E001" {
		t.Fatalf("error = %v, want E001", err)
	}
	if len(h.alerts.warnings) != 1 || h.alerts.warnings[0] != "Please upload a file!" {
		t.Errorf("warnings = %v", h.alerts.warnings)
	}
	if h.up.calls != 0 {
		t.Error("no request should be made without a file")
	}
	if !strings.Contains(h.html(t), "Select a file first") {
		t.Error("label should stay \"Select a file first\"")
	}
}

func TestWidget_PhotoScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.w.Drop(ctx, dropzone.FromBytes("photo.png", "image/png", []byte("png"))); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	html := h.html(t)
	if !strings.Contains(html, "photo.png") || !strings.Contains(html, "Upload File") {
		t.Fatalf("after drop: %s", html)
	}

	if err := h.w.HandleEvent(ctx, widget.EventUpload); err != nil {
		t.Fatalf("upload: %v", err)
	}
	html = h.html(t)
	if !strings.Contains(html, "Uploading...") || !strings.Contains(html, "cd-spinner") {
		t.Fatal("expected uploading label and spinner")
	}

	h.up.replies <- result{url: "https://cdn.example/photo.png"}
	h.settle(t)

	html = h.html(t)
	for _, want := range []string{
		`href="https://cdn.example/photo.png"`,
		`target="_blank"`,
		`rel="noreferrer"`,
		"View Uploaded File ↗",
		"Copy Link",
		"Upload File",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("after success missing %q", want)
		}
	}
	if h.renders == 0 {
		t.Error("OnChange never fired")
	}
}

func TestWidget_TransportErrorScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.w.Drop(ctx, dropzone.FromBytes("doc.pdf", "application/pdf", []byte("%PDF")))
	h.w.HandleEvent(ctx, widget.EventUpload)
	h.up.replies <- result{err: errors.New("E002")}
	h.settle(t)

	if len(h.alerts.errors) != 1 || h.alerts.errors[0] != "Failed to upload file. Please try again." {
		t.Errorf("errors = %v", h.alerts.errors)
	}
	html := h.html(t)
	if strings.Contains(html, "Copy Link") {
		t.Error("no result panel after failure")
	}
	if !strings.Contains(html, "Upload File") || strings.Contains(html, "Uploading...") {
		t.Error("button should return to \"Upload File\"")
	}
}

func TestWidget_CopyScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.w.Drop(ctx, dropzone.FromBytes("photo.png", "image/png", []byte("png")))
	h.w.HandleEvent(ctx, widget.EventUpload)
	h.up.replies <- result{url: "https://cdn.example/photo.png"}
	h.settle(t)

	if err := h.w.HandleEvent(ctx, widget.EventCopy); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if len(h.copied) != 1 || h.copied[0] != "https://cdn.example/photo.png" {
		t.Errorf("clipboard = %v", h.copied)
	}
	if !strings.Contains(h.html(t), "Copied!") {
		t.Fatal("expected \"Copied!\"")
	}

	// The window ends: the timer fires and its callback runs on the loop.
	h.timers[len(h.timers)-1].fn()
	h.settle(t)
	html := h.html(t)
	if strings.Contains(html, "Copied!") || !strings.Contains(html, "Copy Link") {
		t.Fatal("expected \"Copy Link\" after the window")
	}
}

func TestWidget_SecondSelectionWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.w.Drop(ctx, dropzone.FromBytes("a.png", "image/png", []byte("a")))
	h.w.HandleEvent(ctx, widget.EventUpload)
	h.w.Drop(ctx, dropzone.FromBytes("b.png", "image/png", []byte("b")))

	h.up.replies <- result{url: "https://cdn.example/a.png"}
	h.settle(t)

	if h.w.ResultURL() != "" {
		t.Errorf("stale result shown: %q", h.w.ResultURL())
	}
	if h.w.Selected().Name != "b.png" {
		t.Errorf("selected = %q, want b.png", h.w.Selected().Name)
	}
}

func TestWidget_DragHover(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.w.HandleEvent(ctx, widget.EventDragEnter)
	if !strings.Contains(h.html(t), "cd-dropzone--active") {
		t.Fatal("expected active drop zone")
	}
	h.w.HandleEvent(ctx, widget.EventDragLeave)
	if strings.Contains(h.html(t), "cd-dropzone--active") {
		t.Fatal("drop zone should be inactive after dragleave")
	}
}

func TestWidget_RejectedDrop(t *testing.T) {
	h := newHarness(t)

	_, err := h.w.Drop(context.Background(), dropzone.FromBytes("notes.txt", "text/plain", []byte("x")))
	if err != dropzone.ErrRejected {
		t.Fatalf("error = %v, want ErrRejected", err)
	}
	if h.w.Selected() != nil {
		t.Error("rejected file must not be selected")
	}
}

func TestWidget_UnknownEvent(t *testing.T) {
	h := newHarness(t)
	if err := h.w.HandleEvent(context.Background(), "explode"); err == nil {
		t.Fatal("expected error for unknown event")
	}
}
