package clipboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/reactive"
)

// Button labels.
const (
	LabelCopy   = "Copy Link"
	LabelCopied = "Copied!"
)

// DefaultWindow is how long the Copied flag stays up after a copy.
const DefaultWindow = 2000 * time.Millisecond

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// PanelConfig configures a Panel.
type PanelConfig struct {
	// Writer receives copied text. Required.
	Writer Writer

	// Window is the confirmation window. Default: DefaultWindow.
	Window time.Duration

	// Dispatch runs timer callbacks on the owner's event loop.
	// When nil they run on the timer goroutine.
	Dispatch func(fn func())

	// AfterFunc schedules fn after d. Default: time.AfterFunc.
	AfterFunc func(d time.Duration, fn func()) Timer

	// Logger is used for copy failures. Default: slog.Default().
	Logger *slog.Logger
}

// Panel holds the copy action and its confirmation flag.
type Panel struct {
	writer    Writer
	window    time.Duration
	dispatch  func(fn func())
	afterFunc func(d time.Duration, fn func()) Timer
	logger    *slog.Logger

	copied *reactive.Signal[bool]

	mu     sync.Mutex
	gen    uint64
	timer  Timer
	closed bool
}

// NewPanel creates a Panel with the flag down.
func NewPanel(cfg PanelConfig) *Panel {
	p := &Panel{
		writer:    cfg.Writer,
		window:    cfg.Window,
		dispatch:  cfg.Dispatch,
		afterFunc: cfg.AfterFunc,
		logger:    cfg.Logger,
		copied:    reactive.NewSignal(false),
	}
	if p.window <= 0 {
		p.window = DefaultWindow
	}
	if p.afterFunc == nil {
		p.afterFunc = func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		}
	}
	if p.dispatch == nil {
		p.dispatch = func(fn func()) { fn() }
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Copy writes url to the clipboard. On success the Copied flag is raised and
// the confirmation window restarts. Failures are logged and returned; the
// flag is left as it was.
func (p *Panel) Copy(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("E021")
	}
	if p.writer == nil {
		return errors.New("E020").WithDetail("No clipboard writer is configured.")
	}

	if err := p.writer.WriteText(ctx, url); err != nil {
		p.logger.Warn("copy to clipboard failed", "error", err)
		return errors.FromError(err, "E020")
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.gen++
	gen := p.gen
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.afterFunc(p.window, func() {
		p.dispatch(func() { p.expire(gen) })
	})
	p.mu.Unlock()

	p.copied.Set(true)
	return nil
}

// expire lowers the flag if gen is still the latest copy.
func (p *Panel) expire(gen uint64) {
	p.mu.Lock()
	current := gen == p.gen && !p.closed
	if current {
		p.timer = nil
	}
	p.mu.Unlock()

	if current {
		p.copied.Set(false)
	}
}

// Reset lowers the flag and cancels the pending timer.
func (p *Panel) Reset() {
	p.mu.Lock()
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	p.copied.Set(false)
}

// Copied reports whether a copy happened within the last window.
func (p *Panel) Copied() bool {
	return p.copied.Get()
}

// Label returns the copy button label.
func (p *Panel) Label() string {
	if p.Copied() {
		return LabelCopied
	}
	return LabelCopy
}

// Subscribe calls fn whenever the Copied flag changes.
func (p *Panel) Subscribe(fn func()) func() {
	return p.copied.Subscribe(fn)
}

// Close stops the pending timer.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
