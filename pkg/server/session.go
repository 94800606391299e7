package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/toast"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
	"github.com/vortex-oo/clouddrop/pkg/widget"
)

// Session is one live widget bound to one WebSocket connection.
//
// The widget is only touched from the event loop goroutine. Other goroutines
// reach it through Dispatch or Drop.
type Session struct {
	// ID is the session identifier used by the intake endpoint.
	ID string

	// CreatedAt is when the connection was accepted.
	CreatedAt time.Time

	conn   *websocket.Conn
	widget *widget.Widget
	config *SessionConfig
	logger *slog.Logger

	events     chan string
	dispatchCh chan func()
	done       chan struct{}
	closed     atomic.Bool

	// ctx is canceled when the session closes; uploads run under it.
	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes writes to conn.
	mu sync.Mutex

	dirty atomic.Bool

	clipMu  sync.Mutex
	pending map[string]chan error

	eventCount atomic.Uint64
	metrics    *metrics
	onClose    func(*Session)
}

type sessionOptions struct {
	config   *SessionConfig
	uploader uploader.Uploader
	accept   dropzone.Accept
	metrics  *metrics
	logger   *slog.Logger
	onClose  func(*Session)
}

func newSession(conn *websocket.Conn, opts sessionOptions) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    opts.config.withDefaults(),
		logger:    logger.With("session_id", id),
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan error),
		metrics:   opts.metrics,
		onClose:   opts.onClose,
	}
	s.events = make(chan string, s.config.MaxEventQueue)
	s.dispatchCh = make(chan func(), s.config.MaxEventQueue)
	s.done = make(chan struct{})

	s.widget = widget.New(widget.Config{
		Client:        opts.uploader,
		Clipboard:     s,
		Alerts:        toast.Alerts{Emitter: s, Logger: s.logger},
		Dispatch:      s.Dispatch,
		Accept:        opts.accept,
		UploadTimeout: s.config.UploadTimeout,
		Logger:        s.logger,
	})
	s.widget.OnChange(func() { s.dirty.Store(true) })
	return s
}

// Start sends the greeting and starts the session loops.
func (s *Session) Start() error {
	if err := s.send(outbound{Type: MsgHello, Session: s.ID}); err != nil {
		return err
	}
	if err := s.sendRender(); err != nil {
		return err
	}
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
	return nil
}

// ReadLoop reads client messages until the connection fails. Clipboard
// replies go straight to the waiting writer; everything else is queued for
// the event loop.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		s.metrics.message("in")

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("message decode error", "error", err)
			continue
		}

		switch msg.Type {
		case MsgClipboardResult:
			s.resolveClipboard(msg)
		case widget.EventDragEnter, widget.EventDragLeave, widget.EventUpload, widget.EventCopy:
			s.QueueEvent(msg.Type)
		default:
			s.logger.Warn("unknown message type", "type", msg.Type)
		}
	}
}

// WriteLoop sends heartbeat pings until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping error", "error", err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// EventLoop applies queued events and dispatched callbacks, pushing a render
// after each one that changed the widget. It closes the widget on exit.
func (s *Session) EventLoop() {
	defer s.widget.Close()

	for {
		select {
		case event := <-s.events:
			s.handleEvent(event)
		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)
		case <-s.done:
			return
		}
		s.renderDirty()
	}
}

func (s *Session) handleEvent(event string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event panic", "event", event, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	s.eventCount.Add(1)
	err := s.widget.HandleEvent(s.ctx, event)
	switch errors.Code(err) {
	case "":
		if err != nil {
			s.logger.Warn("event failed", "event", event, "error", err)
		}
	case "E001", "E003":
		// Already reported to the user, or deliberately ignored.
		s.logger.Debug("event refused", "event", event, "error", err)
	default:
		s.logger.Warn("event failed", "event", event, "error", err)
	}
}

func (s *Session) executeDispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (s *Session) renderDirty() {
	if !s.dirty.Swap(false) {
		return
	}
	if err := s.sendRender(); err != nil {
		s.logger.Debug("render not sent", "error", err)
	}
}

func (s *Session) sendRender() error {
	html, err := s.widget.HTML()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		return err
	}
	return s.send(outbound{Type: MsgRender, HTML: string(html)})
}

// QueueEvent queues a client event for the event loop.
func (s *Session) QueueEvent(event string) error {
	select {
	case s.events <- event:
		return nil
	default:
		s.logger.Warn("event queue full, dropping event", "event", event)
		return ErrEventQueueFull
	}
}

// Dispatch queues fn to run on the event loop. It blocks while the queue is
// full and discards fn once the session is closed. It must not be called
// from the event loop itself.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	}
}

// Drop delivers dropped files to the widget on the event loop and waits for
// the zone's verdict. It implements dropzone.Target.
func (s *Session) Drop(ctx context.Context, files ...*dropzone.File) (*dropzone.File, error) {
	if s.closed.Load() {
		return nil, errors.New("E061")
	}

	type result struct {
		file *dropzone.File
		err  error
	}
	res := make(chan result, 1)
	fn := func() {
		f, err := s.widget.Drop(ctx, files...)
		res <- result{f, err}
	}

	select {
	case s.dispatchCh <- fn:
	case <-s.done:
		return nil, errors.New("E061")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Once queued the outcome must be awaited so the caller knows whether
	// the zone took ownership of the files.
	select {
	case r := <-res:
		return r.file, r.err
	case <-s.done:
		return nil, errors.New("E061")
	}
}

// Emit sends a client event. Alerts become alert messages.
// It implements toast.Emitter.
func (s *Session) Emit(event string, detail map[string]any) {
	if event != toast.EventName {
		s.logger.Warn("unsupported client event", "event", event)
		return
	}
	level, _ := detail["level"].(string)
	message, _ := detail["message"].(string)
	if err := s.send(outbound{Type: MsgAlert, Level: level, Message: message}); err != nil {
		s.logger.Debug("alert not sent", "error", err)
	}
}

// WriteText asks the browser to write text to its clipboard and waits for
// the reply. It implements clipboard.Writer.
func (s *Session) WriteText(ctx context.Context, text string) error {
	id := uuid.NewString()
	reply := make(chan error, 1)

	s.clipMu.Lock()
	s.pending[id] = reply
	s.clipMu.Unlock()
	defer func() {
		s.clipMu.Lock()
		delete(s.pending, id)
		s.clipMu.Unlock()
	}()

	if err := s.send(outbound{Type: MsgClipboard, ID: id, Text: text}); err != nil {
		return errors.New("E020").Wrap(err)
	}

	timer := time.NewTimer(s.config.ClipboardTimeout)
	defer timer.Stop()

	select {
	case err := <-reply:
		return err
	case <-timer.C:
		return errors.New("E020").WithDetail("The browser did not answer the clipboard request in time.")
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return errors.New("E061")
	}
}

func (s *Session) resolveClipboard(msg inbound) {
	s.clipMu.Lock()
	reply, ok := s.pending[msg.ID]
	s.clipMu.Unlock()
	if !ok {
		s.logger.Debug("late clipboard reply", "id", msg.ID)
		return
	}

	var err error
	if !msg.OK {
		err = errors.New("E020").WithDetail(msg.Error)
	}
	select {
	case reply <- err:
	default:
	}
}

// send writes one message to the connection.
func (s *Session) send(msg outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	err = s.conn.WriteMessage(websocket.TextMessage, data)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("write error", "error", err)
		s.Close()
		return err
	}
	s.metrics.message("out")
	return nil
}

// Close closes the connection and stops the loops. The widget is closed by
// the event loop as it exits.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	s.cancel()

	if s.conn != nil {
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	}

	s.logger.Info("session closed", "events", s.eventCount.Load(), "age", time.Since(s.CreatedAt).Round(time.Millisecond))
	if s.onClose != nil {
		s.onClose(s)
	}
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
