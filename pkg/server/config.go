package server

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message or pong from
	// the client. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between pings. Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 16KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the event and dispatch buffers.
	// Default: 64.
	MaxEventQueue int

	// ClipboardTimeout bounds the browser clipboard round trip.
	// Default: 5 seconds.
	ClipboardTimeout time.Duration

	// UploadTimeout bounds a single upload. Default: none.
	UploadTimeout time.Duration
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    16 * 1024,
		MaxEventQueue:     64,
		ClipboardTimeout:  5 * time.Second,
	}
}

func (c *SessionConfig) withDefaults() *SessionConfig {
	d := DefaultSessionConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = d.HeartbeatInterval
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.MaxEventQueue <= 0 {
		out.MaxEventQueue = d.MaxEventQueue
	}
	if out.ClipboardTimeout <= 0 {
		out.ClipboardTimeout = d.ClipboardTimeout
	}
	return &out
}

// Config holds configuration for the server.
type Config struct {
	// Address is the listen address. Default: "localhost:3000".
	Address string

	// ShutdownTimeout bounds graceful shutdown. Default: 30 seconds.
	ShutdownTimeout time.Duration

	// Session configures each live session.
	Session *SessionConfig

	// Intake configures the drop intake handler.
	// Default: dropzone.DefaultHandlerConfig().
	Intake *dropzone.HandlerConfig

	// Uploader sends files to the remote API. Default: a client for
	// uploader.DefaultBaseURL recording metrics in Registry.
	Uploader uploader.Uploader

	// Registry collects server and upload metrics and backs /metrics.
	// Default: a new registry with the Go and process collectors.
	Registry *prometheus.Registry

	// MetricsPath is where metrics are served; "" disables the endpoint.
	// Default: "/metrics".
	MetricsPath string

	// CheckOrigin validates the WebSocket Origin header.
	// Default: same host only.
	CheckOrigin func(origin, host string) bool

	// Logger is used for all server logging. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:         "localhost:3000",
		ShutdownTimeout: 30 * time.Second,
		Session:         DefaultSessionConfig(),
		Intake:          dropzone.DefaultHandlerConfig(),
		MetricsPath:     "/metrics",
	}
}
