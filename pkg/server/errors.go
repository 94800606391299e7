package server

import "errors"

var (
	// ErrSessionClosed is returned when writing to a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrEventQueueFull is returned when a session's event queue is full.
	ErrEventQueueFull = errors.New("server: event queue full")
)
