// Package server hosts CloudDrop widgets as live sessions.
//
// Each browser tab opens a WebSocket to /live and gets its own Session: a
// Widget plus a single event loop goroutine that applies client events,
// dispatched callbacks and dropped files in order, then pushes the
// re-rendered widget HTML back to the browser.
//
// Dropped files do not travel over the WebSocket. The thin client posts them
// to /sessions/{id}/files, where the intake handler sniffs, allow-lists and
// stages them before handing them to the session's loop.
//
// Wire messages are JSON objects with a "type" field:
//
//	client -> server: dragenter, dragleave, upload, copy,
//	                  clipboard-result {id, ok, error}
//	server -> client: hello {session}, render {html},
//	                  alert {level, message}, clipboard {id, text}
//
// Basic usage:
//
//	srv := server.New(server.DefaultConfig(), store)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
