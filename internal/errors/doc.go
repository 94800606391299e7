// Package errors provides structured, actionable error values for CloudDrop.
//
// Every failure the widget can surface is registered under a short code
// (e.g. "E001") that carries:
//   - a category (upload, clipboard, intake, session, config, cli)
//   - a short message, which for user-facing codes is the exact text shown
//     to the user
//   - a longer explanation and a documentation URL
//
// Errors created from the same code match each other with errors.Is, so
// packages can export sentinels built from the registry:
//
//	var ErrNoFileSelected = errors.New("E001")
//
//	if stderrors.Is(err, uploader.ErrNoFileSelected) { ... }
//
// The CLI renders errors for the terminal with Format:
//
//	ERROR E002: Failed to upload file. Please try again.
//
//	  The remote API could not be reached or answered with a non-2xx status.
//
//	  Hint: check your network connection and try again
//
//	  Learn more: https://clouddrop.dev/docs/errors/E002
package errors
