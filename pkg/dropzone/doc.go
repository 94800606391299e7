// Package dropzone implements the widget's file input: a single-slot
// selection fed by drag-and-drop or the file picker, filtered by an
// allow-list of MIME types and extensions.
//
// Browsers cannot hand a dropped file to the server over the live
// WebSocket without blocking its heartbeat, so intake is a plain HTTP POST:
//
//  1. User drops or picks a file in the browser
//  2. Client POSTs it as multipart field "file" to /sessions/{id}/files
//  3. Handler sniffs the content type, checks the allow-list and stages
//     the bytes in a Store (disk or S3)
//  4. The staged File is delivered to the session's Zone, replacing any
//     previous selection
//  5. The upload controller later opens the File and streams it to the
//     remote API
//
// # Allow-list
//
// An item is accepted when its MIME type matches one of the Accept keys
// (a "type/*" key matches any subtype) or when its extension appears in
// one of the Accept lists. DefaultAccept allows images (png, jpg, jpeg,
// gif), PDF and Word documents (doc, docx).
//
// # Security
//
// The handler sniffs the content type server-side with mimetype; the
// part's Content-Type header is not trusted. Request bodies are limited to
// HandlerConfig.MaxFileSize before parsing.
package dropzone
