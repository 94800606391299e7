// Package uploader drives the upload lifecycle of a single selected file.
//
// A Controller moves through Idle, Ready, Uploading, Succeeded and Failed.
// Trigger sends the selected file to the remote API as a multipart POST and
// records either the returned URL or the failure. Selecting a new file while
// an upload is in flight makes that upload stale: its response is logged and
// discarded.
//
// In a live session the controller is given a dispatcher so the HTTP call runs
// on its own goroutine and the result is applied on the session loop:
//
//	ctrl := uploader.New(uploader.Config{
//	    Client:   uploader.NewClient(uploader.DefaultBaseURL),
//	    Dispatch: session.Dispatch,
//	    Alerts:   alerts,
//	})
//
// Without a dispatcher Trigger blocks until the upload finishes, which is what
// the CLI uses.
package uploader
