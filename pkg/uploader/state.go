package uploader

import "github.com/vortex-oo/clouddrop/pkg/dropzone"

// Phase is a step of the upload lifecycle.
type Phase int

const (
	Idle Phase = iota
	Ready
	Uploading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Uploading:
		return "uploading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller.
// URL is set only in Succeeded and Err only in Failed.
type State struct {
	Phase Phase
	File  *dropzone.File
	URL   string
	Err   error
}

func sameState(a, b State) bool {
	return a.Phase == b.Phase && a.File == b.File && a.URL == b.URL && a.Err == b.Err
}
