package toast_test

import (
	"testing"

	"github.com/vortex-oo/clouddrop/pkg/toast"
)

type emitted struct {
	event  string
	detail map[string]any
}

type recorder struct {
	events []emitted
}

func (r *recorder) Emit(event string, detail map[string]any) {
	r.events = append(r.events, emitted{event, detail})
}

func TestShow(t *testing.T) {
	tests := []struct {
		name  string
		call  func(toast.Emitter)
		level string
	}{
		{"success", func(e toast.Emitter) { toast.Success(e, "msg") }, "success"},
		{"error", func(e toast.Emitter) { toast.Error(e, "msg") }, "error"},
		{"warning", func(e toast.Emitter) { toast.Warning(e, "msg") }, "warning"},
		{"info", func(e toast.Emitter) { toast.Info(e, "msg") }, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			tt.call(rec)

			if len(rec.events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(rec.events))
			}
			ev := rec.events[0]
			if ev.event != toast.EventName {
				t.Errorf("event = %q, want %q", ev.event, toast.EventName)
			}
			if ev.detail["level"] != tt.level || ev.detail["message"] != "msg" {
				t.Errorf("detail = %v", ev.detail)
			}
		})
	}
}

func TestAlerts(t *testing.T) {
	rec := &recorder{}
	alerts := toast.Alerts{Emitter: rec}

	alerts.Warning("Please upload a file!")
	alerts.Error("Failed to upload file. Please try again.")

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
	if rec.events[0].detail["level"] != "warning" || rec.events[0].detail["message"] != "Please upload a file!" {
		t.Errorf("first alert = %v", rec.events[0].detail)
	}
	if rec.events[1].detail["level"] != "error" {
		t.Errorf("second alert = %v", rec.events[1].detail)
	}
}

func TestAlerts_NilEmitter(t *testing.T) {
	// Must not panic.
	toast.Alerts{}.Warning("x")
}

func TestFunc(t *testing.T) {
	var got string
	toast.Show(toast.Func(func(event string, _ map[string]any) { got = event }), toast.TypeInfo, "hi")
	if got != toast.EventName {
		t.Errorf("event = %q", got)
	}
}
