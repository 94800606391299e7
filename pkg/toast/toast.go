package toast

import "log/slog"

// EventName is the client event alerts are dispatched as.
const EventName = "clouddrop:alert"

// Type represents the alert level.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Emitter sends a named event with a detail payload to the client.
type Emitter interface {
	Emit(event string, detail map[string]any)
}

// Show sends an alert to the client.
//
// The client receives a CustomEvent with:
//   - event.type = "clouddrop:alert"
//   - event.detail = { level: "success|error|warning|info", message: "..." }
func Show(e Emitter, level Type, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success alert.
func Success(e Emitter, message string) {
	Show(e, TypeSuccess, message)
}

// Error shows an error alert.
//
//	toast.Error(session, "Failed to upload file. Please try again.")
func Error(e Emitter, message string) {
	Show(e, TypeError, message)
}

// Warning shows a warning alert.
//
//	toast.Warning(session, "Please upload a file!")
func Warning(e Emitter, message string) {
	Show(e, TypeWarning, message)
}

// Info shows an info alert.
func Info(e Emitter, message string) {
	Show(e, TypeInfo, message)
}

// Alerts routes alerts to an Emitter, also recording them in the log.
type Alerts struct {
	Emitter Emitter
	Logger  *slog.Logger
}

// Warning shows a warning alert.
func (a Alerts) Warning(message string) {
	a.show(TypeWarning, message)
}

// Error shows an error alert.
func (a Alerts) Error(message string) {
	a.show(TypeError, message)
}

func (a Alerts) show(level Type, message string) {
	if a.Logger != nil {
		a.Logger.Debug("alert", "level", level, "message", message)
	}
	if a.Emitter == nil {
		return
	}
	Show(a.Emitter, level, message)
}

// Func adapts a function to an Emitter.
type Func func(event string, detail map[string]any)

// Emit calls f.
func (f Func) Emit(event string, detail map[string]any) {
	f(event, detail)
}
