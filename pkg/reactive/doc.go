// Package reactive provides the value cells that hold widget state.
//
// A Signal[T] stores one value and notifies subscribers after every change.
// The live session subscribes once per widget and pushes a fresh render
// whenever any of the widget's signals change:
//
//	selected := reactive.NewSignal[*dropzone.File](nil)
//	stop := selected.Subscribe(func() { session.ScheduleRender() })
//	defer stop()
//
//	selected.Set(file) // subscribers run after the value is stored
//
// Writes that do not change the value (per the signal's equality function)
// do not notify.
package reactive
