// Package command defines the recorded user and system actions of a
// simulator session.
//
// A Command is a small immutable value: a Kind, a simulated-clock timestamp
// and a payload whose layout is fixed by the kind's Shape. The catalog of
// kinds is closed; every kind maps to exactly one shape, and the shape
// decides both how the command is applied and how the codec lays it out.
//
// # Time
//
// Discrete commands are built unstamped and receive the simulated time when
// they are recorded (see cmdlog.Log.Record). Continuous commands carry the
// time the gesture started, supplied to NewContinuous, because they are only
// committed when the control is released. Paused commands are the one
// exception to the simulated-clock rule: their Duration is measured in real
// wall-clock seconds.
//
// # Receivers
//
// Commands never hold a reference to the object they act on. Apply looks the
// target up through a Resolver (normally a receiver.Registry) and type-asserts
// it to the interface required by the shape:
//
//	ShapeMarker     Toggler        Toggle()
//	ShapeBoolean    Switch         SetState(on)
//	ShapeIndexed    IndexedSwitch  SetIndexedState(index, on)
//	ShapeContinuous Adjuster       Adjust(increase, target)
//	ShapePaused     Resumer        Resume()
//	ShapeCamera     Viewer         ShowView(view)
//	ShapeSave       Saver          SaveAs(stem)
//
// A missing or mismatched target makes Apply a no-op that reports false.
package command
