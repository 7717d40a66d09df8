package command

import "reflect"

// Resolver looks up the live target bound to a kind.
// Implemented by receiver.Registry.
type Resolver interface {
	Resolve(kind Kind) (any, bool)
}

// Toggler receives stateless marker commands.
type Toggler interface {
	Toggle()
}

// Switch receives two-state commands.
type Switch interface {
	SetState(on bool)
}

// IndexedSwitch receives two-state commands for one of several controls.
type IndexedSwitch interface {
	SetIndexedState(index int, on bool)
}

// Adjuster receives continuous-control commands. target is nil when the
// gesture had no recorded end value.
type Adjuster interface {
	Adjust(increase bool, target *float64)
}

// Resumer receives paused commands once their wall-clock delay has passed.
type Resumer interface {
	Resume()
}

// Viewer receives camera commands.
type Viewer interface {
	ShowView(view string)
}

// Saver receives save markers.
type Saver interface {
	SaveAs(stem string)
}

// Apply invokes the target bound to the command's kind and reports whether
// one was invoked. An unbound kind, or a target that does not implement the
// shape's interface, is a no-op. Apply never modifies a log.
func (c Command) Apply(r Resolver) bool {
	if r == nil {
		return false
	}
	target, ok := r.Resolve(c.kind)
	if !ok || IsNilTarget(target) {
		return false
	}

	switch c.Shape() {
	case ShapeMarker:
		t, ok := target.(Toggler)
		if !ok {
			return false
		}
		t.Toggle()
	case ShapeBoolean:
		t, ok := target.(Switch)
		if !ok {
			return false
		}
		t.SetState(c.toState)
	case ShapeIndexed:
		t, ok := target.(IndexedSwitch)
		if !ok {
			return false
		}
		t.SetIndexedState(c.index, c.toState)
	case ShapeContinuous:
		t, ok := target.(Adjuster)
		if !ok {
			return false
		}
		var v *float64
		if c.hasTarget {
			tv := c.target
			v = &tv
		}
		t.Adjust(c.increase, v)
	case ShapePaused:
		t, ok := target.(Resumer)
		if !ok {
			return false
		}
		t.Resume()
	case ShapeCamera:
		t, ok := target.(Viewer)
		if !ok {
			return false
		}
		t.ShowView(c.label)
	case ShapeSave:
		t, ok := target.(Saver)
		if !ok {
			return false
		}
		t.SaveAs(c.label)
	default:
		return false
	}
	return true
}

// Accepts reports whether target implements the interface the kind's shape
// is applied through.
func Accepts(kind Kind, target any) bool {
	switch kind.Shape() {
	case ShapeMarker:
		_, ok := target.(Toggler)
		return ok
	case ShapeBoolean:
		_, ok := target.(Switch)
		return ok
	case ShapeIndexed:
		_, ok := target.(IndexedSwitch)
		return ok
	case ShapeContinuous:
		_, ok := target.(Adjuster)
		return ok
	case ShapePaused:
		_, ok := target.(Resumer)
		return ok
	case ShapeCamera:
		_, ok := target.(Viewer)
		return ok
	case ShapeSave:
		_, ok := target.(Saver)
		return ok
	}
	return false
}

// IsNilTarget reports whether target is nil, including a nil pointer or
// other nilable value stored in a non-nil interface.
func IsNilTarget(target any) bool {
	if target == nil {
		return true
	}
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
