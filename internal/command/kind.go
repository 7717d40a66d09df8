package command

import (
	"fmt"
	"sort"
)

// Kind identifies a recorded action. Values are persisted by the codec and
// must never be renumbered.
type Kind uint16

// Continuous controls.
const (
	KindThrottle     Kind = 1
	KindTrainBrake   Kind = 2
	KindEngineBrake  Kind = 3
	KindDynamicBrake Kind = 4
	KindReverser     Kind = 5
)

// Two-state controls.
const (
	KindHorn           Kind = 20
	KindBell           Kind = 21
	KindPantograph     Kind = 22
	KindSander         Kind = 23
	KindWipers         Kind = 24
	KindEmergencyBrake Kind = 25
	KindSignalOverride Kind = 26
)

// Two-state controls addressed by an index.
const (
	KindInjector    Kind = 40
	KindSwitchThrow Kind = 41
	KindDoors       Kind = 42
)

// Stateless markers.
const (
	KindCabLight      Kind = 60
	KindHeadlight     Kind = 61
	KindResetOdometer Kind = 62
	KindSave          Kind = 63
)

// Session control.
const (
	KindPaused     Kind = 80
	KindCameraView Kind = 90
)

// Shape is the payload layout shared by a group of kinds. The numeric value
// is the record tag written by the codec.
type Shape uint8

const (
	ShapeMarker     Shape = 1
	ShapeBoolean    Shape = 2
	ShapeIndexed    Shape = 3
	ShapeContinuous Shape = 4
	ShapePaused     Shape = 5
	ShapeCamera     Shape = 6
	ShapeSave       Shape = 7
)

var shapeNames = map[Shape]string{
	ShapeMarker:     "marker",
	ShapeBoolean:    "boolean",
	ShapeIndexed:    "indexed",
	ShapeContinuous: "continuous",
	ShapePaused:     "paused",
	ShapeCamera:     "camera",
	ShapeSave:       "save",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	_, ok := shapeNames[s]
	return ok
}

type kindInfo struct {
	name  string
	shape Shape
}

var catalog = map[Kind]kindInfo{
	KindThrottle:     {"throttle", ShapeContinuous},
	KindTrainBrake:   {"train-brake", ShapeContinuous},
	KindEngineBrake:  {"engine-brake", ShapeContinuous},
	KindDynamicBrake: {"dynamic-brake", ShapeContinuous},
	KindReverser:     {"reverser", ShapeContinuous},

	KindHorn:           {"horn", ShapeBoolean},
	KindBell:           {"bell", ShapeBoolean},
	KindPantograph:     {"pantograph", ShapeBoolean},
	KindSander:         {"sander", ShapeBoolean},
	KindWipers:         {"wipers", ShapeBoolean},
	KindEmergencyBrake: {"emergency-brake", ShapeBoolean},
	KindSignalOverride: {"signal-override", ShapeBoolean},

	KindInjector:    {"injector", ShapeIndexed},
	KindSwitchThrow: {"switch-throw", ShapeIndexed},
	KindDoors:       {"doors", ShapeIndexed},

	KindCabLight:      {"cab-light", ShapeMarker},
	KindHeadlight:     {"headlight", ShapeMarker},
	KindResetOdometer: {"reset-odometer", ShapeMarker},
	KindSave:          {"save", ShapeSave},

	KindPaused:     {"paused", ShapePaused},
	KindCameraView: {"camera-view", ShapeCamera},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(catalog))
	for k, info := range catalog {
		m[info.name] = k
	}
	return m
}()

// String returns the stable name of the kind.
func (k Kind) String() string {
	if info, ok := catalog[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// Shape returns the payload shape of the kind, or 0 for unknown kinds.
func (k Kind) Shape() Shape {
	return catalog[k].shape
}

// Known reports whether k is part of the catalog.
func (k Kind) Known() bool {
	_, ok := catalog[k]
	return ok
}

// ParseKind returns the kind with the given stable name.
func ParseKind(name string) (Kind, error) {
	k, ok := kindsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Kinds returns every catalogued kind in ascending order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
