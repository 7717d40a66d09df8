package command

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLabelLen bounds camera view and save stem lengths, in bytes after
// normalisation.
const MaxLabelLen = 4096

var (
	// ErrUnknownKind indicates a kind outside the catalog.
	ErrUnknownKind = errors.New("unknown command kind")
	// ErrShapeMismatch indicates a constructor used with a kind of another shape.
	ErrShapeMismatch = errors.New("command kind has a different shape")
	// ErrInvalidTime indicates a NaN or infinite timestamp.
	ErrInvalidTime = errors.New("command time must be finite")
	// ErrInvalidPayload indicates a payload value the shape cannot carry.
	ErrInvalidPayload = errors.New("invalid command payload")
)

// Command is one recorded action. The zero value is not a valid command;
// build commands with the New* constructors or FromParts.
//
// Fields are unexported so a Command held by a log cannot be amended in
// place. Amending means recording a new command.
type Command struct {
	kind      Kind
	time      float64
	stamped   bool
	toState   bool
	index     int
	increase  bool
	target    float64
	hasTarget bool
	duration  float64
	label     string
}

// Payload is the shape-specific part of a command in exported form. Only
// the fields relevant to the kind's shape are meaningful.
type Payload struct {
	ToState  bool
	Index    int
	Increase bool
	Target   *float64
	Duration float64
	Label    string
}

// NewMarker builds an unstamped stateless command.
func NewMarker(kind Kind) (Command, error) {
	if err := checkShape(kind, ShapeMarker); err != nil {
		return Command{}, err
	}
	return Command{kind: kind}, nil
}

// NewBoolean builds an unstamped two-state command.
func NewBoolean(kind Kind, toState bool) (Command, error) {
	if err := checkShape(kind, ShapeBoolean); err != nil {
		return Command{}, err
	}
	return Command{kind: kind, toState: toState}, nil
}

// NewIndexed builds an unstamped two-state command for the control at index.
func NewIndexed(kind Kind, index int, toState bool) (Command, error) {
	if err := checkShape(kind, ShapeIndexed); err != nil {
		return Command{}, err
	}
	if index < math.MinInt32 || index > math.MaxInt32 {
		return Command{}, fmt.Errorf("%w: index %d out of range", ErrInvalidPayload, index)
	}
	return Command{kind: kind, index: index, toState: toState}, nil
}

// NewContinuous builds a continuous-control command stamped with startTime,
// the moment the change began. target is optional.
func NewContinuous(kind Kind, startTime float64, increase bool, target *float64) (Command, error) {
	if err := checkShape(kind, ShapeContinuous); err != nil {
		return Command{}, err
	}
	if !finite(startTime) {
		return Command{}, ErrInvalidTime
	}
	c := Command{kind: kind, time: startTime, stamped: true, increase: increase}
	if target != nil {
		if !finite(*target) {
			return Command{}, fmt.Errorf("%w: target must be finite", ErrInvalidPayload)
		}
		c.target = *target
		c.hasTarget = true
	}
	return c, nil
}

// NewPaused builds an unstamped pause of duration real seconds.
func NewPaused(duration float64) (Command, error) {
	if !finite(duration) || duration < 0 {
		return Command{}, fmt.Errorf("%w: pause duration %v", ErrInvalidPayload, duration)
	}
	return Command{kind: KindPaused, duration: duration}, nil
}

// NewCamera builds an unstamped camera change to the named view.
func NewCamera(view string) (Command, error) {
	label, err := normLabel(view)
	if err != nil {
		return Command{}, err
	}
	return Command{kind: KindCameraView, label: label}, nil
}

// NewSave builds an unstamped save marker carrying the file name stem.
func NewSave(stem string) (Command, error) {
	if stem == "" {
		return Command{}, fmt.Errorf("%w: save stem is empty", ErrInvalidPayload)
	}
	label, err := normLabel(stem)
	if err != nil {
		return Command{}, err
	}
	return Command{kind: KindSave, label: label}, nil
}

// normLabel returns s in NFC, or an error if it cannot be persisted.
func normLabel(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: label is not valid UTF-8", ErrInvalidPayload)
	}
	s = norm.NFC.String(s)
	if err := checkLabel(s); err != nil {
		return "", err
	}
	return s, nil
}

func checkLabel(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: label is not valid UTF-8", ErrInvalidPayload)
	}
	if len(s) > MaxLabelLen {
		return fmt.Errorf("%w: label longer than %d bytes", ErrInvalidPayload, MaxLabelLen)
	}
	return nil
}

// FromParts rebuilds a stamped command from its kind, time and payload. It
// is the inverse of Kind, Time and Payload and is used by decoders.
func FromParts(kind Kind, t float64, p Payload) (Command, error) {
	if !kind.Known() {
		return Command{}, fmt.Errorf("%w: %d", ErrUnknownKind, uint16(kind))
	}
	if !finite(t) {
		return Command{}, ErrInvalidTime
	}

	var (
		c   Command
		err error
	)
	switch kind.Shape() {
	case ShapeMarker:
		c, err = NewMarker(kind)
	case ShapeBoolean:
		c, err = NewBoolean(kind, p.ToState)
	case ShapeIndexed:
		c, err = NewIndexed(kind, p.Index, p.ToState)
	case ShapeContinuous:
		c, err = NewContinuous(kind, t, p.Increase, p.Target)
	case ShapePaused:
		c, err = NewPaused(p.Duration)
	case ShapeCamera:
		c, err = NewCamera(p.Label)
	case ShapeSave:
		c, err = NewSave(p.Label)
	}
	if err != nil {
		return Command{}, err
	}
	return c.Stamp(t), nil
}

// Must panics if err is non-nil. Intended for literals in tests and
// scripted sessions.
func Must(c Command, err error) Command {
	if err != nil {
		panic(err)
	}
	return c
}

// Stamp returns a copy of c with its time set to t.
func (c Command) Stamp(t float64) Command {
	c.time = t
	c.stamped = true
	return c
}

// Kind returns the command kind.
func (c Command) Kind() Kind { return c.kind }

// Shape returns the payload shape of the command's kind.
func (c Command) Shape() Shape { return c.kind.Shape() }

// Time returns the simulated time of the command in seconds.
func (c Command) Time() float64 { return c.time }

// Stamped reports whether a time has been assigned.
func (c Command) Stamped() bool { return c.stamped }

// ToState returns the target state of boolean and indexed commands.
func (c Command) ToState() bool { return c.toState }

// Index returns the control selector of indexed commands.
func (c Command) Index() int { return c.index }

// Increase returns the direction of a continuous change.
func (c Command) Increase() bool { return c.increase }

// Target returns the final value of a continuous change, if one was set.
func (c Command) Target() (float64, bool) { return c.target, c.hasTarget }

// Duration returns the wall-clock length of a pause in seconds.
func (c Command) Duration() float64 { return c.duration }

// Label returns the camera view or save stem.
func (c Command) Label() string { return c.label }

// Payload returns the shape-specific fields of c.
func (c Command) Payload() Payload {
	p := Payload{
		ToState:  c.toState,
		Index:    c.index,
		Increase: c.increase,
		Duration: c.duration,
		Label:    c.label,
	}
	if c.hasTarget {
		v := c.target
		p.Target = &v
	}
	return p
}

// Validate reports whether c could have been produced by a constructor.
func (c Command) Validate() error {
	if !c.kind.Known() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint16(c.kind))
	}
	if !finite(c.time) {
		return ErrInvalidTime
	}
	if c.Shape() == ShapePaused && (!finite(c.duration) || c.duration < 0) {
		return fmt.Errorf("%w: pause duration %v", ErrInvalidPayload, c.duration)
	}
	if c.hasTarget && !finite(c.target) {
		return fmt.Errorf("%w: target must be finite", ErrInvalidPayload)
	}
	if err := checkLabel(c.label); err != nil {
		return err
	}
	return nil
}

func checkShape(kind Kind, want Shape) error {
	if !kind.Known() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint16(kind))
	}
	if got := kind.Shape(); got != want {
		return fmt.Errorf("%w: %s is %s, not %s", ErrShapeMismatch, kind, got, want)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
