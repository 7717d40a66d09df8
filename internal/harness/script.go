package harness

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/engine"
)

// Step is one scripted command. Only the fields of the kind's payload shape
// are read.
type Step struct {
	// At is the simulated time the command is recorded at.
	At float64 `yaml:"at"`

	// Kind is the stable kind name, e.g. "horn" or "train-brake".
	Kind string `yaml:"kind"`

	// On is the target state of two-state and indexed controls.
	On bool `yaml:"on,omitempty"`

	// Index addresses indexed controls.
	Index int `yaml:"index,omitempty"`

	// Increase, Target and Start describe a continuous change. Start is
	// when the change began and defaults to At.
	Increase bool     `yaml:"increase,omitempty"`
	Target   *float64 `yaml:"target,omitempty"`
	Start    *float64 `yaml:"start,omitempty"`

	// Duration is the real-time length of a paused command, in seconds.
	Duration float64 `yaml:"duration,omitempty"`

	// View names the camera view of a camera-view command.
	View string `yaml:"view,omitempty"`

	// Stem is the file name stem of a save command.
	Stem string `yaml:"stem,omitempty"`
}

// Script is a recorded session written by hand.
type Script struct {
	Name     string `yaml:"name,omitempty"`
	Commands []Step `yaml:"commands"`
}

// LoadScript reads a YAML command script. Unknown fields are rejected.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses a YAML command script and checks every step builds.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(s.Commands) == 0 {
		return nil, fmt.Errorf("invalid script: commands list is required and must be non-empty")
	}
	if _, err := BuildCommands(s.Commands); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// Build returns the command for s as it is handed to the log when
// recording: unstamped, except continuous commands, which carry their
// start time.
func (s Step) Build() (command.Command, error) {
	kind, err := command.ParseKind(s.Kind)
	if err != nil {
		return command.Command{}, err
	}

	switch kind.Shape() {
	case command.ShapeMarker:
		return command.NewMarker(kind)
	case command.ShapeBoolean:
		return command.NewBoolean(kind, s.On)
	case command.ShapeIndexed:
		return command.NewIndexed(kind, s.Index, s.On)
	case command.ShapeContinuous:
		start := s.At
		if s.Start != nil {
			start = *s.Start
		}
		return command.NewContinuous(kind, start, s.Increase, s.Target)
	case command.ShapePaused:
		return command.NewPaused(s.Duration)
	case command.ShapeCamera:
		return command.NewCamera(s.View)
	case command.ShapeSave:
		return command.NewSave(s.Stem)
	}
	return command.Command{}, fmt.Errorf("%w: %q", command.ErrUnknownKind, s.Kind)
}

// Command returns the stamped command s describes.
func (s Step) Command() (command.Command, error) {
	c, err := s.Build()
	if err != nil {
		return command.Command{}, err
	}
	if !c.Stamped() {
		c = c.Stamp(s.At)
	}
	return c, nil
}

// BuildCommands returns the stamped commands for steps, in script order.
func BuildCommands(steps []Step) ([]command.Command, error) {
	out := make([]command.Command, 0, len(steps))
	for i, step := range steps {
		c, err := step.Command()
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Record plays steps into a fresh log the way a live session would: the
// simulated clock moves to each step's time and the command is recorded
// there. Steps are taken in time order; ties keep script order.
func Record(steps []Step, opts ...cmdlog.Option) (*cmdlog.Log, error) {
	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At < ordered[j].At })

	clock := engine.NewSimClock()
	log := cmdlog.New(clock, opts...)
	for i, step := range ordered {
		c, err := step.Build()
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		clock.AdvanceTo(step.At)
		log.Record(c)
	}
	return log, nil
}
