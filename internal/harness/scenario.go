package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
)

// Scenario is a scripted replay with expectations about what it does.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Config overrides the replay thresholds.
	Config *ConfigOverrides `yaml:"config,omitempty"`

	// AutoPause controls whether the engine pauses when the end of the
	// replay is near. Defaults to true.
	AutoPause *bool `yaml:"auto_pause,omitempty"`

	// Bind lists the kinds that get a recording receiver. Omitted means
	// every kind; an empty list leaves every kind unbound.
	Bind []string `yaml:"bind"`

	// Commands is the session to replay.
	Commands []Step `yaml:"commands"`

	// Ticks describes the host clock.
	Ticks Ticks `yaml:"ticks"`

	// Assertions are checked after the run.
	Assertions []Assertion `yaml:"assertions"`
}

// ConfigOverrides replaces individual replay thresholds.
type ConfigOverrides struct {
	PauseMargin     *float64 `yaml:"pause_margin,omitempty"`
	CompletionDelay *float64 `yaml:"completion_delay,omitempty"`
	PreEndMargin    *float64 `yaml:"pre_end_margin,omitempty"`
}

// Apply returns cfg with the overrides set.
func (o *ConfigOverrides) Apply(cfg cmdlog.Config) cmdlog.Config {
	if o == nil {
		return cfg
	}
	if o.PauseMargin != nil {
		cfg.PauseMargin = *o.PauseMargin
	}
	if o.CompletionDelay != nil {
		cfg.CompletionDelay = *o.CompletionDelay
	}
	if o.PreEndMargin != nil {
		cfg.PreEndMargin = *o.PreEndMargin
	}
	return cfg
}

// Ticks describes how the host drives the clock. Tick numbers start at 1.
type Ticks struct {
	// DT is the simulated seconds per tick.
	DT float64 `yaml:"dt"`

	// Count is the number of ticks to run. Zero runs until the replay
	// completes, up to Limit.
	Count int `yaml:"count,omitempty"`

	// Limit bounds a run with no Count. Defaults to DefaultTickLimit.
	Limit int `yaml:"limit,omitempty"`

	// WallPerTick is the real seconds per tick. Defaults to DT.
	WallPerTick float64 `yaml:"wall_per_tick,omitempty"`

	// Paused lists tick ranges during which the host pauses the clock.
	Paused []Range `yaml:"paused,omitempty"`

	// SuspendCamera lists tick ranges during which camera commands are
	// held back.
	SuspendCamera []Range `yaml:"suspend_camera,omitempty"`
}

// DefaultTickLimit bounds scenarios that run until completion.
const DefaultTickLimit = 10_000

// Range is an inclusive span of ticks.
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Assertion checks one property of a finished run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is the command kind (applied_count, not_applied).
	Kind string `yaml:"kind,omitempty"`

	// Kinds is the expected order of first application (applied_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the expected number of applications (applied_count).
	Count int `yaml:"count,omitempty"`

	// After is the simulated time the pause must become due after
	// (pause_due_after).
	After *float64 `yaml:"after,omitempty"`

	// Call is a receiver call line such as "horn set on" (calls_contain).
	Call string `yaml:"call,omitempty"`

	// Expect is the expected outcome (completes). Defaults to true.
	Expect *bool `yaml:"expect,omitempty"`
}

// Assertion types.
const (
	AssertAppliedOrder  = "applied_order"
	AssertAppliedCount  = "applied_count"
	AssertNotApplied    = "not_applied"
	AssertPauseDueAfter = "pause_due_after"
	AssertCompletes     = "completes"
	AssertCallsContain  = "calls_contain"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly in dir, sorted by
// name. A non-empty filter is a glob matched against the file name without
// its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(entry.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if !(s.Ticks.DT > 0) {
		return fmt.Errorf("ticks.dt must be positive")
	}
	if s.Ticks.Count < 0 || s.Ticks.Limit < 0 || s.Ticks.WallPerTick < 0 {
		return fmt.Errorf("ticks: count, limit and wall_per_tick must not be negative")
	}

	if err := s.Config.Apply(cmdlog.DefaultConfig()).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, name := range s.Bind {
		if _, err := command.ParseKind(name); err != nil {
			return fmt.Errorf("bind[%d]: %w", i, err)
		}
	}
	if _, err := BuildCommands(s.Commands); err != nil {
		return err
	}

	for i, r := range s.Ticks.Paused {
		if r.From < 1 || r.To < r.From {
			return fmt.Errorf("ticks.paused[%d]: invalid range %d..%d", i, r.From, r.To)
		}
	}
	for i, r := range s.Ticks.SuspendCamera {
		if r.From < 1 || r.To < r.From {
			return fmt.Errorf("ticks.suspend_camera[%d]: invalid range %d..%d", i, r.From, r.To)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	checkKind := func(name string) error {
		if _, err := command.ParseKind(name); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		return nil
	}

	switch a.Type {
	case AssertAppliedOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for applied_order", index)
		}
		for _, k := range a.Kinds {
			if err := checkKind(k); err != nil {
				return err
			}
		}
	case AssertAppliedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for applied_count", index)
		}
		return checkKind(a.Kind)
	case AssertNotApplied:
		return checkKind(a.Kind)
	case AssertPauseDueAfter:
		if a.After == nil {
			return fmt.Errorf("assertions[%d]: after is required for pause_due_after", index)
		}
	case AssertCallsContain:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for calls_contain", index)
		}
	case AssertCompletes:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
