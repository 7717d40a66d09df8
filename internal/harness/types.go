package harness

import "github.com/openrails/openrails-sub024/internal/engine"

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists the applied commands, one line each.
	Trace []string `json:"trace"`

	// Transitions lists the pause-state changes.
	Transitions []string `json:"transitions"`

	// Calls lists the receiver calls in order.
	Calls []string `json:"calls"`

	// Completed reports whether the replay finished, and CompletedAt the
	// tick it finished on.
	Completed   bool  `json:"completed"`
	CompletedAt int64 `json:"completed_at,omitempty"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	applied []engine.TraceEntry
	pauses  []engine.Transition
}

// NewResult creates a passing, empty result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []string{},
		Transitions: []string{},
		Calls:       []string{},
		Errors:      []string{},
	}
}

// AddError records a failed assertion.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
