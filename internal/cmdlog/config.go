package cmdlog

import "fmt"

// Default tuning, in seconds.
const (
	DefaultPauseMargin     = 0.5
	DefaultCompletionDelay = 2.0
	DefaultPreEndMargin    = 5.0
)

// Config holds the replay thresholds. All values are seconds; PauseMargin,
// CompletionDelay and PreEndMargin are in the simulated-clock domain.
type Config struct {
	// PauseMargin is how early a command may fire while the simulation is
	// paused. It covers a host that pauses one tick before a command is due.
	PauseMargin float64

	// CompletionDelay is the simulated time after the last applied command
	// at which replay is reported complete.
	CompletionDelay float64

	// PreEndMargin is how long before the end of the replay the pause state
	// becomes Due.
	PreEndMargin float64
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		PauseMargin:     DefaultPauseMargin,
		CompletionDelay: DefaultCompletionDelay,
		PreEndMargin:    DefaultPreEndMargin,
	}
}

// Validate rejects negative thresholds.
func (c Config) Validate() error {
	switch {
	case c.PauseMargin < 0:
		return fmt.Errorf("pause margin must not be negative: %v", c.PauseMargin)
	case c.CompletionDelay < 0:
		return fmt.Errorf("completion delay must not be negative: %v", c.CompletionDelay)
	case c.PreEndMargin < 0:
		return fmt.Errorf("pre-end margin must not be negative: %v", c.PreEndMargin)
	}
	return nil
}
