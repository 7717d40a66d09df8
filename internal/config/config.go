// Package config loads cmdlog settings with viper and validates them
// against an embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
)

//go:embed schema.cue
var schemaCUE string

// EnvPrefix prefixes environment overrides, e.g. CMDLOG_REPLAY_TICK.
const EnvPrefix = "CMDLOG"

// Settings is the decoded configuration.
type Settings struct {
	LogLevel string         `json:"logLevel" mapstructure:"logLevel"`
	LogFile  string         `json:"logFile" mapstructure:"logFile"`
	Replay   ReplaySettings `json:"replay" mapstructure:"replay"`
	Store    StoreSettings  `json:"store" mapstructure:"store"`
}

// ReplaySettings holds replay tuning.
type ReplaySettings struct {
	PauseMargin     float64 `json:"pauseMargin" mapstructure:"pauseMargin"`
	CompletionDelay float64 `json:"completionDelay" mapstructure:"completionDelay"`
	PreEndMargin    float64 `json:"preEndMargin" mapstructure:"preEndMargin"`
	Tick            float64 `json:"tick" mapstructure:"tick"`
	AutoPause       bool    `json:"autoPause" mapstructure:"autoPause"`
	MaxTicks        int64   `json:"maxTicks" mapstructure:"maxTicks"`
}

// StoreSettings holds the session archive location.
type StoreSettings struct {
	Path string `json:"path" mapstructure:"path"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")

	viper.SetDefault("replay.pauseMargin", cmdlog.DefaultPauseMargin)
	viper.SetDefault("replay.completionDelay", cmdlog.DefaultCompletionDelay)
	viper.SetDefault("replay.preEndMargin", cmdlog.DefaultPreEndMargin)
	viper.SetDefault("replay.tick", 0.05)
	viper.SetDefault("replay.autoPause", true)
	viper.SetDefault("replay.maxTicks", 1_000_000)

	viper.SetDefault("store.path", "./cmdlog.db")
}

// Load reads configuration from path, if given, on top of the defaults and
// CMDLOG_* environment overrides, then validates it.
func Load(path string) (Settings, error) {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := Validate(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks s against the embedded schema.
func Validate(s Settings) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	v := ctx.Encode(s)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ReplayConfig returns the thresholds for cmdlog.
func (s Settings) ReplayConfig() cmdlog.Config {
	return cmdlog.Config{
		PauseMargin:     s.Replay.PauseMargin,
		CompletionDelay: s.Replay.CompletionDelay,
		PreEndMargin:    s.Replay.PreEndMargin,
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
