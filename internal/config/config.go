// Package config holds the player's settings: built-in defaults, an optional
// YAML file, and validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/ggplay"
	"github.com/gogpu/ggplay/backend"
	"github.com/gogpu/ggplay/internal/player"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the full player configuration.
type Config struct {
	// Playback
	FPS      int     `yaml:"fps"`
	Filter   string  `yaml:"filter"`
	Strength float32 `yaml:"strength"`

	// Controls
	StrengthStep float32       `yaml:"strength_step"`
	MinStrength  float32       `yaml:"min_strength"`
	PollInterval time.Duration `yaml:"poll_interval"`
	IdleWait     time.Duration `yaml:"idle_wait"`

	// Engine and decoder
	Engine  string `yaml:"engine"`
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		FPS:      player.DefaultFPS,
		Filter:   ggplay.DefaultFilter.String(),
		Strength: ggplay.DefaultStrength,

		StrengthStep: player.DefaultStrengthStep,
		MinStrength:  player.DefaultMinStrength,
		PollInterval: player.DefaultPollInterval,
		IdleWait:     player.DefaultIdleWait,

		Engine: backend.BackendGPU,

		LogLevel: "info",
	}
}

// LoadFromFile overlays the YAML file at path on the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.FPS <= 0 || c.FPS > player.MaxFPS {
		return fmt.Errorf("%w: fps %d outside 1..%d", ErrInvalid, c.FPS, player.MaxFPS)
	}
	if _, err := ggplay.ParseFilterKind(c.Filter); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Strength <= 0 {
		return fmt.Errorf("%w: strength %g must be positive", ErrInvalid, c.Strength)
	}
	if c.StrengthStep <= 0 {
		return fmt.Errorf("%w: strength_step %g must be positive", ErrInvalid, c.StrengthStep)
	}
	if c.MinStrength <= 0 {
		return fmt.Errorf("%w: min_strength %g must be positive", ErrInvalid, c.MinStrength)
	}
	if c.PollInterval < 0 || c.IdleWait < 0 {
		return fmt.Errorf("%w: negative poll interval or idle wait", ErrInvalid)
	}
	switch c.Engine {
	case backend.BackendGPU, backend.BackendCPU:
	default:
		return fmt.Errorf("%w: engine %q (want %s or %s)", ErrInvalid, c.Engine, backend.BackendGPU, backend.BackendCPU)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// PlayerOptions converts c into scheduler options. c must be valid.
func (c Config) PlayerOptions() player.Options {
	filter, _ := ggplay.ParseFilterKind(c.Filter)
	return player.Options{
		FPS:          c.FPS,
		Filter:       filter,
		Strength:     c.Strength,
		StrengthStep: c.StrengthStep,
		MinStrength:  c.MinStrength,
		PollInterval: c.PollInterval,
		IdleWait:     c.IdleWait,
	}
}
