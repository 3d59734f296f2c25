// Package config handles configuration loading and validation for lightbox.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/lightbox/internal/core/fx"
)

// Config holds the application configuration.
type Config struct {
	Effects Effects `yaml:"effects"`
	Overlay Overlay `yaml:"overlay"`
	Dialog  Dialog  `yaml:"dialog"`
	Theme   Theme   `yaml:"theme"`
}

// Effects controls animation timing.
type Effects struct {
	Fade          time.Duration `yaml:"fade"`           // overlay and dialog fades
	Reposition    time.Duration `yaml:"reposition"`     // glide to the new center on resize
	FrameInterval time.Duration `yaml:"frame_interval"` // tick rate while effects run
	Easing        string        `yaml:"easing"`         // swing or linear
}

// Overlay controls the backdrop.
type Overlay struct {
	Opacity float64 `yaml:"opacity"`
}

// Dialog controls the content panel.
type Dialog struct {
	CloseLabel string `yaml:"close_label"`
	MaxWidth   int    `yaml:"max_width"`
}

// Theme controls markdown rendering.
type Theme struct {
	Markdown string `yaml:"markdown"` // glamour standard style name
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Effects: Effects{
			Fade:          400 * time.Millisecond,
			Reposition:    1200 * time.Millisecond,
			FrameInterval: 16 * time.Millisecond,
			Easing:        "swing",
		},
		Overlay: Overlay{
			Opacity: 0.8,
		},
		Dialog: Dialog{
			CloseLabel: "✕",
			MaxWidth:   72,
		},
		Theme: Theme{
			Markdown: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Effects.Fade == 0 {
		c.Effects.Fade = defaults.Effects.Fade
	}
	if c.Effects.Reposition == 0 {
		c.Effects.Reposition = defaults.Effects.Reposition
	}
	if c.Effects.FrameInterval == 0 {
		c.Effects.FrameInterval = defaults.Effects.FrameInterval
	}
	if c.Effects.Easing == "" {
		c.Effects.Easing = defaults.Effects.Easing
	}
	if c.Overlay.Opacity == 0 {
		c.Overlay.Opacity = defaults.Overlay.Opacity
	}
	if c.Dialog.CloseLabel == "" {
		c.Dialog.CloseLabel = defaults.Dialog.CloseLabel
	}
	if c.Dialog.MaxWidth == 0 {
		c.Dialog.MaxWidth = defaults.Dialog.MaxWidth
	}
	if c.Theme.Markdown == "" {
		c.Theme.Markdown = defaults.Theme.Markdown
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Effects.Fade < 0 {
		errs = errs.Append("effects.fade", fmt.Errorf("must not be negative"))
	}
	if c.Effects.Reposition < 0 {
		errs = errs.Append("effects.reposition", fmt.Errorf("must not be negative"))
	}
	if c.Effects.FrameInterval < time.Millisecond {
		errs = errs.Append("effects.frame_interval", fmt.Errorf("must be at least 1ms"))
	}
	if _, ok := fx.EasingByName(c.Effects.Easing); !ok {
		errs = errs.Append("effects.easing", fmt.Errorf("unknown easing %q (want swing or linear)", c.Effects.Easing))
	}
	if c.Overlay.Opacity <= 0 || c.Overlay.Opacity > 1 {
		errs = errs.Append("overlay.opacity", fmt.Errorf("must be in (0, 1], got %v", c.Overlay.Opacity))
	}
	if c.Dialog.MaxWidth < 10 {
		errs = errs.Append("dialog.max_width", fmt.Errorf("must be at least 10"))
	}

	return errs.ToError()
}

// Easing returns the configured easing function.
func (c *Config) Easing() fx.Easing {
	easing, ok := fx.EasingByName(c.Effects.Easing)
	if !ok {
		return fx.Swing
	}
	return easing
}
