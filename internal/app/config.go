package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-loadable session configuration.
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Governor GovernorConfig `yaml:"governor"`
	Log      LogConfig      `yaml:"log"`

	// TabID identifies this canvas in history commits.
	TabID string `yaml:"tab_id"`

	// FillTolerance is the perceptual color-match tolerance for flood fill
	// and magic wand, in [0, 1]. Zero means exact match.
	FillTolerance float64 `yaml:"fill_tolerance"`

	// HistoryLimit bounds the undo stack. Default 100.
	HistoryLimit int `yaml:"history_limit"`

	// KeymapFile optionally points at a JSON bindings document merged over
	// the defaults.
	KeymapFile string `yaml:"keymap_file"`

	// Shortcuts maps finger counts to Lua action scripts that override the
	// fixed multi-finger mapping.
	Shortcuts map[int]string `yaml:"shortcuts"`
}

// CanvasConfig sets the pixel buffer dimensions.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// GestureConfig tunes classifier thresholds. Zero values keep defaults.
type GestureConfig struct {
	LongPressMS    int     `yaml:"long_press_ms"`
	JitterPx       float64 `yaml:"jitter_px"`
	ZoomThreshold  float64 `yaml:"zoom_threshold"`
	PanThresholdPx float64 `yaml:"pan_threshold_px"`
	MaxZoom        float64 `yaml:"max_zoom"`
	MinZoom        float64 `yaml:"min_zoom"`
}

// GovernorConfig tunes frame budgets. Zero values keep defaults.
type GovernorConfig struct {
	WindowSize int `yaml:"window_size"`
	GeneralMS  int `yaml:"general_budget_ms"`
	CriticalMS int `yaml:"critical_budget_ms"`
}

// DefaultAppConfig returns the standard session configuration.
func DefaultAppConfig() Config {
	return Config{
		Canvas:       CanvasConfig{Width: 64, Height: 64},
		Gesture:      GestureConfig{MaxZoom: 32, MinZoom: 0.25},
		Log:          DefaultLogConfig(),
		TabID:        "default",
		HistoryLimit: 100,
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultAppConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("app: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("app: parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects unusable configurations.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("app: canvas dimensions must be positive, got %dx%d",
			c.Canvas.Width, c.Canvas.Height)
	}
	if c.FillTolerance < 0 || c.FillTolerance > 1 {
		return fmt.Errorf("app: fill tolerance %v outside [0, 1]", c.FillTolerance)
	}
	if c.Gesture.MinZoom > 0 && c.Gesture.MaxZoom > 0 && c.Gesture.MinZoom > c.Gesture.MaxZoom {
		return fmt.Errorf("app: min zoom %v above max zoom %v",
			c.Gesture.MinZoom, c.Gesture.MaxZoom)
	}
	return nil
}

// longPressDelay converts the configured milliseconds, zero keeping the
// classifier default.
func (g GestureConfig) longPressDelay() time.Duration {
	if g.LongPressMS <= 0 {
		return 0
	}
	return msDuration(g.LongPressMS)
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
