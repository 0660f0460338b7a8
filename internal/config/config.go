// Package config loads the editor settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"imgedit/pkg/colorutil"
)

// FileName is the settings file name inside the user config directory.
const FileName = "settings.yaml"

// Config holds the editor settings.
type Config struct {
	LogLevel string      `yaml:"log_level"`
	Bindings Bindings    `yaml:"bindings"`
	View     ViewConfig  `yaml:"view"`
	Brushes  BrushConfig `yaml:"brushes"`
	Pipeline PipeConfig  `yaml:"pipeline"`
	Watch    WatchConfig `yaml:"watch"`
}

// Bindings names the mouse button for each navigation gesture: left, middle or right.
type Bindings struct {
	RegionZoom string `yaml:"region_zoom"`
	ZoomOut    string `yaml:"zoom_out"`
	Pan        string `yaml:"pan"`
}

// ViewConfig controls zooming.
type ViewConfig struct {
	WheelFactor   float64 `yaml:"wheel_factor"`    // 0 or 1 disables wheel zoom
	MinDragPixels float64 `yaml:"min_drag_pixels"` // region-zoom drags must exceed this in both axes
}

// BrushConfig holds tool sizes and thresholds.
type BrushConfig struct {
	Paint         int     `yaml:"paint"`
	Erase         int     `yaml:"erase"`
	Blur          int     `yaml:"blur"`
	Spot          int     `yaml:"spot"`
	SpotThreshold float64 `yaml:"spot_threshold"`
	FillThreshold float64 `yaml:"fill_threshold"`
	PaintColor    string  `yaml:"paint_color"`
}

// PipeConfig controls the adjustment recompute.
type PipeConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// WatchConfig controls reload-on-change for the open file.
type WatchConfig struct {
	Enabled  bool `yaml:"enabled"`
	SettleMS int  `yaml:"settle_ms"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Bindings: Bindings{
			RegionZoom: "left",
			ZoomOut:    "right",
			Pan:        "middle",
		},
		View: ViewConfig{
			WheelFactor:   1.25,
			MinDragPixels: 3,
		},
		Brushes: BrushConfig{
			Paint:         43,
			Erase:         43,
			Blur:          43,
			Spot:          10,
			SpotThreshold: 10,
			FillThreshold: 10,
			PaintColor:    "#000000",
		},
		Pipeline: PipeConfig{DebounceMS: 500},
		Watch:    WatchConfig{Enabled: true, SettleMS: 250},
	}
}

// DefaultPath returns the settings path in the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "imgedit", FileName), nil
}

// Load reads a YAML settings file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	for name, b := range map[string]string{
		"region_zoom": c.Bindings.RegionZoom,
		"zoom_out":    c.Bindings.ZoomOut,
		"pan":         c.Bindings.Pan,
	} {
		switch b {
		case "left", "middle", "right", "none":
		default:
			return fmt.Errorf("bindings.%s: unknown button %q", name, b)
		}
	}
	if c.View.WheelFactor < 0 {
		return fmt.Errorf("view.wheel_factor must be >= 0")
	}
	if c.View.MinDragPixels < 0 {
		return fmt.Errorf("view.min_drag_pixels must be >= 0")
	}
	if c.Brushes.Paint <= 0 || c.Brushes.Erase <= 0 || c.Brushes.Blur <= 0 || c.Brushes.Spot <= 0 {
		return fmt.Errorf("brush sizes must be > 0")
	}
	if c.Brushes.SpotThreshold < 0 || c.Brushes.FillThreshold < 0 {
		return fmt.Errorf("brush thresholds must be >= 0")
	}
	if _, err := colorutil.ParseHex(c.Brushes.PaintColor); err != nil {
		return fmt.Errorf("brushes.paint_color: %w", err)
	}
	if c.Pipeline.DebounceMS <= 0 {
		return fmt.Errorf("pipeline.debounce_ms must be > 0")
	}
	if c.Watch.SettleMS < 0 {
		return fmt.Errorf("watch.settle_ms must be >= 0")
	}
	return nil
}

// Debounce returns the recompute delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Pipeline.DebounceMS) * time.Millisecond
}

// Settle returns how long the watcher waits for writes to finish.
func (c *Config) Settle() time.Duration {
	return time.Duration(c.Watch.SettleMS) * time.Millisecond
}
