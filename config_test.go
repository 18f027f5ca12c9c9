package cellgrid

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.WindowSize != 900 || c.CellNumber != 1000 || c.ColorNumber != 3 {
		t.Errorf("DefaultConfig() = %d/%d/%d, want 900/1000/3", c.WindowSize, c.CellNumber, c.ColorNumber)
	}
	if c.CellsPerGroup != 50 {
		t.Errorf("CellsPerGroup = %d, want 50", c.CellsPerGroup)
	}
	if c.FrameInterval != time.Second/60 {
		t.Errorf("FrameInterval = %v, want 1/60s", c.FrameInterval)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigBuilders(t *testing.T) {
	base := DefaultConfig()
	c := base.WithWindowSize(400).WithCells(64).WithColors(5).WithRule("life").WithSeed(7)
	if c.WindowSize != 400 || c.CellNumber != 64 || c.ColorNumber != 5 || c.Rule != "life" || c.Seed != 7 {
		t.Errorf("builders produced %+v", c)
	}
	if base.WindowSize != 900 {
		t.Error("builders mutated the receiver")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.WindowSize = 0 }},
		{"zero cells", func(c *Config) { c.CellNumber = 0 }},
		{"zero colors", func(c *Config) { c.ColorNumber = 0 }},
		{"zero group", func(c *Config) { c.CellsPerGroup = 0 }},
		{"empty rule", func(c *Config) { c.Rule = "" }},
		{"negative interval", func(c *Config) { c.FrameInterval = -time.Millisecond }},
		{"headless without steps", func(c *Config) { c.Headless = true; c.Steps = 0 }},
		{"headless without output", func(c *Config) { c.Headless = true; c.Output = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigValidateZeroCellsWrapsSentinel(t *testing.T) {
	c := DefaultConfig().WithCells(0)
	if err := c.Validate(); !errors.Is(err, ErrZeroCells) {
		t.Errorf("Validate() = %v, want ErrZeroCells in chain", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) error = nil, want error")
	}
}
