package gantry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ControlTick() != 20*time.Millisecond {
		t.Errorf("ControlTick = %v, want 20ms", cfg.ControlTick())
	}
	if cfg.TimeLimit() != 20*time.Second {
		t.Errorf("TimeLimit = %v, want 20s", cfg.TimeLimit())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errSub string
	}{
		{"mode", func(c *Config) { c.Mode = "arcade" }, "unknown mode"},
		{"grip power", func(c *Config) { c.GripPower = 120 }, "grip_power"},
		{"samples", func(c *Config) { c.RangingSamples = 1 }, "ranging_samples"},
		{"agreement", func(c *Config) { c.RangingAgreement = 5 }, "ranging_agreement"},
		{"tolerance", func(c *Config) { c.RangingTolerance = 0 }, "ranging_tolerance"},
		{"negative tolerance", func(c *Config) { c.RangingTolerance = -2 }, "ranging_tolerance"},
		{"blue credits", func(c *Config) { c.BlueCredits = -1 }, "card credits"},
		{"green credits", func(c *Config) { c.GreenCredits = -3 }, "card credits"},
		{"null space", func(c *Config) { c.NullSpace = 128 }, "null_space"},
		{"time limit", func(c *Config) { c.TimeLimitS = 0 }, "time_limit_s"},
		{"hz", func(c *Config) { c.ControlHz = 0 }, "control_hz"},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.errSub) {
			t.Errorf("%s: Validate() = %v, want error containing %q", tt.name, err, tt.errSub)
		}
	}
}

func TestLoadConfigFrom_PartialJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clawgantry.json")
	if err := os.WriteFile(path, []byte(`{"mode": "warehouse", "time_limit_s": 30}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeWarehouse || cfg.TimeLimitS != 30 {
		t.Errorf("loaded mode=%s limit=%d", cfg.Mode, cfg.TimeLimitS)
	}
	if cfg.WinThreshold != 250 || cfg.DropCeiling != 90 {
		t.Errorf("defaults lost: win=%d ceiling=%d", cfg.WinThreshold, cfg.DropCeiling)
	}
}

func TestLoadConfigFrom_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clawgantry.yaml")
	data := "ranging_agreement: 3\nhardware:\n  board_port: /dev/ttyACM0\n  gpio:\n    home_x: 17\n    home_y: 27\n    exit: 22\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RangingAgreement != 3 {
		t.Errorf("ranging_agreement = %d, want 3", cfg.RangingAgreement)
	}
	if cfg.Hardware.BoardPort != "/dev/ttyACM0" {
		t.Errorf("board_port = %q", cfg.Hardware.BoardPort)
	}
	if cfg.Hardware.GPIO == nil || cfg.Hardware.GPIO.Exit != 22 {
		t.Errorf("gpio = %+v", cfg.Hardware.GPIO)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"control_hz": -1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFrom(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestConfig_SaveTo(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.json", "c.yml"} {
		path := filepath.Join(dir, name)
		cfg := DefaultConfig()
		cfg.Hardware.ServoPort = "/dev/ttyUSB0"
		cfg.Hardware.ServoID = 6
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s): %v", name, err)
		}
		if !ConfigExists(path) {
			t.Fatalf("%s not written", name)
		}
		got, err := LoadConfigFrom(path)
		if err != nil {
			t.Fatalf("LoadConfigFrom(%s): %v", name, err)
		}
		if got.Hardware.ServoID != 6 || got.Hardware.ServoPort != "/dev/ttyUSB0" {
			t.Errorf("%s: hardware = %+v", name, got.Hardware)
		}
	}
}
