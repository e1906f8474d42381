package gantry

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "clawgantry.json"

// Mode selects the mission the machine runs.
type Mode string

const (
	ModeClaw      Mode = "claw"
	ModeWarehouse Mode = "warehouse"
)

// Config holds the machine tuning and hardware wiring.
type Config struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// Motion
	HomingPowerY    int     `json:"homing_power_y" yaml:"homing_power_y"`
	HomingPowerX    int     `json:"homing_power_x" yaml:"homing_power_x"`
	HomingTimeoutMs int     `json:"homing_timeout_ms" yaml:"homing_timeout_ms"` // 0 waits forever
	GripPower       int     `json:"grip_power" yaml:"grip_power"`
	GripHoldMs      int     `json:"grip_hold_ms" yaml:"grip_hold_ms"`
	DescentPower    int     `json:"descent_power" yaml:"descent_power"`
	ClawLength      int     `json:"claw_length" yaml:"claw_length"`
	DropCeiling     int     `json:"drop_ceiling" yaml:"drop_ceiling"`
	TicksPerUnit    float64 `json:"ticks_per_unit" yaml:"ticks_per_unit"`
	GrabTimeoutMs   int     `json:"grab_timeout_ms" yaml:"grab_timeout_ms"` // 0 waits forever
	PollIntervalMs  int     `json:"poll_interval_ms" yaml:"poll_interval_ms"`

	// Ranging
	RangingSamples   int `json:"ranging_samples" yaml:"ranging_samples"`
	RangingSpacingMs int `json:"ranging_spacing_ms" yaml:"ranging_spacing_ms"`
	RangingTolerance int `json:"ranging_tolerance" yaml:"ranging_tolerance"`
	RangingAgreement int `json:"ranging_agreement" yaml:"ranging_agreement"`
	MaxRangingRounds int `json:"max_ranging_rounds" yaml:"max_ranging_rounds"` // 0 retries forever

	// Operator control
	NullSpace  int `json:"null_space" yaml:"null_space"`
	StickMax   int `json:"stick_max" yaml:"stick_max"`
	TimeLimitS int `json:"time_limit_s" yaml:"time_limit_s"`
	RedrawMs   int `json:"redraw_ms" yaml:"redraw_ms"`
	ControlHz  int `json:"control_hz" yaml:"control_hz"`

	// Session
	WinThreshold int `json:"win_threshold" yaml:"win_threshold"`
	SettleMs     int `json:"settle_ms" yaml:"settle_ms"`
	FeedbackMs   int `json:"feedback_ms" yaml:"feedback_ms"`
	CreditPollMs int `json:"credit_poll_ms" yaml:"credit_poll_ms"`
	BlueCredits  int `json:"blue_credits" yaml:"blue_credits"`
	GreenCredits int `json:"green_credits" yaml:"green_credits"`

	Hardware HardwareConfig `json:"hardware" yaml:"hardware"`
}

// HardwareConfig describes how the devices are wired.
type HardwareConfig struct {
	BoardPort string `json:"board_port" yaml:"board_port"`
	BoardBaud int    `json:"board_baud" yaml:"board_baud"`

	// Servo gripper on a feetech bus. Empty port means the board's gripper motor.
	ServoPort   string `json:"servo_port,omitempty" yaml:"servo_port,omitempty"`
	ServoID     int    `json:"servo_id,omitempty" yaml:"servo_id,omitempty"`
	ServoOpen   int    `json:"servo_open,omitempty" yaml:"servo_open,omitempty"`
	ServoClosed int    `json:"servo_closed,omitempty" yaml:"servo_closed,omitempty"`

	// GPIO inputs on the host. Nil means the board's switches.
	GPIO *GPIOConfig `json:"gpio,omitempty" yaml:"gpio,omitempty"`

	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// GPIOConfig holds BCM pin numbers for the host-side inputs.
type GPIOConfig struct {
	HomeX     int  `json:"home_x" yaml:"home_x"`
	HomeY     int  `json:"home_y" yaml:"home_y"`
	Exit      int  `json:"exit" yaml:"exit"`
	ActiveLow bool `json:"active_low" yaml:"active_low"`
}

// DefaultTicksPerUnit converts centimetres of cable to encoder degrees on the
// 1.8 cm spool.
var DefaultTicksPerUnit = 360 / (1.8 * math.Pi * 2)

// DefaultConfig returns the tuning the machine was built with.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeClaw,
		HomingPowerY:     50,
		HomingPowerX:     100,
		GripPower:        40,
		GripHoldMs:       3000,
		DescentPower:     40,
		ClawLength:       4,
		DropCeiling:      90,
		TicksPerUnit:     DefaultTicksPerUnit,
		PollIntervalMs:   10,
		RangingSamples:   5,
		RangingSpacingMs: 50,
		RangingTolerance: 2,
		RangingAgreement: 2,
		NullSpace:        10,
		StickMax:         128,
		TimeLimitS:       20,
		RedrawMs:         1000,
		ControlHz:        50,
		WinThreshold:     250,
		SettleMs:         800,
		FeedbackMs:       5000,
		CreditPollMs:     50,
		BlueCredits:      2,
		GreenCredits:     1,
		Hardware: HardwareConfig{
			BoardBaud: 115200,
		},
	}
}

// Validate checks that the tuning is usable.
func (c *Config) Validate() error {
	if c.Mode != ModeClaw && c.Mode != ModeWarehouse {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	for name, p := range map[string]int{
		"homing_power_y": c.HomingPowerY,
		"homing_power_x": c.HomingPowerX,
		"grip_power":     c.GripPower,
		"descent_power":  c.DescentPower,
	} {
		if p <= 0 || p > MaxPower {
			return fmt.Errorf("%s must be in (0, %d], got %d", name, MaxPower, p)
		}
	}
	if c.RangingSamples < 2 {
		return fmt.Errorf("ranging_samples must be at least 2, got %d", c.RangingSamples)
	}
	if c.RangingAgreement < 1 || c.RangingAgreement > c.RangingSamples-1 {
		return fmt.Errorf("ranging_agreement must be in [1, %d], got %d", c.RangingSamples-1, c.RangingAgreement)
	}
	if c.RangingTolerance < 1 {
		return fmt.Errorf("ranging_tolerance must be at least 1, got %d", c.RangingTolerance)
	}
	if c.BlueCredits < 0 || c.GreenCredits < 0 {
		return fmt.Errorf("card credits must not be negative, got blue=%d green=%d", c.BlueCredits, c.GreenCredits)
	}
	if c.StickMax <= 0 || c.NullSpace < 0 || c.NullSpace >= c.StickMax {
		return fmt.Errorf("null_space %d must be below stick_max %d", c.NullSpace, c.StickMax)
	}
	if c.TimeLimitS <= 0 {
		return fmt.Errorf("time_limit_s must be positive, got %d", c.TimeLimitS)
	}
	if c.ControlHz <= 0 {
		return fmt.Errorf("control_hz must be positive, got %d", c.ControlHz)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs)
	}
	if c.TicksPerUnit <= 0 {
		return fmt.Errorf("ticks_per_unit must be positive, got %f", c.TicksPerUnit)
	}
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (c *Config) PollInterval() time.Duration   { return ms(c.PollIntervalMs) }
func (c *Config) HomingTimeout() time.Duration  { return ms(c.HomingTimeoutMs) }
func (c *Config) GrabTimeout() time.Duration    { return ms(c.GrabTimeoutMs) }
func (c *Config) GripHold() time.Duration       { return ms(c.GripHoldMs) }
func (c *Config) RangingSpacing() time.Duration { return ms(c.RangingSpacingMs) }
func (c *Config) Redraw() time.Duration         { return ms(c.RedrawMs) }
func (c *Config) Settle() time.Duration         { return ms(c.SettleMs) }
func (c *Config) Feedback() time.Duration       { return ms(c.FeedbackMs) }
func (c *Config) CreditPoll() time.Duration     { return ms(c.CreditPollMs) }

// TimeLimit is the length of the operator's control phase.
func (c *Config) TimeLimit() time.Duration { return time.Duration(c.TimeLimitS) * time.Second }

// ControlTick is the period of one manual control iteration.
func (c *Config) ControlTick() time.Duration { return time.Second / time.Duration(c.ControlHz) }

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a JSON or YAML file. Fields absent
// from the file keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
