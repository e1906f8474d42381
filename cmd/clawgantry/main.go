package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

type Options struct {
	Config   string `short:"c" long:"config" env:"CLAW_CONFIG" default:"clawgantry.json" description:"Configuration file (.json or .yaml)"`
	LogLevel string `long:"log-level" env:"CLAW_LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`

	Run     RunCommand     `command:"run" description:"Run the claw machine"`
	Setup   SetupCommand   `command:"setup" description:"Find the controller board and write a configuration"`
	Home    HomeCommand    `command:"home" description:"Home the gantry, optionally followed by one grab"`
	Monitor MonitorCommand `command:"monitor" description:"Plot raw and trusted range finder readings"`
	History HistoryCommand `command:"history" description:"Show recorded attempts"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	parser.LongDescription = "clawgantry - controller for a three-axis claw machine"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadConfig reads the configured file. Without a file the defaults are used,
// which is enough for simulation.
func loadConfig() (*gantry.Config, error) {
	if !gantry.ConfigExists(opts.Config) {
		cfg := gantry.DefaultConfig()
		return &cfg, nil
	}
	cfg, err := gantry.LoadConfigFrom(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(opts.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
