package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/gwillem/st4/pkg/rig"
)

type Options struct {
	Config  string        `short:"c" long:"config" description:"Config file (.json or .yaml), default st4.json"`
	Port    string        `short:"p" long:"port" description:"Serial port, overrides the config file"`
	Timeout time.Duration `short:"t" long:"timeout" description:"Read timeout, overrides the config file"`
	Presets string        `long:"presets" description:"Extra presets file (.json or .yaml)"`
	Verbose bool          `short:"v" long:"verbose" description:"Log every command sent"`

	Setup       SetupCommand       `command:"setup" description:"Find the ST4 and save its port"`
	Version     VersionCommand     `command:"version" description:"Print the firmware version (G700)"`
	Rapid       RapidCommand       `command:"rapid" description:"Rapid absolute move (G0)"`
	Move        MoveCommand        `command:"move" description:"Coordinated timed absolute move (G1)"`
	Jog         JogCommand         `command:"jog" description:"Relative move (G2)"`
	SetPosition SetPositionCommand `command:"set-position" description:"Redefine the current position of a motor (G200)"`
	Zero        ZeroCommand        `command:"zero" description:"Make the current position of all motors zero (G201)"`
	GoTo        GoToCommand        `command:"goto" description:"Move to a named preset"`
	ListPresets PresetsCommand     `command:"presets" description:"List configured presets"`
	Control     ControlCommand     `command:"control" description:"Jog interactively with the arrow keys"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "st4 - command line control for the eMotimo Spectrum ST4"

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

// loadConfig reads the config file and applies the global overrides. A
// missing config file is fine when --port is given.
func loadConfig() (*rig.Config, error) {
	cfg, err := rig.LoadConfigFrom(configPath())
	if err != nil {
		if !os.IsNotExist(err) || opts.Port == "" {
			return nil, fmt.Errorf("load config %s: %w (run 'st4 setup' or pass --port)", configPath(), err)
		}
		cfg = &rig.Config{}
	}

	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Timeout > 0 {
		cfg.TimeoutMs = int(opts.Timeout / time.Millisecond)
	}

	if opts.Presets != "" {
		extra, err := rig.LoadPresets(opts.Presets)
		if err != nil {
			return nil, err
		}
		if cfg.Presets == nil {
			cfg.Presets = make(rig.Presets, len(extra))
		}
		for name, p := range extra {
			cfg.Presets[name] = p
		}
	}

	return cfg, nil
}

func configPath() string {
	if opts.Config == "" {
		return rig.DefaultConfigFile
	}
	return opts.Config
}

func newLogger() *zap.Logger {
	if !opts.Verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openRig loads the config and connects to the controller.
func openRig() (*rig.Rig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return rig.Open(cfg, newLogger())
}
