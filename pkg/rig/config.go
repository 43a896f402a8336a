package rig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is used when no config path is given.
const DefaultConfigFile = "st4.json"

// DefaultTimeoutMs is the read timeout used when the config does not set one.
const DefaultTimeoutMs = 1000

// Config holds the rig configuration
type Config struct {
	Port      string  `json:"port" yaml:"port"`
	TimeoutMs int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Presets   Presets `json:"presets,omitempty" yaml:"presets,omitempty"`
}

// Timeout returns the configured read timeout, or the default.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// LoadConfigFrom loads configuration from a specific file. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
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

// ConfigExists returns true if the config file at path exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
