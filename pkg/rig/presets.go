package rig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/st4/pkg/st4"
)

// ErrUnknownPreset is returned when a preset name is not configured.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named absolute position. A nil axis is left where it is.
// With TimeSec > 0 the preset is reached with a coordinated move, otherwise
// with a rapid move.
type Preset struct {
	Pan      *float64 `json:"pan,omitempty" yaml:"pan,omitempty"`
	Tilt     *float64 `json:"tilt,omitempty" yaml:"tilt,omitempty"`
	TimeSec  float64  `json:"time_sec,omitempty" yaml:"time_sec,omitempty"`
	AccelSec float64  `json:"accel_sec,omitempty" yaml:"accel_sec,omitempty"`
}

// Presets holds presets keyed by name.
type Presets map[string]Preset

// LoadPresets loads presets from a file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var p Presets
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse presets YAML: %w", err)
		}
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse presets JSON: %w", err)
	}

	return p, nil
}

// Angles returns the pan and tilt targets of the preset.
func (p Preset) Angles() (pan, tilt st4.Angle) {
	if p.Pan != nil {
		pan = st4.Deg(*p.Pan)
	}
	if p.Tilt != nil {
		tilt = st4.Deg(*p.Tilt)
	}
	return pan, tilt
}

// Coordinated reports whether the preset uses a timed G1 move.
func (p Preset) Coordinated() bool {
	return p.TimeSec > 0
}

// Durations returns the move and acceleration times of the preset.
func (p Preset) Durations() (d, accel time.Duration) {
	return secondsToDuration(p.TimeSec), secondsToDuration(p.AccelSec)
}

// Names returns the preset names sorted alphabetically.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the preset called name.
func (p Presets) Lookup(name string) (Preset, error) {
	preset, ok := p[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return preset, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
