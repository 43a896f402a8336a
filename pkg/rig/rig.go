package rig

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gwillem/st4/pkg/st4"
)

// Rig is a connected ST4 together with its configured presets.
type Rig struct {
	*st4.Client
	presets Presets
}

// Open connects to the controller named in cfg.
func Open(cfg *Config, logger *zap.Logger) (*Rig, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("no port configured")
	}

	client, err := st4.Open(cfg.Port,
		st4.WithTimeout(cfg.Timeout()),
		st4.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return New(client, cfg.Presets), nil
}

// New wraps an existing client.
func New(client *st4.Client, presets Presets) *Rig {
	return &Rig{
		Client:  client,
		presets: presets,
	}
}

// Presets returns the configured presets.
func (r *Rig) Presets() Presets {
	return r.presets
}

// GoTo moves to the named preset.
func (r *Rig) GoTo(ctx context.Context, name string) error {
	preset, err := r.presets.Lookup(name)
	if err != nil {
		return err
	}

	pan, tilt := preset.Angles()
	if preset.Coordinated() {
		d, accel := preset.Durations()
		if err := r.GoCoordinated(ctx, d, accel, pan, tilt); err != nil {
			return fmt.Errorf("go to %s: %w", name, err)
		}
		return nil
	}

	if err := r.GoRapid(ctx, pan, tilt); err != nil {
		return fmt.Errorf("go to %s: %w", name, err)
	}
	return nil
}
