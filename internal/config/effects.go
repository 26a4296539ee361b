package config

import (
	"fmt"

	"github.com/Faultbox/midgard-skin/pkg/vfx"
)

// Params converts the effect entry to constructor parameters.
func (e EffectConfig) Params() vfx.Params {
	return vfx.Params{
		Type:          e.Type,
		X:             e.X,
		Y:             e.Y,
		CenterX:       e.CenterX,
		CenterY:       e.CenterY,
		Radius:        e.Radius,
		Angle:         e.Angle,
		Interpolation: e.Interpolation,
	}
}

// Pipeline builds the configured effect chain. An empty list yields an
// empty pipeline.
func (c *Config) Pipeline() (*vfx.Pipeline, error) {
	params := make([]vfx.Params, len(c.Effects))
	for i, e := range c.Effects {
		params[i] = e.Params()
	}
	p, err := vfx.NewPipelineFrom(params)
	if err != nil {
		return nil, fmt.Errorf("effects: %w", err)
	}
	return p, nil
}
