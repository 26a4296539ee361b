package vfx

import (
	"errors"
	"fmt"
)

// ErrUnknownEffect is returned for an effect type that has no constructor.
var ErrUnknownEffect = errors.New("unknown effect")

// Params describes one effect in a configured chain.
type Params struct {
	Type          string  // "jitter" or "swirl"
	X, Y          float32 // jitter amplitude
	CenterX       float32
	CenterY       float32
	Radius        float32
	Angle         float32 // degrees
	Interpolation string  // swirl falloff, empty for pow2Out
}

// New builds an effect from its parameters.
func New(p Params) (Effect, error) {
	switch p.Type {
	case "jitter":
		return NewJitter(p.X, p.Y), nil

	case "swirl":
		s := NewSwirl(p.Radius)
		s.CenterX, s.CenterY = p.CenterX, p.CenterY
		s.SetAngle(p.Angle)
		if p.Interpolation != "" {
			f, err := LookupInterpolation(p.Interpolation)
			if err != nil {
				return nil, fmt.Errorf("swirl: %w", err)
			}
			s.Interpolation = f
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, p.Type)
	}
}

// NewPipelineFrom builds a pipeline from a list of parameters, in order.
func NewPipelineFrom(params []Params) (*Pipeline, error) {
	p := NewPipeline()
	for i, param := range params {
		e, err := New(param)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		p.Add(e)
	}
	return p, nil
}
