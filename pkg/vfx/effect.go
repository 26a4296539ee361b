// Package vfx implements vertex effects that perturb synthesized attachment
// geometry before it is drawn.
//
// Effects are applied by the renderer to a copy of an attachment's output
// buffer, never to the attachment's own buffer, so the synthesized geometry
// stays valid for collision and the next frame.
package vfx

import (
	"github.com/Faultbox/midgard-skin/pkg/attachment"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

// Effect is the part of the contract shared by every effect.
// Begin runs once before the vertices of a draw and End once after them.
type Effect interface {
	Begin(sk attachment.Skeleton)
	End()
}

// PositionEffect moves vertex positions only.
type PositionEffect interface {
	Effect
	Transform(x, y *float32)
}

// VertexEffect may change position, texture coordinates and colors.
type VertexEffect interface {
	Effect
	TransformVertex(v *Vertex)
}

// Vertex is the full per-vertex state seen by a VertexEffect.
type Vertex struct {
	X, Y  float32
	U, V  float32
	Light gfx.Color
	Dark  gfx.Color
}

// Buffer layouts understood by Pipeline.Apply.
const (
	StridePosition = 2 // x, y (bounding boxes)
	StrideColored  = attachment.VertexSize
)

// Pipeline applies effects in list order.
type Pipeline struct {
	effects []Effect
}

// NewPipeline creates a pipeline running effects in the given order.
func NewPipeline(effects ...Effect) *Pipeline {
	return &Pipeline{effects: effects}
}

// Add appends an effect to the end of the chain.
func (p *Pipeline) Add(e Effect) {
	p.effects = append(p.effects, e)
}

// Effects returns the chain. The slice must not be modified.
func (p *Pipeline) Effects() []Effect {
	return p.effects
}

// Len returns the number of effects.
func (p *Pipeline) Len() int {
	return len(p.effects)
}

// Begin calls Begin on every effect.
func (p *Pipeline) Begin(sk attachment.Skeleton) {
	for _, e := range p.effects {
		e.Begin(sk)
	}
}

// End calls End on every effect.
func (p *Pipeline) End() {
	for _, e := range p.effects {
		e.End()
	}
}

// Apply runs every effect over each vertex of buf. stride is the number of
// floats per vertex: StridePosition for plain (x, y) pairs, or at least
// StrideColored for (x, y, color, u, v) groups. Effects that are neither
// position nor vertex effects are skipped.
func (p *Pipeline) Apply(buf []float32, stride int) {
	if len(p.effects) == 0 || stride < StridePosition {
		return
	}
	colored := stride >= StrideColored
	for i := 0; i+stride <= len(buf); i += stride {
		for _, e := range p.effects {
			switch e := e.(type) {
			case VertexEffect:
				applyVertex(e, buf[i:i+stride], colored)
			case PositionEffect:
				e.Transform(&buf[i], &buf[i+1])
			}
		}
	}
}

func applyVertex(e VertexEffect, v []float32, colored bool) {
	vert := Vertex{X: v[0], Y: v[1], Light: gfx.White, Dark: gfx.Black}
	if colored {
		vert.Light = gfx.UnpackARGB(v[2])
		vert.U, vert.V = v[3], v[4]
	}
	light := vert.Light

	e.TransformVertex(&vert)

	v[0], v[1] = vert.X, vert.Y
	if colored {
		v[3], v[4] = vert.U, vert.V
		// Repacking an untouched color could round a channel down.
		if vert.Light != light {
			v[2] = vert.Light.Packed()
		}
	}
}
