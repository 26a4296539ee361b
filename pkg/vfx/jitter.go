package vfx

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-skin/pkg/attachment"
)

// Jitter shakes every vertex by a random offset drawn per axis from a
// triangular distribution over [-X, Y] peaking at the midpoint.
// Output is not reproducible across runs.
type Jitter struct {
	X, Y float32
}

// NewJitter creates a jitter effect.
func NewJitter(x, y float32) *Jitter {
	return &Jitter{X: x, Y: y}
}

// Begin implements Effect.
func (j *Jitter) Begin(attachment.Skeleton) {}

// End implements Effect.
func (j *Jitter) End() {}

// Transform implements PositionEffect.
func (j *Jitter) Transform(x, y *float32) {
	*x += randomTriangular(-j.X, j.Y)
	*y += randomTriangular(-j.X, j.Y)
}

// randomTriangular samples a triangular distribution on [min, max] with the
// mode halfway between.
func randomTriangular(min, max float32) float32 {
	d := max - min
	if d == 0 {
		return min
	}
	mode := (min + max) / 2
	u := rand.Float32()
	if u <= (mode-min)/d {
		return min + math32.Sqrt(u*d*(mode-min))
	}
	return max - math32.Sqrt((1-u)*d*(max-mode))
}
