package vfx

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-skin/pkg/attachment"
)

const degRad = math32.Pi / 180

// Swirl twists vertices around a point. A vertex inside Radius is rotated
// about the center by an angle interpolated from 0 at the edge to Angle at
// the center; vertices at or beyond Radius are untouched.
type Swirl struct {
	// CenterX and CenterY are relative to the skeleton position.
	CenterX, CenterY float32
	Radius           float32
	Angle            float32 // radians
	Interpolation    Interpolation

	worldX, worldY float32
}

// NewSwirl creates a swirl with the default Pow2Out falloff.
func NewSwirl(radius float32) *Swirl {
	return &Swirl{Radius: radius, Interpolation: Pow2Out}
}

// SetAngle sets the center angle in degrees.
func (s *Swirl) SetAngle(degrees float32) {
	s.Angle = degrees * degRad
}

// Begin caches the world-space center for this draw.
func (s *Swirl) Begin(sk attachment.Skeleton) {
	x, y := sk.Position()
	s.worldX = x + s.CenterX
	s.worldY = y + s.CenterY
}

// End implements Effect.
func (s *Swirl) End() {}

// Transform implements PositionEffect.
func (s *Swirl) Transform(x, y *float32) {
	if s.Radius <= 0 {
		return
	}
	dx, dy := *x-s.worldX, *y-s.worldY
	dist := math32.Sqrt(dx*dx + dy*dy)
	if dist >= s.Radius {
		return
	}

	interp := s.Interpolation
	if interp == nil {
		interp = Pow2Out
	}
	theta := interp.Apply(0, s.Angle, (s.Radius-dist)/s.Radius)
	sin, cos := math32.Sincos(theta)
	*x = cos*dx - sin*dy + s.worldX
	*y = sin*dx + cos*dy + s.worldY
}
