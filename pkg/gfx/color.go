// Package gfx provides the color types shared by attachments, effects and renderers.
package gfx

import "math"

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Predefined colors.
var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Transparent = Color{0, 0, 0, 0}
)

// RGBA creates a color from 8-bit RGBA values (0-255).
func RGBA(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// Mul returns the channel-wise product of c and other.
func (c Color) Mul(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A * other.A}
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Packed returns the color packed as ARGB float bits with straight alpha.
func (c Color) Packed() float32 {
	return PackARGB(c.R*255, c.G*255, c.B*255, c.A*255)
}

// PackARGB packs channels already scaled to 0-255 into a single float whose
// bit pattern is 0xAARRGGBB. Channels are truncated like an int cast and
// clamped to the byte range.
func PackARGB(r, g, b, a float32) float32 {
	bits := uint32(toByte(a))<<24 | uint32(toByte(r))<<16 | uint32(toByte(g))<<8 | uint32(toByte(b))
	return math.Float32frombits(bits)
}

// PackedBits returns the raw 0xAARRGGBB pattern of a packed color.
func PackedBits(packed float32) uint32 {
	return math.Float32bits(packed)
}

// UnpackARGB decodes a packed color back into float components.
func UnpackARGB(packed float32) Color {
	bits := math.Float32bits(packed)
	return RGBA(uint8(bits>>16), uint8(bits>>8), uint8(bits), uint8(bits>>24))
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
