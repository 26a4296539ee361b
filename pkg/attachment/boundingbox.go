package attachment

import (
	"fmt"

	"github.com/chewxy/math32"
)

// BoundingBoxGeometry is a closed polygon used for hit testing.
type BoundingBoxGeometry struct {
	Vertices []float32 // local x, y pairs

	world []float32
}

// SetVertices replaces the polygon. The world buffer is reallocated only
// when the point count changes.
func (b *BoundingBoxGeometry) SetVertices(vertices []float32) error {
	if len(vertices)%2 != 0 {
		return fmt.Errorf("%w: odd polygon length %d", ErrDimensionMismatch, len(vertices))
	}
	b.Vertices = vertices
	if len(b.world) != len(vertices) {
		b.world = make([]float32, len(vertices))
	}
	return nil
}

// Bounds returns the axis-aligned box around the last world polygon.
func (b *BoundingBoxGeometry) Bounds() (minX, minY, maxX, maxY float32) {
	if len(b.world) < 2 {
		return 0, 0, 0, 0
	}
	minX, minY = math32.MaxFloat32, math32.MaxFloat32
	maxX, maxY = -math32.MaxFloat32, -math32.MaxFloat32
	for i := 0; i+1 < len(b.world); i += 2 {
		minX = math32.Min(minX, b.world[i])
		minY = math32.Min(minY, b.world[i+1])
		maxX = math32.Max(maxX, b.world[i])
		maxY = math32.Max(maxY, b.world[i+1])
	}
	return minX, minY, maxX, maxY
}

func (b *BoundingBoxGeometry) updateVertices(slot Slot) error {
	if len(b.Vertices)%2 != 0 {
		return fmt.Errorf("%w: odd polygon length %d", ErrDimensionMismatch, len(b.Vertices))
	}
	if len(b.world) != len(b.Vertices) {
		b.world = make([]float32, len(b.Vertices))
	}

	m00, m01, m10, m11, x, y := worldOrigin(slot)
	for i := 0; i < len(b.Vertices); i += 2 {
		px, py := b.Vertices[i], b.Vertices[i+1]
		b.world[i] = px*m00 + py*m01 + x
		b.world[i+1] = px*m10 + py*m11 + y
	}
	return nil
}

func (b *BoundingBoxGeometry) copy() *BoundingBoxGeometry {
	return &BoundingBoxGeometry{
		Vertices: append([]float32(nil), b.Vertices...),
		world:    make([]float32, len(b.world)),
	}
}
