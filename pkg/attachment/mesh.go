package attachment

import (
	"fmt"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

// MeshGeometry is a triangulated surface driven by a single bone.
//
// RegionUVs are normalized to the bound region; the output buffer holds them
// mapped into page space. Positions and colors are rewritten every frame,
// UVs only by SetMesh and SetRegion.
type MeshGeometry struct {
	Vertices   []float32 // local x, y pairs
	Triangles  []uint16
	RegionUVs  []float32
	HullLength int
	Edges      []int // editor data, not used by synthesis
	Width      float32
	Height     float32

	region *atlas.Region
	world  []float32
}

// Region returns the bound region, or nil.
func (m *MeshGeometry) Region() *atlas.Region {
	return m.region
}

// SetMesh replaces the geometry. The output buffer is reallocated only when
// the vertex count changes.
func (m *MeshGeometry) SetMesh(vertices []float32, triangles []uint16, uvs []float32) error {
	if len(vertices)%2 != 0 {
		return fmt.Errorf("%w: odd vertex array length %d", ErrDimensionMismatch, len(vertices))
	}
	if len(uvs) != len(vertices) {
		return fmt.Errorf("%w: %d uvs for %d vertex floats", ErrDimensionMismatch, len(uvs), len(vertices))
	}
	if len(triangles)%3 != 0 {
		return fmt.Errorf("%w: triangle index count %d", ErrDimensionMismatch, len(triangles))
	}
	count := len(vertices) / 2
	for _, idx := range triangles {
		if int(idx) >= count {
			return fmt.Errorf("%w: triangle index %d out of %d vertices", ErrDimensionMismatch, idx, count)
		}
	}

	size := count * VertexSize
	if len(m.world) != size {
		m.world = make([]float32, size)
	}

	m.Vertices = vertices
	m.Triangles = triangles
	m.RegionUVs = uvs
	m.updateUVs()
	return nil
}

// SetRegion binds region and remaps the UVs into its page space.
func (m *MeshGeometry) SetRegion(region *atlas.Region) error {
	if region == nil {
		return fmt.Errorf("%w: nil region", ErrInvalidRegion)
	}
	m.region = region
	m.updateUVs()
	return nil
}

func (m *MeshGeometry) updateUVs() {
	if m.world == nil {
		return
	}
	uvs := m.RegionUVs
	r := m.region
	if r == nil {
		for i, w := 0, 3; i < len(uvs); i, w = i+2, w+VertexSize {
			m.world[w] = uvs[i]
			m.world[w+1] = uvs[i+1]
		}
		return
	}

	u, v := r.U, r.V
	width, height := r.U2-r.U, r.V2-r.V
	for i, w := 0, 3; i < len(uvs); i, w = i+2, w+VertexSize {
		if r.Rotate {
			m.world[w] = u + uvs[i+1]*width
			m.world[w+1] = v + height - uvs[i]*height
		} else {
			m.world[w] = u + uvs[i]*width
			m.world[w+1] = v + uvs[i+1]*height
		}
	}
}

func (m *MeshGeometry) updateVertices(slot Slot, color float32) error {
	if m.world == nil {
		return ErrUnsetMesh
	}
	if len(m.Vertices)%2 != 0 || len(m.world) != len(m.Vertices)/2*VertexSize {
		return fmt.Errorf("%w: %d vertex floats for a %d float buffer",
			ErrDimensionMismatch, len(m.Vertices), len(m.world))
	}

	m00, m01, m10, m11, x, y := worldOrigin(slot)
	world := m.world
	for v, w := 0, 0; v < len(m.Vertices); v, w = v+2, w+VertexSize {
		vx, vy := m.Vertices[v], m.Vertices[v+1]
		world[w] = vx*m00 + vy*m01 + x
		world[w+1] = vx*m10 + vy*m11 + y
		world[w+2] = color
	}
	return nil
}

func (m *MeshGeometry) copy() *MeshGeometry {
	c := *m
	c.Vertices = append([]float32(nil), m.Vertices...)
	c.Triangles = append([]uint16(nil), m.Triangles...)
	c.RegionUVs = append([]float32(nil), m.RegionUVs...)
	c.Edges = append([]int(nil), m.Edges...)
	if m.world != nil {
		c.world = append([]float32(nil), m.world...)
	}
	return &c
}
