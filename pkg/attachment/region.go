package attachment

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

// Output layout of region kinds.
const (
	VertexSize = 5 // x, y, packed color, u, v
	QuadFloats = 4 * VertexSize

	degRad = math32.Pi / 180
)

// Corner offsets into the region output buffer, in BL, UL, UR, BR order.
const (
	cornerBL = iota * VertexSize
	cornerUL
	cornerUR
	cornerBR
)

// RegionGeometry is the quad shared by region and region sequence attachments.
//
// The shape fields describe the setup pose relative to the bone. After
// changing any of them call UpdateOffset; UpdateVertices never does.
type RegionGeometry struct {
	X, Y     float32
	Rotation float32 // degrees
	ScaleX   float32
	ScaleY   float32
	Width    float32
	Height   float32

	region   *atlas.Region
	offset   [8]float32
	vertices [QuadFloats]float32
}

func newRegionGeometry() *RegionGeometry {
	return &RegionGeometry{ScaleX: 1, ScaleY: 1}
}

// Region returns the bound region, or nil.
func (g *RegionGeometry) Region() *atlas.Region {
	return g.region
}

// Offsets returns the cached local corner positions (BL, UL, UR, BR).
func (g *RegionGeometry) Offsets() [8]float32 {
	return g.offset
}

// SetRegion binds region, assigns its UVs to the quad corners and
// recomputes the corner offsets.
func (g *RegionGeometry) SetRegion(region *atlas.Region) error {
	if region == nil {
		return fmt.Errorf("%w: nil region", ErrInvalidRegion)
	}
	g.region = region

	v := &g.vertices
	if region.Rotate {
		v[cornerBL+3], v[cornerBL+4] = region.U2, region.V2
		v[cornerUL+3], v[cornerUL+4] = region.U2, region.V
		v[cornerUR+3], v[cornerUR+4] = region.U, region.V
		v[cornerBR+3], v[cornerBR+4] = region.U, region.V2
	} else {
		v[cornerBL+3], v[cornerBL+4] = region.U, region.V2
		v[cornerUL+3], v[cornerUL+4] = region.U, region.V
		v[cornerUR+3], v[cornerUR+4] = region.U2, region.V
		v[cornerBR+3], v[cornerBR+4] = region.U2, region.V2
	}

	g.UpdateOffset()
	return nil
}

// UpdateOffset recomputes the four local corners from the shape fields and
// the bound region's trim.
func (g *RegionGeometry) UpdateOffset() {
	width, height := g.Width, g.Height
	localX2, localY2 := width/2, height/2
	localX, localY := -localX2, -localY2

	if r := g.region; r != nil && r.OriginalWidth > 0 && r.OriginalHeight > 0 {
		ow, oh := float32(r.OriginalWidth), float32(r.OriginalHeight)
		packedW, packedH := float32(r.PackedWidth), float32(r.PackedHeight)
		// Pixels were rotated before packing, so the packed axes are swapped.
		if r.Rotate {
			packedW, packedH = packedH, packedW
		}
		localX += r.OffsetX / ow * width
		localY += r.OffsetY / oh * height
		localX2 -= (ow - r.OffsetX - packedW) / ow * width
		localY2 -= (oh - r.OffsetY - packedH) / oh * height
	}

	localX *= g.ScaleX
	localY *= g.ScaleY
	localX2 *= g.ScaleX
	localY2 *= g.ScaleY

	sin, cos := math32.Sincos(g.Rotation * degRad)
	localXCos := localX*cos + g.X
	localXSin := localX * sin
	localYCos := localY*cos + g.Y
	localYSin := localY * sin
	localX2Cos := localX2*cos + g.X
	localX2Sin := localX2 * sin
	localY2Cos := localY2*cos + g.Y
	localY2Sin := localY2 * sin

	o := &g.offset
	o[0], o[1] = localXCos-localYSin, localYCos+localXSin   // BL
	o[2], o[3] = localXCos-localY2Sin, localY2Cos+localXSin // UL
	o[4], o[5] = localX2Cos-localY2Sin, localY2Cos+localX2Sin
	o[6], o[7] = localX2Cos-localYSin, localYCos+localX2Sin
}

func (g *RegionGeometry) updateVertices(slot Slot, color float32) {
	m00, m01, m10, m11, x, y := worldOrigin(slot)
	o := &g.offset
	v := &g.vertices
	for i := 0; i < 4; i++ {
		ox, oy := o[i*2], o[i*2+1]
		j := i * VertexSize
		v[j] = ox*m00 + oy*m01 + x
		v[j+1] = ox*m10 + oy*m11 + y
		v[j+2] = color
	}
}
