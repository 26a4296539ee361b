// Package camera provides the 2D pan/zoom camera used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-skin/pkg/math"
)

// PanZoomCamera looks at a point in skeleton space with a zoom factor.
// Screen coordinates have y down; skeleton space has y up.
type PanZoomCamera struct {
	// Center point in skeleton space
	CenterX, CenterY float32

	// Pixels per skeleton unit
	Zoom    float32
	MinZoom float32
	MaxZoom float32

	ZoomSensitivity float32
}

// NewPanZoomCamera creates a camera at the origin with zoom 1.
func NewPanZoomCamera() *PanZoomCamera {
	return &PanZoomCamera{
		Zoom:            1,
		MinZoom:         0.05,
		MaxZoom:         20,
		ZoomSensitivity: 0.1,
	}
}

// ViewProj returns the projection for a viewport of width x height pixels.
func (c *PanZoomCamera) ViewProj(width, height int) math.Mat3 {
	halfW := float32(width) / (2 * c.Zoom)
	halfH := float32(height) / (2 * c.Zoom)
	return math.Ortho(c.CenterX-halfW, c.CenterX+halfW, c.CenterY-halfH, c.CenterY+halfH)
}

// ScreenToWorld converts a window pixel to skeleton space.
func (c *PanZoomCamera) ScreenToWorld(sx, sy float32, width, height int) (float32, float32) {
	x := c.CenterX + (sx-float32(width)/2)/c.Zoom
	y := c.CenterY - (sy-float32(height)/2)/c.Zoom
	return x, y
}

// HandleDrag pans by a mouse drag delta in pixels.
func (c *PanZoomCamera) HandleDrag(deltaX, deltaY float32) {
	c.CenterX -= deltaX / c.Zoom
	c.CenterY += deltaY / c.Zoom
}

// HandleZoom zooms by scroll wheel steps.
func (c *PanZoomCamera) HandleZoom(delta float32) {
	c.Zoom += delta * c.Zoom * c.ZoomSensitivity
	c.Zoom = math32.Max(c.MinZoom, math32.Min(c.MaxZoom, c.Zoom))
}

// FitToBounds centers the box and picks the largest zoom that shows it
// with margin pixels to spare.
func (c *PanZoomCamera) FitToBounds(minX, minY, maxX, maxY float32, width, height int, margin float32) {
	c.CenterX = (minX + maxX) / 2
	c.CenterY = (minY + maxY) / 2

	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		c.Zoom = 1
		return
	}
	zoom := math32.Min((float32(width)-2*margin)/w, (float32(height)-2*margin)/h)
	c.Zoom = math32.Max(c.MinZoom, math32.Min(c.MaxZoom, zoom))
}
