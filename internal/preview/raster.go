// Package preview renders batched frames without a GPU, for thumbnails and
// golden-image style checks.
package preview

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-skin/internal/batch"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

// View maps skeleton space (y up) onto image pixels (y down).
type View struct {
	X, Y  float32 // skeleton point shown at the bottom-left pixel
	Scale float32 // pixels per unit
}

// Fit returns a view that shows the world box inside a width x height
// image with margin pixels on every side.
func Fit(minX, minY, maxX, maxY float32, width, height, margin int) View {
	w := maxX - minX
	h := maxY - minY
	availW := float32(width - 2*margin)
	availH := float32(height - 2*margin)
	if w <= 0 || h <= 0 || availW <= 0 || availH <= 0 {
		return View{X: minX, Y: minY, Scale: 1}
	}
	scale := math32.Min(availW/w, availH/h)
	// Center the content.
	padX := (float32(width)/scale - w) / 2
	padY := (float32(height)/scale - h) / 2
	return View{X: minX - padX, Y: minY - padY, Scale: scale}
}

// FrameBounds returns the world box around every batched vertex and outline.
func FrameBounds(f *batch.Frame) (minX, minY, maxX, maxY float32, ok bool) {
	minX, minY = math32.MaxFloat32, math32.MaxFloat32
	maxX, maxY = -math32.MaxFloat32, -math32.MaxFloat32
	grow := func(x, y float32) {
		minX, minY = math32.Min(minX, x), math32.Min(minY, y)
		maxX, maxY = math32.Max(maxX, x), math32.Max(maxY, y)
		ok = true
	}
	for _, b := range f.Batches {
		for i := 0; i+batch.Stride <= len(b.Vertices); i += batch.Stride {
			grow(b.Vertices[i], b.Vertices[i+1])
		}
	}
	for _, o := range f.Outlines {
		for i := 0; i+1 < len(o.Points); i += 2 {
			grow(o.Points[i], o.Points[i+1])
		}
	}
	return minX, minY, maxX, maxY, ok
}

// Rasterizer draws textured, vertex-colored triangles into an image.
// Blending is source-over, straight or premultiplied to match the vertex
// colors the batcher produced.
type Rasterizer struct {
	Width, Height      int
	PremultipliedAlpha bool
	Background         gfx.Color

	accum []float32 // premultiplied RGBA per pixel
}

// NewRasterizer creates a rasterizer for a width x height target.
func NewRasterizer(width, height int, premultipliedAlpha bool) *Rasterizer {
	return &Rasterizer{
		Width:              width,
		Height:             height,
		PremultipliedAlpha: premultipliedAlpha,
		Background:         gfx.Transparent,
	}
}

// Render draws every batch of f through view.
func (r *Rasterizer) Render(f *batch.Frame, view View) *image.NRGBA {
	n := r.Width * r.Height * 4
	if cap(r.accum) < n {
		r.accum = make([]float32, n)
	}
	r.accum = r.accum[:n]
	bg := r.Background
	for i := 0; i < n; i += 4 {
		r.accum[i] = bg.R * bg.A
		r.accum[i+1] = bg.G * bg.A
		r.accum[i+2] = bg.B * bg.A
		r.accum[i+3] = bg.A
	}

	for _, b := range f.Batches {
		var tex *image.NRGBA
		pagePMA := false
		if b.Page != nil {
			tex = b.Page.Image
			pagePMA = b.Page.PMA
		}
		for i := 0; i+2 < len(b.Indices); i += 3 {
			r.triangle(b.Vertices, b.Indices[i:i+3], tex, pagePMA, view)
		}
	}

	return r.resolve()
}

type screenVertex struct {
	x, y  float32
	u, v  float32
	color gfx.Color
}

func (r *Rasterizer) project(vertices []float32, idx uint32, view View) screenVertex {
	o := int(idx) * batch.Stride
	return screenVertex{
		x:     (vertices[o] - view.X) * view.Scale,
		y:     float32(r.Height) - (vertices[o+1]-view.Y)*view.Scale,
		color: gfx.UnpackARGB(vertices[o+2]),
		u:     vertices[o+3],
		v:     vertices[o+4],
	}
}

func (r *Rasterizer) triangle(vertices []float32, idx []uint32, tex *image.NRGBA, pagePMA bool, view View) {
	for _, i := range idx {
		if int(i)*batch.Stride+batch.Stride > len(vertices) {
			return
		}
	}
	p0 := r.project(vertices, idx[0], view)
	p1 := r.project(vertices, idx[1], view)
	p2 := r.project(vertices, idx[2], view)

	det := (p1.y-p2.y)*(p0.x-p2.x) + (p2.x-p1.x)*(p0.y-p2.y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1 / det

	minX := int(math32.Floor(math32.Min(math32.Min(p0.x, p1.x), p2.x)))
	maxX := int(math32.Ceil(math32.Max(math32.Max(p0.x, p1.x), p2.x)))
	minY := int(math32.Floor(math32.Min(math32.Min(p0.y, p1.y), p2.y)))
	maxY := int(math32.Ceil(math32.Max(math32.Max(p0.y, p1.y), p2.y)))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, r.Width-1), min(maxY, r.Height-1)

	dy12, dx21 := p1.y-p2.y, p2.x-p1.x
	dy20, dx02 := p2.y-p0.y, p0.x-p2.x

	for sy := minY; sy <= maxY; sy++ {
		py := float32(sy) + 0.5 - p2.y
		for sx := minX; sx <= maxX; sx++ {
			px := float32(sx) + 0.5 - p2.x
			w0 := (dy12*px + dx21*py) * invDet
			w1 := (dy20*px + dx02*py) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			c := gfx.Color{
				R: w0*p0.color.R + w1*p1.color.R + w2*p2.color.R,
				G: w0*p0.color.G + w1*p1.color.G + w2*p2.color.G,
				B: w0*p0.color.B + w1*p1.color.B + w2*p2.color.B,
				A: w0*p0.color.A + w1*p1.color.A + w2*p2.color.A,
			}
			t := gfx.White
			if tex != nil {
				t = sample(tex, w0*p0.u+w1*p1.u+w2*p2.u, w0*p0.v+w1*p1.v+w2*p2.v)
			}
			r.blend(sy*r.Width+sx, t, c, pagePMA)
		}
	}
}

// blend composites texel t tinted by vertex color c over pixel i.
func (r *Rasterizer) blend(i int, t, c gfx.Color, pagePMA bool) {
	var sr, sg, sb, sa float32
	if r.PremultipliedAlpha {
		if !pagePMA {
			t.R, t.G, t.B = t.R*t.A, t.G*t.A, t.B*t.A
		}
		sr, sg, sb, sa = t.R*c.R, t.G*c.G, t.B*c.B, t.A*c.A
	} else {
		if pagePMA && t.A > 0 {
			t.R, t.G, t.B = t.R/t.A, t.G/t.A, t.B/t.A
		}
		sa = t.A * c.A
		sr, sg, sb = t.R*c.R*sa, t.G*c.G*sa, t.B*c.B*sa
	}
	if sa <= 0 {
		return
	}

	o := i * 4
	inv := 1 - sa
	a := r.accum
	a[o] = sr + a[o]*inv
	a[o+1] = sg + a[o+1]*inv
	a[o+2] = sb + a[o+2]*inv
	a[o+3] = sa + a[o+3]*inv
}

// resolve converts the premultiplied accumulator to straight NRGBA.
func (r *Rasterizer) resolve() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	a := r.accum
	for i := 0; i < len(a); i += 4 {
		alpha := a[i+3]
		if alpha <= 0 {
			continue
		}
		img.Pix[i] = toByte(a[i] / alpha)
		img.Pix[i+1] = toByte(a[i+1] / alpha)
		img.Pix[i+2] = toByte(a[i+2] / alpha)
		img.Pix[i+3] = toByte(alpha)
	}
	return img
}

// sample reads the nearest texel, clamping to the page edge.
func sample(tex *image.NRGBA, u, v float32) gfx.Color {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	x := min(max(int(u*float32(w)), 0), w-1)
	y := min(max(int(v*float32(h)), 0), h-1)
	o := y*tex.Stride + x*4
	p := tex.Pix[o : o+4 : o+4]
	return gfx.RGBA(p[0], p[1], p[2], p[3])
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
