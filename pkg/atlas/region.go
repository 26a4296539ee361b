package atlas

import "image"

// Page is one packed texture image of an atlas.
type Page struct {
	Name      string // Image file name, relative to the atlas file
	Width     int    // 0 until known (header or decoded image)
	Height    int
	Format    string
	MinFilter string
	MagFilter string
	RepeatX   bool
	RepeatY   bool
	PMA       bool // Pixels are stored with premultiplied alpha

	// Image holds the decoded pixels after LoadPageImages.
	Image *image.NRGBA

	regions []*Region
}

// Regions returns the regions packed into this page.
func (p *Page) Regions() []*Region {
	return p.regions
}

// Region describes a named sub-rectangle of a page.
//
// PackedWidth and PackedHeight are the size as stored in the page, so they
// are swapped relative to the source image when Rotate is set.
type Region struct {
	Name  string
	Index int // Frame index, -1 when the region is not part of a sequence
	Page  *Page

	X, Y int // Top-left pixel in the page

	U, V, U2, V2 float32

	PackedWidth    int
	PackedHeight   int
	OriginalWidth  int
	OriginalHeight int
	OffsetX        float32
	OffsetY        float32

	// Rotate means the source image was rotated 90 degrees before packing.
	Rotate bool
}

// Trimmed reports whether whitespace was stripped from the source image.
func (r *Region) Trimmed() bool {
	if r.OriginalWidth == 0 || r.OriginalHeight == 0 {
		return false
	}
	if r.OffsetX != 0 || r.OffsetY != 0 {
		return true
	}
	w, h := r.PackedWidth, r.PackedHeight
	if r.Rotate {
		w, h = h, w
	}
	return w != r.OriginalWidth || h != r.OriginalHeight
}

// updateUVs derives normalized coordinates from the pixel rectangle.
func (r *Region) updateUVs(pageWidth, pageHeight int) {
	if pageWidth <= 0 || pageHeight <= 0 {
		return
	}
	invW := 1 / float32(pageWidth)
	invH := 1 / float32(pageHeight)
	r.U = float32(r.X) * invW
	r.V = float32(r.Y) * invH
	r.U2 = float32(r.X+r.PackedWidth) * invW
	r.V2 = float32(r.Y+r.PackedHeight) * invH
}
