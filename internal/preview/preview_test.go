package preview

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"github.com/Faultbox/midgard-skin/internal/batch"
	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

func solidPage(c color.NRGBA) *atlas.Page {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return &atlas.Page{Name: "solid.png", Width: 2, Height: 2, Image: img}
}

// quad covers the 10x10 world square at the origin.
func quad(page *atlas.Page, tint float32) *batch.Frame {
	return &batch.Frame{
		Batches: []batch.Batch{{
			Page: page,
			Vertices: []float32{
				0, 0, tint, 0, 1,
				10, 0, tint, 1, 1,
				10, 10, tint, 1, 0,
				0, 10, tint, 0, 0,
			},
			Indices: []uint32{0, 1, 2, 2, 3, 0},
		}},
	}
}

func TestFit(t *testing.T) {
	v := Fit(0, 0, 10, 5, 20, 20, 0)
	assert.Equal(t, float32(2), v.Scale)
	assert.Equal(t, float32(0), v.X)
	assert.Equal(t, float32(-2.5), v.Y, "shorter axis is centered")

	degenerate := Fit(3, 3, 3, 3, 20, 20, 0)
	assert.Equal(t, float32(1), degenerate.Scale)
}

func TestFrameBounds(t *testing.T) {
	f := quad(nil, gfx.White.Packed())
	f.Outlines = []batch.Outline{{Slot: "hit", Points: []float32{-4, 2, 12, 3}}}

	minX, minY, maxX, maxY, ok := FrameBounds(f)
	require.True(t, ok)
	assert.Equal(t, []float32{-4, 0, 12, 10}, []float32{minX, minY, maxX, maxY})

	_, _, _, _, ok = FrameBounds(&batch.Frame{})
	assert.False(t, ok)
}

func TestRender_TexturedQuad(t *testing.T) {
	page := solidPage(color.NRGBA{R: 255, A: 255})
	r := NewRasterizer(20, 20, false)

	img := r.Render(quad(page, gfx.White.Packed()), View{Scale: 2})
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(10, 10))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 19))
}

func TestRender_VertexTint(t *testing.T) {
	page := solidPage(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	tint := gfx.Color{R: 0, G: 1, B: 0, A: 0.5}

	straight := NewRasterizer(20, 20, false).Render(quad(page, tint.Packed()), View{Scale: 2})
	px := straight.NRGBAAt(10, 10)
	assert.Equal(t, uint8(0), px.R)
	assert.Equal(t, uint8(255), px.G)
	assert.InDelta(t, 128, int(px.A), 1)

	pma := gfx.PackARGB(tint.R*tint.A*255, tint.G*tint.A*255, tint.B*tint.A*255, tint.A*255)
	premul := NewRasterizer(20, 20, true).Render(quad(page, pma), View{Scale: 2})
	assert.Equal(t, px, premul.NRGBAAt(10, 10), "both blend modes agree")
}

func TestRender_ClipsAndSkipsDegenerate(t *testing.T) {
	page := solidPage(color.NRGBA{B: 255, A: 255})
	f := quad(page, gfx.White.Packed())
	f.Batches[0].Indices = append(f.Batches[0].Indices, 0, 0, 1, 0, 1, 9)

	img := NewRasterizer(8, 8, false).Render(f, View{X: -100, Y: -100, Scale: 2})
	for i := 3; i < len(img.Pix); i += 4 {
		require.Zero(t, img.Pix[i], "quad is off screen")
	}
}

func TestRender_Background(t *testing.T) {
	r := NewRasterizer(4, 4, false)
	r.Background = gfx.Color{R: 0, G: 0, B: 1, A: 1}

	img := r.Render(&batch.Frame{}, View{Scale: 1})
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(2, 2))
}

func TestDrawOutlines(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	outlines := []batch.Outline{{Slot: "hit", Points: []float32{2, 2, 14, 2, 14, 14, 2, 14}}}

	out, err := DrawOutlines(base, outlines, View{Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, base.Bounds(), out.Bounds())

	painted := 0
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := out.At(x, y).RGBA(); a > 0 {
				painted++
			}
		}
	}
	assert.Positive(t, painted)

	same, err := DrawOutlines(base, nil, View{Scale: 2})
	require.NoError(t, err)
	assert.Same(t, base, same.(*image.NRGBA))
}

func TestEncode(t *testing.T) {
	img := NewRasterizer(6, 4, false).Render(quad(solidPage(color.NRGBA{G: 200, A: 255}), gfx.White.Packed()), View{Scale: 0.5})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, "webp"))
	decoded, err := webp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.Error(t, Encode(&buf, img, "gif"))
}
