package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	return img
}

func TestPagePixels(t *testing.T) {
	tests := []struct {
		name     string
		pagePMA  bool
		blendPMA bool
		want     []uint8
	}{
		{"straight", false, false, []uint8{200, 100, 50, 255, 200, 100, 50, 128}},
		{"premultiply", false, true, []uint8{200, 100, 50, 255, 100, 50, 25, 128}},
		{"already premultiplied", true, true, []uint8{200, 100, 50, 255, 200, 100, 50, 128}},
		{"unpremultiply", true, false, []uint8{200, 100, 50, 255, 255, 199, 100, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testImage()
			got := PagePixels(img, tt.pagePMA, tt.blendPMA)
			if string(got) != string(tt.want) {
				t.Errorf("PagePixels = %v, want %v", got, tt.want)
			}
			if img.Pix[4] != 200 {
				t.Error("source image modified")
			}
		})
	}
}

func TestPagePixels_SubImage(t *testing.T) {
	big := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	big.SetNRGBA(2, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	sub := big.SubImage(image.Rect(2, 2, 4, 4)).(*image.NRGBA)

	got := PagePixels(sub, false, false)
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	if got[0] != 1 || got[3] != 4 {
		t.Errorf("first pixel = %v", got[:4])
	}
}

func TestFilterMode(t *testing.T) {
	tests := []struct {
		name string
		mag  bool
		want int32
	}{
		{"Linear", false, gl.LINEAR},
		{"Nearest", false, gl.NEAREST},
		{"MipMapLinearLinear", false, gl.LINEAR_MIPMAP_LINEAR},
		{"MipMapLinearLinear", true, gl.LINEAR},
		{"MipMapNearestNearest", false, gl.NEAREST_MIPMAP_NEAREST},
		{"", false, gl.LINEAR},
	}
	for _, tt := range tests {
		if got := filterMode(tt.name, tt.mag); got != tt.want {
			t.Errorf("filterMode(%q, %v) = %d, want %d", tt.name, tt.mag, got, tt.want)
		}
	}
	if usesMipmaps(gl.LINEAR) || !usesMipmaps(gl.LINEAR_MIPMAP_LINEAR) {
		t.Error("usesMipmaps mismatch")
	}
}

func TestGrow(t *testing.T) {
	if got := grow(0, 100); got != 4096 {
		t.Errorf("grow(0, 100) = %d", got)
	}
	if got := grow(4096, 5000); got != 8192 {
		t.Errorf("grow(4096, 5000) = %d", got)
	}
}
