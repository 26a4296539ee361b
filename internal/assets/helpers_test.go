package assets

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

func encodeTestPNG(w io.Writer, width, height int) error {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	return png.Encode(w, img)
}
