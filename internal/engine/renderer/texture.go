package renderer

import (
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

// PagePixels returns the RGBA bytes to upload for a page image, converting
// between straight and premultiplied alpha when the page and the blend
// mode disagree. The image is not modified.
func PagePixels(img *image.NRGBA, pagePMA, premultipliedAlpha bool) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		copy(out[y*w*4:], src)
	}
	if pagePMA == premultipliedAlpha {
		return out
	}

	for i := 0; i < len(out); i += 4 {
		a := uint32(out[i+3])
		switch {
		case premultipliedAlpha:
			out[i] = uint8((uint32(out[i])*a + 127) / 255)
			out[i+1] = uint8((uint32(out[i+1])*a + 127) / 255)
			out[i+2] = uint8((uint32(out[i+2])*a + 127) / 255)
		case a > 0:
			out[i] = uint8(min(255, (uint32(out[i])*255+a/2)/a))
			out[i+1] = uint8(min(255, (uint32(out[i+1])*255+a/2)/a))
			out[i+2] = uint8(min(255, (uint32(out[i+2])*255+a/2)/a))
		}
	}
	return out
}

// filterMode maps an atlas filter name to a GL filter.
func filterMode(name string, mag bool) int32 {
	switch strings.ToLower(name) {
	case "nearest":
		return gl.NEAREST
	case "mipmap", "mipmaplinearlinear":
		if mag {
			return gl.LINEAR
		}
		return gl.LINEAR_MIPMAP_LINEAR
	case "mipmapnearestnearest":
		if mag {
			return gl.NEAREST
		}
		return gl.NEAREST_MIPMAP_NEAREST
	case "mipmaplinearnearest":
		if mag {
			return gl.LINEAR
		}
		return gl.LINEAR_MIPMAP_NEAREST
	case "mipmapnearestlinear":
		if mag {
			return gl.NEAREST
		}
		return gl.NEAREST_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

func usesMipmaps(minFilter int32) bool {
	return minFilter != gl.LINEAR && minFilter != gl.NEAREST
}

func wrapMode(repeat bool) int32 {
	if repeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

// uploadPage creates a texture for page.
func uploadPage(page *atlas.Page, premultipliedAlpha bool) uint32 {
	img := page.Image
	pixels := PagePixels(img, page.PMA, premultipliedAlpha)

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	minFilter := filterMode(page.MinFilter, false)
	if usesMipmaps(minFilter) {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterMode(page.MagFilter, true))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(page.RepeatX))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(page.RepeatY))
	return texID
}

// uploadWhite creates the 1x1 texture used for untextured draws.
func uploadWhite() uint32 {
	white := []uint8{255, 255, 255, 255}
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(white))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return texID
}
