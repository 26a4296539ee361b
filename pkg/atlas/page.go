package atlas

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Source reads raw files by slash-separated path.
type Source interface {
	Read(path string) ([]byte, error)
}

// Load reads and parses the atlas at atlasPath and decodes its page images.
// Page image names are resolved relative to the atlas directory. A .spr
// path is loaded with LoadSprite instead.
func Load(src Source, atlasPath string) (*Atlas, error) {
	if IsSprite(atlasPath) {
		return LoadSprite(src, atlasPath)
	}
	data, err := src.Read(atlasPath)
	if err != nil {
		return nil, fmt.Errorf("reading atlas %s: %w", atlasPath, err)
	}
	a, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing atlas %s: %w", atlasPath, err)
	}
	if err := a.LoadPageImages(src, path.Dir(atlasPath)); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadPageImages decodes every page image (PNG, JPEG, TGA, BMP, WebP).
// Pages whose header omitted a size take it from the image, and their
// region UVs are computed at that point.
func (a *Atlas) LoadPageImages(src Source, dir string) error {
	for _, page := range a.pages {
		data, err := src.Read(path.Join(dir, page.Name))
		if err != nil {
			return fmt.Errorf("reading page %s: %w", page.Name, err)
		}
		img, err := DecodeImage(data)
		if err != nil {
			return fmt.Errorf("decoding page %s: %w", page.Name, err)
		}
		page.Image = img

		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		if page.Width == 0 || page.Height == 0 {
			page.Width, page.Height = w, h
			for _, region := range page.regions {
				region.updateUVs(w, h)
			}
		}
	}
	return nil
}

// DecodeImage decodes any registered image format into NRGBA.
func DecodeImage(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
