package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gogpu/gg"

	"github.com/Faultbox/midgard-skin/internal/batch"
)

// DrawOutlines strokes each bounding box polygon over img.
func DrawOutlines(img image.Image, outlines []batch.Outline, view View) (image.Image, error) {
	if len(outlines) == 0 {
		return img, nil
	}

	dc := gg.NewContextForImage(img)
	defer dc.Close()

	height := float64(img.Bounds().Dy())
	dc.SetRGBA(0.2, 1, 0.4, 0.9)
	dc.SetLineWidth(1)
	for _, o := range outlines {
		if len(o.Points) < 4 {
			continue
		}
		for i := 0; i+1 < len(o.Points); i += 2 {
			x := float64((o.Points[i] - view.X) * view.Scale)
			y := height - float64((o.Points[i+1]-view.Y)*view.Scale)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroking %s: %w", o.Slot, err)
		}
	}
	return dc.Image(), nil
}

// Encode writes img as "webp" (lossless) or "png".
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported preview format %q", format)
	}
}

// Save encodes img into path, creating parent directories.
func Save(path string, img image.Image, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
