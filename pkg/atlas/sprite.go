package atlas

import (
	"fmt"
	"image"
	"math/bits"
	"path"
	"strings"

	"golang.org/x/image/draw"

	"github.com/Faultbox/midgard-skin/pkg/formats"
)

// framePadding is the gap left between packed frames.
const framePadding = 1

// FromFrames packs frames into a single page and returns an atlas with one
// region per frame, all named name and indexed from 0 in order. The page
// uses nearest filtering and keeps frames at their native size.
func FromFrames(pageName, name string, frames []*image.NRGBA) *Atlas {
	a := &Atlas{byName: make(map[string][]*Region)}
	if len(frames) == 0 {
		return a
	}

	area, widest := 0, 0
	for _, f := range frames {
		w, h := f.Bounds().Dx(), f.Bounds().Dy()
		area += (w + framePadding) * (h + framePadding)
		widest = max(widest, w+framePadding)
	}
	side := 1
	for side*side < area {
		side *= 2
	}
	pageWidth := max(side, ceilPow2(widest))

	// Shelf packing in frame order.
	type slot struct{ x, y int }
	slots := make([]slot, len(frames))
	x, y, shelf := 0, 0, 0
	for i, f := range frames {
		w, h := f.Bounds().Dx(), f.Bounds().Dy()
		if x > 0 && x+w > pageWidth {
			x, y, shelf = 0, y+shelf, 0
		}
		slots[i] = slot{x, y}
		x += w + framePadding
		shelf = max(shelf, h+framePadding)
	}
	pageHeight := ceilPow2(y + shelf)

	page := &Page{
		Name:      pageName,
		Width:     pageWidth,
		Height:    pageHeight,
		Format:    "RGBA8888",
		MinFilter: "Nearest",
		MagFilter: "Nearest",
		Image:     image.NewNRGBA(image.Rect(0, 0, pageWidth, pageHeight)),
	}
	a.pages = []*Page{page}

	for i, f := range frames {
		b := f.Bounds()
		s := slots[i]
		draw.Draw(page.Image, image.Rect(s.x, s.y, s.x+b.Dx(), s.y+b.Dy()), f, b.Min, draw.Src)

		r := &Region{
			Name:           name,
			Index:          i,
			Page:           page,
			X:              s.x,
			Y:              s.y,
			PackedWidth:    b.Dx(),
			PackedHeight:   b.Dy(),
			OriginalWidth:  b.Dx(),
			OriginalHeight: b.Dy(),
		}
		r.updateUVs(pageWidth, pageHeight)
		page.regions = append(page.regions, r)
		a.regions = append(a.regions, r)
		a.byName[name] = append(a.byName[name], r)
	}
	return a
}

// LoadSprite reads an RO sprite file and packs its frames into an atlas.
// The region name is the file name without its extension.
func LoadSprite(src Source, spritePath string) (*Atlas, error) {
	data, err := src.Read(spritePath)
	if err != nil {
		return nil, fmt.Errorf("reading sprite %s: %w", spritePath, err)
	}
	spr, err := formats.DecodeSPR(data)
	if err != nil {
		return nil, fmt.Errorf("decoding sprite %s: %w", spritePath, err)
	}
	base := path.Base(spritePath)
	return FromFrames(base, strings.TrimSuffix(base, path.Ext(base)), spr.Frames), nil
}

// IsSprite reports whether p names an RO sprite rather than an atlas.
func IsSprite(p string) bool {
	return strings.EqualFold(path.Ext(p), ".spr")
}

func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
