package atlas

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

const sampleAtlas = `
hero.png
size: 256,128
format: RGBA8888
filter: Linear,MipMapLinearLinear
repeat: none
head
  rotate: false
  xy: 2, 2
  size: 64, 32
  orig: 70, 40
  offset: 3, 4
  index: -1
arm
  rotate: true
  xy: 100, 2
  size: 40, 20
  orig: 40, 20
  offset: 0, 0
  index: -1
walk
  rotate: false
  xy: 2, 64
  size: 16, 16
  orig: 16, 16
  offset: 0, 0
  index: 1
walk
  rotate: false
  xy: 20, 64
  size: 16, 16
  orig: 16, 16
  offset: 0, 0
  index: 0

fx.png
size: 64,64
format: RGBA8888
filter: Nearest,Nearest
repeat: xy
spark
  bounds: 0, 0, 32, 16
  offsets: 1, 2, 34, 20
  rotate: 90
`

func TestParse_Pages(t *testing.T) {
	a, err := ParseString(sampleAtlas)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	pages := a.Pages()
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Name != "hero.png" || pages[0].Width != 256 || pages[0].Height != 128 {
		t.Errorf("unexpected first page: %+v", pages[0])
	}
	if pages[0].MinFilter != "Linear" || pages[0].MagFilter != "MipMapLinearLinear" {
		t.Errorf("unexpected filters: %s/%s", pages[0].MinFilter, pages[0].MagFilter)
	}
	if !pages[1].RepeatX || !pages[1].RepeatY {
		t.Error("expected fx page to repeat on both axes")
	}
	if len(pages[0].Regions()) != 4 {
		t.Errorf("expected 4 regions on hero page, got %d", len(pages[0].Regions()))
	}
	if len(a.Regions()) != 5 {
		t.Errorf("expected 5 regions, got %d", len(a.Regions()))
	}
}

func TestParse_RegionFields(t *testing.T) {
	a, err := ParseString(sampleAtlas)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	head := a.FindRegion("head")
	if head == nil {
		t.Fatal("head region not found")
	}
	if head.PackedWidth != 64 || head.PackedHeight != 32 {
		t.Errorf("expected packed 64x32, got %dx%d", head.PackedWidth, head.PackedHeight)
	}
	if head.OriginalWidth != 70 || head.OriginalHeight != 40 {
		t.Errorf("expected original 70x40, got %dx%d", head.OriginalWidth, head.OriginalHeight)
	}
	if head.OffsetX != 3 || head.OffsetY != 4 {
		t.Errorf("expected offset (3,4), got (%v,%v)", head.OffsetX, head.OffsetY)
	}
	if !head.Trimmed() {
		t.Error("expected head to be trimmed")
	}
	if head.U != 2.0/256 || head.V != 2.0/128 || head.U2 != 66.0/256 || head.V2 != 34.0/128 {
		t.Errorf("unexpected UVs: %v %v %v %v", head.U, head.V, head.U2, head.V2)
	}

	arm := a.FindRegion("arm")
	if !arm.Rotate {
		t.Fatal("expected arm to be rotated")
	}
	// size is the unrotated size, the packed rectangle is swapped.
	if arm.PackedWidth != 20 || arm.PackedHeight != 40 {
		t.Errorf("expected packed 20x40, got %dx%d", arm.PackedWidth, arm.PackedHeight)
	}
	if arm.U2 != 120.0/256 || arm.V2 != 42.0/128 {
		t.Errorf("unexpected rotated UVs: u2=%v v2=%v", arm.U2, arm.V2)
	}
	if arm.Trimmed() {
		t.Error("expected arm to be untrimmed")
	}

	spark := a.FindRegion("spark")
	if !spark.Rotate || spark.X != 0 || spark.PackedWidth != 16 || spark.PackedHeight != 32 {
		t.Errorf("unexpected spark: %+v", spark)
	}
	if spark.OriginalWidth != 34 || spark.OriginalHeight != 20 || spark.OffsetY != 2 {
		t.Errorf("unexpected spark offsets: %+v", spark)
	}
}

func TestFindRegions_OrderedByIndex(t *testing.T) {
	a, err := ParseString(sampleAtlas)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	frames := a.FindRegions("walk")
	if len(frames) != 2 {
		t.Fatalf("expected 2 walk frames, got %d", len(frames))
	}
	if frames[0].Index != 0 || frames[1].Index != 1 {
		t.Errorf("frames not sorted by index: %d, %d", frames[0].Index, frames[1].Index)
	}
	if a.FindRegion("walk") != frames[0] {
		t.Error("FindRegion should return the lowest index frame")
	}
	if a.FindRegion("missing") != nil {
		t.Error("expected nil for missing region")
	}
	if got := a.Names(); len(got) != 4 || got[0] != "head" || got[3] != "spark" {
		t.Errorf("unexpected names: %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{
			name: "bad xy",
			text: "p.png\nsize: 8,8\nr\n  xy: a, b\n  size: 1, 1\n",
			want: ErrMalformed,
		},
		{
			name: "bad index",
			text: "p.png\nsize: 8,8\nr\n  xy: 0, 0\n  size: 1, 1\n  index: x\n",
			want: ErrMalformed,
		},
		{
			name: "field without page",
			text: "p.png\nsize: 8,8\n\n  xy: 0, 0\n",
			want: ErrMissingPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type mapSource map[string][]byte

func (m mapSource) Read(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_SizeFromImage(t *testing.T) {
	src := mapSource{
		"skins/hero.atlas": []byte("hero.png\nformat: RGBA8888\nhead\n  xy: 0, 0\n  size: 16, 8\n"),
		"skins/hero.png":   encodePNG(t, 32, 16),
	}

	a, err := Load(src, "skins/hero.atlas")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	page := a.Pages()[0]
	if page.Width != 32 || page.Height != 16 {
		t.Errorf("expected page size from image 32x16, got %dx%d", page.Width, page.Height)
	}
	if page.Image == nil || page.Image.NRGBAAt(0, 0).A != 40 {
		t.Error("page image not decoded as NRGBA")
	}
	head := a.FindRegion("head")
	if head.U2 != 0.5 || head.V2 != 0.5 {
		t.Errorf("expected UVs computed after decode, got u2=%v v2=%v", head.U2, head.V2)
	}
}

func TestLoad_MissingPage(t *testing.T) {
	src := mapSource{"a.atlas": []byte("gone.png\nsize: 4,4\n")}
	if _, err := Load(src, "a.atlas"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
