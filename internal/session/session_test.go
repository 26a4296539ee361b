package session

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/pkg/attachment"
)

const atlasV1 = `
actors.png
size: 64,32
head
  xy: 0, 0
  size: 16, 16
`

const atlasV2 = `
actors.png
size: 64,32
head
  xy: 32, 0
  size: 16, 16
`

const atlasRenamed = `
actors.png
size: 64,32
face
  xy: 32, 0
  size: 16, 16
`

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func setup(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skins"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skins", "actors.atlas"), []byte(atlasV1), 0644))
	writePNG(t, filepath.Join(dir, "skins", "actors.png"), 64, 32)

	cfg := config.Default()
	cfg.Data.SearchDirs = []string{dir}
	cfg.Atlas.Path = "skins/actors.atlas"
	return dir, cfg
}

func TestOpen(t *testing.T) {
	dir, cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	require.Len(t, s.Atlas.Pages(), 1)
	assert.NotNil(t, s.Atlas.Pages()[0].Image)
	assert.Len(t, s.Scene.Cells(), 1)

	frame, err := s.Frame(0.016)
	require.NoError(t, err)
	require.Len(t, frame.Batches, 1)
	assert.Len(t, frame.Outlines, 1)

	assert.Equal(t, []string{
		filepath.Join(dir, "skins", "actors.atlas"),
		filepath.Join(dir, "skins", "actors.png"),
	}, s.WatchPaths())
}

func TestOpen_Errors(t *testing.T) {
	_, cfg := setup(t)
	cfg.Atlas.Path = ""
	_, err := Open(cfg, nil)
	assert.Error(t, err)

	_, cfg = setup(t)
	cfg.Atlas.Path = "skins/missing.atlas"
	_, err = Open(cfg, nil)
	assert.Error(t, err)

	_, cfg = setup(t)
	cfg.Data.GRFPaths = []string{filepath.Join(t.TempDir(), "none.grf")}
	_, err = Open(cfg, nil)
	assert.Error(t, err)
}

func TestReload_Rebinds(t *testing.T) {
	dir, cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	head := s.Scene.Skeleton.FindSlot("head").Attachment()
	assert.Equal(t, float32(0), head.RegionOf().U)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skins", "actors.atlas"), []byte(atlasV2), 0644))
	require.NoError(t, s.Reload())

	assert.Same(t, head, s.Scene.Skeleton.FindSlot("head").Attachment(), "attachment is rebound in place")
	assert.Equal(t, float32(0.5), head.RegionOf().U)
	assert.True(t, head.Resolved())
}

func TestReload_MissingRegionKeepsBinding(t *testing.T) {
	dir, cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	head := s.Scene.Skeleton.FindSlot("head").Attachment()
	old := head.RegionOf()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skins", "actors.atlas"), []byte(atlasRenamed), 0644))
	err = s.Reload()
	assert.ErrorIs(t, err, attachment.ErrRegionNotFound)
	assert.Same(t, old, head.RegionOf())
	assert.False(t, head.Resolved())

	_, err = s.Frame(0)
	assert.NoError(t, err, "old binding still draws")
}

func TestReload_ParseFailureKeepsAtlas(t *testing.T) {
	dir, cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	before := s.Atlas
	require.NoError(t, os.Remove(filepath.Join(dir, "skins", "actors.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skins", "actors.atlas"), []byte(atlasV2), 0644))
	assert.Error(t, s.Reload())
	assert.Same(t, before, s.Atlas)
}
