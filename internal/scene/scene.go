// Package scene builds a showcase skeleton that wears every region of an
// atlas, one cell per region name.
package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/attachment"
	"github.com/Faultbox/midgard-skin/pkg/skeleton"
)

// ErrEmpty is returned when the atlas has no regions.
var ErrEmpty = errors.New("atlas has no regions")

const (
	skinName    = "default"
	boundsSlot  = "#bounds"
	fillRatio   = 0.8
	wobbleDeg   = 12
	wobbleSpeed = 0.5 // cycles per second
)

// Options controls the grid layout.
type Options struct {
	Columns  int
	CellSize float32
	Bounds   bool // add a bounding box slot per cell
}

// DefaultOptions returns a 4-column grid of 128 unit cells with bounds.
func DefaultOptions() Options {
	return Options{Columns: 4, CellSize: 128, Bounds: true}
}

// Scene is a skeleton with a root bone and one child bone per region name.
type Scene struct {
	Skeleton    *skeleton.Skeleton
	Attachments []*attachment.Attachment

	cells   []*skeleton.Bone
	columns int
	rows    int
	size    float32
}

// Build creates the scene. Names with several indexed regions become
// looping region sequences; the rest become plain regions.
func Build(a *atlas.Atlas, loader attachment.Loader, opts Options, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Columns <= 0 {
		opts.Columns = 1
	}
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultOptions().CellSize
	}

	names := a.Names()
	if len(names) == 0 {
		return nil, ErrEmpty
	}

	sk := skeleton.New()
	root, err := sk.AddBone("root", nil)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Skeleton: sk,
		columns:  opts.Columns,
		rows:     (len(names) + opts.Columns - 1) / opts.Columns,
		size:     opts.CellSize,
	}

	for i, name := range names {
		kind := attachment.KindRegion
		if len(a.FindRegions(name)) > 1 {
			kind = attachment.KindRegionSequence
		}

		att, err := loader.NewAttachment(skinName, kind, name)
		if err != nil {
			return nil, err
		}

		bone, err := sk.AddBone(name, root)
		if err != nil {
			return nil, err
		}
		col, row := i%opts.Columns, i/opts.Columns
		bone.X = (float32(col) + 0.5) * opts.CellSize
		bone.Y = -(float32(row) + 0.5) * opts.CellSize

		w, h := att.Region.Width, att.Region.Height
		if longest := math32.Max(w, h); longest > 0 {
			scale := math32.Min(1, opts.CellSize*fillRatio/longest)
			bone.ScaleX, bone.ScaleY = scale, scale
		}

		slot, err := sk.AddSlot(name, bone)
		if err != nil {
			return nil, err
		}
		slot.SetAttachment(att)
		s.Attachments = append(s.Attachments, att)
		s.cells = append(s.cells, bone)

		if opts.Bounds {
			if err := s.addBounds(loader, bone, name, w, h); err != nil {
				return nil, err
			}
		}
	}

	sk.UpdateWorldTransform()
	log.Info("scene built",
		zap.Int("cells", len(s.cells)),
		zap.Int("columns", s.columns),
		zap.Int("rows", s.rows),
	)
	return s, nil
}

func (s *Scene) addBounds(loader attachment.Loader, bone *skeleton.Bone, name string, w, h float32) error {
	box, err := loader.NewAttachment(skinName, attachment.KindBoundingBox, name+boundsSlot)
	if err != nil {
		return err
	}
	hw, hh := w/2, h/2
	if err := box.Box.SetVertices([]float32{-hw, -hh, hw, -hh, hw, hh, -hw, hh}); err != nil {
		return fmt.Errorf("bounds for %q: %w", name, err)
	}
	slot, err := s.Skeleton.AddSlot(name+boundsSlot, bone)
	if err != nil {
		return err
	}
	slot.SetAttachment(box)
	s.Attachments = append(s.Attachments, box)
	return nil
}

// Cells returns the per-region bones in grid order.
func (s *Scene) Cells() []*skeleton.Bone {
	return s.cells
}

// Bounds returns the world box of the grid.
func (s *Scene) Bounds() (minX, minY, maxX, maxY float32) {
	x, y := s.Skeleton.Position()
	return x, y - float32(s.rows)*s.size, x + float32(s.columns)*s.size, y
}

// Animate poses the cells for time t in seconds. Each cell swings with
// its own phase.
func (s *Scene) Animate(t float32) {
	for i, bone := range s.cells {
		phase := float32(i) * 0.7
		bone.Rotation = wobbleDeg * math32.Sin(2*math32.Pi*wobbleSpeed*t+phase)
	}
	s.Skeleton.UpdateWorldTransform()
}

// Update advances the skeleton clock and re-poses it.
func (s *Scene) Update(delta float32) {
	s.Skeleton.Update(delta)
	s.Animate(s.Skeleton.Time)
}
