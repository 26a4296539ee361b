package attachment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

// RegionFinder looks up atlas regions by name. *atlas.Atlas implements it.
type RegionFinder interface {
	FindRegion(name string) *atlas.Region
	FindRegions(name string) []*atlas.Region
}

// Loader constructs attachments for skeleton data.
type Loader interface {
	NewAttachment(skin string, kind Kind, name string) (*Attachment, error)
}

// AtlasLoader creates attachments bound to regions of an atlas.
type AtlasLoader struct {
	finder RegionFinder
	log    *zap.Logger
}

// NewAtlasLoader creates a loader backed by finder. log may be nil.
func NewAtlasLoader(finder RegionFinder, log *zap.Logger) *AtlasLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &AtlasLoader{finder: finder, log: log}
}

// NewAttachment constructs an attachment of the given kind. Region-backed
// kinds are bound immediately; region quads without an explicit size take
// the region's original size.
func (l *AtlasLoader) NewAttachment(skin string, kind Kind, name string) (*Attachment, error) {
	a, err := newOfKind(kind, name)
	if err != nil {
		return nil, fmt.Errorf("attachment %q in skin %q: %w", name, skin, err)
	}

	if err := bind(a, l.finder); err != nil {
		return nil, fmt.Errorf("attachment %q in skin %q: %w", name, skin, err)
	}

	if a.Region != nil && a.Region.Width == 0 && a.Region.Height == 0 {
		r := a.Region.region
		a.Region.Width, a.Region.Height = sourceSize(r)
		a.Region.UpdateOffset()
	}

	l.log.Debug("attachment created",
		zap.String("skin", skin),
		zap.String("name", name),
		zap.Stringer("kind", kind),
	)
	return a, nil
}

// bind looks up and binds the regions an attachment needs.
func bind(a *Attachment, finder RegionFinder) error {
	switch a.Kind {
	case KindRegion:
		region := finder.FindRegion(a.Path)
		if region == nil {
			return fmt.Errorf("%w: %q", ErrRegionNotFound, a.Path)
		}
		if err := a.Region.SetRegion(region); err != nil {
			return err
		}

	case KindRegionSequence:
		frames := finder.FindRegions(a.Path)
		if len(frames) == 0 {
			return fmt.Errorf("%w: %q", ErrRegionNotFound, a.Path)
		}
		a.Sequence.Frames = frames
		if err := a.Region.SetRegion(frames[0]); err != nil {
			return err
		}

	case KindMesh:
		region := finder.FindRegion(a.Path)
		if region == nil {
			return fmt.Errorf("%w: %q", ErrRegionNotFound, a.Path)
		}
		if err := a.Mesh.SetRegion(region); err != nil {
			return err
		}

	case KindBoundingBox:
		// No texture.

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, a.Kind)
	}

	a.resolved = true
	return nil
}

// sourceSize returns the untrimmed, unrotated size of a region.
func sourceSize(r *atlas.Region) (float32, float32) {
	if r.OriginalWidth > 0 && r.OriginalHeight > 0 {
		return float32(r.OriginalWidth), float32(r.OriginalHeight)
	}
	if r.Rotate {
		return float32(r.PackedHeight), float32(r.PackedWidth)
	}
	return float32(r.PackedWidth), float32(r.PackedHeight)
}
