// Package attachment synthesizes world-space vertices for skinned 2D artwork.
//
// An Attachment is a tagged variant: Kind selects which geometry payload is
// populated. Region and RegionSequence share RegionGeometry, RegionSequence
// adds SequenceExtra, Mesh and BoundingBox carry their own geometry. All
// per-frame work goes through UpdateVertices, which writes into buffers the
// attachment owns and reuses across frames.
//
// Nothing in this package is safe for concurrent use. A buffer must not be
// read while a synthesis call targeting it is in progress.
package attachment

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

// Attachment errors.
var (
	ErrUnsupportedType   = errors.New("unsupported attachment type")
	ErrRegionNotFound    = errors.New("region not found")
	ErrInvalidRegion     = errors.New("invalid region")
	ErrUnsetSequence     = errors.New("sequence has no frames")
	ErrUnsetMesh         = errors.New("mesh geometry not set")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Kind identifies the attachment variant.
type Kind uint8

// Attachment kinds.
const (
	KindRegion Kind = iota
	KindRegionSequence
	KindMesh
	KindBoundingBox
)

var kindNames = [...]string{
	KindRegion:         "region",
	KindRegionSequence: "regionsequence",
	KindMesh:           "mesh",
	KindBoundingBox:    "boundingbox",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// Bone exposes the world transform of the bone driving an attachment.
// The transform is {m00, m01, worldX, m10, m11, worldY}.
type Bone interface {
	WorldTransform() f32.Aff3
}

// Skeleton exposes the skeleton-wide tint and world offset.
type Skeleton interface {
	Color() gfx.Color
	Position() (x, y float32)
}

// Slot exposes the state of the slot wearing an attachment.
type Slot interface {
	Bone() Bone
	Skeleton() Skeleton
	Color() gfx.Color
	// AttachmentTime is the time in seconds since the attachment was set.
	AttachmentTime() float32
}

// Attachment is drawable or collidable geometry worn by a slot.
type Attachment struct {
	Name string
	// Path is the atlas name used to look up regions. Defaults to Name.
	Path  string
	Kind  Kind
	Color gfx.Color

	Region   *RegionGeometry      // KindRegion, KindRegionSequence
	Sequence *SequenceExtra       // KindRegionSequence
	Mesh     *MeshGeometry        // KindMesh
	Box      *BoundingBoxGeometry // KindBoundingBox

	resolved bool
}

// NewRegion creates an unbound region attachment.
func NewRegion(name string) *Attachment {
	return &Attachment{
		Name:   name,
		Path:   name,
		Kind:   KindRegion,
		Color:  gfx.White,
		Region: newRegionGeometry(),
	}
}

// NewRegionSequence creates a region attachment that flips between frames.
func NewRegionSequence(name string, mode SequenceMode, frameDuration float32) *Attachment {
	return &Attachment{
		Name:   name,
		Path:   name,
		Kind:   KindRegionSequence,
		Color:  gfx.White,
		Region: newRegionGeometry(),
		Sequence: &SequenceExtra{
			Mode:          mode,
			FrameDuration: frameDuration,
		},
	}
}

// NewMesh creates a mesh attachment without geometry.
func NewMesh(name string) *Attachment {
	return &Attachment{
		Name:  name,
		Path:  name,
		Kind:  KindMesh,
		Color: gfx.White,
		Mesh:  &MeshGeometry{},
	}
}

// NewBoundingBox creates a polygon attachment without vertices.
func NewBoundingBox(name string) *Attachment {
	return &Attachment{
		Name:     name,
		Path:     name,
		Kind:     KindBoundingBox,
		Color:    gfx.White,
		Box:      &BoundingBoxGeometry{},
		resolved: true,
	}
}

// newOfKind creates an empty attachment of the given kind.
func newOfKind(kind Kind, name string) (*Attachment, error) {
	switch kind {
	case KindRegion:
		return NewRegion(name), nil
	case KindRegionSequence:
		return NewRegionSequence(name, SequenceForwardLoop, DefaultFrameDuration), nil
	case KindMesh:
		return NewMesh(name), nil
	case KindBoundingBox:
		return NewBoundingBox(name), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}
}

// Resolved reports whether the attachment's regions are bound.
func (a *Attachment) Resolved() bool {
	return a.resolved
}

// SetRegion binds a region to a region or mesh attachment.
// For sequences the region becomes the current frame until the next update.
func (a *Attachment) SetRegion(region *atlas.Region) error {
	switch a.Kind {
	case KindRegion, KindRegionSequence:
		return a.Region.SetRegion(region)
	case KindMesh:
		return a.Mesh.SetRegion(region)
	default:
		return fmt.Errorf("%w: %s attachment %q has no region", ErrUnsupportedType, a.Kind, a.Name)
	}
}

// RegionOf returns the currently bound region, or nil.
func (a *Attachment) RegionOf() *atlas.Region {
	switch a.Kind {
	case KindRegion, KindRegionSequence:
		return a.Region.region
	case KindMesh:
		return a.Mesh.region
	default:
		return nil
	}
}

// UpdateVertices refreshes the attachment's world vertices for this frame.
// premultipliedAlpha scales the packed RGB channels by alpha; it is ignored
// by bounding boxes, which carry no color.
func (a *Attachment) UpdateVertices(slot Slot, premultipliedAlpha bool) error {
	switch a.Kind {
	case KindRegion:
		a.Region.updateVertices(slot, packTint(slot, a.Color, premultipliedAlpha))
		return nil

	case KindRegionSequence:
		idx, err := a.Sequence.FrameIndex(slot.AttachmentTime())
		if err != nil {
			return fmt.Errorf("attachment %q: %w", a.Name, err)
		}
		if frame := a.Sequence.Frames[idx]; frame != a.Region.region {
			if err := a.Region.SetRegion(frame); err != nil {
				return fmt.Errorf("attachment %q frame %d: %w", a.Name, idx, err)
			}
		}
		a.Region.updateVertices(slot, packTint(slot, a.Color, premultipliedAlpha))
		return nil

	case KindMesh:
		if err := a.Mesh.updateVertices(slot, packTint(slot, a.Color, premultipliedAlpha)); err != nil {
			return fmt.Errorf("attachment %q: %w", a.Name, err)
		}
		return nil

	case KindBoundingBox:
		if err := a.Box.updateVertices(slot); err != nil {
			return fmt.Errorf("attachment %q: %w", a.Name, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, a.Kind)
	}
}

// Vertices returns the output buffer of the last UpdateVertices call.
// Region kinds use 4 x (x, y, color, u, v), meshes (n/2) x 5 floats and
// bounding boxes plain (x, y) pairs. The slice aliases the attachment's
// buffer and is overwritten by the next update.
func (a *Attachment) Vertices() []float32 {
	switch a.Kind {
	case KindRegion, KindRegionSequence:
		return a.Region.vertices[:]
	case KindMesh:
		return a.Mesh.world
	case KindBoundingBox:
		return a.Box.world
	default:
		return nil
	}
}

var quadTriangles = []uint16{0, 1, 2, 2, 3, 0}

// Triangles returns the index list for assembling triangles from Vertices.
// Bounding boxes return nil. The slice must not be modified.
func (a *Attachment) Triangles() []uint16 {
	switch a.Kind {
	case KindRegion, KindRegionSequence:
		return quadTriangles
	case KindMesh:
		return a.Mesh.Triangles
	default:
		return nil
	}
}

// Copy returns an independent attachment for a new skeleton instance.
// Regions and frames are shared; geometry and output buffers are not.
func (a *Attachment) Copy() *Attachment {
	c := *a
	if a.Region != nil {
		r := *a.Region
		c.Region = &r
	}
	if a.Sequence != nil {
		s := *a.Sequence
		c.Sequence = &s
	}
	if a.Mesh != nil {
		c.Mesh = a.Mesh.copy()
	}
	if a.Box != nil {
		c.Box = a.Box.copy()
	}
	return &c
}

// packTint multiplies skeleton, slot and attachment tints into one packed color.
func packTint(slot Slot, tint gfx.Color, premultipliedAlpha bool) float32 {
	sk := slot.Skeleton().Color()
	sl := slot.Color()
	a := sk.A * sl.A * tint.A * 255
	multiplier := float32(255)
	if premultipliedAlpha {
		multiplier = a
	}
	return gfx.PackARGB(
		sk.R*sl.R*tint.R*multiplier,
		sk.G*sl.G*tint.G*multiplier,
		sk.B*sl.B*tint.B*multiplier,
		a,
	)
}

// worldOrigin returns the driving affine and the translation including the
// skeleton offset.
func worldOrigin(slot Slot) (m00, m01, m10, m11, x, y float32) {
	t := slot.Bone().WorldTransform()
	sx, sy := slot.Skeleton().Position()
	return t[0], t[1], t[3], t[4], t[2] + sx, t[5] + sy
}
