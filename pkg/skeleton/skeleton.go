// Package skeleton is a minimal bone hierarchy that drives attachments.
//
// It provides world transforms, slot tints and attachment clocks. Timelines
// and animation mixing live elsewhere; callers pose bones directly.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"

	"github.com/Faultbox/midgard-skin/pkg/attachment"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

// Skeleton errors.
var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrParentOrder   = errors.New("parent must be added before child")
)

const degRad = math32.Pi / 180

// Bone is a node of the hierarchy. Local fields are relative to the parent.
type Bone struct {
	Name     string
	Parent   *Bone
	X, Y     float32
	Rotation float32 // degrees
	ScaleX   float32
	ScaleY   float32

	world f32.Aff3
}

// WorldTransform returns {m00, m01, worldX, m10, m11, worldY} as of the last
// UpdateWorldTransform.
func (b *Bone) WorldTransform() f32.Aff3 {
	return b.world
}

// WorldPosition returns the bone origin in skeleton space.
func (b *Bone) WorldPosition() (x, y float32) {
	return b.world[2], b.world[5]
}

// updateWorld composes the local transform with the parent's world transform.
// The parent must already be up to date.
func (b *Bone) updateWorld() {
	sin, cos := math32.Sincos(b.Rotation * degRad)
	la, lb := cos*b.ScaleX, -sin*b.ScaleY
	lc, ld := sin*b.ScaleX, cos*b.ScaleY

	p := b.Parent
	if p == nil {
		b.world = f32.Aff3{la, lb, b.X, lc, ld, b.Y}
		return
	}
	pw := &p.world
	b.world = f32.Aff3{
		pw[0]*la + pw[1]*lc,
		pw[0]*lb + pw[1]*ld,
		pw[0]*b.X + pw[1]*b.Y + pw[2],
		pw[3]*la + pw[4]*lc,
		pw[3]*lb + pw[4]*ld,
		pw[3]*b.X + pw[4]*b.Y + pw[5],
	}
}

// Slot holds one attachment on a bone, in draw order.
type Slot struct {
	Name string
	Tint gfx.Color

	bone       *Bone
	skeleton   *Skeleton
	attachment *attachment.Attachment
	attachedAt float32
}

// Bone implements attachment.Slot.
func (s *Slot) Bone() attachment.Bone { return s.bone }

// Skeleton implements attachment.Slot.
func (s *Slot) Skeleton() attachment.Skeleton { return s.skeleton }

// Color implements attachment.Slot.
func (s *Slot) Color() gfx.Color { return s.Tint }

// AttachmentTime implements attachment.Slot.
func (s *Slot) AttachmentTime() float32 {
	return s.skeleton.Time - s.attachedAt
}

// SetAttachmentTime rewinds the attachment clock to t seconds.
func (s *Slot) SetAttachmentTime(t float32) {
	s.attachedAt = s.skeleton.Time - t
}

// BoneNode returns the concrete bone the slot is attached to.
func (s *Slot) BoneNode() *Bone { return s.bone }

// Attachment returns the current attachment, or nil.
func (s *Slot) Attachment() *attachment.Attachment { return s.attachment }

// SetAttachment replaces the attachment. The attachment clock restarts only
// when the attachment actually changes.
func (s *Slot) SetAttachment(a *attachment.Attachment) {
	if a == s.attachment {
		return
	}
	s.attachment = a
	s.attachedAt = s.skeleton.Time
}

// Skeleton owns bones and slots and the world offset and tint shared by them.
type Skeleton struct {
	X, Y float32
	Tint gfx.Color
	Time float32

	bones  []*Bone
	slots  []*Slot
	byBone map[string]*Bone
	bySlot map[string]*Slot
}

// New creates an empty skeleton.
func New() *Skeleton {
	return &Skeleton{
		Tint:   gfx.White,
		byBone: make(map[string]*Bone),
		bySlot: make(map[string]*Slot),
	}
}

// Color implements attachment.Skeleton.
func (sk *Skeleton) Color() gfx.Color { return sk.Tint }

// Position implements attachment.Skeleton.
func (sk *Skeleton) Position() (x, y float32) { return sk.X, sk.Y }

// AddBone appends a bone. parent may be nil for a root; it must already
// belong to the skeleton.
func (sk *Skeleton) AddBone(name string, parent *Bone) (*Bone, error) {
	if _, ok := sk.byBone[name]; ok {
		return nil, fmt.Errorf("%w: bone %q", ErrDuplicateName, name)
	}
	if parent != nil && sk.byBone[parent.Name] != parent {
		return nil, fmt.Errorf("%w: bone %q parent %q", ErrParentOrder, name, parent.Name)
	}
	b := &Bone{Name: name, Parent: parent, ScaleX: 1, ScaleY: 1}
	sk.bones = append(sk.bones, b)
	sk.byBone[name] = b
	return b, nil
}

// AddSlot appends a slot on bone at the end of the draw order.
func (sk *Skeleton) AddSlot(name string, bone *Bone) (*Slot, error) {
	if _, ok := sk.bySlot[name]; ok {
		return nil, fmt.Errorf("%w: slot %q", ErrDuplicateName, name)
	}
	if bone == nil || sk.byBone[bone.Name] != bone {
		return nil, fmt.Errorf("slot %q: bone does not belong to skeleton", name)
	}
	s := &Slot{Name: name, Tint: gfx.White, bone: bone, skeleton: sk, attachedAt: sk.Time}
	sk.slots = append(sk.slots, s)
	sk.bySlot[name] = s
	return s, nil
}

// Bones returns the bones, parents before children.
func (sk *Skeleton) Bones() []*Bone { return sk.bones }

// Slots returns the slots in draw order.
func (sk *Skeleton) Slots() []*Slot { return sk.slots }

// FindBone returns the named bone, or nil.
func (sk *Skeleton) FindBone(name string) *Bone { return sk.byBone[name] }

// FindSlot returns the named slot, or nil.
func (sk *Skeleton) FindSlot(name string) *Slot { return sk.bySlot[name] }

// Update advances the skeleton clock.
func (sk *Skeleton) Update(delta float32) {
	sk.Time += delta
}

// UpdateWorldTransform recomputes every bone's world transform.
func (sk *Skeleton) UpdateWorldTransform() {
	for _, b := range sk.bones {
		b.updateWorld()
	}
}

// UpdateVertices synthesizes the vertices of every slot's attachment.
func (sk *Skeleton) UpdateVertices(premultipliedAlpha bool) error {
	for _, s := range sk.slots {
		if s.attachment == nil {
			continue
		}
		if err := s.attachment.UpdateVertices(s, premultipliedAlpha); err != nil {
			return fmt.Errorf("slot %q: %w", s.Name, err)
		}
	}
	return nil
}
