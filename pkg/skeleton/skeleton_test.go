package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/attachment"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

const tol = 1e-4

func TestWorldTransform_Hierarchy(t *testing.T) {
	sk := New()
	root, err := sk.AddBone("root", nil)
	require.NoError(t, err)
	arm, err := sk.AddBone("arm", root)
	require.NoError(t, err)

	root.X, root.Y = 10, 20
	root.Rotation = 90
	arm.X = 5
	arm.ScaleX = 2
	sk.UpdateWorldTransform()

	x, y := arm.WorldPosition()
	assert.InDelta(t, 10, x, tol)
	assert.InDelta(t, 25, y, tol)

	w := arm.WorldTransform()
	// Local x axis scaled by 2 then turned 90 degrees: (0, 2).
	assert.InDelta(t, 0, w[0], tol)
	assert.InDelta(t, 2, w[3], tol)
	// Local y axis: (-1, 0).
	assert.InDelta(t, -1, w[1], tol)
	assert.InDelta(t, 0, w[4], tol)
}

func TestAddBoneAndSlot_Errors(t *testing.T) {
	sk := New()
	root, err := sk.AddBone("root", nil)
	require.NoError(t, err)

	_, err = sk.AddBone("root", nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	stray := &Bone{Name: "stray"}
	_, err = sk.AddBone("child", stray)
	assert.ErrorIs(t, err, ErrParentOrder)

	_, err = sk.AddSlot("body", root)
	require.NoError(t, err)
	_, err = sk.AddSlot("body", root)
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = sk.AddSlot("ghost", stray)
	assert.Error(t, err)

	assert.Same(t, root, sk.FindBone("root"))
	assert.Nil(t, sk.FindSlot("missing"))
}

func TestSlot_AttachmentTime(t *testing.T) {
	sk := New()
	root, _ := sk.AddBone("root", nil)
	slot, _ := sk.AddSlot("body", root)

	a := attachment.NewBoundingBox("hit")
	sk.Update(1.5)
	slot.SetAttachment(a)
	assert.Zero(t, slot.AttachmentTime())

	sk.Update(0.25)
	assert.InDelta(t, 0.25, slot.AttachmentTime(), tol)

	// Setting the same attachment keeps the clock running.
	slot.SetAttachment(a)
	assert.InDelta(t, 0.25, slot.AttachmentTime(), tol)

	slot.SetAttachmentTime(3)
	assert.InDelta(t, 3, slot.AttachmentTime(), tol)
}

func TestUpdateVertices_DrivesAttachments(t *testing.T) {
	sk := New()
	sk.X, sk.Y = 100, 0
	sk.Tint = gfx.Color{R: 1, G: 1, B: 1, A: 0.5}
	root, _ := sk.AddBone("root", nil)
	root.X = 10

	quad := attachment.NewRegion("head")
	quad.Region.Width, quad.Region.Height = 4, 2
	require.NoError(t, quad.SetRegion(&atlas.Region{U: 0, V: 0, U2: 1, V2: 1}))
	body, _ := sk.AddSlot("body", root)
	body.SetAttachment(quad)

	box := attachment.NewBoundingBox("hit")
	require.NoError(t, box.Box.SetVertices([]float32{0, 0, 1, 0, 1, 1}))
	hit, _ := sk.AddSlot("hit", root)
	hit.SetAttachment(box)

	_, _ = sk.AddSlot("empty", root)

	sk.UpdateWorldTransform()
	require.NoError(t, sk.UpdateVertices(false))

	v := quad.Vertices()
	assert.InDelta(t, 108, v[0], tol)
	assert.InDelta(t, -1, v[1], tol)
	assert.Equal(t, uint32(0x7FFFFFFF), gfx.PackedBits(v[2]))
	assert.Equal(t, []float32{110, 0, 111, 0, 111, 1}, box.Vertices())
}

func TestUpdateVertices_Error(t *testing.T) {
	sk := New()
	root, _ := sk.AddBone("root", nil)
	slot, _ := sk.AddSlot("cape", root)
	slot.SetAttachment(attachment.NewMesh("cape"))

	err := sk.UpdateVertices(false)
	assert.ErrorIs(t, err, attachment.ErrUnsetMesh)
	assert.Contains(t, err.Error(), `slot "cape"`)
}

func TestUpdate_NoAllocations(t *testing.T) {
	sk := New()
	root, _ := sk.AddBone("root", nil)
	arm, _ := sk.AddBone("arm", root)
	slot, _ := sk.AddSlot("arm", arm)
	quad := attachment.NewRegion("arm")
	quad.Region.Width, quad.Region.Height = 8, 8
	require.NoError(t, quad.SetRegion(&atlas.Region{U2: 1, V2: 1}))
	slot.SetAttachment(quad)

	allocs := testing.AllocsPerRun(100, func() {
		root.Rotation++
		sk.Update(1.0 / 60)
		sk.UpdateWorldTransform()
		_ = sk.UpdateVertices(true)
	})
	assert.Zero(t, allocs)
}
