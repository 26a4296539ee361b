package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

func frames(n int) []*atlas.Region {
	out := make([]*atlas.Region, n)
	for i := range out {
		u := float32(i) / float32(n)
		out[i] = &atlas.Region{
			Name: "walk", Index: i,
			U: u, V: 0, U2: u + 1/float32(n), V2: 1,
			PackedWidth: 8, PackedHeight: 8,
			OriginalWidth: 8, OriginalHeight: 8,
		}
	}
	return out
}

func TestFrameIndex_Modes(t *testing.T) {
	tests := []struct {
		mode SequenceMode
		time float32
		want int
	}{
		{SequenceForward, 4.5, 3},
		{SequenceForwardLoop, 4.5, 0},
		{SequenceBackward, 4.5, 0},
		{SequenceBackwardLoop, 4.5, 3},
		{SequencePingPong, 4.5, 3},

		{SequenceForward, 1.2, 1},
		{SequenceForwardLoop, 6.1, 2},
		{SequenceBackward, 0.5, 3},
		{SequenceBackward, 2.5, 1},
		{SequenceBackwardLoop, 1.0, 2},
		{SequencePingPong, 5.5, 2},
		{SequencePingPong, 7.9, 0},
		{SequencePingPong, 8.0, 0},

		{SequenceForward, -3, 0},
		{SequenceForwardLoop, -1, 3},
		{SequenceBackward, -3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := &SequenceExtra{Frames: frames(4), FrameDuration: 1, Mode: tt.mode}
			got, err := s.FrameIndex(tt.time)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "time %v", tt.time)
		})
	}
}

func TestFrameIndex_SingleFrame(t *testing.T) {
	modes := []SequenceMode{
		SequenceForward, SequenceForwardLoop, SequenceBackward,
		SequenceBackwardLoop, SequencePingPong, SequenceRandom,
	}
	for _, mode := range modes {
		s := &SequenceExtra{Frames: frames(1), FrameDuration: 0.25, Mode: mode}
		for _, tm := range []float32{0, 0.3, 10, -2} {
			got, err := s.FrameIndex(tm)
			require.NoError(t, err)
			assert.Equal(t, 0, got, "mode %s time %v", mode, tm)
		}
	}
}

func TestFrameIndex_ZeroDuration(t *testing.T) {
	s := &SequenceExtra{Frames: frames(3), FrameDuration: 0, Mode: SequenceForwardLoop}
	got, err := s.FrameIndex(5)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestFrameIndex_Random(t *testing.T) {
	s := &SequenceExtra{Frames: frames(5), FrameDuration: 1, Mode: SequenceRandom}
	for i := 0; i < 200; i++ {
		got, err := s.FrameIndex(0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0)
		assert.Less(t, got, 5)
	}
}

func TestFrameIndex_Unset(t *testing.T) {
	s := &SequenceExtra{FrameDuration: 1}
	_, err := s.FrameIndex(1)
	assert.ErrorIs(t, err, ErrUnsetSequence)

	a := NewRegionSequence("walk", SequenceForward, 1)
	err = a.UpdateVertices(newTestSlot(identity), false)
	assert.ErrorIs(t, err, ErrUnsetSequence)
}

func TestRegionSequence_BindsSelectedFrame(t *testing.T) {
	a := NewRegionSequence("walk", SequenceForwardLoop, 0.5)
	a.Region.Width, a.Region.Height = 8, 8
	a.Sequence.Frames = frames(4)
	require.NoError(t, a.SetRegion(a.Sequence.Frames[0]))

	slot := newTestSlot(identity)
	slot.time = 1.1 // frame 2
	require.NoError(t, a.UpdateVertices(slot, false))

	assert.Same(t, a.Sequence.Frames[2], a.RegionOf())
	v := a.Vertices()
	assert.Equal(t, float32(0.5), v[3], "BL u")
	assert.Equal(t, float32(-4), v[0], "BL x")

	slot.time = 2.0 // wraps to frame 0
	require.NoError(t, a.UpdateVertices(slot, false))
	assert.Same(t, a.Sequence.Frames[0], a.RegionOf())
	assert.Equal(t, float32(0), a.Vertices()[3])
}

func TestRegionSequence_NoAllocations(t *testing.T) {
	a := NewRegionSequence("walk", SequencePingPong, 0.1)
	a.Region.Width, a.Region.Height = 8, 8
	a.Sequence.Frames = frames(4)
	slot := newTestSlot(identity)

	allocs := testing.AllocsPerRun(100, func() {
		slot.time += 0.05
		_ = a.UpdateVertices(slot, false)
	})
	assert.Zero(t, allocs)
}

func TestSequenceModeNames(t *testing.T) {
	for m := SequenceForward; m <= SequenceRandom; m++ {
		parsed, err := ParseSequenceMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err := ParseSequenceMode("sideways")
	assert.Error(t, err)
}
