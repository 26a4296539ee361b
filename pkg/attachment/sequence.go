package attachment

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

// DefaultFrameDuration is the frame duration used by the loader, in seconds.
const DefaultFrameDuration = 0.1

// SequenceMode selects how elapsed time maps to a frame.
type SequenceMode uint8

// Sequence modes.
const (
	SequenceForward      SequenceMode = iota // Stops on the last frame
	SequenceForwardLoop                      // Wraps to the first frame
	SequenceBackward                         // Stops on the first frame
	SequenceBackwardLoop                     // Wraps to the last frame
	SequencePingPong                         // Plays forward then backward
	SequenceRandom                           // Ignores time
)

var sequenceModeNames = [...]string{
	SequenceForward:      "forward",
	SequenceForwardLoop:  "forwardLoop",
	SequenceBackward:     "backward",
	SequenceBackwardLoop: "backwardLoop",
	SequencePingPong:     "pingPong",
	SequenceRandom:       "random",
}

func (m SequenceMode) String() string {
	if int(m) < len(sequenceModeNames) {
		return sequenceModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseSequenceMode converts a mode name back to a SequenceMode.
func ParseSequenceMode(name string) (SequenceMode, error) {
	for m, n := range sequenceModeNames {
		if n == name {
			return SequenceMode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown sequence mode %q", name)
}

// SequenceExtra is the payload of a region sequence attachment.
type SequenceExtra struct {
	Frames        []*atlas.Region
	FrameDuration float32 // seconds per frame
	Mode          SequenceMode
}

// FrameIndex maps the slot's attachment time to a frame index.
// A single frame, or a non-positive duration, always selects frame 0
// (random mode still samples).
func (s *SequenceExtra) FrameIndex(attachmentTime float32) (int, error) {
	n := len(s.Frames)
	if n == 0 {
		return 0, ErrUnsetSequence
	}
	if s.Mode == SequenceRandom {
		return rand.IntN(n), nil
	}
	if n == 1 || s.FrameDuration <= 0 {
		return 0, nil
	}

	i := int(math32.Floor(attachmentTime / s.FrameDuration))
	switch s.Mode {
	case SequenceForward:
		return clamp(i, 0, n-1), nil
	case SequenceForwardLoop:
		return mod(i, n), nil
	case SequenceBackward:
		return clamp(n-i-1, 0, n-1), nil
	case SequenceBackwardLoop:
		return n - 1 - mod(i, n), nil
	case SequencePingPong:
		i = mod(i, n*2)
		if i >= n {
			i = n - 1 - (i - n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: sequence mode %s", ErrUnsupportedType, s.Mode)
	}
}

// mod is a modulus that stays non-negative for negative times.
func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
