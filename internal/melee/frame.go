// Package melee models the per-frame fighter state recorded in replays.
package melee

// FirstFrame is the frame number of the first recorded frame. Replays count
// frames from here so that frame 0 is the first frame the players can act.
const FirstFrame = -123

// Frame is one fighter's state on one frame. Broad is derived from State
// when the frame is built and never changes afterwards.
type Frame struct {
	Character Character
	State     ActionState
	Broad     BroadState
	AnimFrame float32
	Percent   float32
}

// NewFrame builds a Frame with its broad state classified.
func NewFrame(c Character, s ActionState, animFrame, percent float32) Frame {
	return Frame{
		Character: c,
		State:     s,
		Broad:     s.Broad(),
		AnimFrame: animFrame,
		Percent:   percent,
	}
}

// IsDead reports whether the fighter is in a death state.
func (f Frame) IsDead() bool {
	return f.Broad == Dead
}
