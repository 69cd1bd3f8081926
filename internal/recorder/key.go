// Package recorder turns engine lifecycle callbacks into a script of frame
// bulks.
package recorder

// KeyState is the state of one movement key within the current physics
// frame.
type KeyState int

const (
	// KeyReleased is up with no transition this frame.
	KeyReleased KeyState = iota

	// KeyHeld is down with no transition this frame.
	KeyHeld

	// KeyPressed went down this frame.
	KeyPressed

	// KeyReleasedThisFrame went up this frame. The key counts as released
	// straight away.
	KeyReleasedThisFrame

	// KeyRepressed went down, up and down again this frame.
	KeyRepressed
)

func (s KeyState) String() string {
	switch s {
	case KeyReleased:
		return "released"
	case KeyHeld:
		return "held"
	case KeyPressed:
		return "pressed"
	case KeyReleasedThisFrame:
		return "released this frame"
	case KeyRepressed:
		return "repressed"
	default:
		return "unknown"
	}
}

// IsDown returns true for the states in which the key is held.
func (s KeyState) IsDown() bool {
	return s == KeyHeld || s == KeyPressed || s == KeyRepressed
}

// Key tracks the transitions of a movement key. The engine only applies a
// key for the part of the frame it was down, so a key pressed during the
// frame moves the player slower than its speed cvar suggests.
type Key struct {
	state KeyState
}

// State returns the current state.
func (k *Key) State() KeyState {
	return k.state
}

// IsDown returns true if the key is held.
func (k *Key) IsDown() bool {
	return k.state.IsDown()
}

// Update records the key as down or up. Nothing changes if the key is
// already in that position.
func (k *Key) Update(down bool) {
	switch {
	case down && !k.IsDown():
		if k.state == KeyReleasedThisFrame {
			k.state = KeyRepressed
		} else {
			k.state = KeyPressed
		}
	case !down && k.IsDown():
		k.state = KeyReleasedThisFrame
	}
}

// Multiplier is the fraction of the speed cvar the engine applies for the
// key this frame.
func (k *Key) Multiplier() float64 {
	switch k.state {
	case KeyPressed:
		return 0.5
	case KeyRepressed:
		return 0.75
	default:
		return 1
	}
}

// ClearImpulses forgets this frame's transitions, keeping whether the key is
// down.
func (k *Key) ClearImpulses() {
	switch k.state {
	case KeyPressed, KeyRepressed:
		k.state = KeyHeld
	case KeyReleasedThisFrame:
		k.state = KeyReleased
	}
}

// Keys holds the four movement keys whose speed the recorder corrects.
type Keys struct {
	Forward Key
	Back    Key
	Left    Key
	Right   Key
}

// ClearImpulses clears the transitions of every key.
func (ks *Keys) ClearImpulses() {
	ks.Forward.ClearImpulses()
	ks.Back.ClearImpulses()
	ks.Left.ClearImpulses()
	ks.Right.ClearImpulses()
}
