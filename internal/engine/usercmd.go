// Package engine holds the values the recorder receives from the game engine.
// The hooking layer extracts these from engine memory; nothing here reads
// engine structures directly.
package engine

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Buttons is the button bitmask carried by a user command.
type Buttons uint16

// Button bits as defined by the engine's in_buttons.h.
const (
	InAttack Buttons = 1 << iota
	InJump
	InDuck
	InForward
	InBack
	InUse
	InCancel
	InLeft
	InRight
	InMoveLeft
	InMoveRight
	InAttack2
	InRun
	InReload
	InAlt1
	InScore
)

var buttonNames = []struct {
	bit  Buttons
	name string
}{
	{InAttack, "attack"},
	{InJump, "jump"},
	{InDuck, "duck"},
	{InForward, "forward"},
	{InBack, "back"},
	{InUse, "use"},
	{InCancel, "cancel"},
	{InLeft, "left"},
	{InRight, "right"},
	{InMoveLeft, "moveleft"},
	{InMoveRight, "moveright"},
	{InAttack2, "attack2"},
	{InRun, "run"},
	{InReload, "reload"},
	{InAlt1, "alt1"},
	{InScore, "score"},
}

// Has returns true if every bit of b is set.
func (bs Buttons) Has(b Buttons) bool {
	return bs&b == b
}

// String lists the names of the set buttons, joined with '+'.
func (bs Buttons) String() string {
	if bs == 0 {
		return "none"
	}
	var names []string
	for _, bn := range buttonNames {
		if bs.Has(bn.bit) {
			names = append(names, bn.name)
		}
	}
	return strings.Join(names, "+")
}

// ParseButtons is the inverse of Buttons.String.
func ParseButtons(s string) (Buttons, error) {
	if s == "" || s == "none" {
		return 0, nil
	}
	var bs Buttons
	for _, name := range strings.Split(s, "+") {
		found := false
		for _, bn := range buttonNames {
			if bn.name == name {
				bs |= bn.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown button %q", name)
		}
	}
	return bs, nil
}

// UserCmd is one input command as the engine is about to simulate it.
type UserCmd struct {
	// Msec is the simulated time the command consumes. Zero for commands
	// the engine runs without advancing the simulation.
	Msec uint8

	// ViewAngles holds pitch, yaw and roll in degrees.
	ViewAngles mgl32.Vec3

	ForwardMove float32
	SideMove    float32
	UpMove      float32
	Buttons     Buttons
}

// Pitch returns the view pitch.
func (c UserCmd) Pitch() float32 {
	return c.ViewAngles.X()
}

// Yaw returns the view yaw.
func (c UserCmd) Yaw() float32 {
	return c.ViewAngles.Y()
}

// ConsumesTime returns true if simulating the command advances the game.
func (c UserCmd) ConsumesTime() bool {
	return c.Msec != 0
}
