package recorder

import (
	"fmt"
	"strings"

	"github.com/hltas-record/hltas-record/internal/config"
	"github.com/hltas-record/hltas-record/internal/engine"
	"github.com/hltas-record/hltas-record/internal/hltas"
)

// Builder turns one user command into one pending frame bulk.
type Builder struct {
	cfg config.Config
}

// NewBuilder returns a builder writing the speed commands named in cfg.
func NewBuilder(cfg config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build updates keys from the command buttons and returns the frame bulk for
// the command. The frame time is left pending. Impulses are not cleared.
//
// A frame bulk can only say whether a key is held, while the command carries
// a signed move magnitude. Each axis is projected onto a single held key plus
// a speed command that reproduces the magnitude. When both keys of an axis
// are held the key agreeing with the magnitude wins and the other is dropped.
func (b *Builder) Build(cmd engine.UserCmd, keys *Keys) *hltas.FrameBulk {
	fb := hltas.NewFrameBulk()
	bs := cmd.Buttons

	keys.Forward.Update(bs.Has(engine.InForward))
	keys.Back.Update(bs.Has(engine.InBack))
	keys.Left.Update(bs.Has(engine.InMoveLeft))
	keys.Right.Update(bs.Has(engine.InMoveRight))

	fb.Movement.Forward = bs.Has(engine.InForward)
	fb.Movement.Back = bs.Has(engine.InBack)
	fb.Movement.Left = bs.Has(engine.InMoveLeft)
	fb.Movement.Right = bs.Has(engine.InMoveRight)

	fb.Actions.Jump = bs.Has(engine.InJump)
	fb.Actions.Duck = bs.Has(engine.InDuck)
	fb.Actions.Use = bs.Has(engine.InUse)
	fb.Actions.Attack1 = bs.Has(engine.InAttack)
	fb.Actions.Attack2 = bs.Has(engine.InAttack2)
	fb.Actions.Reload = bs.Has(engine.InReload)

	yaw, pitch := cmd.Yaw(), cmd.Pitch()
	fb.AutoYaw = &yaw
	fb.Pitch = &pitch

	var commands []string

	forward := axis{
		positive:        &fb.Movement.Forward,
		negative:        &fb.Movement.Back,
		positiveKey:     &keys.Forward,
		negativeKey:     &keys.Back,
		positiveCommand: b.cfg.ForwardSpeedCommand,
		negativeCommand: b.cfg.BackSpeedCommand,
	}
	if c, ok := forward.project(cmd.ForwardMove); ok {
		commands = append(commands, c)
	}

	side := axis{
		positive:        &fb.Movement.Right,
		negative:        &fb.Movement.Left,
		positiveKey:     &keys.Right,
		negativeKey:     &keys.Left,
		positiveCommand: b.cfg.SideSpeedCommand,
		negativeCommand: b.cfg.SideSpeedCommand,
	}
	if c, ok := side.project(cmd.SideMove); ok {
		commands = append(commands, c)
	}

	fb.ConsoleCommand = strings.Join(commands, b.cfg.CommandSeparator)

	return fb
}

// axis is one pair of opposite movement keys.
type axis struct {
	positive, negative       *bool
	positiveKey, negativeKey *Key
	positiveCommand          string
	negativeCommand          string
}

// project resolves the held flags of the axis for move and returns the speed
// command to emit, if any.
func (a axis) project(move float32) (string, bool) {
	if move == 0 && !*a.positive && !*a.negative {
		return "", false
	}

	m := float64(move)

	switch {
	case *a.positive && *a.negative:
		if move > 0 {
			*a.negative = false
			a.negativeKey.Update(false)
			return speedCommand(a.positiveCommand, m/a.positiveKey.Multiplier()), true
		}
		*a.positive = false
		a.positiveKey.Update(false)
		return speedCommand(a.negativeCommand, -m/a.negativeKey.Multiplier()), true

	case *a.negative:
		return speedCommand(a.negativeCommand, -m/a.negativeKey.Multiplier()), true

	default:
		*a.positive = true
		a.positiveKey.Update(true)
		return speedCommand(a.positiveCommand, m/a.positiveKey.Multiplier()), true
	}
}

func speedCommand(name string, speed float64) string {
	return fmt.Sprintf("%s %s", name, hltas.FormatFloat(speed))
}
