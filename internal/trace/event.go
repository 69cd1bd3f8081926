// Package trace reads and writes engine event traces: JSONL files holding the
// lifecycle callbacks of a play session, in the order the engine made them.
// Playing a trace through a recorder reproduces the recording offline.
package trace

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/hltas-record/hltas-record/internal/engine"
	"github.com/hltas-record/hltas-record/internal/recorder"
)

// Kind identifies the callback an event stands for.
type Kind string

// Event kinds.
const (
	KindInputPoll    Kind = "input_poll"
	KindFrameStart   Kind = "frame_start"
	KindCommandStart Kind = "cmd_start"
	KindFrameEnd     Kind = "frame_end"
	KindConsole      Kind = "console"
)

// Event is one engine callback or console line.
type Event struct {
	Kind Kind

	Poll    recorder.InputPoll
	Frame   recorder.FrameStart
	Command recorder.CommandStart

	// Line is the console input for KindConsole.
	Line string
}

// InputPoll returns an input poll event.
func InputPoll(state engine.ClientState, remainder float64) Event {
	return Event{Kind: KindInputPoll, Poll: recorder.InputPoll{ClientState: state, Remainder: remainder}}
}

// FrameStart returns a physics frame start event.
func FrameStart(state engine.ClientState, frameTime float64) Event {
	return Event{Kind: KindFrameStart, Frame: recorder.FrameStart{ClientState: state, FrameTime: frameTime}}
}

// CommandStart returns a command start event.
func CommandStart(cmd engine.UserCmd, paused bool) Event {
	return Event{Kind: KindCommandStart, Command: recorder.CommandStart{Cmd: cmd, Paused: paused}}
}

// FrameEnd returns a physics frame end event.
func FrameEnd() Event {
	return Event{Kind: KindFrameEnd}
}

// Console returns a console line event.
func Console(line string) Event {
	return Event{Kind: KindConsole, Line: line}
}

// Validate checks that the event carries usable values.
func (e *Event) Validate() error {
	switch e.Kind {
	case KindInputPoll:
		if !finite64(e.Poll.Remainder) {
			return errors.New("remainder must be finite")
		}
	case KindFrameStart:
		if !finite64(e.Frame.FrameTime) || e.Frame.FrameTime < 0 {
			return errors.New("frame_time must be finite and non-negative")
		}
	case KindCommandStart:
		cmd := e.Command.Cmd
		for i, v := range cmd.ViewAngles {
			if !finite32(v) {
				return fmt.Errorf("viewangles[%d] must be finite", i)
			}
		}
		if !finite32(cmd.ForwardMove) || !finite32(cmd.SideMove) || !finite32(cmd.UpMove) {
			return errors.New("move values must be finite")
		}
	case KindFrameEnd:
	case KindConsole:
		if e.Line == "" {
			return errors.New("console line must be non-empty")
		}
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

func finite32(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func finite64(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
