package trace

import (
	"fmt"

	"github.com/hltas-record/hltas-record/internal/recorder"
)

// Target receives the callbacks of a trace.
type Target interface {
	OnInputPoll(recorder.InputPoll)
	OnPhysicsFrameStart(recorder.FrameStart)
	OnCommandStart(recorder.CommandStart)
	OnPhysicsFrameEnd()
}

// ConsoleFunc runs one console line.
type ConsoleFunc func(line string) error

// Dispatch delivers a single event.
func Dispatch(ev Event, target Target, console ConsoleFunc) error {
	switch ev.Kind {
	case KindInputPoll:
		target.OnInputPoll(ev.Poll)
	case KindFrameStart:
		target.OnPhysicsFrameStart(ev.Frame)
	case KindCommandStart:
		target.OnCommandStart(ev.Command)
	case KindFrameEnd:
		target.OnPhysicsFrameEnd()
	case KindConsole:
		if console == nil {
			return fmt.Errorf("no console to run %q", ev.Line)
		}
		return console(ev.Line)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}

// Play delivers events in order, stopping at the first console error.
func Play(events []Event, target Target, console ConsoleFunc) error {
	for i, ev := range events {
		if err := Dispatch(ev, target, console); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}
