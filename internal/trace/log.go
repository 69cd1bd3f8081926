package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hltas-record/hltas-record/internal/engine"
)

// Entry is the JSON form of an Event, one per line.
type Entry struct {
	Kind        Kind      `json:"kind"`
	ClientState *int      `json:"client_state,omitempty"`
	Remainder   float64   `json:"remainder,omitempty"`
	FrameTime   float64   `json:"frame_time,omitempty"`
	Msec        uint8     `json:"msec,omitempty"`
	ViewAngles  []float32 `json:"viewangles,omitempty"`
	ForwardMove float32   `json:"forwardmove,omitempty"`
	SideMove    float32   `json:"sidemove,omitempty"`
	UpMove      float32   `json:"upmove,omitempty"`
	Buttons     string    `json:"buttons,omitempty"`
	Paused      bool      `json:"paused,omitempty"`
	Line        string    `json:"line,omitempty"`
}

// Event converts the entry. A missing client state means the client is
// active.
func (e *Entry) Event() (Event, error) {
	state := engine.ClientActive
	if e.ClientState != nil {
		state = engine.ClientState(*e.ClientState)
	}

	var ev Event
	switch e.Kind {
	case KindInputPoll:
		ev = InputPoll(state, e.Remainder)
	case KindFrameStart:
		ev = FrameStart(state, e.FrameTime)
	case KindCommandStart:
		buttons, err := engine.ParseButtons(e.Buttons)
		if err != nil {
			return Event{}, err
		}
		var angles mgl32.Vec3
		switch len(e.ViewAngles) {
		case 0:
		case 3:
			copy(angles[:], e.ViewAngles)
		default:
			return Event{}, fmt.Errorf("viewangles must have 3 values, got %d", len(e.ViewAngles))
		}
		ev = CommandStart(engine.UserCmd{
			Msec:        e.Msec,
			ViewAngles:  angles,
			ForwardMove: e.ForwardMove,
			SideMove:    e.SideMove,
			UpMove:      e.UpMove,
			Buttons:     buttons,
		}, e.Paused)
	case KindFrameEnd:
		ev = FrameEnd()
	case KindConsole:
		ev = Console(e.Line)
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}

	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// NewEntry converts an event to its JSON form.
func NewEntry(ev Event) Entry {
	entry := Entry{Kind: ev.Kind}

	withState := func(s engine.ClientState) {
		if s != engine.ClientActive {
			v := int(s)
			entry.ClientState = &v
		}
	}

	switch ev.Kind {
	case KindInputPoll:
		withState(ev.Poll.ClientState)
		entry.Remainder = ev.Poll.Remainder
	case KindFrameStart:
		withState(ev.Frame.ClientState)
		entry.FrameTime = ev.Frame.FrameTime
	case KindCommandStart:
		cmd := ev.Command.Cmd
		entry.Msec = cmd.Msec
		if cmd.ViewAngles != (mgl32.Vec3{}) {
			entry.ViewAngles = []float32{cmd.ViewAngles[0], cmd.ViewAngles[1], cmd.ViewAngles[2]}
		}
		entry.ForwardMove = cmd.ForwardMove
		entry.SideMove = cmd.SideMove
		entry.UpMove = cmd.UpMove
		if cmd.Buttons != 0 {
			entry.Buttons = cmd.Buttons.String()
		}
		entry.Paused = ev.Command.Paused
	case KindConsole:
		entry.Line = ev.Line
	}

	return entry
}

// ParseLine decodes a single JSONL line.
func ParseLine(line []byte) (Event, error) {
	var entry Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		return Event{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return entry.Event()
}

// Read parses a trace. Empty lines are skipped.
func Read(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		ev, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		events = append(events, ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading trace: %w", err)
	}

	return events, nil
}

// ReadFile parses the trace at path.
func ReadFile(path string) ([]Event, error) {
	file, err := os.Open(path) //nolint:gosec // file path from caller
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file close

	return Read(file)
}

// Write encodes events as JSONL.
func Write(w io.Writer, events []Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if err := encoder.Encode(NewEntry(ev)); err != nil {
			return fmt.Errorf("failed to write trace entry: %w", err)
		}
	}
	return nil
}

// AppendFile appends events to the trace at path, creating it if needed.
func AppendFile(path string, events []Event) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // trace needs to be readable
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close() //nolint:errcheck // best-effort close

	return Write(file, events)
}
