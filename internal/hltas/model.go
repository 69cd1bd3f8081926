// Package hltas provides the script model produced by the recorder and its
// line-oriented text format.
package hltas

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Version is the only script format version this package reads and writes.
const Version = 1

var (
	// ErrPendingFrameTime is returned when a script still holds a frame bulk
	// whose frame time was never resolved.
	ErrPendingFrameTime = errors.New("frame bulk has a pending frame time")

	// ErrInvalidFrameTime is returned for frame times that are not
	// non-negative decimals.
	ErrInvalidFrameTime = errors.New("frame time must be a non-negative decimal")
)

// Script is an ordered list of lines plus the properties header.
type Script struct {
	Properties *orderedmap.OrderedMap[string, string]
	Lines      []Line
}

// NewScript returns an empty script with an empty properties header.
func NewScript() *Script {
	return &Script{
		Properties: orderedmap.NewOrderedMap[string, string](),
	}
}

// Validate checks every line of the script. Pending frame bulks are reported
// as ErrPendingFrameTime.
func (s *Script) Validate() error {
	if s.Properties != nil {
		for el := s.Properties.Front(); el != nil; el = el.Next() {
			if err := validateProperty(el.Key, el.Value); err != nil {
				return err
			}
		}
	}
	for i, line := range s.Lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

// FrameBulks returns the frame bulks of the script in order.
func (s *Script) FrameBulks() []*FrameBulk {
	var fbs []*FrameBulk
	for _, line := range s.Lines {
		if fb, ok := line.(*FrameBulk); ok {
			fbs = append(fbs, fb)
		}
	}
	return fbs
}

// LastFrameBulk returns the final line if it is a frame bulk.
func (s *Script) LastFrameBulk() (*FrameBulk, bool) {
	if len(s.Lines) == 0 {
		return nil, false
	}
	fb, ok := s.Lines[len(s.Lines)-1].(*FrameBulk)
	return fb, ok
}

// Append adds a line to the end of the script.
func (s *Script) Append(line Line) {
	s.Lines = append(s.Lines, line)
}

func validateProperty(key, value string) error {
	if key == "" || strings.ContainsAny(key, " \t\r\n") {
		return fmt.Errorf("property name %q must be a single word", key)
	}
	if key == "frames" || key == "version" {
		return fmt.Errorf("property name %q is reserved", key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("property %s: value must be a single line", key)
	}
	return nil
}

// Line is one entry of the frames section.
type Line interface {
	Validate() error
	line()
}

// Comment is a free-text line. It carries no input.
type Comment string

// Validate checks that the comment fits on one line.
func (c Comment) Validate() error {
	if strings.ContainsAny(string(c), "\r\n") {
		return errors.New("comment must be a single line")
	}
	return nil
}

func (Comment) line() {}

// MovementKeys are the movement keys held for a frame bulk.
type MovementKeys struct {
	Forward bool
	Left    bool
	Right   bool
	Back    bool
	Up      bool
	Down    bool
}

// ActionKeys are the action keys held for a frame bulk.
type ActionKeys struct {
	Jump    bool
	Duck    bool
	Use     bool
	Attack1 bool
	Attack2 bool
	Reload  bool
}

// FrameBulk holds keys and view for Count frames of FrameTime seconds each.
type FrameBulk struct {
	// AutoYaw, when set, makes playback turn the view to this yaw.
	AutoYaw *float32

	Movement MovementKeys
	Actions  ActionKeys

	// FrameTime is the decimal frame time. The empty string marks a frame bulk
	// whose duration is still pending.
	FrameTime string

	Pitch *float32
	Count uint32

	// ConsoleCommand is run at the start of the frame bulk. Multiple commands
	// are joined with a separator.
	ConsoleCommand string
}

// NewFrameBulk returns a pending frame bulk covering one frame.
func NewFrameBulk() *FrameBulk {
	return &FrameBulk{Count: 1}
}

// Pending returns true if the frame time is not yet known.
func (fb *FrameBulk) Pending() bool {
	return fb.FrameTime == ""
}

// SetFrameTime stores seconds as the shortest decimal that round-trips.
func (fb *FrameBulk) SetFrameTime(seconds float64) {
	fb.FrameTime = FormatFloat(seconds)
}

// Seconds parses the frame time. Pending frame bulks return an error.
func (fb *FrameBulk) Seconds() (float64, error) {
	if fb.Pending() {
		return 0, ErrPendingFrameTime
	}
	return parseFrameTime(fb.FrameTime)
}

// AppendCommand adds cmd to the console command, separated from any existing
// commands by sep.
func (fb *FrameBulk) AppendCommand(cmd, sep string) {
	if fb.ConsoleCommand != "" {
		fb.ConsoleCommand += sep
	}
	fb.ConsoleCommand += cmd
}

// Validate checks that the frame bulk can be written.
func (fb *FrameBulk) Validate() error {
	if fb.Pending() {
		return ErrPendingFrameTime
	}
	if _, err := parseFrameTime(fb.FrameTime); err != nil {
		return err
	}
	if fb.Count == 0 {
		return errors.New("frame count must be at least 1")
	}
	if strings.ContainsAny(fb.ConsoleCommand, "|\r\n") {
		return errors.New("console command must not contain '|' or line breaks")
	}
	return nil
}

func (*FrameBulk) line() {}

// FormatFloat formats v with the fewest digits that parse back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// parseFrameTime accepts plain decimals only: no sign, exponent or hex form.
func parseFrameTime(s string) (float64, error) {
	if s == "" || strings.Trim(s, "0123456789.") != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameTime, s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameTime, s)
	}
	return v, nil
}
