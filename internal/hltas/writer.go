package hltas

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// script text layout
// ------------------
//
// version 1
// <property> <value>
// frames
// <auto>|<movement>|<actions>|<frame time>|<yaw>|<pitch>|<count>[|<console command>]
//
// Key fields hold one letter per key in a fixed position, '-' when the key is
// not held. Yaw and pitch are '-' when absent.

const (
	fieldSep    = "|"
	absent      = "-"
	commentMark = "//"

	headerVersion = "version"
	headerFrames  = "frames"

	movementLetters = "flrbud"
	actionLetters   = "jdu12r"

	// HLTAS v1 auto-actions columns: 3 for strafing, then lgagst, autojump,
	// ducktap, jumpbug, dbc, dbg and dwj. None of them is ever recorded.
	autoActionsField = "----------"
)

const (
	fieldAutoActions int = iota
	fieldMovement
	fieldActions
	fieldFrameTime
	fieldYaw
	fieldPitch
	fieldCount
	fieldCommand
	numFields
)

// Write serialises the script. The script is validated first so that nothing
// is written for a script that could not be read back.
func Write(w io.Writer, s *Script) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid script: %w", err)
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s %d\n", headerVersion, Version)
	if s.Properties != nil {
		for el := s.Properties.Front(); el != nil; el = el.Next() {
			if el.Value == "" {
				fmt.Fprintf(bw, "%s\n", el.Key)
			} else {
				fmt.Fprintf(bw, "%s %s\n", el.Key, el.Value)
			}
		}
	}
	fmt.Fprintf(bw, "%s\n", headerFrames)

	for _, line := range s.Lines {
		bw.WriteString(FormatLine(line))
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	return nil
}

// Format returns the serialised script as a string.
func Format(s *Script) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatLine returns the text of a single line without a trailing newline.
func FormatLine(line Line) string {
	switch l := line.(type) {
	case Comment:
		return commentMark + string(l)
	case *FrameBulk:
		return formatFrameBulk(l)
	default:
		return ""
	}
}

func formatFrameBulk(fb *FrameBulk) string {
	fields := make([]string, numFields)

	fields[fieldAutoActions] = autoActionsField
	fields[fieldMovement] = keyField(movementLetters,
		fb.Movement.Forward, fb.Movement.Left, fb.Movement.Right,
		fb.Movement.Back, fb.Movement.Up, fb.Movement.Down)
	fields[fieldActions] = keyField(actionLetters,
		fb.Actions.Jump, fb.Actions.Duck, fb.Actions.Use,
		fb.Actions.Attack1, fb.Actions.Attack2, fb.Actions.Reload)
	fields[fieldFrameTime] = fb.FrameTime
	fields[fieldYaw] = optionalFloat(fb.AutoYaw)
	fields[fieldPitch] = optionalFloat(fb.Pitch)
	fields[fieldCount] = strconv.FormatUint(uint64(fb.Count), 10)

	if fb.ConsoleCommand == "" {
		return strings.Join(fields[:fieldCommand], fieldSep)
	}
	fields[fieldCommand] = fb.ConsoleCommand
	return strings.Join(fields, fieldSep)
}

func keyField(letters string, held ...bool) string {
	b := []byte(strings.Repeat(absent, len(letters)))
	for i, h := range held {
		if h {
			b[i] = letters[i]
		}
	}
	return string(b)
}

func optionalFloat(v *float32) string {
	if v == nil {
		return absent
	}
	return formatFloat32(*v)
}
