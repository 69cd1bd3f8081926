package hltas

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMissingHeader is returned when the input does not start with a version
// line or never reaches the frames section.
var ErrMissingHeader = errors.New("missing script header")

// ParseError reports the 1-based line at which parsing failed.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a script in the text format produced by Write.
func Parse(r io.Reader) (*Script, error) {
	s := NewScript()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	seenVersion := false
	inFrames := false

	for scanner.Scan() {
		lineNum++
		text := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case !seenVersion:
			if err := parseVersion(text); err != nil {
				return nil, &ParseError{Line: lineNum, Err: err}
			}
			seenVersion = true

		case !inFrames:
			if text == "" {
				continue
			}
			if text == headerFrames {
				inFrames = true
				continue
			}
			key, value, _ := strings.Cut(text, " ")
			if err := validateProperty(key, value); err != nil {
				return nil, &ParseError{Line: lineNum, Err: err}
			}
			s.Properties.Set(key, value)

		default:
			if strings.TrimSpace(text) == "" {
				continue
			}
			line, err := ParseLine(text)
			if err != nil {
				return nil, &ParseError{Line: lineNum, Err: err}
			}
			s.Append(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	if !seenVersion {
		return nil, fmt.Errorf("%w: empty script", ErrMissingHeader)
	}
	if !inFrames {
		return nil, fmt.Errorf("%w: no %q line", ErrMissingHeader, headerFrames)
	}

	return s, nil
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to open script file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

func parseVersion(text string) error {
	key, value, ok := strings.Cut(text, " ")
	if !ok || key != headerVersion {
		return fmt.Errorf("%w: expected %q, got %q", ErrMissingHeader, headerVersion+" "+strconv.Itoa(Version), text)
	}
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid version %q", value)
	}
	if v != Version {
		return fmt.Errorf("unsupported version %d", v)
	}
	return nil
}

// ParseLine parses a single frames-section line.
func ParseLine(text string) (Line, error) {
	if strings.HasPrefix(text, commentMark) {
		return Comment(strings.TrimPrefix(text, commentMark)), nil
	}

	fields := strings.SplitN(text, fieldSep, numFields)
	if len(fields) < fieldCommand {
		return nil, fmt.Errorf("expected at least %d fields, got %d", fieldCommand, len(fields))
	}

	if fields[fieldAutoActions] != autoActionsField {
		return nil, fmt.Errorf("unsupported automatic actions %q", fields[fieldAutoActions])
	}

	fb := &FrameBulk{}

	movement, err := parseKeyField(movementLetters, fields[fieldMovement])
	if err != nil {
		return nil, fmt.Errorf("movement keys: %w", err)
	}
	fb.Movement = MovementKeys{
		Forward: movement[0],
		Left:    movement[1],
		Right:   movement[2],
		Back:    movement[3],
		Up:      movement[4],
		Down:    movement[5],
	}

	actions, err := parseKeyField(actionLetters, fields[fieldActions])
	if err != nil {
		return nil, fmt.Errorf("action keys: %w", err)
	}
	fb.Actions = ActionKeys{
		Jump:    actions[0],
		Duck:    actions[1],
		Use:     actions[2],
		Attack1: actions[3],
		Attack2: actions[4],
		Reload:  actions[5],
	}

	if _, err := parseFrameTime(fields[fieldFrameTime]); err != nil {
		return nil, err
	}
	fb.FrameTime = fields[fieldFrameTime]

	if fb.AutoYaw, err = parseOptionalFloat(fields[fieldYaw]); err != nil {
		return nil, fmt.Errorf("yaw: %w", err)
	}
	if fb.Pitch, err = parseOptionalFloat(fields[fieldPitch]); err != nil {
		return nil, fmt.Errorf("pitch: %w", err)
	}

	count, err := strconv.ParseUint(fields[fieldCount], 10, 32)
	if err != nil || count == 0 {
		return nil, fmt.Errorf("frame count must be a positive integer, got %q", fields[fieldCount])
	}
	fb.Count = uint32(count)

	if len(fields) == numFields {
		fb.ConsoleCommand = fields[fieldCommand]
		if strings.Contains(fb.ConsoleCommand, fieldSep) {
			return nil, errors.New("console command must not contain '|'")
		}
	}

	return fb, nil
}

func parseKeyField(letters, field string) ([]bool, error) {
	if len(field) != len(letters) {
		return nil, fmt.Errorf("expected %d characters, got %q", len(letters), field)
	}
	held := make([]bool, len(letters))
	for i := 0; i < len(letters); i++ {
		switch field[i] {
		case letters[i]:
			held[i] = true
		case absent[0]:
		default:
			return nil, fmt.Errorf("unexpected %q at position %d, want %q or %q", field[i], i+1, letters[i], absent[0])
		}
	}
	return held, nil
}

func parseOptionalFloat(field string) (*float32, error) {
	if field == absent {
		return nil, nil
	}
	v, err := strconv.ParseFloat(field, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", field)
	}
	f := float32(v)
	return &f, nil
}
