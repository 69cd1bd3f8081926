package recorder

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hltas-record/hltas-record/internal/config"
	"github.com/hltas-record/hltas-record/internal/engine"
	"github.com/hltas-record/hltas-record/internal/hltas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messages struct {
	lines  []string
	errors []string
}

func (m *messages) Info(msg string) {
	m.lines = append(m.lines, msg)
}

func (m *messages) Error(msg string) {
	m.lines = append(m.lines, msg)
	m.errors = append(m.errors, msg)
}

func newTestMachine() (*Machine, *messages) {
	msgs := &messages{}
	return NewMachine(config.Default(), engine.AllCapabilities(), msgs), msgs
}

// playFrame feeds one physics frame with a single command.
func playFrame(m *Machine, frameTime, remainder float64, cmd engine.UserCmd) {
	m.OnInputPoll(InputPoll{ClientState: engine.ClientActive, Remainder: remainder})
	m.OnPhysicsFrameStart(FrameStart{ClientState: engine.ClientActive, FrameTime: frameTime})
	m.OnCommandStart(CommandStart{Cmd: cmd})
	m.OnPhysicsFrameEnd()
}

func TestMachine_StopTwiceWhileIdle(t *testing.T) {
	m, msgs := newTestMachine()

	m.Stop()
	m.Stop()

	assert.Equal(t, []string{"No recording in progress", "No recording in progress"}, msgs.lines)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_StartTwice(t *testing.T) {
	m, msgs := newTestMachine()
	path := filepath.Join(t.TempDir(), "a.hltas")

	m.Start(path)
	first := m.Session()
	m.Start(filepath.Join(t.TempDir(), "b.hltas"))

	assert.Equal(t, []string{"Recording started", "Already recording"}, msgs.lines)
	assert.Equal(t, Recording, m.State())
	assert.Same(t, first, m.Session())
	assert.Equal(t, path, m.Session().Path)
}

func TestMachine_RecordAndStop(t *testing.T) {
	m, msgs := newTestMachine()
	path := filepath.Join(t.TempDir(), "run.hltas")

	m.Start(path)

	cmd := engine.UserCmd{
		Msec:        10,
		ViewAngles:  mgl32.Vec3{-15, 90, 0},
		ForwardMove: 320,
		Buttons:     engine.InForward | engine.InJump,
	}
	playFrame(m, 0.01, 0.5, cmd)
	cmd.Buttons = engine.InForward
	playFrame(m, 0.01, 0.25, cmd)

	m.Stop()

	assert.Equal(t, []string{"Recording started", "Recording stopped"}, msgs.lines)
	assert.Equal(t, Idle, m.State())

	content, err := os.ReadFile(path) //nolint:gosec // test file path
	require.NoError(t, err)

	want := strings.Join([]string{
		"version 1",
		"frames",
		"----------|f-----|j-----|0.01|90|-15|1|cl_forwardspeed 640;_bxt_set_frametime_remainder 0.5",
		"----------|f-----|------|0.01|90|-15|1|cl_forwardspeed 320;_bxt_set_frametime_remainder 0.25",
		"",
	}, "\n")
	assert.Equal(t, want, string(content))

	script, err := hltas.Parse(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Len(t, script.FrameBulks(), 2)
}

func TestMachine_StopDropsPending(t *testing.T) {
	m, msgs := newTestMachine()
	path := filepath.Join(t.TempDir(), "run.hltas")

	m.Start(path)
	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})
	m.OnCommandStart(CommandStart{Cmd: engine.UserCmd{Msec: 0}})
	m.Stop()

	assert.Equal(t, []string{
		"Recording started",
		"Discarding 1 frame bulk(s) without a frame time",
		"Recording stopped",
	}, msgs.lines)

	script, err := hltas.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, script.FrameBulks(), 1)
}

func TestMachine_OpenFailure(t *testing.T) {
	m, msgs := newTestMachine()
	path := filepath.Join(t.TempDir(), "missing", "run.hltas")

	m.Start(path)
	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})
	m.Stop()

	require.Len(t, msgs.errors, 1)
	assert.Contains(t, msgs.errors[0], "Error opening the output file:")
	assert.NotContains(t, msgs.lines, "Recording stopped")
	assert.Equal(t, Idle, m.State())

	// the session is gone, a second stop is a no-op
	m.Stop()
	assert.Equal(t, "No recording in progress", msgs.lines[len(msgs.lines)-1])
}

func TestMachine_InvalidFileMode(t *testing.T) {
	cfg := config.Default()
	cfg.FileMode = "999"
	msgs := &messages{}
	m := NewMachine(cfg, engine.AllCapabilities(), msgs)
	opened := false
	m.Open = func(string, os.FileMode) (io.WriteCloser, error) {
		opened = true
		return nopCloser{io.Discard}, nil
	}

	m.Start("run.hltas")
	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})
	m.Stop()

	require.Len(t, msgs.errors, 1)
	assert.Equal(t, `Invalid file mode: file_mode must be an octal permission, got "999"`, msgs.errors[0])
	assert.NotContains(t, msgs.errors[0], "opening the output file")
	assert.False(t, opened)
	assert.NotContains(t, msgs.lines, "Recording stopped")
	assert.Equal(t, Idle, m.State())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (failingWriter) Close() error               { return nil }

func TestMachine_WriteFailure(t *testing.T) {
	m, msgs := newTestMachine()
	m.Open = func(string, os.FileMode) (io.WriteCloser, error) {
		return failingWriter{}, nil
	}

	m.Start("ignored.hltas")
	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})
	m.Stop()

	require.Len(t, msgs.errors, 1)
	assert.Contains(t, msgs.errors[0], "Error writing to the output file:")
	assert.Contains(t, msgs.errors[0], "disk full")
	assert.Equal(t, "Recording stopped", msgs.lines[len(msgs.lines)-1])
	assert.Equal(t, Idle, m.State())
}

func TestMachine_UnderflowAborts(t *testing.T) {
	m, msgs := newTestMachine()
	path := filepath.Join(t.TempDir(), "run.hltas")

	m.Start(path)
	m.OnCommandStart(CommandStart{Cmd: engine.UserCmd{Msec: 10}})
	m.OnPhysicsFrameEnd()

	assert.Equal(t, Idle, m.State())
	require.Len(t, msgs.errors, 1)
	assert.Contains(t, msgs.errors[0], "Recording aborted:")
	assert.Contains(t, msgs.errors[0], ErrPendingUnderflow.Error())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMachine_ClientNotSimulating(t *testing.T) {
	m, msgs := newTestMachine()
	m.Start(filepath.Join(t.TempDir(), "run.hltas"))

	m.OnInputPoll(InputPoll{ClientState: engine.ClientConnected, Remainder: 0})
	m.OnPhysicsFrameStart(FrameStart{ClientState: engine.ClientConnected, FrameTime: 0.01})

	ft, rem := m.Session().Queue().Len()
	assert.Zero(t, ft)
	assert.Zero(t, rem)

	// the command still builds a frame bulk which then cannot be resolved
	m.OnCommandStart(CommandStart{Cmd: engine.UserCmd{Msec: 10}})
	m.OnPhysicsFrameEnd()
	assert.Equal(t, Idle, m.State())
	assert.Len(t, msgs.errors, 1)
}

func TestMachine_CallbacksWhileIdle(t *testing.T) {
	m, msgs := newTestMachine()

	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})

	assert.Equal(t, Idle, m.State())
	assert.Empty(t, msgs.lines)
}

func TestMachine_Disabled(t *testing.T) {
	msgs := &messages{}
	caps := engine.AllCapabilities()
	caps.SVFrame = false
	m := NewMachine(config.Default(), caps, msgs)

	m.Start("run.hltas")
	m.Stop()

	assert.Equal(t, Idle, m.State())
	assert.Empty(t, msgs.lines)
}

func TestMachine_CannotObserve(t *testing.T) {
	msgs := &messages{}
	caps := engine.AllCapabilities()
	caps.CmdStart = false
	m := NewMachine(config.Default(), caps, msgs)

	m.Start(filepath.Join(t.TempDir(), "run.hltas"))
	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})

	assert.Equal(t, Recording, m.State())
	assert.Empty(t, m.Session().Script.Lines)
}

func TestMachine_Trace(t *testing.T) {
	m, _ := newTestMachine()
	var trace bytes.Buffer
	m.Trace = &trace
	m.Open = func(string, os.FileMode) (io.WriteCloser, error) {
		return nopCloser{io.Discard}, nil
	}

	m.Start("run.hltas")
	playFrame(m, 0.01, 0, engine.UserCmd{Msec: 10})
	m.Stop()

	out := trace.String()
	assert.Contains(t, out, "[hltas-record] start session-")
	assert.Regexp(t, `path=run\.hltas started=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\n`, out)
	assert.Contains(t, out, "[hltas-record] frame end resolved=1")
	assert.Contains(t, out, "commands=1 frame_bulks=1 physics_frames=1 reconciled=1 skipped_split=0 skipped_paused=0")
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := WriterNotifier{W: &buf}

	n.Info("Recording started")
	n.Error("Error opening the output file: denied")

	assert.Equal(t, "Recording started\nError opening the output file: denied\n", buf.String())
}
