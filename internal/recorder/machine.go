package recorder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hltas-record/hltas-record/internal/config"
	"github.com/hltas-record/hltas-record/internal/engine"
	"github.com/hltas-record/hltas-record/internal/hltas"
)

// Notifier receives the messages shown to the player.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// WriterNotifier prints each message on its own line.
type WriterNotifier struct {
	W io.Writer
}

// Info implements Notifier.
func (n WriterNotifier) Info(msg string) {
	_, _ = fmt.Fprintln(n.W, msg)
}

// Error implements Notifier.
func (n WriterNotifier) Error(msg string) {
	_, _ = fmt.Fprintln(n.W, msg)
}

// State is the state of the recording machine.
type State int

const (
	// Idle means no recording is in progress.
	Idle State = iota
	// Recording means a session collects frame bulks.
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// InputPoll is delivered when the client polls input for a new command.
type InputPoll struct {
	ClientState engine.ClientState
	Remainder   float64
}

// FrameStart is delivered when a server physics frame starts.
type FrameStart struct {
	ClientState engine.ClientState
	FrameTime   float64
}

// CommandStart is delivered when the server is about to run a user command.
type CommandStart struct {
	Cmd    engine.UserCmd
	Paused bool
}

// OpenFunc opens the destination of a recording.
type OpenFunc func(path string, perm os.FileMode) (io.WriteCloser, error)

func openFile(path string, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // path comes from the player
}

// Machine owns the current recording session, if any. All methods must be
// called from the engine's main thread.
type Machine struct {
	cfg     config.Config
	caps    engine.Capabilities
	notify  Notifier
	session *Session

	// Trace receives a line per reconciled frame and per session event when
	// non-nil.
	Trace io.Writer

	// Open is used to create the output file. Defaults to os.OpenFile.
	Open OpenFunc
}

// NewMachine returns an idle machine.
func NewMachine(cfg config.Config, caps engine.Capabilities, notify Notifier) *Machine {
	return &Machine{
		cfg:    cfg,
		caps:   caps,
		notify: notify,
		Open:   openFile,
	}
}

// State returns Idle or Recording.
func (m *Machine) State() State {
	if m.session == nil {
		return Idle
	}
	return Recording
}

// Session returns the active session, or nil when idle.
func (m *Machine) Session() *Session {
	return m.session
}

// Start begins recording into path.
func (m *Machine) Start(path string) {
	if !m.caps.Enabled() {
		return
	}

	if m.session != nil {
		m.notify.Info("Already recording")
		return
	}

	m.session = NewSession(path, m.cfg)
	m.tracef("start %s path=%s started=%s", m.session.ID, path, m.session.StartTime.Format(time.RFC3339))
	m.notify.Info("Recording started")
}

// Stop ends the recording and writes the script. The session is discarded
// whether or not the write succeeds.
func (m *Machine) Stop() {
	if !m.caps.Enabled() {
		return
	}

	s := m.session
	if s == nil {
		m.notify.Info("No recording in progress")
		return
	}
	m.session = nil

	if n := s.DropPending(); n > 0 {
		m.notify.Info(fmt.Sprintf("Discarding %d frame bulk(s) without a frame time", n))
	}
	m.tracef("stop %s commands=%d frame_bulks=%d physics_frames=%d reconciled=%d skipped_split=%d skipped_paused=%d",
		s.ID, s.Stats.Commands, s.Stats.FrameBulks, s.Stats.PhysicsFrames, s.Stats.Reconciled,
		s.Stats.SkippedSplit, s.Stats.SkippedPaused)

	perm, err := m.cfg.Perm()
	if err != nil {
		m.notify.Error(fmt.Sprintf("Invalid file mode: %v", err))
		return
	}

	opened, err := m.write(s, perm)
	switch {
	case !opened:
		m.notify.Error(fmt.Sprintf("Error opening the output file: %v", err))
		return
	case err != nil:
		m.notify.Error(fmt.Sprintf("Error writing to the output file: %v", err))
	}

	m.notify.Info("Recording stopped")
}

// write reports whether the output file could be opened, and any error.
func (m *Machine) write(s *Session, perm os.FileMode) (opened bool, err error) {
	f, err := m.Open(s.Path, perm)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return true, hltas.Write(f, s.Script)
}

// OnInputPoll queues the frame time remainder.
func (m *Machine) OnInputPoll(ev InputPoll) {
	if !m.observing() || !ev.ClientState.Simulating() {
		return
	}
	m.session.InputPoll(ev.Remainder)
}

// OnPhysicsFrameStart queues the frame time of the starting physics frame.
func (m *Machine) OnPhysicsFrameStart(ev FrameStart) {
	if !m.observing() || !ev.ClientState.Simulating() {
		return
	}
	m.session.FrameStart(ev.FrameTime)
}

// OnCommandStart builds a frame bulk for the command.
func (m *Machine) OnCommandStart(ev CommandStart) {
	if !m.observing() {
		return
	}
	m.session.CommandStart(ev.Cmd, ev.Paused)
}

// OnPhysicsFrameEnd resolves the frame bulks of the finished physics frame.
// A broken invariant aborts the recording without writing anything.
func (m *Machine) OnPhysicsFrameEnd() {
	if !m.observing() {
		return
	}

	n, err := m.session.FrameEnd()
	if err != nil {
		m.tracef("abort %s: %v", m.session.ID, err)
		m.session = nil
		m.notify.Error(fmt.Sprintf("Recording aborted: %v", err))
		return
	}
	if n > 0 {
		m.tracef("frame end resolved=%d", n)
	}
}

func (m *Machine) observing() bool {
	return m.session != nil && m.caps.CanObserve()
}

func (m *Machine) tracef(format string, args ...interface{}) {
	if m.Trace == nil {
		return
	}
	_, _ = fmt.Fprintf(m.Trace, "[hltas-record] "+format+"\n", args...)
}
