package recorder

import (
	"fmt"
	"time"

	"github.com/hltas-record/hltas-record/internal/config"
	"github.com/hltas-record/hltas-record/internal/engine"
	"github.com/hltas-record/hltas-record/internal/hltas"
)

// Stats counts what happened during a session.
type Stats struct {
	Commands      int
	SkippedSplit  int
	SkippedPaused int
	FrameBulks    int
	PhysicsFrames int
	Reconciled    int
}

// Session is the state of one recording, from start to stop.
type Session struct {
	ID        string
	StartTime time.Time
	Path      string
	Script    *hltas.Script
	Stats     Stats

	queue      PendingQueue
	keys       Keys
	builder    *Builder
	reconciler *Reconciler

	// set when the last recorded command consumed no simulated time
	lastCmdWasZeroMsec bool
}

// NewSession creates an empty session writing to path on stop.
func NewSession(path string, cfg config.Config) *Session {
	return &Session{
		ID:         fmt.Sprintf("session-%d", time.Now().UnixNano()),
		StartTime:  time.Now().UTC(),
		Path:       path,
		Script:     hltas.NewScript(),
		builder:    NewBuilder(cfg),
		reconciler: NewReconciler(cfg.RemainderCommand, cfg.CommandSeparator),
	}
}

// InputPoll queues the frame time remainder for the command being polled.
func (s *Session) InputPoll(remainder float64) {
	s.queue.PushRemainder(remainder)
}

// FrameStart queues the real time of the physics step that is starting.
func (s *Session) FrameStart(frameTime float64) {
	s.queue.PushFrameTime(frameTime)
	s.Stats.PhysicsFrames++
}

// CommandStart appends a pending frame bulk for cmd. It returns false when
// the command was skipped.
func (s *Session) CommandStart(cmd engine.UserCmd, paused bool) bool {
	s.Stats.Commands++

	// The engine splits a command across several physics frames when it is
	// too long. The pieces after the first consume time but a frame bulk was
	// already made for the whole command.
	if last, ok := s.Script.LastFrameBulk(); ok {
		if last.Pending() && cmd.ConsumesTime() && !s.lastCmdWasZeroMsec {
			s.Stats.SkippedSplit++
			return false
		}
	}

	// TODO: pauses which are not loads should still produce frame bulks.
	if paused {
		s.Stats.SkippedPaused++
		return false
	}

	s.lastCmdWasZeroMsec = !cmd.ConsumesTime()

	s.Script.Append(s.builder.Build(cmd, &s.keys))
	s.keys.ClearImpulses()
	s.Stats.FrameBulks++

	return true
}

// FrameEnd resolves the frame bulks built during the physics frame.
func (s *Session) FrameEnd() (int, error) {
	n, err := s.reconciler.Reconcile(s.Script, &s.queue)
	s.Stats.Reconciled += n
	return n, err
}

// DropPending removes trailing frame bulks that never got a frame time, as
// happens when recording stops in the middle of a physics frame.
func (s *Session) DropPending() int {
	dropped := 0
	for len(s.Script.Lines) > 0 {
		fb, ok := s.Script.LastFrameBulk()
		if !ok || !fb.Pending() {
			break
		}
		s.Script.Lines = s.Script.Lines[:len(s.Script.Lines)-1]
		dropped++
	}
	return dropped
}

// Keys returns the key automatons of the session.
func (s *Session) Keys() *Keys {
	return &s.keys
}

// Queue returns the pending queue of the session.
func (s *Session) Queue() *PendingQueue {
	return &s.queue
}
