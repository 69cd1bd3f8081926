package recorder

import (
	"errors"
	"fmt"

	"github.com/hltas-record/hltas-record/internal/hltas"
)

// ErrPendingUnderflow is returned when more frame bulks await a frame time
// than values were queued for them.
var ErrPendingUnderflow = errors.New("pending queue underflow")

// InvariantError reports a broken internal invariant. A session that hits one
// cannot produce a correct script.
type InvariantError struct {
	Reason string
	Err    error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// PendingQueue collects the values needed to resolve pending frame bulks
// between the start and the end of a physics frame. Both stacks are LIFO.
type PendingQueue struct {
	frameTimes []float64
	remainders []float64
}

// PushFrameTime records the real time of a physics step.
func (q *PendingQueue) PushFrameTime(seconds float64) {
	q.frameTimes = append(q.frameTimes, seconds)
}

// PushRemainder records the frame time remainder at an input poll.
func (q *PendingQueue) PushRemainder(remainder float64) {
	q.remainders = append(q.remainders, remainder)
}

// PopFrameTime removes and returns the most recent frame time.
func (q *PendingQueue) PopFrameTime() (float64, bool) {
	return pop(&q.frameTimes)
}

// PopRemainder removes and returns the most recent remainder.
func (q *PendingQueue) PopRemainder() (float64, bool) {
	return pop(&q.remainders)
}

// Len returns the number of queued frame times and remainders.
func (q *PendingQueue) Len() (frameTimes, remainders int) {
	return len(q.frameTimes), len(q.remainders)
}

// Clear discards everything queued.
func (q *PendingQueue) Clear() {
	q.frameTimes = q.frameTimes[:0]
	q.remainders = q.remainders[:0]
}

func pop(stack *[]float64) (float64, bool) {
	s := *stack
	if len(s) == 0 {
		return 0, false
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, true
}

// Reconciler fills in pending frame bulks at the end of a physics frame.
type Reconciler struct {
	remainderCommand string
	separator        string
}

// NewReconciler returns a reconciler appending "<remainderCommand> <value>"
// to every resolved frame bulk, joined with separator.
func NewReconciler(remainderCommand, separator string) *Reconciler {
	return &Reconciler{
		remainderCommand: remainderCommand,
		separator:        separator,
	}
}

// Reconcile resolves the trailing run of pending frame bulks, newest first,
// popping one frame time and one remainder for each. It stops at the first
// resolved frame bulk. Once anything was resolved the queue is cleared: the
// leftovers belong to no frame bulk of this frame and are dropped.
//
// Returns the number of frame bulks resolved.
func (r *Reconciler) Reconcile(script *hltas.Script, q *PendingQueue) (int, error) {
	resolved := 0

	for i := len(script.Lines) - 1; i >= 0; i-- {
		fb, ok := script.Lines[i].(*hltas.FrameBulk)
		if !ok {
			continue
		}
		if !fb.Pending() {
			break
		}

		frameTime, ok := q.PopFrameTime()
		if !ok {
			return resolved, &InvariantError{
				Reason: "more commands than physics frames",
				Err:    ErrPendingUnderflow,
			}
		}
		remainder, ok := q.PopRemainder()
		if !ok {
			return resolved, &InvariantError{
				Reason: "more commands than frame time remainders",
				Err:    ErrPendingUnderflow,
			}
		}

		fb.SetFrameTime(frameTime)
		fb.AppendCommand(fmt.Sprintf("%s %s", r.remainderCommand, hltas.FormatFloat(remainder)), r.separator)
		resolved++
	}

	if resolved > 0 {
		q.Clear()
	}

	return resolved, nil
}
