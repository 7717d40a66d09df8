package engine

import "sync"

// ControlType distinguishes the requests other goroutines can make of a
// running replay.
type ControlType int

const (
	// ControlCancel abandons the replay.
	ControlCancel ControlType = iota + 1
	// ControlSuspendCamera holds camera commands back.
	ControlSuspendCamera
	// ControlResumeCamera lets camera commands through again.
	ControlResumeCamera
	// ControlPause pauses the simulated clock.
	ControlPause
	// ControlResume resumes the simulated clock.
	ControlResume
)

func (t ControlType) String() string {
	switch t {
	case ControlCancel:
		return "cancel"
	case ControlSuspendCamera:
		return "suspend-camera"
	case ControlResumeCamera:
		return "resume-camera"
	case ControlPause:
		return "pause"
	case ControlResume:
		return "resume"
	}
	return "unknown"
}

// Control is a request posted to the tick goroutine.
type Control struct {
	Type ControlType
}

// controlQueue is a thread-safe FIFO of controls.
//
// Posting is safe from any goroutine; the tick goroutine drains the queue
// at the start of each tick. The signal channel lets Run wake up early
// when a control arrives between ticks.
type controlQueue struct {
	mu       sync.Mutex
	controls []Control
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newControlQueue() *controlQueue {
	return &controlQueue{
		controls: make([]Control, 0, 8),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a control to the back of the queue.
// Returns false if the queue is closed.
func (q *controlQueue) Enqueue(c Control) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.controls = append(q.controls, c)

	// Non-blocking: a buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Drain removes and returns every queued control in FIFO order.
func (q *controlQueue) Drain() []Control {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.controls) == 0 {
		return nil
	}
	out := make([]Control, len(q.controls))
	copy(out, q.controls)
	q.controls = q.controls[:0]
	return out
}

// Wait returns a channel that signals when controls may be available.
func (q *controlQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *controlQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.controls)
}

// Close rejects further controls. Controls already queued stay drainable.
func (q *controlQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Reopen accepts controls again after Close.
func (q *controlQueue) Reopen() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = false
}
