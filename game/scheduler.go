package game

import "errors"

// State is the scheduler lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ErrAlreadyStarted is returned by Start on a scheduler that has left Idle.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Scheduler drives ticks from host frame signals.
//
// A tick runs on a Frame only if one was requested. Start requests the first
// tick; after each tick the next one is requested unless the scheduler is
// paused. Resume requests a tick again. A tick always runs to completion:
// pausing from inside a tick only stops the following one.
type Scheduler struct {
	state   State
	pending bool
	tick    func()
	frames  uint64
	ticks   uint64
}

// NewScheduler creates an idle scheduler that calls tick once per scheduled frame.
func NewScheduler(tick func()) *Scheduler {
	return &Scheduler{tick: tick}
}

// Start runs init once and requests the first tick.
func (s *Scheduler) Start(init func()) error {
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	if init != nil {
		init()
	}
	s.state = StateRunning
	s.pending = true
	return nil
}

// Frame handles one host frame signal. Reports whether a tick ran.
func (s *Scheduler) Frame() bool {
	s.frames++
	if !s.pending {
		return false
	}

	s.pending = false
	s.tick()
	s.ticks++

	if s.state == StateRunning {
		s.pending = true
	}
	return true
}

// Pause stops scheduling ticks. No effect unless running.
func (s *Scheduler) Pause() {
	if s.state != StateRunning {
		return
	}
	s.state = StatePaused
	s.pending = false
}

// Resume restarts scheduling. No effect unless paused.
func (s *Scheduler) Resume() {
	if s.state != StatePaused {
		return
	}
	s.state = StateRunning
	s.pending = true
}

// TogglePause switches between running and paused.
func (s *Scheduler) TogglePause() {
	switch s.state {
	case StateRunning:
		s.Pause()
	case StatePaused:
		s.Resume()
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Pending reports whether the next frame will run a tick.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Ticks returns the number of ticks run.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Frames returns the number of frame signals received.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}
