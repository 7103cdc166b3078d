package lifecycle

import (
	"fmt"
	"sync"

	"github.com/e7canasta/gst-plugin-zenoh/errs"
)

// State is one of the element's stable states. Starting and Stopping are
// not members of this type: they are transient phases a Machine reports
// through Phase while a Transition is in flight, per §9's closed-variant
// redesign note (mutable transient data belongs to the caller's "running
// resources", not to the state itself).
type State int

const (
	Null State = iota
	Ready
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Ready:
		return "ready"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Phase is State plus the two transient phases exposed only through
// Machine.Phase, for logging and bus messages that want to show a
// transition in progress.
type Phase int

const (
	PhaseStarting Phase = iota + 100
	PhaseStopping
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// legalEdges enumerates the six transitions spec §4.1 defines. A
// Transition to any other target, or a Transition requested while
// another is in flight, fails with errs.StateConflict.
var legalEdges = map[State]map[State]bool{
	Null:    {Ready: true},
	Ready:   {Null: true, Paused: true},
	Paused:  {Ready: true, Playing: true},
	Playing: {Paused: true},
}

// Machine is the mutex-guarded state holder one element owns. The zero
// value starts in Null.
type Machine struct {
	mu    sync.Mutex
	state State
	busy  bool
}

// Current returns the machine's current stable state. It never returns
// a value observed mid-transition — Transition holds the lock across
// the state write, so a concurrent reader always sees either the state
// before or the state after, never neither.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Phase labels a move toward pendingTarget: PhaseStarting when
// pendingTarget is above the current state, PhaseStopping otherwise
// (including pendingTarget equal to the current state). It does not
// check whether a Transition is actually in flight.
func (m *Machine) Phase(pendingTarget State) Phase {
	if pendingTarget > m.Current() {
		return PhaseStarting
	}
	return PhaseStopping
}

// Transition attempts to move the machine from its current state to
// target, running action while no other transition is in flight and the
// lock is released (so action may itself be slow — session acquisition,
// resource teardown — without blocking unrelated reads of Current).
//
// A request where target equals the current state is an idempotent
// no-op success, per §4.1's transition rules. A request for a target
// with no legal edge from the current state, or one that arrives while
// another Transition call is still running, fails with
// errs.StateConflict and leaves the state unchanged. If action itself
// fails, the state is left unchanged and action's error is returned
// unwrapped (the caller is expected to have already classified it with
// an errs.Kind).
func (m *Machine) Transition(target State, action func() error) error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return errs.New(errs.StateConflict, "lifecycle.Transition",
			fmt.Sprintf("transition already in flight, cannot move to %s", target))
	}
	if m.state == target {
		m.mu.Unlock()
		return nil
	}
	if !legalEdges[m.state][target] {
		m.mu.Unlock()
		return errs.New(errs.StateConflict, "lifecycle.Transition",
			fmt.Sprintf("no legal edge from %s to %s", m.state, target))
	}
	m.busy = true
	m.mu.Unlock()

	err := action()

	m.mu.Lock()
	m.busy = false
	if err == nil {
		m.state = target
	}
	m.mu.Unlock()

	return err
}
