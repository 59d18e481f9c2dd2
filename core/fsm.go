package core

import (
	"fmt"
	"sync"
)

// transitions is the adjacency table of the session lifecycle
var transitions = map[State]map[State]struct{}{
	Idle:                  set(CardPresent),
	CardPresent:           set(PinEntry, Idle),
	PinEntry:              set(Authenticated, Failed, Idle),
	Authenticated:         set(TransactionInProgress, Idle),
	TransactionInProgress: set(Dispensing, Completed, Failed),
	Dispensing:            set(Completed, Failed),
	Completed:             set(Idle),
	Failed:                set(Idle),
}

func set(states ...State) map[State]struct{} {
	m := make(map[State]struct{}, len(states))
	for _, s := range states {
		m[s] = struct{}{}
	}
	return m
}

// CanTransition reports whether the edge from -> to exists
func CanTransition(from, to State) bool {
	_, ok := transitions[from][to]
	return ok
}

// AllowedTargets returns the states reachable from the given state in one step
func AllowedTargets(from State) []State {
	var out []State
	for _, s := range States() {
		if CanTransition(from, s) {
			out = append(out, s)
		}
	}
	return out
}

// Observer is notified after the machine changes state
type Observer func(from, to State)

// Machine holds the state of exactly one session. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	state    State
	observer Observer
}

// NewMachine creates a machine in the Idle state
func NewMachine() *Machine {
	return &Machine{state: Idle}
}

// WithObserver registers fn to be called after every successful transition or reset
func (m *Machine) WithObserver(fn Observer) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.observer = fn
	return m
}

// Current returns the current state
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Transition moves the machine to target if the edge is allowed.
// On failure the state is left unchanged.
func (m *Machine) Transition(target State) error {
	m.mu.Lock()
	from := m.state
	if !CanTransition(from, target) {
		m.mu.Unlock()
		return fmt.Errorf("%s -> %s: %w", from, target, ErrInvalidTransition)
	}
	m.state = target
	observer := m.observer
	m.mu.Unlock()

	if observer != nil {
		observer(from, target)
	}
	return nil
}

// Reset forces the machine back to Idle
func (m *Machine) Reset() {
	m.mu.Lock()
	from := m.state
	m.state = Idle
	observer := m.observer
	m.mu.Unlock()

	if observer != nil && from != Idle {
		observer(from, Idle)
	}
}
