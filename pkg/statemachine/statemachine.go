// Package statemachine provides a small thread-safe finite state machine.
// Transitions are declared up front; firing an event either moves the
// machine to the declared target state or fails, so invalid state changes
// are impossible by construction.
package statemachine

import (
	"context"
	"sync"
)

// State represents a named state.
type State string

// Event represents a named event that can trigger a transition.
type Event string

// Action runs during a transition, before the state changes. Returning an
// error aborts the transition.
type Action func(ctx context.Context, from, to State, event Event) error

// Transition defines a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Actions []Action
}

// Machine is a thread-safe in-memory state machine. Transition lookup is
// O(1) via a nested [fromState][event] map.
type Machine struct {
	initial     State
	current     State
	transitions map[State]map[Event]Transition
	mu          sync.RWMutex
}

// New creates a machine starting in the given state.
func New(initial State) *Machine {
	return &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event]Transition),
	}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition declares a valid state change. Later declarations for the
// same (from, event) pair replace earlier ones.
func (m *Machine) AddTransition(from, to State, event Event, actions ...Action) error {
	if from == "" || to == "" || event == "" {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Event]Transition)
	}
	m.transitions[from][event] = Transition{From: from, To: to, Event: event, Actions: actions}
	return nil
}

// Fire applies an event. It fails with ErrNoTransitionAvailable when the
// current state does not accept the event.
func (m *Machine) Fire(ctx context.Context, event Event) error {
	if event == "" {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transitions[m.current][event]
	if !ok {
		return NewErrNoTransitionAvailable(string(m.current), string(event))
	}

	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, t.To, event); err != nil {
			return err
		}
	}

	m.current = t.To
	return nil
}

// CanFire reports whether the event is accepted in the current state.
func (m *Machine) CanFire(event Event) bool {
	if event == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.transitions[m.current][event]
	return ok
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
