// Package authstate tracks the application's session lifecycle as an
// explicit state machine. Pages and middleware read the current state
// instead of re-deriving it, and every way a session can appear or
// disappear funnels through a declared transition.
package authstate

import "github.com/ocemtechies/memberhub/pkg/statemachine"

const (
	// StateUninitialized is the boot state before the stored token has
	// been checked.
	StateUninitialized statemachine.State = "uninitialized"
	// StateLoading means the stored token is being resolved.
	StateLoading statemachine.State = "loading"
	// StateAuthenticated means a session and its profile are loaded.
	StateAuthenticated statemachine.State = "authenticated"
	// StateAnonymous means no usable session exists.
	StateAnonymous statemachine.State = "anonymous"
)

const (
	EventInitialize         statemachine.Event = "initialize"
	EventSessionFound       statemachine.Event = "session_found"
	EventNoSession          statemachine.Event = "no_session"
	EventSignedIn           statemachine.Event = "signed_in"
	EventSignedOut          statemachine.Event = "signed_out"
	EventInvariantViolation statemachine.Event = "invariant_violation"
)

// newMachine wires the session lifecycle. Sign-out is accepted from
// anonymous so repeated sign-outs are idempotent, and an invariant
// violation from any live state lands in anonymous.
func newMachine() *statemachine.Machine {
	m := statemachine.New(StateUninitialized)

	_ = m.AddTransition(StateUninitialized, StateLoading, EventInitialize)
	_ = m.AddTransition(StateLoading, StateAuthenticated, EventSessionFound)
	_ = m.AddTransition(StateLoading, StateAnonymous, EventNoSession)
	_ = m.AddTransition(StateLoading, StateAnonymous, EventInvariantViolation)

	_ = m.AddTransition(StateAnonymous, StateAuthenticated, EventSignedIn)
	_ = m.AddTransition(StateAnonymous, StateAnonymous, EventSignedOut)
	_ = m.AddTransition(StateAnonymous, StateAnonymous, EventInvariantViolation)

	_ = m.AddTransition(StateAuthenticated, StateAuthenticated, EventSignedIn)
	_ = m.AddTransition(StateAuthenticated, StateAnonymous, EventSignedOut)
	_ = m.AddTransition(StateAuthenticated, StateAnonymous, EventInvariantViolation)

	return m
}
