package events

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrEventFull            = errors.New("event is at capacity")
	ErrRegistrationNotFound = errors.New("registration not found")
)
