// Package otp implements one-time passcodes for email-based sign-in and
// verification flows: six-digit numeric codes with a short lifetime, one
// live code per (email, type) pair, consumed atomically on first use.
package otp

import (
	"time"
)

// Type distinguishes the flows a code can belong to. A code generated for
// one flow never verifies for another.
type Type string

const (
	TypeLogin    Type = "login"
	TypeRegister Type = "register"
	TypeReset    Type = "reset"
)

func (t Type) Valid() bool {
	switch t {
	case TypeLogin, TypeRegister, TypeReset:
		return true
	}
	return false
}

// Code is a stored one-time passcode.
type Code struct {
	Email     string
	Type      Type
	Code      string
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
