package otp

import "errors"

var (
	ErrInvalidType  = errors.New("invalid otp type")
	ErrInvalidEmail = errors.New("invalid email address")
)
