package email

import "errors"

var (
	ErrInvalidConfig = errors.New("email.errors.invalid_config")
	ErrInvalidParams = errors.New("email.errors.invalid_params")
	ErrSendFailed    = errors.New("email.errors.send_failed")
)
