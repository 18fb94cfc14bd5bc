package domain

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrStaleTask         = errors.New("task is not active")
	ErrSessionEnded      = errors.New("session already ended")
	ErrUpdateUnsupported = errors.New("session update is not supported")
)
