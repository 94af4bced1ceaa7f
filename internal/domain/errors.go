package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidObservation  = errors.New("invalid observation")
	ErrInvalidSignal       = errors.New("invalid sentiment signal")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrInvalidParams       = errors.New("invalid parameters")
	ErrCacheMiss           = errors.New("cache miss")
)

// ObservationError describes a single rejected observation. It unwraps to ErrInvalidObservation.
type ObservationError struct {
	Index  int
	Reason string
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("observation %d: %s", e.Index, e.Reason)
}

func (e *ObservationError) Unwrap() error {
	return ErrInvalidObservation
}
