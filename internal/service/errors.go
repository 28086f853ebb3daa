package service

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound is returned when a variant has no pricing config and one
// is required for the requested operation.
var ErrConfigNotFound = errors.New("pricing config not found")

// ValidationError marks malformed input (bad external id, missing field).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// ExternalAPIError means the commerce platform call failed or timed out.
// By the mutation ordering contract it is raised BEFORE any local write, so
// it is always safe to retry on the next cycle with no side effects.
type ExternalAPIError struct {
	Err error
}

func (e *ExternalAPIError) Error() string { return fmt.Sprintf("commerce api: %v", e.Err) }
func (e *ExternalAPIError) Unwrap() error { return e.Err }

// PersistenceError means a local write failed AFTER the external price push
// succeeded: the platform and the local mirror have diverged. It must never
// be conflated with ExternalAPIError — recovery requires reconciliation, not
// a plain retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence (%s) after external push: %v", e.Op, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }
