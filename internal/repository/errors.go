package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification is returned when an optimistic (versioned)
	// update matched zero rows: another writer got there first. Callers must
	// re-read and retry, or abandon the mutation for this cycle.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrDuplicateEvent is returned when inserting an idempotency ledger row
	// that already exists. Webhook handlers resolve it as a successful no-op.
	ErrDuplicateEvent = errors.New("event already processed")
)
