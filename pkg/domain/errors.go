package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned for amounts that are not numbers or are not positive.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrStorageUnavailable wraps failures reading or writing the persisted ledger.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUnparseableEntry marks a transaction log entry that cannot be turned into a Transaction.
	ErrUnparseableEntry = errors.New("unparseable log entry")

	ErrInvalidKind = errors.New("invalid transaction kind")
	ErrEmptyLabel  = errors.New("empty label")
	ErrMissingTime = errors.New("missing timestamp")
)

// EntryError reports one log entry that was skipped.
type EntryError struct {
	// position in the transaction log
	Index int

	// what was read, rendered as text
	Entry string

	Err error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("log entry %d (%q): %v", e.Index, e.Entry, e.Err)
}

// Unwrap lets errors.Is match both ErrUnparseableEntry and the specific cause.
func (e *EntryError) Unwrap() []error {
	return []error{ErrUnparseableEntry, e.Err}
}
