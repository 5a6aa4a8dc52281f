package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrPartitionNotFound is returned when a partition has never been written
	ErrPartitionNotFound = errors.New("ledger partition not found")
	// ErrMemberNotFound is returned by membership operations on an unknown name
	ErrMemberNotFound = errors.New("crew member not found")
	// ErrMemberExists is returned when adding or renaming onto an existing name
	ErrMemberExists = errors.New("crew member already exists")
	// ErrKindMismatch is returned when an operation targets the wrong schedule kind
	ErrKindMismatch = errors.New("operation not valid for this schedule kind")
)

// InvalidInputMessage is the user-facing text for a rejected cell
const InvalidInputMessage = "Please enter a non-negative integer."

// InvalidInputError rejects a single edited value. Nothing is changed when it is returned.
type InvalidInputError struct {
	Raw    string
	Member string
	Field  Field
	Day    int // 1-based, 0 when not tied to a day
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return InvalidInputMessage
}

// PersistenceError wraps a storage or serialization failure for a partition
type PersistenceError struct {
	Op  string // load, decode, encode, save
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
