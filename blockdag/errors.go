// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import "fmt"

// ErrorKind identifies the category of a RuleError, per spec.md §7's
// enumerated failure kinds.
type ErrorKind int

const (
	// ErrUnknownParent indicates a block names a parent hash the store has
	// never seen. Non-fatal to the system as a whole; callers may route the
	// block to an orphan pool and retry later.
	ErrUnknownParent ErrorKind = iota

	// ErrMalformedBlock indicates a structurally invalid block: an empty or
	// oversized parent list, a wrong-length seal, or duplicate parents.
	ErrMalformedBlock

	// ErrInvalidPoW indicates the block's hash exceeds the target implied
	// by the difficulty active at its parent state.
	ErrInvalidPoW

	// ErrMissingGhostdagData indicates a parent lacks a persisted
	// GhostdagData record. This should be unreachable if blocks are
	// imported in an order that respects the DAG partial order; its
	// presence signals a store invariant violation.
	ErrMissingGhostdagData

	// ErrStoreIO indicates the underlying database.Driver returned an
	// unexpected error. Transient; the caller may retry the import.
	ErrStoreIO
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownParent:
		return "ErrUnknownParent"
	case ErrMalformedBlock:
		return "ErrMalformedBlock"
	case ErrInvalidPoW:
		return "ErrInvalidPoW"
	case ErrMissingGhostdagData:
		return "ErrMissingGhostdagData"
	case ErrStoreIO:
		return "ErrStoreIO"
	default:
		return "ErrUnknown"
	}
}

// RuleError identifies a DAG consensus-rule violation, carrying both a
// classifiable Kind and the underlying cause for logging.
type RuleError struct {
	Kind        ErrorKind
	Description string
	Err         error
}

// Error implements the error interface.
func (e RuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e RuleError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a RuleError of the same Kind, letting
// callers write errors.Is(err, ruleError(ErrUnknownParent, "", nil)).
func (e RuleError) Is(target error) bool {
	t, ok := target.(RuleError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func ruleError(kind ErrorKind, description string, err error) RuleError {
	return RuleError{Kind: kind, Description: description, Err: err}
}
