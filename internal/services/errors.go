// internal/services/errors.go
package services

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/javajoker/royalty-ledger/internal/utils"
)

// NotFoundError means a referenced track, license or account does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PreconditionError means the referenced data exists but is not in a state
// that allows the operation, e.g. a track without an on-chain IP asset.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// ForbiddenError means the caller may not act on the resource.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ValidationError is malformed caller input. Err holds the validator's
// field errors when the input was a request struct.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ChainError is a failed on-chain step. Nothing was written locally.
type ChainError struct {
	Op  string
	Err error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("on-chain %s failed: %v", e.Op, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }

// PersistenceError is a failed local write. When TxHash is set the chain
// transaction already happened and the local ledger is now behind it.
type PersistenceError struct {
	Op     string
	TxHash string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("failed to record %s for transaction %s: %v", e.Op, e.TxHash, e.Err)
	}
	return fmt.Sprintf("failed to record %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// LookupError is a failed local read before any on-chain step, so nothing
// happened on-chain.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// RefreshError is a failed re-read after a committed workflow. It is a
// warning: the workflow itself succeeded.
type RefreshError struct {
	MusicID string
	Err     error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh ledger for music %s: %v", e.MusicID, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

func notFound(resource, id string) error {
	return errors.WithStack(&NotFoundError{Resource: resource, ID: id})
}

func precondition(format string, args ...interface{}) error {
	return errors.WithStack(&PreconditionError{Reason: fmt.Sprintf(format, args...)})
}

func invalid(field, reason string) error {
	return errors.WithStack(&ValidationError{Field: field, Reason: reason})
}

func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return errors.WithStack(&ValidationError{Field: "request", Reason: err.Error(), Err: err})
	}
	return nil
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// TxHashOf returns the transaction hash carried by a PersistenceError, if any.
func TxHashOf(err error) string {
	var target *PersistenceError
	if errors.As(err, &target) {
		return target.TxHash
	}
	return ""
}
