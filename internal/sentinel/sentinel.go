// Package sentinel defines the errors that stores, the ledger and the archive
// return to services. Services match them with errors.Is and map each one to a
// domain error code once, at the service boundary.
package sentinel

import "errors"

var (
	// ErrNotFound: no row, object or contract listing for the key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed: a unique key (record hash, contract id) is taken.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInvalidInput: the backend rejected the arguments outright.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState: the call was well formed but the contract reverted it.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the backend could not be reached; callers may retry.
	ErrUnavailable = errors.New("unavailable")
)
