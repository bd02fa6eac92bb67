package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalid indicates the caller supplied an unusable value.
	ErrInvalid = errors.New("invalid input")

	// ErrAlreadyRegistered indicates a product create was attempted for an id
	// that the registry and the local catalog both already know.
	ErrAlreadyRegistered = errors.New("product already registered")

	// ErrIdentityMismatch indicates the registry acknowledged a registration
	// under a different id than the one requested.
	ErrIdentityMismatch = errors.New("registry returned mismatched product id")

	// ErrAuthFieldMissing indicates the auth endpoint answered without an
	// access_token field.
	ErrAuthFieldMissing = errors.New("access token field missing in auth response")
)

// RegistryError is a non-2xx answer from the external offer registry. The
// status code is preserved so API callers can surface it as-is.
type RegistryError struct {
	StatusCode int
	Op         string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("offer registry: %s returned status %d", e.Op, e.StatusCode)
}

// SyncError marks a failed reconciliation unit for a single product. The
// task layer treats it as retryable; it never means partial success.
type SyncError struct {
	ProductID string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync offers for product %s: %v", e.ProductID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
