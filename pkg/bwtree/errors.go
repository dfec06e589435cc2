// pkg/bwtree/errors.go
package bwtree

import "errors"

var (
	// ErrKeyNotFound is returned when search_key finds no binding for the key.
	ErrKeyNotFound = errors.New("bwtree: key not found")

	// ErrTreeClosed is returned by any operation attempted after Close.
	ErrTreeClosed = errors.New("bwtree: tree is closed")

	// ErrClosedCursor is returned by Cursor methods once the cursor has
	// already been closed.
	ErrClosedCursor = errors.New("bwtree: iterator already closed")

	// ErrAllocatorExhausted is returned when the NodeID space is exhausted.
	// In practice this requires 2^64 allocations and exists for completeness.
	ErrAllocatorExhausted = errors.New("bwtree: node id allocator exhausted")

	// errCASFailed is an internal retry signal. It never escapes a public
	// operation; every public entry point swallows it and retries or
	// re-descends — transient CAS interference is never surfaced.
	errCASFailed = errors.New("bwtree: compare-and-swap lost a race")

	// ErrInvalidConfig is returned by New when config validation fails.
	ErrInvalidConfig = errors.New("bwtree: invalid configuration")
)
