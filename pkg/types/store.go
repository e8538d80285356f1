package types

import "errors"

// Store is the persisted, append-only collection of entries. Callers attach
// to a backend, read or append, and detach when done.
type Store interface {
	// Attach opens the backend described by config. Creates DataDir if it
	// does not exist. Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every other operation returns ErrStoreDetached.
	Detach() error

	// Load returns every entry in insertion order. A missing or malformed
	// backing file yields an empty slice and a nil error.
	Load() ([]Entry, error)

	// Append adds one entry after every existing entry. The whole sequence
	// is rewritten; the primary file is replaced atomically.
	Append(entry Entry) error

	// AppendAll adds entries, in order, after every existing entry. Either
	// all of them are stored or none are.
	AppendAll(entries []Entry) error

	// Clear replaces the store with an empty sequence.
	Clear() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Entry and export errors.
var (
	ErrEmptyTrigger   = errors.New("trigger must not be empty")
	ErrInvalidFeeling = errors.New("invalid feeling")
	ErrNoEntries      = errors.New("no entries to export")
	ErrNotFound       = errors.New("entry not found")
	ErrUnknownFormat  = errors.New("unknown format")
)
