// Package store selects and attaches a types.Store backend by name.
package store

import (
	"fmt"

	"github.com/mesh-intelligence/triggerlog/internal/filestore"
	"github.com/mesh-intelligence/triggerlog/internal/sqlite"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// New returns a detached store for the named backend.
func New(backend string) (types.Store, error) {
	switch backend {
	case types.BackendJSON:
		return filestore.NewJSONBackend(), nil
	case types.BackendCSV:
		return filestore.NewCSVBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w %q", types.ErrBackendUnknown, backend)
	}
}

// Open creates the configured backend and attaches it. The caller must
// Detach the returned store.
func Open(cfg types.Config) (types.Store, error) {
	s, err := New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach %s store: %w", cfg.Backend, err)
	}
	return s, nil
}

// Find returns the entry with the given id. Returns types.ErrNotFound when
// no entry matches; the last match wins when ids collide.
func Find(entries []types.Entry, id int64) (types.Entry, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ID == id {
			return entries[i], nil
		}
	}
	return types.Entry{}, fmt.Errorf("%w: id %d", types.ErrNotFound, id)
}
