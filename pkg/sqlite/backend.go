// Package sqlite exposes the SQLite entry store to callers outside this
// module while keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/triggerlog/internal/sqlite"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// NewBackend creates a new SQLite entry store.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "data",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
