// Package filestore implements the whole-file Store backends: a JSON array
// (the canonical format) and a flat CSV table. Every write replaces the
// primary file atomically; there is no lock across processes.
package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mesh-intelligence/triggerlog/internal/atomicfile"
	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// File names inside DataDir.
const (
	JSONFileName = "triggers.json"
	CSVFileName  = "triggers.csv"
)

// codec converts between a byte stream and the entry sequence.
type codec interface {
	decode(r io.Reader) ([]types.Entry, error)
	encode(w io.Writer, entries []types.Entry) error
}

// Backend is a Store over a single file rewritten in full on every change.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	path     string
	codec    codec

	fileName string
	newCodec func(cfg types.Config) codec
}

// NewJSONBackend creates a detached backend storing a pretty-printed JSON array.
func NewJSONBackend() *Backend {
	return &Backend{
		fileName: JSONFileName,
		newCodec: func(types.Config) codec { return jsonCodec{} },
	}
}

// NewCSVBackend creates a detached backend storing the flat export table.
// The feeling columns are fixed at Attach from the configured enumeration.
func NewCSVBackend() *Backend {
	return &Backend{
		fileName: CSVFileName,
		newCodec: func(cfg types.Config) codec { return csvCodec{feelings: cfg.FeelingNames()} },
	}
}

// Path returns the backing file path. Empty until attached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Attach validates config and creates DataDir if needed. The backing file
// itself is created lazily by the first Append or Clear.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	b.config = config
	b.path = filepath.Join(dataDir, b.fileName)
	b.codec = b.newCodec(config)
	b.attached = true

	logger.Debug("store attached", "backend", config.Backend, "path", b.path)
	return nil
}

// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	return nil
}

// Load reads the whole file. Missing and malformed files both yield an
// empty slice; the latter is logged.
func (b *Backend) Load() ([]types.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	entries, _, err := b.read()
	return entries, err
}

// Append reads the current sequence, appends entry, and rewrites the file.
// A malformed file is moved aside before being replaced.
func (b *Backend) Append(entry types.Entry) error {
	return b.AppendAll([]types.Entry{entry})
}

// AppendAll appends added with a single read and a single atomic rewrite.
func (b *Backend) AppendAll(added []types.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if len(added) == 0 {
		return nil
	}
	entries, corrupt, err := b.read()
	if err != nil {
		return err
	}
	if corrupt {
		if err := b.quarantine(); err != nil {
			return err
		}
	}
	return b.write(append(entries, added...))
}

// Clear replaces the file with an empty sequence.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.write(nil)
}

// read returns the decoded entries and whether the file was malformed.
func (b *Backend) read() ([]types.Entry, bool, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return []types.Entry{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", b.fileName, err)
	}

	entries, err := b.codec.decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("store file unreadable, treating as empty", "path", b.path, "error", err)
		return []types.Entry{}, true, nil
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return entries, false, nil
}

func (b *Backend) write(entries []types.Entry) error {
	err := atomicfile.Write(b.path, 0o644, func(w io.Writer) error {
		return b.codec.encode(w, entries)
	})
	if err != nil {
		return fmt.Errorf("persist %s: %w", b.fileName, err)
	}
	return nil
}

// quarantine keeps an unreadable file next to the store instead of
// overwriting it.
func (b *Backend) quarantine() error {
	dst := fmt.Sprintf("%s.corrupt-%d", b.path, time.Now().UnixMilli())
	if err := os.Rename(b.path, dst); err != nil {
		return fmt.Errorf("quarantine %s: %w", b.fileName, err)
	}
	logger.Warn("moved unreadable store file aside", "from", b.path, "to", dst)
	return nil
}
