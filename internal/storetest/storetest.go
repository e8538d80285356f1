// Package storetest holds the behavioral contract every types.Store backend
// must satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// Factory returns a fresh, detached store.
type Factory func() types.Store

// Run exercises the Store contract against stores produced by newStore,
// each attached with the given backend name in a fresh temp directory.
func Run(t *testing.T, backend string, newStore Factory) {
	t.Helper()

	attach := func(t *testing.T, dir string) types.Store {
		t.Helper()
		s := newStore()
		require.NoError(t, s.Attach(types.Config{Backend: backend, DataDir: dir}))
		t.Cleanup(func() { s.Detach() })
		return s
	}

	t.Run("load on fresh store is empty", func(t *testing.T) {
		s := attach(t, t.TempDir())
		got, err := s.Load()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("append N then load preserves order", func(t *testing.T) {
		s := attach(t, t.TempDir())
		want := Entries(7)
		for _, e := range want {
			require.NoError(t, s.Append(e))
		}

		got, err := s.Load()
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID, "entry %d", i)
			assert.Equal(t, want[i].Trigger, got[i].Trigger, "entry %d", i)
			assert.Equal(t, want[i].Timestamp, got[i].Timestamp, "entry %d", i)
			assert.Equal(t, want[i].Intensity, got[i].Intensity, "entry %d", i)
			assert.Equal(t, want[i].Feelings.Get(types.FeelingAnxiety), got[i].Feelings.Get(types.FeelingAnxiety), "entry %d", i)
		}
	})

	t.Run("append all follows existing entries", func(t *testing.T) {
		s := attach(t, t.TempDir())
		all := Entries(5)
		require.NoError(t, s.Append(all[0]))
		require.NoError(t, s.AppendAll(all[1:]))
		require.NoError(t, s.AppendAll(nil), "an empty batch is a no-op")

		got, err := s.Load()
		require.NoError(t, err)
		require.Len(t, got, len(all))
		for i := range all {
			assert.Equal(t, all[i].ID, got[i].ID, "entry %d", i)
		}
	})

	t.Run("text fields survive", func(t *testing.T) {
		s := attach(t, t.TempDir())
		e := Entries(1)[0]
		e.Before = "line one\nline two, with comma"
		e.After = `quoted "reply"`
		e.Notes = "ünïcödé <b>&</b>"
		require.NoError(t, s.Append(e))

		got, err := s.Load()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, e.Before, got[0].Before)
		assert.Equal(t, e.After, got[0].After)
		assert.Equal(t, e.Notes, got[0].Notes)
	})

	t.Run("clear empties regardless of content", func(t *testing.T) {
		s := attach(t, t.TempDir())
		for _, e := range Entries(3) {
			require.NoError(t, s.Append(e))
		}
		require.NoError(t, s.Clear())

		got, err := s.Load()
		require.NoError(t, err)
		assert.Empty(t, got)

		require.NoError(t, s.Clear(), "clearing an empty store succeeds")
	})

	t.Run("entries persist across attach", func(t *testing.T) {
		dir := t.TempDir()
		s := newStore()
		require.NoError(t, s.Attach(types.Config{Backend: backend, DataDir: dir}))
		for _, e := range Entries(2) {
			require.NoError(t, s.Append(e))
		}
		require.NoError(t, s.Detach())

		reopened := attach(t, dir)
		got, err := reopened.Load()
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("operations fail when detached", func(t *testing.T) {
		s := newStore()
		_, err := s.Load()
		assert.ErrorIs(t, err, types.ErrStoreDetached)
		assert.ErrorIs(t, s.Append(Entries(1)[0]), types.ErrStoreDetached)
		assert.ErrorIs(t, s.AppendAll(Entries(2)), types.ErrStoreDetached)
		assert.ErrorIs(t, s.Clear(), types.ErrStoreDetached)

		require.NoError(t, s.Attach(types.Config{Backend: backend, DataDir: t.TempDir()}))
		require.NoError(t, s.Detach())
		require.NoError(t, s.Detach(), "detach is idempotent")
		_, err = s.Load()
		assert.ErrorIs(t, err, types.ErrStoreDetached)
	})

	t.Run("double attach rejected", func(t *testing.T) {
		s := attach(t, t.TempDir())
		err := s.Attach(types.Config{Backend: backend, DataDir: t.TempDir()})
		assert.ErrorIs(t, err, types.ErrAlreadyAttached)
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		s := newStore()
		assert.ErrorIs(t, s.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	})
}

// Entries builds n distinct normalized entries one hour apart.
func Entries(n int) []types.Entry {
	base := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)
	entries := make([]types.Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := types.NewEntry(base.Add(time.Duration(i)*time.Hour), types.Entry{
			Trigger:   fmt.Sprintf("trigger %d", i),
			Feelings:  types.Feelings{types.FeelingAnxiety: i % 11, types.FeelingRelief: 10 - i%11},
			Intensity: 1 + i%10,
		})
		if err != nil {
			panic(err)
		}
		entries = append(entries, e)
	}
	return entries
}
