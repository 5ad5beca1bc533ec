package localcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ispeaktu/backend/core"
)

func TestStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("Open() failed, %v", err)
	}
	defer store.Close()

	type snapshot struct {
		IDs []string `json:"ids"`
	}

	t.Run("miss", func(t *testing.T) {
		var dest snapshot
		err := store.Get(core.CacheKeyProgress, &dest)
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("round trip", func(t *testing.T) {
		want := snapshot{IDs: []string{"user_jane_doe_m1_l1", "user_jane_doe_m1_l2"}}
		assert.NoError(t, store.Put(core.CacheKeyProgress, want))

		var got snapshot
		assert.NoError(t, store.Get(core.CacheKeyProgress, &got))
		assert.Equal(t, want, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		assert.NoError(t, store.Put(core.CacheKeyReminders, snapshot{IDs: []string{"a"}}))
		assert.NoError(t, store.Put(core.CacheKeyReminders, snapshot{IDs: []string{"b"}}))

		var got snapshot
		assert.NoError(t, store.Get(core.CacheKeyReminders, &got))
		assert.Equal(t, []string{"b"}, got.IDs)
	})
}
