package outbox

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnqueueAndBatchOrder(t *testing.T) {
	store := openStore(t)

	base := time.Now().Add(-time.Hour)
	for i, to := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		require.NoError(t, store.Enqueue(Item{
			To:       to,
			Subject:  "hello",
			Body:     "body",
			QueuedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	items, err := store.GetBatch(2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first@example.com", items[0].To)
	assert.Equal(t, "second@example.com", items[1].To)
}

func TestRemoveAndRequeue(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Enqueue(Item{To: "a@example.com", Subject: "s", Body: "b"}))
	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Requeue(items[0]))
	items, err = store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)

	require.NoError(t, store.Remove(items[0]))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestCleanupDropsStaleMail(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Enqueue(Item{To: "old@example.com", QueuedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.Enqueue(Item{To: "new@example.com"}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new@example.com", items[0].To)
}
