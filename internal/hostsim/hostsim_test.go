package hostsim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screepskernel/kernel/internal/durable"
)

func TestLoadFreshReturnsReservedRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	root, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, root.Tasks())
	assert.NotNil(t, root.Stats())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	root := durable.New()
	root.Tasks()["t1"] = map[string]any{"id": "t1", "status": "pending"}

	require.NoError(t, store.Save(root))

	loaded, err := store.Load()
	require.NoError(t, err)

	tasks := loaded.Tasks()
	require.Contains(t, tasks, "t1")
}

func TestSaveLoadSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.db")
	store, err := Open(path)
	require.NoError(t, err)

	root := durable.New()
	root.Stats()["tick"] = float64(7)
	require.NoError(t, store.Save(root))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(7), loaded.Stats()["tick"])
}
