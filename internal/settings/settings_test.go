package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a Store whose file lives in a fresh temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "settings.json"))
}

// TestLoadMissingFileWritesDefaults verifies first-launch behavior:
// loading with no file on disk creates it with the defaults.
func TestLoadMissingFileWritesDefaults(t *testing.T) {
	store := newTestStore(t)

	values, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), values)

	// The file must now exist and contain plain JSON.
	data, err := os.ReadFile(store.Path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"beat_open": true, "beat_interval": 4}`, string(data))
}

// TestLoadMergesMissingDefaults verifies an older settings file gains
// newly-introduced default keys, persisted back to disk.
func TestLoadMergesMissingDefaults(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path, []byte(`{"beat_interval": 8}`), 0644))

	values, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(8), values["beat_interval"], "existing values win over defaults")
	assert.Equal(t, true, values["beat_open"], "missing keys are filled from defaults")

	// The merge is persisted.
	data, err := os.ReadFile(store.Path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"beat_open": true, "beat_interval": 8}`, string(data))
}

// TestLoadToleratesComments verifies hand-edited files with JSONC
// comments and trailing commas still parse.
func TestLoadToleratesComments(t *testing.T) {
	store := newTestStore(t)
	content := `{
  // keep the beat accordion open
  "beat_open": false,
  "beat_interval": 2,
}`
	require.NoError(t, os.WriteFile(store.Path, []byte(content), 0644))

	values, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, false, values["beat_open"])
	assert.Equal(t, float64(2), values["beat_interval"])
}

// TestLoadRejectsGarbage verifies a corrupted settings file is an
// error rather than silently replaced.
func TestLoadRejectsGarbage(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path, []byte("not json at all"), 0644))

	_, err := store.Load()
	assert.Error(t, err)
}

// TestUpdate verifies known keys are applied and unknown keys are
// skipped and reported, matching the webui's refusal to invent
// settings.
func TestUpdate(t *testing.T) {
	store := newTestStore(t)

	skipped, err := store.Update(map[string]any{
		"beat_interval": float64(16),
		"volume":        11,
		"autoplay":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"autoplay", "volume"}, skipped)

	values, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(16), values["beat_interval"])
	assert.NotContains(t, values, "volume")
}

// TestReset verifies reset rewrites the defaults over prior edits.
func TestReset(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(map[string]any{"beat_interval": float64(32)})
	require.NoError(t, err)

	require.NoError(t, store.Reset())

	values, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), values)
}
