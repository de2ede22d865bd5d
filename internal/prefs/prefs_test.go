package prefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/pricemate/internal/storage"
)

func TestLoadTheme_DefaultsToLight(t *testing.T) {
	assert.Equal(t, ThemeLight, LoadTheme(storage.NewMemoryKV()).Theme())

	kv := storage.NewMemoryKV()
	require.NoError(t, kv.SetValue(ThemeKey, "purple"))
	assert.Equal(t, ThemeLight, LoadTheme(kv).Theme())
}

func TestTheme_ToggleWritesBack(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := LoadTheme(kv)

	assert.Equal(t, ThemeDark, s.Toggle())
	v, _, _ := kv.GetValue(ThemeKey)
	assert.Equal(t, "dark", v)

	assert.Equal(t, ThemeDark, LoadTheme(kv).Theme())
	assert.Equal(t, ThemeLight, s.Toggle())
}

func TestTheme_StorageFailureKeepsWorking(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Err = errors.New("unavailable")
	s := LoadTheme(kv)

	assert.Equal(t, ThemeLight, s.Theme())
	assert.Equal(t, ThemeDark, s.Toggle())
}

func TestCounter(t *testing.T) {
	kv := storage.NewMemoryKV()
	c := LoadCounter(kv)
	assert.Equal(t, 0, c.Count())

	c.Increment()
	assert.Equal(t, 2, c.Increment())

	assert.Equal(t, 2, LoadCounter(kv).Count())
}

func TestLoadCounter_InvalidValues(t *testing.T) {
	for _, raw := range []string{"abc", "-4", ""} {
		kv := storage.NewMemoryKV()
		require.NoError(t, kv.SetValue(CounterKey, raw))
		assert.Equal(t, 0, LoadCounter(kv).Count(), raw)
	}
}

func TestCounter_WithSQLite(t *testing.T) {
	path := t.TempDir() + "/prefs.db"
	store, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	LoadCounter(store).Increment()
	require.NoError(t, store.Close())

	store, err = storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, 1, LoadCounter(store).Count())
}
