package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/pricemate/internal/estimate"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKV_MissingKey(t *testing.T) {
	store := newTestStore(t)

	value, ok, err := store.GetValue("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestKV_SetOverwriteDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetValue("theme", "dark"))
	require.NoError(t, store.SetValue("theme", "light"))

	value, ok, err := store.GetValue("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", value)

	require.NoError(t, store.DeleteValue("theme"))
	require.NoError(t, store.DeleteValue("theme"))
	_, ok, err = store.GetValue("theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetValue("priceMateItemCount", "7"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.GetValue("priceMateItemCount")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", value)
}

func TestVisionCache(t *testing.T) {
	store := newTestStore(t)

	cached, err := store.GetVisionCache("abc")
	require.NoError(t, err)
	assert.Nil(t, cached)

	entry := &VisionCacheEntry{Brand: "Sony", Model: "", DamageScore: 0.3, Description: "A camera"}
	require.NoError(t, store.SetVisionCache("abc", entry))

	cached, err = store.GetVisionCache("abc")
	require.NoError(t, err)
	assert.Equal(t, entry, cached)
}

func TestEstimates_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	damage := 0.2

	rec := &EstimateRecord{
		ID: "est-1",
		Form: estimate.FormData{
			Category:  estimate.CategoryLaptops,
			Brand:     "Dell",
			Model:     "XPS 13",
			Year:      "2022",
			Condition: estimate.ConditionUsed,
			Region:    estimate.RegionRiyadh,
		},
		ImageMIME:   "image/png",
		DamageScore: &damage,
		Result: estimate.Result{
			Prices:      estimate.Prices{Fast: 3255, Recommended: 3500, Max: 3745},
			Stats:       estimate.Stats{P25: 3300, Median: 3550, P75: 3800, SampleSize: 28, OutliersRemoved: 1},
			Adjustments: &estimate.Adjustments{Age: -0.15},
		},
	}
	require.NoError(t, store.SaveEstimate(rec))

	got, err := store.GetEstimate("est-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Form, got.Form)
	assert.Equal(t, rec.Result, got.Result)
	assert.Equal(t, "image/png", got.ImageMIME)
	require.NotNil(t, got.DamageScore)
	assert.InDelta(t, 0.2, *got.DamageScore, 1e-9)

	count, err := store.CountEstimates()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEstimates_SchemaSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	damage := 0.7
	require.NoError(t, store.SaveEstimate(&EstimateRecord{
		ID:          "est-2",
		Form:        estimate.FormData{Category: estimate.CategoryCameras},
		DamageScore: &damage,
	}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetEstimate("est-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.DamageScore)
	assert.InDelta(t, 0.7, *got.DamageScore, 1e-9)
}

func TestEstimates_DuplicateIDRejected(t *testing.T) {
	store := newTestStore(t)
	rec := &EstimateRecord{ID: "dup", Form: estimate.FormData{Category: estimate.CategoryPhones}}

	require.NoError(t, store.SaveEstimate(rec))
	assert.Error(t, store.SaveEstimate(rec))
}

func TestEstimates_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetEstimate("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}
