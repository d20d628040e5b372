package favorites_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/favorites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestStore(t *testing.T) (*favorites.Store, *favorites.MemoryStorage) {
	t.Helper()
	storage := favorites.NewMemoryStorage()
	store := favorites.NewStore(storage, nil, favorites.WithClock(func() time.Time { return fixedNow }))
	return store, storage
}

func cat(id string) catalog.Item {
	return catalog.Item{
		ID:       id,
		ImageURL: "https://cdn.example/" + id + ".jpg",
		Breeds:   []catalog.Breed{{ID: "abys", Name: "Abyssinian"}},
		Width:    640,
		Height:   480,
	}
}

func TestAddProjectsItem(t *testing.T) {
	store, storage := newTestStore(t)

	require.NoError(t, store.Add(cat("a1")))

	list := store.List()
	require.Len(t, list, 1)
	rec := list[0]
	assert.Equal(t, "a1", rec.ID)
	assert.Equal(t, "https://cdn.example/a1.jpg", rec.ImageURL)
	require.NotNil(t, rec.Width)
	assert.Equal(t, 640, *rec.Width)
	assert.Equal(t, fixedNow.UnixMilli(), rec.AddedAt)
	assert.True(t, rec.Added().Equal(fixedNow))

	// persisted layout keeps the original blob keys
	raw, err := storage.Load(favorites.DefaultKey)
	require.NoError(t, err)
	var blob []map[string]any
	require.NoError(t, json.Unmarshal(raw, &blob))
	require.Len(t, blob, 1)
	for _, key := range []string{"id", "url", "breeds", "width", "height", "addedAt"} {
		assert.Contains(t, blob[0], key)
	}
}

func TestAddUnknownDimensionsPersistsNull(t *testing.T) {
	store, storage := newTestStore(t)

	require.NoError(t, store.Add(catalog.Item{ID: "x", ImageURL: "https://cdn.example/x.jpg"}))

	raw, err := storage.Load(favorites.DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"width":null`)
	assert.Contains(t, string(raw), `"breeds":[]`)
}

func TestAddIsUnique(t *testing.T) {
	store, _ := newTestStore(t)

	before := store.Count()
	require.NoError(t, store.Add(cat("a1")))

	err := store.Add(cat("a1"))
	assert.ErrorIs(t, err, favorites.ErrAlreadyFavorite)

	// a partial record for the same id is still the same entity
	err = store.Add(catalog.Item{ID: "a1", ImageURL: "https://other.example/a1.png"})
	assert.ErrorIs(t, err, favorites.ErrAlreadyFavorite)

	assert.Equal(t, before+1, store.Count())
}

func TestAddRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name string
		item catalog.Item
	}{
		{"missing id", catalog.Item{ImageURL: "https://cdn.example/x.jpg"}},
		{"missing url", catalog.Item{ID: "x"}},
		{"empty", catalog.Item{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, storage := newTestStore(t)

			err := store.Add(tt.item)
			assert.ErrorIs(t, err, favorites.ErrInvalidInput)
			assert.Zero(t, store.Count())

			raw, err := storage.Load(favorites.DefaultKey)
			require.NoError(t, err)
			assert.Nil(t, raw, "nothing should be written on failure")
		})
	}
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Add(cat("a1")))
	require.NoError(t, store.Add(cat("b2")))
	require.NoError(t, store.Add(cat("c3")))

	require.NoError(t, store.Remove("b2"))
	assert.False(t, store.Contains("b2"))

	ids := []string{}
	for _, r := range store.List() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a1", "c3"}, ids, "insertion order is preserved")

	// idempotent
	assert.NoError(t, store.Remove("b2"))
	assert.NoError(t, store.Remove("never-added"))
	assert.Equal(t, 2, store.Count())

	assert.ErrorIs(t, store.Remove(""), favorites.ErrInvalidInput)
}

func TestContains(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Add(cat("a1")))

	assert.True(t, store.Contains("a1"))
	assert.False(t, store.Contains("zz"))
	assert.False(t, store.Contains(""))
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Add(cat("a1")))
	require.NoError(t, store.Add(cat("b2")))

	require.NoError(t, store.Clear())
	assert.Zero(t, store.Count())
	assert.Empty(t, store.List())

	// clearing an empty collection is fine too
	assert.NoError(t, store.Clear())
}

func TestListSelfHealsCorruptBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"plain object", `{"id": "a1"}`},
		{"string", `"favorites"`},
		{"garbage", `not json at all`},
		{"array of numbers", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, storage := newTestStore(t)
			require.NoError(t, storage.Save(favorites.DefaultKey, []byte(tt.blob)))

			assert.Empty(t, store.List())

			raw, err := storage.Load(favorites.DefaultKey)
			require.NoError(t, err)
			assert.Nil(t, raw, "corrupt blob should be reset")

			// later writes work normally
			require.NoError(t, store.Add(cat("a1")))
			assert.Equal(t, 1, store.Count())
		})
	}
}

func TestNullBlobIsEmpty(t *testing.T) {
	store, storage := newTestStore(t)
	require.NoError(t, storage.Save(favorites.DefaultKey, []byte(`null`)))

	assert.Empty(t, store.List())
	assert.NotNil(t, store.List())
}

type failingStorage struct {
	*favorites.MemoryStorage
	saveErr error
	loadErr error
}

func (s *failingStorage) Load(key string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.MemoryStorage.Load(key)
}

func (s *failingStorage) Save(key string, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStorage.Save(key, data)
}

func TestAddPropagatesStorageFailure(t *testing.T) {
	boom := errors.New("disk full")
	storage := &failingStorage{MemoryStorage: favorites.NewMemoryStorage(), saveErr: boom}
	store := favorites.NewStore(storage, nil)

	err := store.Add(cat("a1"))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Count())
}

func TestListOnReadFailureIsEmpty(t *testing.T) {
	storage := &failingStorage{MemoryStorage: favorites.NewMemoryStorage(), loadErr: errors.New("io")}
	store := favorites.NewStore(storage, nil)

	assert.Empty(t, store.List())
	assert.Error(t, store.Add(cat("a1")), "add must not overwrite a blob it could not read")
}

func TestExportImport(t *testing.T) {
	src, _ := newTestStore(t)
	require.NoError(t, src.Add(cat("a1")))
	require.NoError(t, src.Add(cat("b2")))

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst, _ := newTestStore(t)
	require.NoError(t, dst.Add(cat("b2")))

	added, err := dst.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "b2 already present")
	assert.Equal(t, 2, dst.Count())
	assert.True(t, dst.Contains("a1"))
}

func TestImportSkipsInvalidRecords(t *testing.T) {
	store, _ := newTestStore(t)

	added, err := store.Import(strings.NewReader(`[{"id": "", "url": "x"}, {"id": "ok", "url": "https://cdn.example/ok.jpg"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	rec, ok := store.Get("ok")
	require.True(t, ok)
	assert.Equal(t, fixedNow.UnixMilli(), rec.AddedAt)
	assert.Equal(t, "ok", rec.Item().ID)

	_, err = store.Import(strings.NewReader(`{}`))
	assert.Error(t, err)
}
