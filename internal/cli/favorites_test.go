package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/config"
	"github.com/raphaelgruber/catgallery/internal/favorites"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withServices points the package-level services at a fake catalog server
// and an in-memory favorites store for the duration of the test.
func withServices(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/images/abc":
			_, _ = w.Write([]byte(`{"id":"abc","url":"https://cdn.example/abc.jpg","width":640,"height":480,
				"breeds":[{"id":"beng","name":"Bengal","origin":"United States","life_span":"12 - 15",
				"weight":{"imperial":"6 - 12","metric":"3 - 7"}}]}`))
		case "/images/plain":
			_, _ = w.Write([]byte(`{"id":"plain","url":"https://cdn.example/plain.jpg","breeds":[]}`))
		case "/breeds":
			_, _ = w.Write([]byte(`[{"id":"abys","name":"Abyssinian","origin":"Egypt"},{"id":"beng","name":"Bengal"}]`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	prevAPI, prevStore, prevLogger, prevCfg := api, store, logger, cfg
	t.Cleanup(func() { api, store, logger, cfg = prevAPI, prevStore, prevLogger, prevCfg })

	logger = discardLogger()
	cfg = config.Default()
	api = catalog.New(catalog.Config{BaseURL: srv.URL}, nil, logger)
	store = favorites.NewStore(favorites.NewMemoryStorage(), logger)
	return srv
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := fn(cmd, args)
	return out.String(), err
}

func TestFavoritesAddListRemove(t *testing.T) {
	withServices(t)

	out, err := run(t, runFavoritesList)
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet.")

	out, err = run(t, runFavoritesAdd, "abc", "missing")
	require.Error(t, err, "unknown image is reported")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Contains(t, out, "abc added to favorites")
	assert.Equal(t, 1, store.Count())

	out, err = run(t, runFavoritesAdd, "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "already a favorite")

	out, err = run(t, runFavoritesList)
	require.NoError(t, err)
	assert.Contains(t, out, "Favorites (1)")
	assert.Contains(t, out, "Bengal")

	rec, ok := store.Get("abc")
	require.True(t, ok)
	require.NotNil(t, rec.Width)
	assert.Equal(t, 640, *rec.Width)

	out, err = run(t, runFavoritesRemove, "abc", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "abc removed from favorites")
	assert.Contains(t, out, "ghost is not a favorite")
	assert.Zero(t, store.Count())
}

func TestFavoritesClear(t *testing.T) {
	withServices(t)
	require.NoError(t, store.Add(catalog.Item{ID: "a", ImageURL: "https://cdn.example/a.jpg"}))

	clearYes = false
	t.Cleanup(func() { clearYes = false })

	_, err := run(t, runFavoritesClear)
	require.Error(t, err)
	assert.Equal(t, 1, store.Count())

	clearYes = true
	out, err := run(t, runFavoritesClear)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 favorites.")
	assert.Zero(t, store.Count())
}

func TestFavoritesExportImport(t *testing.T) {
	withServices(t)
	require.NoError(t, store.Add(catalog.Item{ID: "a", ImageURL: "https://cdn.example/a.jpg"}))
	require.NoError(t, store.Add(catalog.Item{ID: "b", ImageURL: "https://cdn.example/b.jpg"}))

	path := filepath.Join(t.TempDir(), "favorites.json")
	_, err := run(t, runFavoritesExport, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "["))

	require.NoError(t, store.Clear())
	out, err := run(t, runFavoritesImport, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 favorites (2 total).")

	out, err = run(t, runFavoritesImport, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 favorites (2 total).")

	_, err = run(t, runFavoritesImport, filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestBreedsCommand(t *testing.T) {
	withServices(t)

	out, err := run(t, runBreeds)
	require.NoError(t, err)
	assert.Contains(t, out, "Breeds (2)")
	assert.Contains(t, out, "abys   Abyssinian (Egypt)")
	assert.Contains(t, out, "beng   Bengal\n")
}

func TestShowCommand(t *testing.T) {
	withServices(t)

	out, err := run(t, runShow, "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "♡ Bengal")
	assert.Contains(t, out, "12 - 15 years")
	assert.Contains(t, out, "3 - 7 kg")

	out, err = run(t, runShow, "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown breed")

	_, err = run(t, runShow, "missing")
	assert.Error(t, err)

	// a favorite is still shown when the catalog does not know it any more
	require.NoError(t, store.Add(catalog.Item{ID: "gone", ImageURL: "https://cdn.example/gone.jpg"}))
	out, err = run(t, runShow, "gone")
	require.NoError(t, err)
	assert.Contains(t, out, "♥ Unknown breed")
	assert.Contains(t, out, "breed details unavailable")
}
