package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/favorites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client

// TestMain starts a throwaway SurrealDB container for the package tests.
// Set SKIP_SURREALDB_TESTS=1 to skip them when Docker is unavailable.
func TestMain(m *testing.M) {
	if os.Getenv("SKIP_SURREALDB_TESTS") != "" {
		os.Exit(0)
	}

	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	port, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, port.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = container.Terminate(ctx)

	os.Exit(code)
}

func resetDB(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.WipeData(context.Background()))
}

func TestBlobStoreRoundTrip(t *testing.T) {
	resetDB(t)
	s := NewBlobStore(testDB, 0)

	data, err := s.Load("catFavorites")
	require.NoError(t, err)
	assert.Nil(t, data, "missing blob loads as nil")

	require.NoError(t, s.Save("catFavorites", []byte(`[{"id":"a"}]`)))
	data, err = s.Load("catFavorites")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))

	require.NoError(t, s.Save("catFavorites", []byte(`[]`)))
	data, err = s.Load("catFavorites")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data), "save replaces")

	require.NoError(t, s.Delete("catFavorites"))
	data, err = s.Load("catFavorites")
	require.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, s.Delete("catFavorites"), "deleting twice is fine")
}

func TestBlobStoreKeysAreIndependent(t *testing.T) {
	resetDB(t)
	s := NewBlobStore(testDB, time.Second)

	require.NoError(t, s.Save("one", []byte("1")))
	require.NoError(t, s.Save("two", []byte("2")))
	require.NoError(t, s.Delete("one"))

	data, err := s.Load("two")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestFavoritesOverSurrealDB(t *testing.T) {
	resetDB(t)
	store := favorites.NewStore(NewBlobStore(testDB, 0), nil)

	require.NoError(t, store.Add(catalog.Item{ID: "a1", ImageURL: "https://cdn.example/a1.jpg"}))
	require.NoError(t, store.Add(catalog.Item{ID: "b2", ImageURL: "https://cdn.example/b2.jpg", Width: 640, Height: 480}))
	assert.ErrorIs(t, store.Add(catalog.Item{ID: "a1", ImageURL: "https://cdn.example/a1.jpg"}), favorites.ErrAlreadyFavorite)

	// a second store over the same table sees the persisted state
	other := favorites.NewStore(NewBlobStore(testDB, 0), nil)
	assert.Equal(t, 2, other.Count())
	assert.True(t, other.Contains("b2"))

	require.NoError(t, other.Remove("a1"))
	assert.False(t, store.Contains("a1"))
}

func TestFavoritesSelfHealOverSurrealDB(t *testing.T) {
	resetDB(t)
	blobs := NewBlobStore(testDB, 0)
	require.NoError(t, blobs.Save(favorites.DefaultKey, []byte("{not json")))

	store := favorites.NewStore(blobs, nil)
	assert.Empty(t, store.List())

	data, err := blobs.Load(favorites.DefaultKey)
	require.NoError(t, err)
	assert.Nil(t, data, "corrupt blob removed")
}
