package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
)

// DefaultBlobTimeout bounds a single blob read or write.
const DefaultBlobTimeout = 5 * time.Second

type blobRow struct {
	Data string `json:"data"`
}

// BlobStore keeps named blobs in the blob table. It satisfies favorites.Storage.
type BlobStore struct {
	client  *Client
	timeout time.Duration
}

// NewBlobStore returns a BlobStore backed by client. A non-positive timeout
// selects DefaultBlobTimeout.
func NewBlobStore(client *Client, timeout time.Duration) *BlobStore {
	if timeout <= 0 {
		timeout = DefaultBlobTimeout
	}
	return &BlobStore{client: client, timeout: timeout}
}

func (s *BlobStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Load returns the blob stored under key, or nil if there is none.
func (s *BlobStore) Load(key string) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()

	results, err := surrealdb.Query[[]blobRow](ctx, s.client.db, `
		SELECT data FROM type::record("blob", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("load blob %q: %w", key, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return []byte((*results)[0].Result[0].Data), nil
}

// Save replaces the blob under key.
func (s *BlobStore) Save(key string, data []byte) error {
	ctx, cancel := s.context()
	defer cancel()

	_, err := surrealdb.Query[any](ctx, s.client.db, `
		UPSERT type::record("blob", $key) SET
			data = $data,
			updated = time::now()
	`, map[string]any{"key": key, "data": string(data)})
	if err != nil {
		return fmt.Errorf("save blob %q: %w", key, wrapQueryError(err))
	}
	return nil
}

// Delete removes the blob under key. Deleting a missing blob is not an error.
func (s *BlobStore) Delete(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	_, err := surrealdb.Query[any](ctx, s.client.db, `
		DELETE type::record("blob", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", key, wrapQueryError(err))
	}
	return nil
}
