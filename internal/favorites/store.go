// Package favorites persists the user's favorite images as a single JSON blob.
package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/catgallery/internal/catalog"
)

// DefaultKey is the name of the blob holding the favorites collection.
const DefaultKey = "catFavorites"

// Record is the persisted projection of a catalog item.
// Width and Height are null when the catalog did not report them.
type Record struct {
	ID       string          `json:"id"`
	ImageURL string          `json:"url"`
	Breeds   []catalog.Breed `json:"breeds"`
	Width    *int            `json:"width"`
	Height   *int            `json:"height"`
	AddedAt  int64           `json:"addedAt"` // Unix milliseconds
}

// Added returns AddedAt as a time.
func (r Record) Added() time.Time {
	return time.UnixMilli(r.AddedAt)
}

// Item converts the record back into a catalog item.
func (r Record) Item() catalog.Item {
	item := catalog.Item{
		ID:       r.ID,
		ImageURL: r.ImageURL,
		Breeds:   r.Breeds,
	}
	if r.Width != nil {
		item.Width = *r.Width
	}
	if r.Height != nil {
		item.Height = *r.Height
	}
	return item
}

func newRecord(item catalog.Item, now time.Time) Record {
	rec := Record{
		ID:       item.ID,
		ImageURL: item.ImageURL,
		Breeds:   item.Breeds,
		AddedAt:  now.UnixMilli(),
	}
	if rec.Breeds == nil {
		rec.Breeds = []catalog.Breed{}
	}
	if item.Width > 0 {
		w := item.Width
		rec.Width = &w
	}
	if item.Height > 0 {
		h := item.Height
		rec.Height = &h
	}
	return rec
}

// Store owns the favorites collection. Every mutation is a single
// read-modify-persist step under the store's lock.
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the blob name.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store on top of storage. logger may be nil.
func NewStore(storage Storage, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores item as a favorite.
// Returns ErrInvalidInput when the item lacks an id or image URL and
// ErrAlreadyFavorite when the id is already stored. Nothing is written on failure.
func (s *Store) Add(item catalog.Item) error {
	if !item.Valid() {
		s.logger.Error("refusing to favorite invalid item", "id", item.ID)
		return fmt.Errorf("add %q: %w", item.ID, ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return fmt.Errorf("add %q: %w", item.ID, err)
	}
	if indexOf(records, item.ID) >= 0 {
		s.logger.Info("image already in favorites", "id", item.ID)
		return fmt.Errorf("add %q: %w", item.ID, ErrAlreadyFavorite)
	}

	records = append(records, newRecord(item, s.now()))
	if err := s.persist(records); err != nil {
		return fmt.Errorf("add %q: %w", item.ID, err)
	}

	s.logger.Info("favorite saved", "id", item.ID)
	return nil
}

// Remove deletes the favorite with the given id. Removing an id that is not
// stored succeeds.
func (s *Store) Remove(id string) error {
	if id == "" {
		s.logger.Error("refusing to remove favorite with empty id")
		return fmt.Errorf("remove: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if err := s.persist(kept); err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}

	s.logger.Info("favorite removed", "id", id)
	return nil
}

// Contains reports whether id is a favorite. Always false for an empty id.
func (s *Store) Contains(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s.Get(id)
	return ok
}

// Get returns the favorite with the given id.
func (s *Store) Get(id string) (Record, bool) {
	for _, r := range s.List() {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// List returns every favorite in insertion order.
// A corrupt blob is reset and reported as an empty list.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		s.logger.Error("failed to read favorites", "error", err)
		return []Record{}
	}
	return records
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	return len(s.List())
}

// Clear removes every favorite.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(s.key); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	s.logger.Info("all favorites removed")
	return nil
}

// Export writes the collection as indented JSON.
func (s *Store) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.List()); err != nil {
		return fmt.Errorf("export favorites: %w", err)
	}
	return nil
}

// Import merges records read from r into the collection, skipping invalid
// records and ids that are already stored. Returns the number added.
func (s *Store) Import(r io.Reader) (int, error) {
	var incoming []Record
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return 0, fmt.Errorf("import favorites: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, fmt.Errorf("import favorites: %w", err)
	}

	added := 0
	for _, rec := range incoming {
		if rec.ID == "" || rec.ImageURL == "" {
			s.logger.Warn("skipping invalid favorite in import", "id", rec.ID)
			continue
		}
		if indexOf(records, rec.ID) >= 0 {
			continue
		}
		if rec.AddedAt == 0 {
			rec.AddedAt = s.now().UnixMilli()
		}
		if rec.Breeds == nil {
			rec.Breeds = []catalog.Breed{}
		}
		records = append(records, rec)
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := s.persist(records); err != nil {
		return 0, fmt.Errorf("import favorites: %w", err)
	}
	return added, nil
}

// load reads and decodes the blob. Caller must hold the lock.
// Only storage I/O failures are returned; corruption self-heals.
func (s *Store) load() ([]Record, error) {
	data, err := s.storage.Load(s.key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("favorites blob is not a list, resetting",
			"key", s.key,
			"error", fmt.Errorf("%w: %v", ErrStorageCorrupt, err),
		)
		if err := s.storage.Delete(s.key); err != nil {
			s.logger.Error("failed to reset favorites blob", "key", s.key, "error", err)
		}
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// persist encodes and writes the whole collection. Caller must hold the lock.
func (s *Store) persist(records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.storage.Save(s.key, data); err != nil {
		return err
	}
	return nil
}

func indexOf(records []Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
