package gallery

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/favorites"
)

// EmptyFavoritesMessage is shown by the favorites panel when nothing is saved.
const EmptyFavoritesMessage = "No favorites yet. Add your favorite cats!"

// FavoriteStore is the part of favorites.Store the synchronizer relies on.
type FavoriteStore interface {
	Add(item catalog.Item) error
	Remove(id string) error
	Contains(id string) bool
	List() []favorites.Record
	Count() int
}

// Compile-time check that favorites.Store satisfies FavoriteStore.
var _ FavoriteStore = (*favorites.Store)(nil)

// Synchronizer renders catalog items and favorites, and keeps an item's
// favorite state identical on both surfaces after every mutation.
type Synchronizer struct {
	store     FavoriteStore
	catalog   CatalogSurface
	favorites FavoritesSurface
	count     CountIndicator
	logger    *slog.Logger
}

// NewSynchronizer wires a synchronizer to its store and surfaces. logger may be nil.
func NewSynchronizer(store FavoriteStore, surfaces Surfaces, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		store:     store,
		catalog:   surfaces.Catalog,
		favorites: surfaces.Favorites,
		count:     surfaces.Count,
		logger:    logger,
	}
}

// RenderCatalog appends one entry per valid item to the catalog surface and
// returns how many were rendered. Items without id or image URL are skipped.
func (s *Synchronizer) RenderCatalog(items []catalog.Item) int {
	entries := make([]CatalogEntry, 0, len(items))
	for _, item := range items {
		if !item.Valid() {
			s.logger.Warn("skipping catalog item with missing data", "id", item.ID, "url", item.ImageURL)
			continue
		}
		entries = append(entries, CatalogEntry{
			Item:      item,
			Favorited: s.store.Contains(item.ID),
		})
	}
	if len(entries) > 0 {
		s.catalog.Append(entries...)
	}
	s.logger.Debug("catalog rendered", "rendered", len(entries), "received", len(items))
	return len(entries)
}

// RenderFavoritesPanel replaces the favorites surface with the stored
// collection and refreshes the count indicator.
func (s *Synchronizer) RenderFavoritesPanel() {
	records := s.store.List()
	s.count.SetCount(len(records))

	if len(records) == 0 {
		s.favorites.ShowEmpty(EmptyFavoritesMessage)
		return
	}
	s.favorites.Replace(records)
}

// ToggleFavorite flips the favorite state of item and returns the new state.
// The catalog is not re-rendered; only the controls for item.ID change.
func (s *Synchronizer) ToggleFavorite(item catalog.Item) (bool, error) {
	if !item.Valid() {
		s.logger.Warn("ignoring toggle on invalid item", "id", item.ID)
		return false, fmt.Errorf("toggle favorite: %w", favorites.ErrInvalidInput)
	}

	favorited := s.store.Contains(item.ID)
	var err error
	if favorited {
		err = s.store.Remove(item.ID)
	} else {
		err = s.store.Add(item)
		if errors.Is(err, favorites.ErrAlreadyFavorite) {
			err = nil
		}
	}

	// the store is the source of truth, whatever happened above
	now := s.store.Contains(item.ID)
	s.catalog.SetFavorited(item.ID, now)
	s.RenderFavoritesPanel()

	if err != nil {
		return now, fmt.Errorf("toggle favorite: %w", err)
	}
	return now, nil
}

// RemoveFromFavoritesPanel removes id from the favorites and propagates the
// unfavorited state to every catalog entry showing it.
func (s *Synchronizer) RemoveFromFavoritesPanel(id string) error {
	if err := s.store.Remove(id); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	s.RenderFavoritesPanel()
	s.catalog.SetFavorited(id, false)
	return nil
}
