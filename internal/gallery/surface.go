// Package gallery holds the browsing session logic: the pagination controller,
// the view synchronizer that keeps favorite indicators consistent between the
// catalog and the favorites panel, and the detail viewer.
//
// Rendering is done through the surface interfaces below, so the session logic
// runs the same against the terminal UI and against test fakes. Surfaces are
// called synchronously and must not call back into the controller.
package gallery

import (
	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/favorites"
)

// CatalogEntry is one rendered entry of the catalog surface.
type CatalogEntry struct {
	Item      catalog.Item
	Favorited bool
}

// CatalogSurface is the append-only grid of catalog images.
type CatalogSurface interface {
	Append(entries ...CatalogEntry)
	Clear()
	// SetFavorited updates the favorite control of every rendered entry with id.
	SetFavorited(id string, favorited bool)
	// ShowEndOfResults marks the end of the listing. empty is true when the
	// filter produced no results at all.
	ShowEndOfResults(empty bool)
}

// FavoritesSurface is the favorites panel. It is always replaced as a whole.
type FavoritesSurface interface {
	Replace(records []favorites.Record)
	ShowEmpty(message string)
}

// CountIndicator shows the number of favorites.
type CountIndicator interface {
	SetCount(n int)
}

// ErrorBanner shows user-visible errors.
type ErrorBanner interface {
	Show(message string)
	Hide()
}

// LoadingIndicator is visible while a page request is in flight.
type LoadingIndicator interface {
	Show()
	Hide()
}

// Surfaces bundles every surface a session renders into.
type Surfaces struct {
	Catalog   CatalogSurface
	Favorites FavoritesSurface
	Count     CountIndicator
	Banner    ErrorBanner
	Loader    LoadingIndicator
}
