package gallery

import (
	"context"
	"fmt"
	"sync"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/favorites"
)

// fakeCatalogSurface records what the session renders into the catalog.
type fakeCatalogSurface struct {
	entries  []CatalogEntry
	ended    bool
	empty    bool
	clears   int
	setCalls int
}

func (s *fakeCatalogSurface) Append(entries ...CatalogEntry) {
	s.entries = append(s.entries, entries...)
}

func (s *fakeCatalogSurface) Clear() {
	s.entries = nil
	s.ended = false
	s.empty = false
	s.clears++
}

func (s *fakeCatalogSurface) SetFavorited(id string, favorited bool) {
	s.setCalls++
	for i := range s.entries {
		if s.entries[i].Item.ID == id {
			s.entries[i].Favorited = favorited
		}
	}
}

func (s *fakeCatalogSurface) ShowEndOfResults(empty bool) {
	s.ended = true
	s.empty = empty
}

func (s *fakeCatalogSurface) ids() []string {
	ids := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		ids = append(ids, e.Item.ID)
	}
	return ids
}

type fakeFavoritesSurface struct {
	records  []favorites.Record
	emptyMsg string
	renders  int
}

func (s *fakeFavoritesSurface) Replace(records []favorites.Record) {
	s.records = records
	s.emptyMsg = ""
	s.renders++
}

func (s *fakeFavoritesSurface) ShowEmpty(message string) {
	s.records = nil
	s.emptyMsg = message
	s.renders++
}

type fakeCount struct{ n int }

func (c *fakeCount) SetCount(n int) { c.n = n }

type fakeBanner struct {
	visible bool
	message string
}

func (b *fakeBanner) Show(message string) {
	b.visible = true
	b.message = message
}

func (b *fakeBanner) Hide() { b.visible = false }

type fakeLoader struct{ visible bool }

func (l *fakeLoader) Show() { l.visible = true }
func (l *fakeLoader) Hide() { l.visible = false }

type pageCall struct {
	Filter string
	Page   int
}

// fakeFetcher serves canned pages keyed by filter and page and records calls.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[pageCall][]catalog.Item
	errs   map[pageCall]error
	calls  []pageCall
	detail map[string]catalog.Item
	dCalls int
	dErr   error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:  make(map[pageCall][]catalog.Item),
		errs:   make(map[pageCall]error),
		detail: make(map[string]catalog.Item),
	}
}

func (f *fakeFetcher) SearchPage(_ context.Context, breedID string, page int) ([]catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pageCall{breedID, page}
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.pages[key], nil
}

func (f *fakeFetcher) FetchDetail(_ context.Context, id string) (catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dCalls++
	if f.dErr != nil {
		return catalog.Item{}, f.dErr
	}
	item, ok := f.detail[id]
	if !ok {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return item, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// makeItems returns n valid items with ids prefix-0 .. prefix-(n-1).
func makeItems(prefix string, n int) []catalog.Item {
	items := make([]catalog.Item, n)
	for i := range items {
		id := fmt.Sprintf("%s-%d", prefix, i)
		items[i] = catalog.Item{ID: id, ImageURL: "https://cdn.example/" + id + ".jpg"}
	}
	return items
}

type harness struct {
	fetcher   *fakeFetcher
	store     *favorites.Store
	catalog   *fakeCatalogSurface
	favorites *fakeFavoritesSurface
	count     *fakeCount
	banner    *fakeBanner
	loader    *fakeLoader
	sync      *Synchronizer
	ctrl      *Controller
}

func newHarness() *harness {
	h := &harness{
		fetcher:   newFakeFetcher(),
		store:     favorites.NewStore(favorites.NewMemoryStorage(), nil),
		catalog:   &fakeCatalogSurface{},
		favorites: &fakeFavoritesSurface{},
		count:     &fakeCount{},
		banner:    &fakeBanner{},
		loader:    &fakeLoader{},
	}
	surfaces := Surfaces{
		Catalog:   h.catalog,
		Favorites: h.favorites,
		Count:     h.count,
		Banner:    h.banner,
		Loader:    h.loader,
	}
	h.sync = NewSynchronizer(h.store, surfaces, nil)
	h.ctrl = NewController(h.fetcher, h.sync, surfaces, nil)
	return h
}
