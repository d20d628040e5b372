package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/catgallery/internal/catalog"
)

// ErrInvalidItem is returned when a detail view is requested for an item without id.
var ErrInvalidItem = errors.New("invalid item")

// DefaultDetailTTL is how long fetched details are reused.
const DefaultDetailTTL = 5 * time.Minute

// Placeholders used when the catalog has no data for a field.
const (
	UnknownBreed       = "Unknown breed"
	UnknownOrigin      = "Unknown origin"
	UnknownTemperament = "Not specified"
	NoData             = "—"
)

// DetailFetcher looks up a single image with full breed info.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, id string) (catalog.Item, error)
}

// Detail is what the detail view displays for one image.
type Detail struct {
	ID          string
	ImageURL    string
	Breed       string
	Origin      string
	Temperament string
	Description string
	LifeSpan    string
	Weight      string

	// Partial is set when the full detail lookup failed and only the data the
	// item already carried is shown.
	Partial bool
}

type detailEntry struct {
	item      catalog.Item
	fetchedAt time.Time
}

// DetailViewer resolves the detail view of an item: breed info the item
// already carries, then a cached lookup, then a fetch. Lookup failures
// degrade to the partial item.
type DetailViewer struct {
	fetcher DetailFetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]detailEntry
}

// NewDetailViewer creates a viewer. ttl <= 0 uses DefaultDetailTTL. logger may be nil.
func NewDetailViewer(fetcher DetailFetcher, ttl time.Duration, logger *slog.Logger) *DetailViewer {
	if ttl <= 0 {
		ttl = DefaultDetailTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailViewer{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		cache:   make(map[string]detailEntry),
	}
}

// Open builds the detail view for item.
func (v *DetailViewer) Open(ctx context.Context, item catalog.Item) (Detail, error) {
	if item.ID == "" {
		v.logger.Error("cannot open details for item without id")
		return Detail{}, fmt.Errorf("open detail: %w", ErrInvalidItem)
	}

	if item.HasBreeds() {
		return buildDetail(item, false), nil
	}

	if cached, ok := v.cached(item.ID); ok {
		return buildDetail(mergeDetail(item, cached), false), nil
	}

	full, err := v.fetcher.FetchDetail(ctx, item.ID)
	if err != nil {
		v.logger.Warn("failed to fetch image details, showing partial data", "id", item.ID, "error", err)
		return buildDetail(item, true), nil
	}

	v.mu.Lock()
	v.cache[item.ID] = detailEntry{item: full, fetchedAt: v.now()}
	v.mu.Unlock()

	return buildDetail(mergeDetail(item, full), false), nil
}

func (v *DetailViewer) cached(id string) (catalog.Item, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.cache[id]
	if !ok || v.now().Sub(e.fetchedAt) >= v.ttl {
		return catalog.Item{}, false
	}
	return e.item, true
}

// mergeDetail fills the gaps of a partial item from a full lookup.
func mergeDetail(partial, full catalog.Item) catalog.Item {
	out := full
	out.ID = partial.ID
	if out.ImageURL == "" {
		out.ImageURL = partial.ImageURL
	}
	return out
}

func buildDetail(item catalog.Item, partial bool) Detail {
	d := Detail{
		ID:       item.ID,
		ImageURL: item.ImageURL,
		Partial:  partial,
	}

	if !item.HasBreeds() {
		d.Breed = UnknownBreed
		d.Origin = NoData
		d.Temperament = NoData
		return d
	}

	b := item.Breeds[0]
	d.Breed = orDefault(b.Name, UnknownBreed)
	d.Origin = orDefault(b.Origin, UnknownOrigin)
	d.Temperament = orDefault(b.Temperament, UnknownTemperament)
	d.Description = b.Description
	if b.LifeSpan != "" {
		d.LifeSpan = b.LifeSpan + " years"
	}
	if w := b.WeightMetric(); w != "" {
		d.Weight = w + " kg"
	}
	return d
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
