package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/raphaelgruber/catgallery/internal/catalog"
)

// PageFetcher fetches one page of catalog results.
type PageFetcher interface {
	SearchPage(ctx context.Context, breedID string, page int) ([]catalog.Item, error)
}

// CatalogRenderer appends fetched items to the catalog view.
type CatalogRenderer interface {
	RenderCatalog(items []catalog.Item) int
}

// State is a snapshot of the pagination session.
type State struct {
	Loading   bool
	Filter    string // empty means unfiltered
	Cursor    int    // next page to request
	Exhausted bool
}

// PageRequest tags one page fetch with the filter, page and filter
// generation it was issued for.
type PageRequest struct {
	ID         uuid.UUID
	Filter     string
	Page       int
	Generation uint64

	fetcher PageFetcher
}

// Run performs the fetch. It does not touch controller state and is safe to
// call from any goroutine; hand the result to Controller.Complete.
func (r *PageRequest) Run(ctx context.Context) PageResult {
	items, err := r.fetcher.SearchPage(ctx, r.Filter, r.Page)
	return PageResult{Request: r, Items: items, Err: err}
}

// PageResult is the outcome of PageRequest.Run.
type PageResult struct {
	Request *PageRequest
	Items   []catalog.Item
	Err     error
}

// Outcome describes what Complete did with a result.
type Outcome int

const (
	// OutcomeAppended means items were rendered and the cursor advanced.
	OutcomeAppended Outcome = iota
	// OutcomeExhausted means the page was empty and the filter is done.
	OutcomeExhausted
	// OutcomeFailed means the fetch failed; the same page can be retried.
	OutcomeFailed
	// OutcomeStale means the result belonged to a superseded request and was dropped.
	OutcomeStale
	// OutcomeSkipped means no request was issued (loading or exhausted).
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAppended:
		return "appended"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Controller owns the pagination session: the active filter, the page
// cursor, the loading flag and the exhaustion flag. At most one page
// request is in flight at any time.
type Controller struct {
	mu         sync.Mutex
	state      State
	generation uint64
	inflight   *PageRequest

	fetcher  PageFetcher
	renderer CatalogRenderer
	catalog  CatalogSurface
	banner   ErrorBanner
	loader   LoadingIndicator
	logger   *slog.Logger
}

// NewController creates a controller for the unfiltered catalog. logger may be nil.
func NewController(fetcher PageFetcher, renderer CatalogRenderer, surfaces Surfaces, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		fetcher:  fetcher,
		renderer: renderer,
		catalog:  surfaces.Catalog,
		banner:   surfaces.Banner,
		loader:   surfaces.Loader,
		logger:   logger,
	}
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RequestNextPage issues a request for the next page of the active filter.
// Returns nil, without side effects, while a request is in flight or once
// the filter is exhausted.
func (c *Controller) RequestNextPage() *PageRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestLocked()
}

// ChangeFilter resets the session to the first page of filter, clears the
// catalog and issues the first request. A request still in flight for the
// previous filter is superseded and its result will be dropped.
func (c *Controller) ChangeFilter(filter string) *PageRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != nil {
		c.logger.Debug("superseding in-flight page request",
			"request_id", c.inflight.ID,
			"filter", c.inflight.Filter,
			"page", c.inflight.Page,
		)
	}

	c.generation++
	c.inflight = nil
	c.state = State{Filter: filter}
	c.catalog.Clear()
	c.logger.Info("filter changed", "filter", filter, "generation", c.generation)

	return c.requestLocked()
}

func (c *Controller) requestLocked() *PageRequest {
	if c.state.Loading || c.state.Exhausted {
		return nil
	}

	req := &PageRequest{
		ID:         uuid.New(),
		Filter:     c.state.Filter,
		Page:       c.state.Cursor,
		Generation: c.generation,
		fetcher:    c.fetcher,
	}
	c.state.Loading = true
	c.inflight = req

	c.loader.Show()
	c.banner.Hide()

	c.logger.Debug("requesting page", "request_id", req.ID, "filter", req.Filter, "page", req.Page)
	return req
}

// Complete applies the result of the in-flight request. Results of
// superseded requests are discarded without touching any state.
func (c *Controller) Complete(res PageResult) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := res.Request
	if req == nil || req != c.inflight || req.Generation != c.generation {
		attrs := []any{"current_filter", c.state.Filter}
		if req != nil {
			attrs = append(attrs, "request_id", req.ID, "filter", req.Filter, "page", req.Page)
		}
		c.logger.Debug("discarding stale page result", attrs...)
		return OutcomeStale
	}

	c.inflight = nil
	c.state.Loading = false
	c.loader.Hide()

	if res.Err != nil {
		c.logger.Error("failed to load page", "filter", req.Filter, "page", req.Page, "error", res.Err)
		c.banner.Show(fmt.Sprintf("Could not load cats: %v", res.Err))
		return OutcomeFailed
	}

	if len(res.Items) == 0 {
		c.state.Exhausted = true
		c.catalog.ShowEndOfResults(c.state.Cursor == 0)
		c.logger.Info("no more results", "filter", req.Filter, "page", req.Page)
		return OutcomeExhausted
	}

	c.renderer.RenderCatalog(res.Items)
	c.state.Cursor++
	c.logger.Info("page loaded", "filter", req.Filter, "page", req.Page, "items", len(res.Items))
	return OutcomeAppended
}

// Next requests the next page, waits for it and applies it.
// Returns the fetch error, if any; a no-op request returns nil.
func (c *Controller) Next(ctx context.Context) (Outcome, error) {
	req := c.RequestNextPage()
	if req == nil {
		return OutcomeSkipped, nil
	}
	res := req.Run(ctx)
	return c.Complete(res), res.Err
}
