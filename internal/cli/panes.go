package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/favorites"
	"github.com/raphaelgruber/catgallery/internal/gallery"
)

// catalogPane holds the rendered catalog entries and the selection.
type catalogPane struct {
	entries []gallery.CatalogEntry
	cursor  int
	ended   bool
	empty   bool
}

func (p *catalogPane) Append(entries ...gallery.CatalogEntry) {
	p.entries = append(p.entries, entries...)
}

func (p *catalogPane) Clear() {
	p.entries = nil
	p.cursor = 0
	p.ended = false
	p.empty = false
}

func (p *catalogPane) SetFavorited(id string, favorited bool) {
	for i := range p.entries {
		if p.entries[i].Item.ID == id {
			p.entries[i].Favorited = favorited
		}
	}
}

func (p *catalogPane) ShowEndOfResults(empty bool) {
	p.ended = true
	p.empty = empty
}

func (p *catalogPane) selected() (gallery.CatalogEntry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return gallery.CatalogEntry{}, false
	}
	return p.entries[p.cursor], true
}

func (p *catalogPane) move(delta int) {
	p.cursor = clamp(p.cursor+delta, 0, len(p.entries)-1)
}

// favoritesPane is the favorites panel. It is replaced wholesale on every render.
type favoritesPane struct {
	records  []favorites.Record
	emptyMsg string
	cursor   int
}

func (p *favoritesPane) Replace(records []favorites.Record) {
	p.records = records
	p.emptyMsg = ""
	p.cursor = clamp(p.cursor, 0, len(records)-1)
}

func (p *favoritesPane) ShowEmpty(message string) {
	p.records = nil
	p.emptyMsg = message
	p.cursor = 0
}

func (p *favoritesPane) selected() (favorites.Record, bool) {
	if p.cursor < 0 || p.cursor >= len(p.records) {
		return favorites.Record{}, false
	}
	return p.records[p.cursor], true
}

func (p *favoritesPane) move(delta int) {
	p.cursor = clamp(p.cursor+delta, 0, len(p.records)-1)
}

type countBadge struct{ n int }

func (c *countBadge) SetCount(n int) { c.n = n }

type bannerLine struct {
	message string
	visible bool
}

func (b *bannerLine) Show(message string) {
	b.message = message
	b.visible = true
}

func (b *bannerLine) Hide() {
	b.visible = false
}

type loadingLine struct{ visible bool }

func (l *loadingLine) Show() { l.visible = true }
func (l *loadingLine) Hide() { l.visible = false }

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// textCatalog prints catalog entries as they arrive, for non-interactive output.
type textCatalog struct {
	w     io.Writer
	shown int
}

func (c *textCatalog) Append(entries ...gallery.CatalogEntry) {
	for _, e := range entries {
		c.shown++
		fmt.Fprintf(c.w, "%3d. %s %s\n", c.shown, heart(e.Favorited), describeItem(e.Item))
	}
}

func (c *textCatalog) Clear() { c.shown = 0 }

// SetFavorited is a no-op: printed lines cannot change.
func (c *textCatalog) SetFavorited(string, bool) {}

func (c *textCatalog) ShowEndOfResults(empty bool) {
	if empty {
		fmt.Fprintln(c.w, "No cats found.")
		return
	}
	fmt.Fprintln(c.w, "End of results.")
}

// textBanner prints errors on their own line.
type textBanner struct{ w io.Writer }

func (b textBanner) Show(message string) { fmt.Fprintf(b.w, "Error: %s\n", message) }
func (b textBanner) Hide()               {}

func heart(favorited bool) string {
	if favorited {
		return "♥"
	}
	return "♡"
}

// describeItem renders an item as a single line: id, breed, size and URL.
func describeItem(item catalog.Item) string {
	breed := "unknown breed"
	if item.HasBreeds() && item.Breeds[0].Name != "" {
		breed = item.Breeds[0].Name
	}
	size := ""
	if item.Width > 0 && item.Height > 0 {
		size = fmt.Sprintf(" %dx%d", item.Width, item.Height)
	}
	return fmt.Sprintf("%-10s %-20s%s  %s", item.ID, breed, size, item.ImageURL)
}
