package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/gallery"
)

// loadMoreThreshold is how close to the last entry the selection may get
// before the next page is requested.
const loadMoreThreshold = 3

// Theme holds the color scheme for the browser.
type Theme struct {
	Title    lipgloss.Color
	Favorite lipgloss.Color
	Error    lipgloss.Color
	Hint     lipgloss.Color
	Border   lipgloss.Color
	Selected lipgloss.Color
}

var defaultTheme = Theme{
	Title:    lipgloss.Color("#5FAFD7"), // light blue
	Favorite: lipgloss.Color("#FF5F87"), // pink
	Error:    lipgloss.Color("#FF005F"), // red
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	Border:   lipgloss.Color("#3A3A3A"), // dark gray
	Selected: lipgloss.Color("#00D787"), // green
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) favoriteStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Favorite)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Selected).Bold(true)
}

func (t Theme) paneStyle(active bool) lipgloss.Style {
	border := t.Border
	if active {
		border = t.Title
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// catalogAPI is what the browser needs from the catalog client.
type catalogAPI interface {
	gallery.PageFetcher
	gallery.DetailFetcher
	ListCategories(ctx context.Context) ([]catalog.Breed, error)
}

// session bundles the gallery services with the panes they render into.
type session struct {
	catalog   *catalogPane
	favorites *favoritesPane
	count     *countBadge
	banner    *bannerLine
	loader    *loadingLine

	ctrl   *gallery.Controller
	sync   *gallery.Synchronizer
	viewer *gallery.DetailViewer
}

func newSession(api catalogAPI, favs gallery.FavoriteStore, viewer *gallery.DetailViewer, logger *slog.Logger) *session {
	s := &session{
		catalog:   &catalogPane{},
		favorites: &favoritesPane{},
		count:     &countBadge{},
		banner:    &bannerLine{},
		loader:    &loadingLine{},
		viewer:    viewer,
	}
	surfaces := gallery.Surfaces{
		Catalog:   s.catalog,
		Favorites: s.favorites,
		Count:     s.count,
		Banner:    s.banner,
		Loader:    s.loader,
	}
	s.sync = gallery.NewSynchronizer(favs, surfaces, logger)
	s.ctrl = gallery.NewController(api, s.sync, surfaces, logger)
	return s
}

type focusArea int

const (
	focusCatalog focusArea = iota
	focusFavorites
)

// pageMsg carries a finished page request back to the event loop.
type pageMsg struct{ result gallery.PageResult }

type breedsMsg struct {
	breeds []catalog.Breed
	err    error
}

type detailMsg struct {
	detail gallery.Detail
	err    error
}

// browseModel is the bubbletea model for the interactive browser.
// Controller and synchronizer calls happen only inside Update.
type browseModel struct {
	ctx     context.Context
	api     catalogAPI
	session *session
	logger  *slog.Logger
	theme   Theme
	spinner spinner.Model

	initialFilter string
	breeds        []catalog.Breed
	breedIdx      int // 0 is "all breeds", i > 0 is breeds[i-1]
	focus         focusArea

	detail        *gallery.Detail
	detailLoading bool
	status        string

	width, height int
}

func newBrowseModel(ctx context.Context, api catalogAPI, s *session, filter string, logger *slog.Logger) browseModel {
	return browseModel{
		ctx:           ctx,
		api:           api,
		session:       s,
		logger:        logger,
		theme:         defaultTheme,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		initialFilter: filter,
		height:        24,
		width:         100,
	}
}

// Init renders the favorites panel and requests the first page and the breed list.
func (m browseModel) Init() tea.Cmd {
	m.session.sync.RenderFavoritesPanel()

	var first *gallery.PageRequest
	if m.initialFilter != "" {
		first = m.session.ctrl.ChangeFilter(m.initialFilter)
	} else {
		first = m.session.ctrl.RequestNextPage()
	}

	return tea.Batch(
		m.spinner.Tick,
		m.loadBreeds(),
		m.runPage(first),
	)
}

// Update handles messages and returns the updated model.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.maybeLoadMore()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageMsg:
		outcome := m.session.ctrl.Complete(msg.result)
		m.logger.Debug("page settled", "outcome", outcome.String())
		if outcome == gallery.OutcomeAppended {
			return m, m.maybeLoadMore()
		}
		return m, nil

	case breedsMsg:
		if msg.err != nil {
			m.logger.Error("failed to load breeds", "error", msg.err)
			m.session.banner.Show(fmt.Sprintf("Could not load breeds: %v", msg.err))
			return m, nil
		}
		m.breeds = msg.breeds
		m.breedIdx = m.indexOfBreed(m.session.ctrl.State().Filter)
		return m, nil

	case detailMsg:
		m.detailLoading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not open details: %v", msg.err)
			return m, nil
		}
		d := msg.detail
		m.detail = &d
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}

	if m.detail != nil {
		switch key {
		case "esc", "enter", "backspace":
			m.detail = nil
		}
		return m, nil
	}

	m.status = ""

	switch key {
	case "tab", "shift+tab":
		if m.focus == focusCatalog {
			m.focus = focusFavorites
		} else {
			m.focus = focusCatalog
		}

	case "up", "k":
		m.moveSelection(-1)

	case "down", "j":
		m.moveSelection(1)
		return m, m.maybeLoadMore()

	case "pgdown":
		m.moveSelection(m.visibleRows())
		return m, m.maybeLoadMore()

	case "pgup":
		m.moveSelection(-m.visibleRows())

	case "space", " ", "f":
		if m.focus == focusFavorites {
			m.removeSelectedFavorite()
		} else {
			m.toggleSelected()
		}

	case "x", "d", "delete":
		if m.focus == focusFavorites {
			m.removeSelectedFavorite()
		}

	case "enter":
		cmd := m.openSelected()
		return m, cmd

	case "b":
		cmd := m.cycleBreed(1)
		return m, cmd

	case "B":
		cmd := m.cycleBreed(-1)
		return m, cmd

	case "a":
		cmd := m.changeFilter(0)
		return m, cmd

	case "r", "n":
		return m, m.runPage(m.session.ctrl.RequestNextPage())
	}

	return m, nil
}

func (m *browseModel) moveSelection(delta int) {
	if m.focus == focusFavorites {
		m.session.favorites.move(delta)
		return
	}
	m.session.catalog.move(delta)
}

func (m *browseModel) toggleSelected() {
	entry, ok := m.session.catalog.selected()
	if !ok {
		return
	}
	favorited, err := m.session.sync.ToggleFavorite(entry.Item)
	switch {
	case err != nil:
		m.status = fmt.Sprintf("Could not update favorites: %v", err)
	case favorited:
		m.status = "Added to favorites"
	default:
		m.status = "Removed from favorites"
	}
}

func (m *browseModel) removeSelectedFavorite() {
	rec, ok := m.session.favorites.selected()
	if !ok {
		return
	}
	if err := m.session.sync.RemoveFromFavoritesPanel(rec.ID); err != nil {
		m.status = fmt.Sprintf("Could not update favorites: %v", err)
		return
	}
	m.status = "Removed from favorites"
}

func (m *browseModel) openSelected() tea.Cmd {
	var item catalog.Item
	if m.focus == focusFavorites {
		rec, ok := m.session.favorites.selected()
		if !ok {
			return nil
		}
		item = rec.Item()
	} else {
		entry, ok := m.session.catalog.selected()
		if !ok {
			return nil
		}
		item = entry.Item
	}

	m.detailLoading = true
	viewer, ctx := m.session.viewer, m.ctx
	return func() tea.Msg {
		d, err := viewer.Open(ctx, item)
		return detailMsg{detail: d, err: err}
	}
}

func (m *browseModel) cycleBreed(step int) tea.Cmd {
	n := len(m.breeds) + 1
	return m.changeFilter(((m.breedIdx+step)%n + n) % n)
}

func (m *browseModel) changeFilter(idx int) tea.Cmd {
	m.breedIdx = idx
	m.focus = focusCatalog
	filter := ""
	if idx > 0 && idx <= len(m.breeds) {
		filter = m.breeds[idx-1].ID
	}
	return m.runPage(m.session.ctrl.ChangeFilter(filter))
}

func (m browseModel) indexOfBreed(id string) int {
	for i, b := range m.breeds {
		if b.ID == id {
			return i + 1
		}
	}
	return 0
}

func (m browseModel) filterName() string {
	if m.breedIdx > 0 && m.breedIdx <= len(m.breeds) {
		return m.breeds[m.breedIdx-1].Name
	}
	if f := m.session.ctrl.State().Filter; f != "" {
		return f
	}
	return "All breeds"
}

// maybeLoadMore requests the next page when the selection is near the end of
// the catalog or the catalog does not yet fill the screen.
func (m browseModel) maybeLoadMore() tea.Cmd {
	p := m.session.catalog
	nearEnd := p.cursor >= len(p.entries)-loadMoreThreshold
	if !nearEnd && len(p.entries) >= m.visibleRows() {
		return nil
	}
	return m.runPage(m.session.ctrl.RequestNextPage())
}

// runPage performs req off the event loop. Returns nil when req is nil.
func (m browseModel) runPage(req *gallery.PageRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return pageMsg{result: req.Run(ctx)}
	}
}

func (m browseModel) loadBreeds() tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		breeds, err := api.ListCategories(ctx)
		return breedsMsg{breeds: breeds, err: err}
	}
}

func (m browseModel) visibleRows() int {
	// header, banner, pane borders, footer and help
	rows := m.height - 9
	if rows < 3 {
		rows = 3
	}
	return rows
}

// View renders the browser.
func (m browseModel) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	v.WindowTitle = "Cat Gallery"
	return v
}

func (m browseModel) renderContent() string {
	var b strings.Builder

	header := m.theme.titleStyle().Render("🐱 Cat Gallery")
	filter := fmt.Sprintf("  Breed: %s", m.filterName())
	count := m.theme.favoriteStyle().Render(fmt.Sprintf("  ♥ %d", m.session.count.n))
	b.WriteString(header + filter + count + "\n")

	if m.session.banner.visible {
		b.WriteString(m.theme.errorStyle().Render(m.session.banner.message))
		b.WriteString(m.theme.hintStyle().Render("  (r to retry)"))
	}
	b.WriteString("\n")

	if m.detail != nil {
		b.WriteString(m.renderDetail(*m.detail))
	} else {
		left := m.theme.paneStyle(m.focus == focusCatalog).Render(m.renderCatalog())
		right := m.theme.paneStyle(m.focus == focusFavorites).Render(m.renderFavorites())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	}
	b.WriteString("\n")

	switch {
	case m.session.loader.visible:
		b.WriteString(m.spinner.View() + " Loading cats...")
	case m.detailLoading:
		b.WriteString(m.spinner.View() + " Loading details...")
	case m.status != "":
		b.WriteString(m.status)
	}
	b.WriteString("\n")

	help := "↑/↓ move · space favorite · enter details · b/B breed · a all · tab panel · q quit"
	if m.detail != nil {
		help = "esc back · q quit"
	}
	b.WriteString(m.theme.hintStyle().Render(help))

	return b.String()
}

func (m browseModel) catalogWidth() int {
	w := m.width*2/3 - 4
	if w < 30 {
		w = 30
	}
	return w
}

func (m browseModel) renderCatalog() string {
	p := m.session.catalog
	rows := m.visibleRows()
	width := m.catalogWidth()

	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	end := start + rows
	if end > len(p.entries) {
		end = len(p.entries)
	}

	lines := make([]string, 0, rows+1)
	for i := start; i < end; i++ {
		e := p.entries[i]
		line := truncate(heart(e.Favorited)+" "+describeItem(e.Item), width-2)
		if e.Favorited {
			line = m.theme.favoriteStyle().Render(line)
		}
		if i == p.cursor && m.focus == focusCatalog {
			line = m.theme.selectedStyle().Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	if p.ended && end == len(p.entries) {
		msg := "— end of results —"
		if p.empty {
			msg = "No cats found for this breed."
		}
		lines = append(lines, m.theme.hintStyle().Render(msg))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.hintStyle().Render("Waiting for cats..."))
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m browseModel) renderFavorites() string {
	p := m.session.favorites
	width := m.width - m.catalogWidth() - 8
	if width < 20 {
		width = 20
	}

	lines := []string{m.theme.titleStyle().Render("Favorites")}
	if p.emptyMsg != "" {
		lines = append(lines, m.theme.hintStyle().Render(p.emptyMsg))
	}
	for i, rec := range p.records {
		line := truncate("♥ "+rec.ID+" "+breedName(rec.Item()), width-2)
		if i == p.cursor && m.focus == focusFavorites {
			line = m.theme.selectedStyle().Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m browseModel) renderDetail(d gallery.Detail) string {
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render(d.Breed) + "\n\n")
	fmt.Fprintf(&b, "Image:       %s\n", d.ImageURL)
	fmt.Fprintf(&b, "Origin:      %s\n", d.Origin)
	fmt.Fprintf(&b, "Temperament: %s\n", d.Temperament)
	fmt.Fprintf(&b, "Life span:   %s\n", d.LifeSpan)
	fmt.Fprintf(&b, "Weight:      %s\n", d.Weight)
	if d.Description != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(m.catalogWidth()).Render(d.Description) + "\n")
	}
	if d.Partial {
		b.WriteString("\n" + m.theme.hintStyle().Render("Breed details are unavailable right now.") + "\n")
	}
	return m.theme.paneStyle(true).Render(strings.TrimRight(b.String(), "\n"))
}

func breedName(item catalog.Item) string {
	if item.HasBreeds() {
		return item.Breeds[0].Name
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// runInteractive runs the browser until the user quits.
func runInteractive(ctx context.Context, api catalogAPI, s *session, filter string, logger *slog.Logger) error {
	model := newBrowseModel(ctx, api, s, filter, logger)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("browser UI error: %w", err)
	}
	return nil
}
