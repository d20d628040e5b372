package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/raphaelgruber/catgallery/internal/gallery"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	browseBreed string
	browsePages int
	browsePlain bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the cat catalog",
	Long: `Browse the cat catalog page by page.

In a terminal this opens the interactive browser: scroll to load more,
press space to favorite, enter for breed details and b to switch breed.
When output is not a terminal, or with --plain, pages are printed instead.

Examples:
  catgallery browse
  catgallery browse --breed abys
  catgallery browse --plain --pages 3 > cats.txt`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	addBrowseFlags(browseCmd)
}

// addBrowseFlags registers the browse flags on cmd; the root command shares them.
func addBrowseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&browseBreed, "breed", "", "only show this breed id (see 'catgallery breeds')")
	cmd.Flags().IntVarP(&browsePages, "pages", "p", 1, "pages to print in plain mode")
	cmd.Flags().BoolVar(&browsePlain, "plain", false, "print pages instead of opening the interactive browser")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	viewer := gallery.NewDetailViewer(api, cfg.DetailTTL, logger)

	if browsePlain || !isTerminal(os.Stdout) {
		return runPlain(ctx, cmd.OutOrStdout(), api, store, browseBreed, browsePages, logger)
	}

	return runInteractive(ctx, api, newSession(api, store, viewer, logger), browseBreed, logger)
}

// runPlain prints up to pages pages of the catalog to w.
func runPlain(ctx context.Context, w io.Writer, fetcher gallery.PageFetcher, favs gallery.FavoriteStore, filter string, pages int, logger *slog.Logger) error {
	surfaces := gallery.Surfaces{
		Catalog:   &textCatalog{w: w},
		Favorites: &favoritesPane{},
		Count:     &countBadge{},
		Banner:    textBanner{w: w},
		Loader:    &loadingLine{},
	}
	sync := gallery.NewSynchronizer(favs, surfaces, logger)
	ctrl := gallery.NewController(fetcher, sync, surfaces, logger)

	if filter != "" {
		res := ctrl.ChangeFilter(filter).Run(ctx)
		switch ctrl.Complete(res) {
		case gallery.OutcomeFailed:
			return fmt.Errorf("load page 1: %w", res.Err)
		case gallery.OutcomeExhausted:
			return nil
		}
		pages--
	}

	for i := 0; i < pages; i++ {
		outcome, err := ctrl.Next(ctx)
		if err != nil {
			return fmt.Errorf("load page %d: %w", ctrl.State().Cursor+1, err)
		}
		if outcome == gallery.OutcomeExhausted {
			break
		}
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
