package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/gallery"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <image-id>",
	Short: "Show breed details for an image",
	Long: `Show the detail view for one image: breed, origin, temperament,
life span and weight. Favorites are shown from local data when the
catalog cannot be reached.

Examples:
  catgallery show 0XYvRd7oD`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	// a favorite already carries enough to degrade gracefully
	item := catalog.Item{ID: id}
	if rec, ok := store.Get(id); ok {
		item = rec.Item()
	}

	viewer := gallery.NewDetailViewer(api, cfg.DetailTTL, logger)
	d, err := viewer.Open(ctx, item)
	if err != nil {
		return fmt.Errorf("show %s: %w", id, err)
	}
	if d.Partial && d.ImageURL == "" {
		return fmt.Errorf("show %s: image could not be loaded", id)
	}

	printDetail(cmd.OutOrStdout(), d, store.Contains(id))
	return nil
}

func printDetail(w io.Writer, d gallery.Detail, favorited bool) {
	fmt.Fprintf(w, "%s %s\n\n", heart(favorited), d.Breed)
	fmt.Fprintf(w, "  ID:          %s\n", d.ID)
	fmt.Fprintf(w, "  Image:       %s\n", d.ImageURL)
	fmt.Fprintf(w, "  Origin:      %s\n", d.Origin)
	fmt.Fprintf(w, "  Temperament: %s\n", d.Temperament)
	fmt.Fprintf(w, "  Life span:   %s\n", d.LifeSpan)
	fmt.Fprintf(w, "  Weight:      %s\n", d.Weight)
	if d.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", d.Description)
	}
	if d.Partial {
		fmt.Fprintln(w, "\n  (breed details unavailable)")
	}
}
