package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raphaelgruber/catgallery/internal/favorites"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage saved favorites",
	Long: `Manage the favorites collection shared with the interactive browser.

Subcommands:
  list    List favorites (default)
  add     Add an image by id
  remove  Remove an image by id
  clear   Remove all favorites
  count   Print the number of favorites
  export  Write favorites as JSON
  import  Merge favorites from JSON

Examples:
  catgallery favorites
  catgallery favorites add 0XYvRd7oD
  catgallery favorites export > favorites.json
  catgallery favorites import favorites.json`,
	RunE: runFavoritesList,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <image-id>...",
	Short: "Add images to favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <image-id>...",
	Aliases: []string{"rm"},
	Short:   "Remove images from favorites",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runFavoritesRemove,
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all favorites",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesClear,
}

var favoritesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), store.Count())
		return nil
	},
}

var favoritesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write favorites as JSON to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFavoritesExport,
}

var favoritesImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Merge favorites from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesImport,
}

var clearYes bool

func init() {
	favoritesClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesClearCmd)
	favoritesCmd.AddCommand(favoritesCountCmd)
	favoritesCmd.AddCommand(favoritesExportCmd)
	favoritesCmd.AddCommand(favoritesImportCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	printFavorites(cmd.OutOrStdout(), store.List())
	return nil
}

func printFavorites(w io.Writer, records []favorites.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No favorites yet.")
		return
	}

	fmt.Fprintf(w, "Favorites (%d):\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(w, "  %s %s\n", heart(true), describeItem(r.Item()))
		fmt.Fprintf(w, "    added %s\n", r.Added().Local().Format(time.DateTime))
	}
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	var errs []error
	for _, id := range args {
		if store.Contains(id) {
			fmt.Fprintf(out, "%s is already a favorite\n", id)
			continue
		}

		item, err := api.FetchDetail(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("look up %s: %w", id, err))
			continue
		}
		if err := store.Add(item); err != nil && !errors.Is(err, favorites.ErrAlreadyFavorite) {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "%s added to favorites\n", id)
	}
	return errors.Join(errs...)
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var errs []error
	for _, id := range args {
		if !store.Contains(id) {
			fmt.Fprintf(out, "%s is not a favorite\n", id)
			continue
		}
		if err := store.Remove(id); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "%s removed from favorites\n", id)
	}
	return errors.Join(errs...)
}

func runFavoritesClear(cmd *cobra.Command, args []string) error {
	n := store.Count()
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No favorites to remove.")
		return nil
	}
	if !clearYes {
		return fmt.Errorf("refusing to remove %d favorites without --yes", n)
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d favorites.\n", n)
	return nil
}

func runFavoritesExport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "-" {
		return store.Export(cmd.OutOrStdout())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := store.Export(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d favorites to %s\n", store.Count(), args[0])
	return nil
}

func runFavoritesImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	n, err := store.Import(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d favorites (%d total).\n", n, store.Count())
	return nil
}
