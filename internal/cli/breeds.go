package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var breedsCmd = &cobra.Command{
	Use:   "breeds",
	Short: "List the breeds available as filters",
	Long: `List every breed the catalog knows about. Pass the id to
'catgallery browse --breed <id>' to only see that breed.`,
	Args: cobra.NoArgs,
	RunE: runBreeds,
}

func runBreeds(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	breeds, err := api.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list breeds: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(breeds) == 0 {
		fmt.Fprintln(out, "No breeds found.")
		return nil
	}

	fmt.Fprintf(out, "Breeds (%d):\n\n", len(breeds))
	for _, b := range breeds {
		origin := ""
		if b.Origin != "" {
			origin = fmt.Sprintf(" (%s)", b.Origin)
		}
		fmt.Fprintf(out, "  %-6s %s%s\n", b.ID, b.Name, origin)
	}
	return nil
}
