package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/classify"
	"github.com/theirongolddev/cashcast/internal/cli"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <vendor>",
	Short: "Suggest a category for a vendor from past transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(_ *cobra.Command, args []string) error {
	vendor := strings.Join(args, " ")
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	fmt.Println()
	if cat, ok := classify.SuggestCategory(vendor, ds.Transactions); ok {
		fmt.Printf("  %s  ->  %s\n", vendor, cat)
	} else {
		fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("No confident category for %q (needs %.0f%% agreement)", vendor, classify.Threshold*100)))
	}

	near := classify.NearestVendors(vendor, ds.Transactions, 5)
	if len(near) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(near))
	for _, m := range near {
		rows = append(rows, []string{m.Vendor, fmt.Sprintf("%d", m.Distance)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Similar vendors",
		Headers: []string{"Vendor", "Edits"},
		Rows:    rows,
	}))
	return nil
}
