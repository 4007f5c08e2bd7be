package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database contents and the CSV import log",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	st, ds, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	updated, err := st.UpdatedAt()
	if err != nil {
		return err
	}
	imported, err := st.GetImportedFiles()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CASHCAST STATUS"))
	fmt.Println()

	lastWrite := "never"
	if !updated.IsZero() {
		lastWrite = updated.Local().Format(time.RFC3339)
	}
	rows := [][]string{
		{"Database", dbPath()},
		{"Last Write", lastWrite},
		{cli.Separator},
		{"Scenarios", fmt.Sprintf("%d", len(ds.Scenarios))},
		{"Transactions", fmt.Sprintf("%d", len(ds.Transactions))},
		{"Recurring Patterns", fmt.Sprintf("%d", len(ds.Recurring))},
		{"Cards", fmt.Sprintf("%d", len(ds.Cards))},
		{"Imported Files", fmt.Sprintf("%d", len(imported))},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Value"},
		Rows:    rows,
	}))

	if len(ds.Transactions) > 0 {
		fmt.Println()
		fmt.Printf("  %s\n", cli.Muted("Card-funded share of transactions"))
		fmt.Printf("  %s\n", cli.RenderProgressBar(countCardFunded(ds.Transactions), len(ds.Transactions), 30))
	}

	if len(imported) == 0 {
		return nil
	}
	paths := make([]string, 0, len(imported))
	for p := range imported {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fileRows := make([][]string, 0, len(paths))
	for _, p := range paths {
		fi := imported[p]
		fileRows = append(fileRows, []string{
			filepath.Base(p),
			fmt.Sprintf("%d", fi.Rows),
			time.Unix(0, fi.MtimeNs).Local().Format("2006-01-02 15:04"),
			cli.Muted(filepath.Dir(p)),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Import Log",
		Headers: []string{"File", "Rows", "Modified", "Directory"},
		Rows:    fileRows,
	}))
	return nil
}

func countCardFunded(txs []model.Transaction) int {
	n := 0
	for _, t := range txs {
		if t.CardFunded() {
			n++
		}
	}
	return n
}
