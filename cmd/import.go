package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/source"
)

// maxSkippedShown caps the skipped-row lines printed per file.
const maxSkippedShown = 10

var (
	flagImportForce  bool
	flagImportDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|dir>...",
	Short: "Import transactions from CSV files",
	Long: "Import rows of " + strings.Join(source.Columns, ",") + " from CSV files or directories.\n" +
		"Files already imported and unchanged since are skipped unless --force is given.",
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportForce, "force", false, "Re-import files even if unchanged")
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and report without saving")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 20))
	}

	res, err := pipeline.Import(st, pipeline.ImportRequest{
		Paths:    args,
		Scenario: flagScenario,
		Force:    flagImportForce,
		DryRun:   flagImportDryRun,
	}, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && res.TotalFiles > res.Unchanged {
		fmt.Fprintln(os.Stderr)
	}
	appLog.Debug().
		Int("files", res.TotalFiles).
		Int("parsed", res.ParsedFiles).
		Int("unchanged", res.Unchanged).
		Int("rows", len(res.Transactions)).
		Msg("import finished")

	for _, f := range res.Files {
		if f.Err != nil {
			fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("%s: %v", f.Path, f.Err)))
			continue
		}
		for i, skip := range f.Skipped {
			if i == maxSkippedShown {
				fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("%s: %d more skipped rows", f.Path, len(f.Skipped)-i)))
				break
			}
			fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("%s: skipped %s", f.Path, skip.Error())))
		}
	}

	verb := "Imported"
	if flagImportDryRun {
		verb = "Would import"
	}
	fmt.Printf("  %s %d transactions from %d of %d files", verb, len(res.Transactions), res.ParsedFiles, res.TotalFiles)
	if res.Unchanged > 0 {
		fmt.Printf(" (%d unchanged)", res.Unchanged)
	}
	fmt.Println()
	if res.SkippedRows > 0 {
		fmt.Printf("  %d rows skipped\n", res.SkippedRows)
	}
	if res.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be parsed\n", res.FileErrors)
	}
	return nil
}
