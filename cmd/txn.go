package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/classify"
	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/source"
)

var (
	flagTxnDate        string
	flagTxnVendor      string
	flagTxnAmount      string
	flagTxnType        string
	flagTxnCategory    string
	flagTxnSubcategory string
	flagTxnPayment     string
	flagTxnLimit       int
)

var txnCmd = &cobra.Command{
	Use:     "txn",
	Aliases: []string{"transactions"},
	Short:   "List, add or delete recorded transactions",
}

var txnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenario's transactions by date",
	Args:  cobra.NoArgs,
	RunE:  runTxnList,
}

var txnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long: "Record a transaction. With --type the amount's sign follows the type;\n" +
		"without it the sign decides. A missing category is suggested from past vendors.",
	Args: cobra.NoArgs,
	RunE: runTxnAdd,
}

var txnDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxnDelete,
}

func init() {
	txnListCmd.Flags().IntVar(&flagTxnLimit, "limit", 0, "Show only the most recent N (0 = all)")

	txnAddCmd.Flags().StringVar(&flagTxnDate, "date", "", "Date YYYY-MM-DD (default today)")
	txnAddCmd.Flags().StringVar(&flagTxnVendor, "vendor", "", "Vendor name")
	txnAddCmd.Flags().StringVar(&flagTxnAmount, "amount", "", "Amount; negative for money out")
	txnAddCmd.Flags().StringVar(&flagTxnType, "type", "", "income or expense")
	txnAddCmd.Flags().StringVar(&flagTxnCategory, "category", "", "Category (default suggested)")
	txnAddCmd.Flags().StringVar(&flagTxnSubcategory, "subcategory", "", "Sub-category")
	txnAddCmd.Flags().StringVar(&flagTxnPayment, "payment", model.PaymentChecking, "Payment label; a card's name charges that card")
	_ = txnAddCmd.MarkFlagRequired("vendor")
	_ = txnAddCmd.MarkFlagRequired("amount")

	txnCmd.AddCommand(txnListCmd)
	txnCmd.AddCommand(txnAddCmd)
	txnCmd.AddCommand(txnDeleteCmd)
	rootCmd.AddCommand(txnCmd)
}

func runTxnList(_ *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	if _, err := ds.Scenario(flagScenario); err != nil {
		return err
	}
	txs := ds.ScenarioTransactions(flagScenario)
	slices.SortStableFunc(txs, func(a, b model.Transaction) int { return a.Date.Compare(b.Date) })
	if flagTxnLimit > 0 && len(txs) > flagTxnLimit {
		txs = txs[len(txs)-flagTxnLimit:]
	}

	fmt.Println()
	if len(txs) == 0 {
		fmt.Println(cli.Muted("  No transactions recorded."))
		return nil
	}

	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{
			calendar.Format(t.Date),
			t.Vendor,
			t.Category,
			cli.FormatOptional(t.Subcategory),
			t.Payment,
			cli.Delta(t.Amount),
			cli.Muted(t.ID),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Transactions  %s", flagScenario),
		Headers:  []string{"Date", "Vendor", "Category", "Sub", "Payment", "Amount", "ID"},
		Rows:     rows,
		LeftCols: 5,
	}))
	return nil
}

func runTxnAdd(_ *cobra.Command, _ []string) error {
	date, err := parseDateFlag("date", flagTxnDate)
	if err != nil {
		return err
	}
	raw, err := parseMoney("amount", flagTxnAmount)
	if err != nil {
		return err
	}
	amount, typ, err := signedAmount(raw, flagTxnType)
	if err != nil {
		return err
	}
	vendor := strings.TrimSpace(flagTxnVendor)
	if vendor == "" {
		return errors.New("--vendor must not be empty")
	}

	t := model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Vendor:      vendor,
		Amount:      amount,
		Type:        typ,
		Category:    strings.TrimSpace(flagTxnCategory),
		Subcategory: strings.TrimSpace(flagTxnSubcategory),
		Scenario:    flagScenario,
		Payment:     strings.TrimSpace(flagTxnPayment),
	}
	suggested := false
	if _, err := mutate(func(ds *model.Dataset) error {
		if t.Category == "" {
			cat, ok := classify.SuggestCategory(t.Vendor, ds.Transactions)
			if !ok {
				cat = source.Uncategorised
			}
			t.Category, suggested = cat, ok
		}
		return ds.AddTransactions(t)
	}); err != nil {
		return err
	}

	note := ""
	if suggested {
		note = cli.Muted(" (suggested category)")
	}
	fmt.Printf("  Added %s %s %s on %s in %s%s\n", t.ID, t.Vendor, cli.FormatSignedMoney(t.Amount),
		calendar.Format(t.Date), t.Category, note)
	return nil
}

func runTxnDelete(_ *cobra.Command, args []string) error {
	if _, err := mutate(func(ds *model.Dataset) error { return ds.DeleteTransaction(args[0]) }); err != nil {
		return err
	}
	fmt.Printf("  Deleted transaction %s\n", args[0])
	return nil
}
