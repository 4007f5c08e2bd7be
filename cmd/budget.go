package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/budget"
	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

var (
	flagPeriod     string
	flagCategories []string
	flagMergeTypes bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Actual vs budgeted spend and income by category",
	RunE:  runBudget,
}

func init() {
	budgetCmd.Flags().StringVarP(&flagPeriod, "period", "p", "", "Period: month, quarter, year (default from config)")
	budgetCmd.Flags().StringSliceVarP(&flagCategories, "category", "c", nil, "Break a category down by sub-category (repeatable)")
	budgetCmd.Flags().BoolVar(&flagMergeTypes, "merge-types", false, "One row per category even when it mixes income and expense")
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, _ []string) error {
	periodName := appCfg.General.BudgetPeriod
	if flagPeriod != "" {
		periodName = flagPeriod
	}
	period, err := budget.ParsePeriod(periodName)
	if err != nil {
		return err
	}
	merge := appCfg.Budget.MergeMixedTypes
	if cmd.Flags().Changed("merge-types") {
		merge = flagMergeTypes
	}

	ds, err := loadDataset()
	if err != nil {
		return err
	}
	r, err := pipeline.BuildBudget(ds, flagScenario, period, pipeline.BudgetOptions{
		MergeTypes: merge,
		Expand:     flagCategories,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGET  %s  per %s", r.Scenario.Name, r.Period)))
	fmt.Println()

	if len(r.Rows) == 0 {
		fmt.Println(cli.Muted("  No recorded transactions for this scenario."))
		return nil
	}

	rows := make([][]string, 0, len(r.Rows)+4)
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Category,
			string(row.Type),
			cli.FormatMoney(row.Actual),
			cli.FormatMoney(row.Budgeted),
			cli.Delta(row.Variance()),
		})
	}
	t := r.Totals
	rows = append(rows,
		[]string{cli.Separator},
		[]string{"Total income", "income", cli.FormatMoney(t.ActualIncome), cli.FormatMoney(t.BudgetedIncome), cli.Delta(t.ActualIncome.Sub(t.BudgetedIncome))},
		[]string{"Total expense", "expense", cli.FormatMoney(t.ActualExpense), cli.FormatMoney(t.BudgetedExpense), cli.Delta(t.BudgetedExpense.Sub(t.ActualExpense))},
	)
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Category", "Type", "Actual", "Budgeted", "Variance"},
		Rows:     rows,
		LeftCols: 2,
	}))

	for _, cat := range flagCategories {
		subs := r.Breakdown[cat]
		fmt.Println()
		if len(subs) == 0 {
			fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("No transactions in %q", cat)))
			continue
		}
		subRows := make([][]string, 0, len(subs))
		for _, s := range subs {
			subRows = append(subRows, []string{s.Subcategory, string(s.Type), cli.FormatMoney(s.Total)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    cat,
			Headers:  []string{"Sub-category", "Type", "Total"},
			Rows:     subRows,
			LeftCols: 2,
		}))
	}
	return nil
}
