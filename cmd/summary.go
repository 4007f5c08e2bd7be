package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Scenario overview: cash on hand, alerts and upcoming activity",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	riskDays := appCfg.Forecast.RiskWindowDays
	o, err := pipeline.BuildOverview(ds, flagScenario, appNow, riskDays)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASHCAST  %s", o.Scenario.Name)))
	fmt.Println()

	nextRisk := cli.Muted("none")
	if o.NextRisk != nil {
		nextRisk = cli.Warn(fmt.Sprintf("%s (%s)", cli.FormatDate(o.NextRisk.Date), cli.FormatMoney(o.NextRisk.Balance)))
	}
	low := "-"
	if o.Low != nil {
		low = fmt.Sprintf("%s on %s", cli.Money(o.Low.Balance), cli.FormatDate(o.Low.Date))
	}

	rows := [][]string{
		{"Starting Balance", cli.FormatMoney(o.Scenario.StartBalance)},
		{"Recorded Income", cli.FormatMoney(o.Income)},
		{"Recorded Expenses", cli.FormatMoney(o.Expenses)},
		{"Current Cash", cli.Money(o.CurrentCash)},
		{cli.Separator},
		{fmt.Sprintf("Alerts (next %s)", cli.FormatDays(riskDays)), fmt.Sprintf("%d", o.AlertCount)},
		{"Next Risk", nextRisk},
		{fmt.Sprintf("Low (next %s)", cli.FormatDays(pipeline.LowWindowDays)), low},
		{cli.Separator},
		{"Recurring Patterns", fmt.Sprintf("%d", o.RecurringCount)},
		{"Card-Funded Transactions", fmt.Sprintf("%d", o.CardFundedCount)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(o.Upcoming) == 0 {
		fmt.Println()
		fmt.Println(cli.Muted("  Nothing scheduled in the next 14 days."))
		return nil
	}

	upcoming := make([][]string, 0, len(o.Upcoming))
	for _, t := range o.Upcoming {
		upcoming = append(upcoming, []string{
			cli.FormatDate(t.Date),
			t.Vendor,
			t.Category,
			cli.Delta(t.Amount),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Upcoming (14 days)",
		Headers:  []string{"Date", "Vendor", "Category", "Amount"},
		Rows:     upcoming,
		LeftCols: 3,
	}))
	return nil
}
