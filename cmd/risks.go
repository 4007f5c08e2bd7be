package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/forecast"
)

var risksCmd = &cobra.Command{
	Use:   "risks",
	Short: "List the days the projected balance goes negative",
	RunE:  runRisks,
}

func init() {
	rootCmd.AddCommand(risksCmd)
}

func runRisks(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	// The risk window applies unless --days is given explicitly.
	days := appCfg.Forecast.RiskWindowDays
	if cmd.Flags().Changed("days") {
		days = flagDays
	}

	precision, err := forecast.ParsePrecision(appCfg.Forecast.Precision)
	if err != nil {
		return err
	}
	series, err := forecast.SimulateCashSeries(ds, flagScenario, days, appNow, forecast.WithPrecision(precision))
	if err != nil {
		return err
	}
	negatives := forecast.DetectNegativeBalances(series)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RISK ALERTS  %s  Next %dd", flagScenario, days)))
	fmt.Println()

	if len(negatives) == 0 {
		fmt.Println(cli.Muted("  The balance stays at or above zero."))
		return nil
	}

	rows := make([][]string, 0, len(negatives))
	for _, p := range negatives {
		rows = append(rows, []string{
			cli.FormatDate(p.Date),
			cli.Money(p.Balance),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Balance"},
		Rows:    rows,
	}))
	fmt.Println()
	printRiskLine(forecast.SummarizeRisk(series))
	return nil
}
