package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

var (
	flagGroup string
	flagTrend bool
	flagExact bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Projected balance grouped by day, week, biweek or month",
	RunE:  runForecast,
}

var forecastCompareCmd = &cobra.Command{
	Use:   "compare [scenario...]",
	Short: "Compare up to four scenarios over the same horizon",
	RunE:  runForecastCompare,
}

func init() {
	forecastCmd.PersistentFlags().StringVarP(&flagGroup, "group", "g", "", "Grouping: daily, weekly, biweekly, monthly (default from config)")
	forecastCmd.PersistentFlags().BoolVar(&flagTrend, "trend", false, "Fit a linear trend (default from config)")
	forecastCmd.PersistentFlags().BoolVar(&flagExact, "exact", false, "Carry unrounded balances between days")

	forecastCmd.AddCommand(forecastCompareCmd)
	rootCmd.AddCommand(forecastCmd)
}

// forecastRequest merges the forecast flags over the config defaults.
func forecastRequest(cmd *cobra.Command) (pipeline.Request, error) {
	group := appCfg.General.Grouping
	if flagGroup != "" {
		group = flagGroup
	}
	g, err := forecast.ParseGrouping(group)
	if err != nil {
		return pipeline.Request{}, err
	}

	trend := appCfg.General.IncludeTrend
	if cmd.Flags().Changed("trend") {
		trend = flagTrend
	}

	precision, err := forecast.ParsePrecision(appCfg.Forecast.Precision)
	if err != nil {
		return pipeline.Request{}, err
	}
	if flagExact {
		precision = forecast.PrecisionExact
	}

	return pipeline.Request{
		Scenario:     flagScenario,
		HorizonDays:  flagDays,
		Now:          appNow,
		Grouping:     g,
		IncludeTrend: trend,
		Precision:    precision,
	}, nil
}

func runForecast(cmd *cobra.Command, _ []string) error {
	req, err := forecastRequest(cmd)
	if err != nil {
		return err
	}
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	r, err := pipeline.Forecast(ds, req)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  %s  Next %dd", r.Scenario.Name, req.HorizonDays)))
	fmt.Println()

	rows := make([][]string, 0, len(r.Buckets))
	prev := r.Start()
	for _, b := range r.Buckets {
		rows = append(rows, []string{b.Label, cli.Money(b.Balance), cli.Delta(b.Balance.Sub(prev))})
		prev = b.Balance
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Balance by %s", req.Grouping),
		Headers: []string{"Period", "Balance", "Change"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  %s  %s\n", cli.Muted("Balance"), cli.RenderSparkline(cli.Downsample(balances(r.Series), 60)))
	fmt.Printf("  %s %s  %s %s  (%s)\n",
		cli.Muted("Start"), cli.Money(r.Start()),
		cli.Muted("End"), cli.Money(r.End()),
		cli.Delta(r.End().Sub(r.Start())))
	printRiskLine(r.Risk)

	if req.IncludeTrend {
		if r.Trend == nil {
			fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("Trend: needs at least %d points", forecast.MinTrendPoints)))
		} else {
			slope := decimal.NewFromFloat(r.Trend.Slope)
			fmt.Printf("  %s %s/day\n", cli.Muted("Trend"), cli.Delta(slope))
		}
	}
	return nil
}

func runForecastCompare(cmd *cobra.Command, args []string) error {
	req, err := forecastRequest(cmd)
	if err != nil {
		return err
	}
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	if len(args) > pipeline.MaxCompare && !flagQuiet {
		fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("Only the first %d scenarios are compared", pipeline.MaxCompare)))
	}
	reports, err := pipeline.Compare(ds, args, req)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIO COMPARISON  Next %dd", req.HorizonDays)))
	fmt.Println()

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		lowDate := "-"
		low := decimal.Zero
		if r.Risk.Low != nil {
			low = r.Risk.Low.Balance
			lowDate = cli.FormatDate(r.Risk.Low.Date)
		}
		slope := "-"
		if r.Trend != nil {
			slope = cli.Delta(decimal.NewFromFloat(r.Trend.Slope)) + "/d"
		}
		rows = append(rows, []string{
			r.Scenario.Name,
			cli.Money(r.Start()),
			cli.Money(r.End()),
			cli.Delta(r.End().Sub(r.Start())),
			cli.Money(low),
			lowDate,
			fmt.Sprintf("%d", r.Risk.Count),
			slope,
			cli.RenderSparkline(cli.Downsample(balances(r.Series), 20)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Scenario", "Start", "End", "Change", "Low", "Low Date", "Risk Days", "Trend", "Shape"},
		Rows:    rows,
	}))
	return nil
}

func balances(series []model.SeriesPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Balance.InexactFloat64()
	}
	return out
}

func printRiskLine(rs forecast.RiskSummary) {
	if rs.Count == 0 {
		fmt.Printf("  %s\n", cli.Muted("No negative-balance days"))
		return
	}
	fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("%s below zero, first on %s (%s); low %s on %s",
		cli.FormatDays(rs.Count),
		cli.FormatDate(rs.First.Date), cli.FormatMoney(rs.First.Balance),
		cli.FormatMoney(rs.Low.Balance), cli.FormatDate(rs.Low.Date))))
}
