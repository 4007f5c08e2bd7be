// Package cmd implements the cashcast CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Scenario:       %s\n", cfg.General.Scenario)
	fmt.Printf("    Horizon days:   %d\n", cfg.General.HorizonDays)
	fmt.Printf("    Grouping:       %s\n", cfg.General.Grouping)
	fmt.Printf("    Budget period:  %s\n", cfg.General.BudgetPeriod)
	fmt.Printf("    Include trend:  %v\n", cfg.General.IncludeTrend)
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Database: %s\n", dbPath())
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Precision:        %s\n", cfg.Forecast.Precision)
	fmt.Printf("    Risk window days: %d\n", cfg.Forecast.RiskWindowDays)
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Merge mixed types: %v\n", cfg.Budget.MergeMixedTypes)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:      %s\n", cfg.Daemon.Interval)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  Run `cashcast setup` to reconfigure.")
	return nil
}
