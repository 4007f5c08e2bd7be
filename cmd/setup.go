package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/forecast"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	cfg := appCfg

	ds, err := loadDataset()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("  Welcome to cashcast!")
	fmt.Println()
	fmt.Printf("  Database: %s (%d scenarios, %d transactions)\n\n",
		dbPath(), len(ds.Scenarios), len(ds.Transactions))

	// 1. Default scenario
	fmt.Println("  1. Default scenario")
	for i, s := range ds.Scenarios {
		def := ""
		if s.ID == cfg.General.Scenario {
			def = " [default]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, s.Name, def)
	}
	fmt.Print("     > ")
	if n, err := strconv.Atoi(readLine(reader)); err == nil && n >= 1 && n <= len(ds.Scenarios) {
		cfg.General.Scenario = ds.Scenarios[n-1].ID
	}
	fmt.Println()

	// 2. Horizon
	fmt.Println("  2. Forecast horizon")
	fmt.Println("     (1) 30 days")
	fmt.Println("     (2) 90 days [default]")
	fmt.Println("     (3) 180 days")
	fmt.Println("     (4) 365 days")
	fmt.Print("     > ")
	switch readLine(reader) {
	case "1":
		cfg.General.HorizonDays = 30
	case "3":
		cfg.General.HorizonDays = 180
	case "4":
		cfg.General.HorizonDays = 365
	default:
		cfg.General.HorizonDays = 90
	}
	fmt.Println()

	// 3. Grouping
	fmt.Println("  3. Forecast grouping")
	fmt.Println("     (1) Daily [default]")
	fmt.Println("     (2) Weekly")
	fmt.Println("     (3) Biweekly")
	fmt.Println("     (4) Monthly")
	fmt.Print("     > ")
	switch readLine(reader) {
	case "2":
		cfg.General.Grouping = string(forecast.GroupWeekly)
	case "3":
		cfg.General.Grouping = string(forecast.GroupBiweekly)
	case "4":
		cfg.General.Grouping = string(forecast.GroupMonthly)
	default:
		cfg.General.Grouping = string(forecast.GroupDaily)
	}
	fmt.Println()

	// 4. Precision
	fmt.Println("  4. Balance precision")
	fmt.Println("     (1) Round to cents each day [default]")
	fmt.Println("     (2) Exact, round only for display")
	fmt.Print("     > ")
	if readLine(reader) == "2" {
		cfg.Forecast.Precision = forecast.PrecisionExact.String()
	} else {
		cfg.Forecast.Precision = forecast.PrecisionRounded.String()
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `cashcast setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
