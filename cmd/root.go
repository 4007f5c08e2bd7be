package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/logger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
)

var (
	flagScenario string
	flagDays     int
	flagToday    string
	flagDB       string
	flagQuiet    bool
	flagVerbose  bool
)

// Resolved in PersistentPreRunE, after flags are parsed.
var (
	appCfg config.Config
	appLog zerolog.Logger
	appNow time.Time
)

var rootCmd = &cobra.Command{
	Use:               "cashcast",
	Short:             "Cash-flow forecasting CLI",
	Long:              "Project scenario balances day by day, flag negative-balance risk, track budgets and predict card statements.",
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagScenario, "scenario", "s", "", "Scenario id (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Forecast horizon in days (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Pretend today is this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default from config or "+config.EnvDB+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
}

// initApp loads the config and lets explicit flags override it.
func initApp(cmd *cobra.Command, _ []string) error {
	appLog = logger.New(logger.Options{Verbose: flagVerbose, Quiet: flagQuiet})

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", config.Path(), err)
	}
	appCfg = cfg

	if !cmd.Flags().Changed("scenario") {
		flagScenario = cfg.General.Scenario
	}
	if !cmd.Flags().Changed("days") {
		flagDays = cfg.General.HorizonDays
	}

	appNow = time.Now()
	if flagToday != "" {
		appNow, err = calendar.Parse(flagToday)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
	}

	appLog.Debug().
		Str("config", config.Path()).
		Str("db", dbPath()).
		Str("scenario", flagScenario).
		Int("days", flagDays).
		Time("today", calendar.Day(appNow)).
		Msg("resolved settings")
	return nil
}

// dbPath picks --db, then storage.db_path, then the XDG data location.
func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	if appCfg.Storage.DBPath != "" {
		return appCfg.Storage.DBPath
	}
	return pipeline.DBPath()
}

// openStore opens the database and writes the starter dataset on first use.
func openStore() (*store.Store, model.Dataset, error) {
	path := dbPath()
	st, err := store.Open(path)
	if err != nil {
		return nil, model.Dataset{}, fmt.Errorf("opening %s: %w", path, err)
	}

	ds, seeded, err := st.LoadOrSeed(appNow)
	if err != nil {
		_ = st.Close()
		return nil, model.Dataset{}, err
	}
	if seeded && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Created %s with starter data\n", path)
	}
	appLog.Debug().
		Int("scenarios", len(ds.Scenarios)).
		Int("transactions", len(ds.Transactions)).
		Int("recurring", len(ds.Recurring)).
		Int("cards", len(ds.Cards)).
		Msg("dataset loaded")
	return st, ds, nil
}

// loadDataset is the shared read path used by the report commands.
func loadDataset() (model.Dataset, error) {
	st, ds, err := openStore()
	if err != nil {
		return model.Dataset{}, err
	}
	_ = st.Close()
	return ds, nil
}

// mutate applies fn to the stored dataset in one transaction.
func mutate(fn func(*model.Dataset) error) (model.Dataset, error) {
	st, _, err := openStore()
	if err != nil {
		return model.Dataset{}, err
	}
	defer func() { _ = st.Close() }()
	return st.Update(fn)
}

func parseMoney(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: invalid amount %q", flag, s)
	}
	return d, nil
}

func parseDateFlag(flag, s string) (time.Time, error) {
	if s == "" {
		return calendar.Day(appNow), nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

// signedAmount gives amount the sign its type implies. An empty type keeps
// the sign as typed and derives the type from it.
func signedAmount(amount decimal.Decimal, typ string) (decimal.Decimal, model.TxType, error) {
	if typ == "" {
		return amount, model.TypeForAmount(amount), nil
	}
	t, err := model.ParseTxType(typ)
	if err != nil {
		return decimal.Zero, "", err
	}
	if t == model.Expense {
		return amount.Abs().Neg(), t, nil
	}
	return amount.Abs(), t, nil
}
