package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
)

var (
	flagScenarioStart   string
	flagScenarioIncome  string
	flagScenarioExpense string
	flagSetIncome       string
	flagSetExpense      string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "List and manage scenarios",
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios with their balances and budgets",
	Args:  cobra.NoArgs,
	RunE:  runScenarioList,
}

var scenarioAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a scenario; its id is the slug of the name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarioAdd,
}

var scenarioBudgetCmd = &cobra.Command{
	Use:   "budget [id]",
	Short: "Set a scenario's monthly income and expense budget",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScenarioBudget,
}

func init() {
	scenarioAddCmd.Flags().StringVar(&flagScenarioStart, "start-balance", "0", "Starting balance")
	scenarioAddCmd.Flags().StringVar(&flagScenarioIncome, "income", "0", "Monthly income budget")
	scenarioAddCmd.Flags().StringVar(&flagScenarioExpense, "expense", "0", "Monthly expense budget")

	scenarioBudgetCmd.Flags().StringVar(&flagSetIncome, "income", "", "Monthly income budget")
	scenarioBudgetCmd.Flags().StringVar(&flagSetExpense, "expense", "", "Monthly expense budget")

	scenarioCmd.AddCommand(scenarioListCmd)
	scenarioCmd.AddCommand(scenarioAddCmd)
	scenarioCmd.AddCommand(scenarioBudgetCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioList(_ *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(ds.Scenarios))
	for _, s := range ds.Scenarios {
		marker := ""
		if s.ID == flagScenario {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			s.ID,
			s.Name,
			cli.FormatMoney(s.StartBalance),
			cli.FormatMoney(s.Budget.Income),
			cli.FormatMoney(s.Budget.Expense),
			fmt.Sprintf("%d", len(ds.ScenarioTransactions(s.ID))),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"", "ID", "Name", "Start", "Income/mo", "Expense/mo", "Txns"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}

// uniqueScenarioID appends -2, -3, ... until the slug is unused.
func uniqueScenarioID(ds model.Dataset, name string) string {
	base := model.Slug(name)
	id := base
	for n := 2; ; n++ {
		if _, err := ds.Scenario(id); err != nil {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func runScenarioAdd(_ *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if model.Slug(name) == "" {
		return errors.New("scenario name must not be empty")
	}
	start, err := parseMoney("start-balance", flagScenarioStart)
	if err != nil {
		return err
	}
	income, err := parseMoney("income", flagScenarioIncome)
	if err != nil {
		return err
	}
	expense, err := parseMoney("expense", flagScenarioExpense)
	if err != nil {
		return err
	}

	var sc model.Scenario
	if _, err := mutate(func(ds *model.Dataset) error {
		sc = model.Scenario{
			ID:           uniqueScenarioID(*ds, name),
			Name:         name,
			StartBalance: start,
			Budget:       model.Budget{Income: income, Expense: expense},
		}
		return ds.AddScenario(sc)
	}); err != nil {
		return err
	}
	fmt.Printf("  Added scenario %s (%s)\n", sc.Name, sc.ID)
	return nil
}

func runScenarioBudget(cmd *cobra.Command, args []string) error {
	id := flagScenario
	if len(args) == 1 {
		id = args[0]
	}
	if !cmd.Flags().Changed("income") && !cmd.Flags().Changed("expense") {
		return errors.New("give --income, --expense or both")
	}

	ds, err := mutate(func(ds *model.Dataset) error {
		sc, err := ds.Scenario(id)
		if err != nil {
			return err
		}
		income, expense := sc.Budget.Income, sc.Budget.Expense
		if cmd.Flags().Changed("income") {
			if income, err = parseMoney("income", flagSetIncome); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("expense") {
			if expense, err = parseMoney("expense", flagSetExpense); err != nil {
				return err
			}
		}
		return ds.SetBudget(id, income, expense)
	})
	if err != nil {
		return err
	}
	sc, _ := ds.Scenario(id)
	fmt.Printf("  %s budget: %s income, %s expense per month\n", sc.Name,
		cli.FormatMoney(sc.Budget.Income), cli.FormatMoney(sc.Budget.Expense))
	return nil
}
