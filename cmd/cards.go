package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cards"
	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
)

var (
	flagCardName         string
	flagCardStatementDay int
	flagCardDueDay       int
	flagCardAvgDaily     string
	flagCardTargets      map[string]string
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Predicted statements for the scenario's credit cards",
	RunE:  runCards,
}

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Add or delete credit cards",
}

var cardAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a card to the scenario",
	Args:  cobra.NoArgs,
	RunE:  runCardAdd,
}

var cardDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a card",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardDelete,
}

func init() {
	cardAddCmd.Flags().StringVar(&flagCardName, "name", "", "Card name, matched against transaction payment labels")
	cardAddCmd.Flags().IntVar(&flagCardStatementDay, "statement-day", 0, fmt.Sprintf("Statement close day (1-%d)", model.MaxCycleDay))
	cardAddCmd.Flags().IntVar(&flagCardDueDay, "due-day", 0, fmt.Sprintf("Payment due day (1-%d)", model.MaxCycleDay))
	cardAddCmd.Flags().StringVar(&flagCardAvgDaily, "avg-daily", "0", "Average daily spend")
	cardAddCmd.Flags().StringToStringVar(&flagCardTargets, "target", nil, "Category spend target, e.g. Groceries=400 (repeatable)")
	_ = cardAddCmd.MarkFlagRequired("name")
	_ = cardAddCmd.MarkFlagRequired("statement-day")
	_ = cardAddCmd.MarkFlagRequired("due-day")

	cardCmd.AddCommand(cardAddCmd)
	cardCmd.AddCommand(cardDeleteCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(cardCmd)
}

func runCards(_ *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	preds, err := cards.PredictScenario(ds, flagScenario, appNow)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CARD STATEMENTS  %s", flagScenario)))
	fmt.Println()

	if len(preds) == 0 {
		fmt.Println(cli.Muted("  No cards in this scenario. Add one with `cashcast card add`."))
		return nil
	}

	rows := make([][]string, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, []string{
			p.Card.Name,
			cli.FormatDate(p.CloseDate),
			cli.FormatDate(p.DueDate),
			cli.FormatMoney(p.PredictedTotal),
			cli.FormatPercent(p.Confidence),
			fmt.Sprintf("%d", p.TransactionCount),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Card", "Closes", "Due", "Predicted", "Confidence", "Charges"},
		Rows:    rows,
	}))

	for _, p := range preds {
		if len(p.CategoryBreakdown) == 0 {
			continue
		}
		fmt.Println()
		fmt.Printf("  %s\n", p.Card.Name)
		maxSpend := 0.0
		for _, c := range p.CategoryBreakdown {
			maxSpend = max(maxSpend, c.Spent.InexactFloat64())
			if c.Target != nil {
				maxSpend = max(maxSpend, c.Target.InexactFloat64())
			}
		}
		for _, c := range p.CategoryBreakdown {
			label := fmt.Sprintf("%s %s", c.Category, cli.FormatMoney(c.Spent))
			limit := maxSpend
			if c.Target != nil {
				label += cli.Muted(" of " + cli.FormatMoney(*c.Target))
				limit = c.Target.InexactFloat64()
			}
			if c.OverTarget() {
				label += " " + cli.Warn("over target")
			}
			// Bars scale to the category's target when it has one.
			fmt.Println(cli.RenderHorizontalBar(label, c.Spent.InexactFloat64(), limit, 30))
		}
	}
	return nil
}

func runCardAdd(_ *cobra.Command, _ []string) error {
	avg, err := parseMoney("avg-daily", flagCardAvgDaily)
	if err != nil {
		return err
	}
	if avg.IsNegative() {
		return errors.New("--avg-daily must not be negative")
	}

	targets := make(map[string]decimal.Decimal, len(flagCardTargets))
	for cat, raw := range flagCardTargets {
		v, err := parseMoney("target", raw)
		if err != nil {
			return fmt.Errorf("target %s: %w", cat, err)
		}
		targets[strings.TrimSpace(cat)] = v
	}

	card := model.Card{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(flagCardName),
		StatementDay:    flagCardStatementDay,
		DueDay:          flagCardDueDay,
		AvgDailySpend:   avg,
		Scenario:        flagScenario,
		CategoryTargets: targets,
	}
	if len(targets) == 0 {
		card.CategoryTargets = nil
	}
	if _, err := mutate(func(ds *model.Dataset) error { return ds.AddCard(card) }); err != nil {
		return err
	}
	fmt.Printf("  Added card %s (%s)\n", card.Name, card.ID)
	return nil
}

func runCardDelete(_ *cobra.Command, args []string) error {
	if _, err := mutate(func(ds *model.Dataset) error { return ds.DeleteCard(args[0]) }); err != nil {
		return err
	}
	fmt.Printf("  Deleted card %s\n", args[0])
	return nil
}
