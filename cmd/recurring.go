package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
)

var (
	flagRecLabel       string
	flagRecAmount      string
	flagRecType        string
	flagRecCadence     string
	flagRecStart       string
	flagRecEnd         string
	flagRecCategory    string
	flagRecSubcategory string
	flagRecNeed        string

	flagRecEditLabel       string
	flagRecEditAmount      string
	flagRecEditType        string
	flagRecEditCadence     string
	flagRecEditStart       string
	flagRecEditEnd         string
	flagRecEditCategory    string
	flagRecEditSubcategory string
	flagRecEditNeed        string
)

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "List, add, edit or delete recurring patterns",
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenario's recurring patterns",
	Args:  cobra.NoArgs,
	RunE:  runRecurringList,
}

var recurringAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a weekly, monthly or yearly pattern",
	Long: "Add a recurring pattern. Occurrences start on --start and repeat on --cadence\n" +
		"through --end if given. With --type the amount's sign follows the type.",
	Args: cobra.NoArgs,
	RunE: runRecurringAdd,
}

var recurringEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a recurring pattern in place",
	Long: "Edit a recurring pattern by id. Only the flags given are changed; the id, scenario\n" +
		"and every other field keep their stored values. --end none clears the end date.",
	Args: cobra.ExactArgs(1),
	RunE: runRecurringEdit,
}

var recurringDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recurring pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecurringDelete,
}

func init() {
	f := recurringAddCmd.Flags()
	f.StringVar(&flagRecLabel, "label", "", "Label shown as the vendor of each occurrence")
	f.StringVar(&flagRecAmount, "amount", "", "Amount per occurrence")
	f.StringVar(&flagRecType, "type", "", "income or expense (default from the amount's sign)")
	f.StringVar(&flagRecCadence, "cadence", string(model.Monthly), "weekly, monthly or yearly")
	f.StringVar(&flagRecStart, "start", "", "First occurrence YYYY-MM-DD (default today)")
	f.StringVar(&flagRecEnd, "end", "", "Last possible occurrence YYYY-MM-DD")
	f.StringVar(&flagRecCategory, "category", "", "Category")
	f.StringVar(&flagRecSubcategory, "subcategory", "", "Sub-category")
	f.StringVar(&flagRecNeed, "need", string(model.NeedRequired), "required or discretionary")
	_ = recurringAddCmd.MarkFlagRequired("label")
	_ = recurringAddCmd.MarkFlagRequired("amount")
	_ = recurringAddCmd.MarkFlagRequired("category")

	f = recurringEditCmd.Flags()
	f.StringVar(&flagRecEditLabel, "label", "", "New label")
	f.StringVar(&flagRecEditAmount, "amount", "", "New amount per occurrence")
	f.StringVar(&flagRecEditType, "type", "", "income or expense")
	f.StringVar(&flagRecEditCadence, "cadence", "", "weekly, monthly or yearly")
	f.StringVar(&flagRecEditStart, "start", "", "New first occurrence YYYY-MM-DD")
	f.StringVar(&flagRecEditEnd, "end", "", "New last possible occurrence YYYY-MM-DD, or none")
	f.StringVar(&flagRecEditCategory, "category", "", "New category")
	f.StringVar(&flagRecEditSubcategory, "subcategory", "", "New sub-category")
	f.StringVar(&flagRecEditNeed, "need", "", "required or discretionary")

	recurringCmd.AddCommand(recurringListCmd)
	recurringCmd.AddCommand(recurringAddCmd)
	recurringCmd.AddCommand(recurringEditCmd)
	recurringCmd.AddCommand(recurringDeleteCmd)
	rootCmd.AddCommand(recurringCmd)
}

func runRecurringList(_ *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	if _, err := ds.Scenario(flagScenario); err != nil {
		return err
	}
	patterns := ds.ScenarioRecurring(flagScenario)

	fmt.Println()
	if len(patterns) == 0 {
		fmt.Println(cli.Muted("  No recurring patterns."))
		return nil
	}

	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		end := "-"
		if p.End != nil {
			end = calendar.Format(*p.End)
		}
		rows = append(rows, []string{
			p.Label,
			p.Category,
			string(p.Cadence),
			calendar.Format(p.Start),
			end,
			string(p.Need),
			cli.Delta(p.Amount),
			cli.Muted(p.ID),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Recurring  %s", flagScenario),
		Headers:  []string{"Label", "Category", "Cadence", "Start", "End", "Need", "Amount", "ID"},
		Rows:     rows,
		LeftCols: 6,
	}))
	return nil
}

func runRecurringAdd(_ *cobra.Command, _ []string) error {
	raw, err := parseMoney("amount", flagRecAmount)
	if err != nil {
		return err
	}
	amount, typ, err := signedAmount(raw, flagRecType)
	if err != nil {
		return err
	}
	cadence, err := model.ParseCadence(flagRecCadence)
	if err != nil {
		return err
	}
	start, err := parseDateFlag("start", flagRecStart)
	if err != nil {
		return err
	}
	var end *time.Time
	if flagRecEnd != "" {
		e, err := parseDateFlag("end", flagRecEnd)
		if err != nil {
			return err
		}
		end = &e
	}
	need, err := parseNeed(flagRecNeed)
	if err != nil {
		return err
	}
	label := strings.TrimSpace(flagRecLabel)
	if label == "" {
		return errors.New("--label must not be empty")
	}

	p := model.RecurringPattern{
		ID:          uuid.NewString(),
		Label:       label,
		Category:    strings.TrimSpace(flagRecCategory),
		Subcategory: strings.TrimSpace(flagRecSubcategory),
		Amount:      amount,
		Type:        typ,
		Cadence:     cadence,
		Start:       start,
		End:         end,
		Scenario:    flagScenario,
		Need:        need,
	}
	if _, err := mutate(func(ds *model.Dataset) error { return ds.UpsertRecurring(p) }); err != nil {
		return err
	}
	fmt.Printf("  Added %s %s %s from %s (%s)\n", p.Cadence, p.Label, cli.FormatSignedMoney(p.Amount),
		calendar.Format(p.Start), p.ID)
	return nil
}

// recurringEdit holds the flag values an edit changes. A nil field keeps the stored value.
type recurringEdit struct {
	Label, Amount, Type, Cadence, Start, End, Category, Subcategory, Need *string
}

func (e recurringEdit) empty() bool {
	return e == recurringEdit{}
}

// apply returns p with the edited fields replaced. A new amount takes the
// pattern's type unless --type is also given.
func (e recurringEdit) apply(p model.RecurringPattern) (model.RecurringPattern, error) {
	if e.Label != nil {
		label := strings.TrimSpace(*e.Label)
		if label == "" {
			return p, errors.New("--label must not be empty")
		}
		p.Label = label
	}
	if e.Amount != nil || e.Type != nil {
		amount, typ := p.Amount, string(p.Type)
		if e.Amount != nil {
			raw, err := parseMoney("amount", *e.Amount)
			if err != nil {
				return p, err
			}
			amount = raw
		}
		if e.Type != nil {
			typ = *e.Type
		}
		signed, t, err := signedAmount(amount, typ)
		if err != nil {
			return p, err
		}
		p.Amount, p.Type = signed, t
	}
	if e.Cadence != nil {
		c, err := model.ParseCadence(*e.Cadence)
		if err != nil {
			return p, err
		}
		p.Cadence = c
	}
	if e.Start != nil {
		start, err := parseDateFlag("start", *e.Start)
		if err != nil {
			return p, err
		}
		p.Start = start
	}
	if e.End != nil {
		switch v := strings.TrimSpace(*e.End); strings.ToLower(v) {
		case "", "none":
			p.End = nil
		default:
			end, err := parseDateFlag("end", v)
			if err != nil {
				return p, err
			}
			p.End = &end
		}
	}
	if e.Category != nil {
		p.Category = strings.TrimSpace(*e.Category)
	}
	if e.Subcategory != nil {
		p.Subcategory = strings.TrimSpace(*e.Subcategory)
	}
	if e.Need != nil {
		need, err := parseNeed(*e.Need)
		if err != nil {
			return p, err
		}
		p.Need = need
	}
	return p, nil
}

// editRecurring replaces pattern id in ds with the edited copy, keeping its position.
func editRecurring(ds *model.Dataset, id string, e recurringEdit) (model.RecurringPattern, error) {
	p, err := ds.RecurringPattern(id)
	if err != nil {
		return p, err
	}
	if p, err = e.apply(p); err != nil {
		return p, err
	}
	return p, ds.UpsertRecurring(p)
}

func parseNeed(s string) (model.Need, error) {
	need := model.Need(strings.ToLower(strings.TrimSpace(s)))
	if need != model.NeedRequired && need != model.NeedDiscretionary {
		return "", fmt.Errorf("--need: unknown value %q", s)
	}
	return need, nil
}

func runRecurringEdit(cmd *cobra.Command, args []string) error {
	changed := func(name string, v *string) *string {
		if cmd.Flags().Changed(name) {
			return v
		}
		return nil
	}
	e := recurringEdit{
		Label:       changed("label", &flagRecEditLabel),
		Amount:      changed("amount", &flagRecEditAmount),
		Type:        changed("type", &flagRecEditType),
		Cadence:     changed("cadence", &flagRecEditCadence),
		Start:       changed("start", &flagRecEditStart),
		End:         changed("end", &flagRecEditEnd),
		Category:    changed("category", &flagRecEditCategory),
		Subcategory: changed("subcategory", &flagRecEditSubcategory),
		Need:        changed("need", &flagRecEditNeed),
	}
	if e.empty() {
		return errors.New("nothing to change: pass at least one field flag")
	}

	var p model.RecurringPattern
	if _, err := mutate(func(ds *model.Dataset) error {
		var err error
		p, err = editRecurring(ds, args[0], e)
		return err
	}); err != nil {
		return err
	}
	fmt.Printf("  Updated %s %s %s from %s (%s)\n", p.Cadence, p.Label, cli.FormatSignedMoney(p.Amount),
		calendar.Format(p.Start), p.ID)
	return nil
}

func runRecurringDelete(_ *cobra.Command, args []string) error {
	if _, err := mutate(func(ds *model.Dataset) error { return ds.DeleteRecurring(args[0]) }); err != nil {
		return err
	}
	fmt.Printf("  Deleted recurring pattern %s\n", args[0])
	return nil
}
