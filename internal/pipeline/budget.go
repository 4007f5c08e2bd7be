package pipeline

import (
	"github.com/theirongolddev/cashcast/internal/budget"
	"github.com/theirongolddev/cashcast/internal/model"
)

// BudgetReport is a scenario's budget rows, totals and optional drill-downs.
type BudgetReport struct {
	Scenario  model.Scenario                       `json:"scenario"`
	Period    budget.Period                        `json:"period"`
	Rows      []budget.Row                         `json:"rows"`
	Totals    budget.Totals                        `json:"totals"`
	Breakdown map[string][]budget.SubcategoryTotal `json:"breakdown,omitempty"`
}

// BudgetOptions tunes BuildBudget.
type BudgetOptions struct {
	MergeTypes bool
	// Expand lists the categories to drill into.
	Expand []string
}

// BuildBudget aggregates every recorded transaction of a scenario against its envelope.
func BuildBudget(ds model.Dataset, id string, period budget.Period, opts BudgetOptions) (*BudgetReport, error) {
	sc, err := ds.Scenario(id)
	if err != nil {
		return nil, err
	}
	txs := ds.ScenarioTransactions(id)

	var aggOpts []budget.Option
	if opts.MergeTypes {
		aggOpts = append(aggOpts, budget.WithMergedTypes())
	}
	rows, err := budget.Aggregate(txs, period, sc.Budget, aggOpts...)
	if err != nil {
		return nil, err
	}
	totals, err := budget.Summarize(rows, period, sc.Budget)
	if err != nil {
		return nil, err
	}

	r := &BudgetReport{Scenario: sc, Period: period, Rows: rows, Totals: totals}
	if len(opts.Expand) > 0 {
		r.Breakdown = make(map[string][]budget.SubcategoryTotal, len(opts.Expand))
		for _, cat := range opts.Expand {
			r.Breakdown[cat] = budget.BreakdownSubcategory(txs, cat)
		}
	}
	return r, nil
}
