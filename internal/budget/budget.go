// Package budget rolls a scenario's transactions up by category and compares
// them with the scenario's monthly envelope scaled to the reporting period.
package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/model"
)

// ErrUnknownPeriod is returned for a period outside month/quarter/year.
var ErrUnknownPeriod = errors.New("unknown budget period")

// DefaultSubcategory labels transactions without a sub-category.
const DefaultSubcategory = "General"

// Period is the budget reporting granularity.
type Period string

const (
	Month   Period = "month"
	Quarter Period = "quarter"
	Year    Period = "year"
)

// ParsePeriod parses a period name (case-insensitive).
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if _, err := p.Factor(); err != nil {
		return "", err
	}
	return p, nil
}

// Factor is the divisor applied to the monthly envelope: 1, 3 or 12.
func (p Period) Factor() (int64, error) {
	switch p {
	case Month:
		return 1, nil
	case Quarter:
		return 3, nil
	case Year:
		return 12, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, string(p))
}

// Row is one category's actual spend or income against its budget.
type Row struct {
	Category string          `json:"category"`
	Type     model.TxType    `json:"type"`
	Actual   decimal.Decimal `json:"actual"`
	Budgeted decimal.Decimal `json:"budgeted"`
}

// Variance is budgeted minus actual.
func (r Row) Variance() decimal.Decimal {
	return r.Budgeted.Sub(r.Actual)
}

type aggConfig struct {
	mergeTypes bool
}

// Option tunes Aggregate.
type Option func(*aggConfig)

// WithMergedTypes keys rows by category alone. A category holding both income and
// expense then yields a single row typed after its last transaction.
func WithMergedTypes() Option {
	return func(c *aggConfig) { c.mergeTypes = true }
}

// Aggregate produces one row per (category, type) pair in first-seen order. Income rows
// sum amounts, expense rows sum absolute amounts, and each row's budget is the envelope
// side for its type divided by the period factor.
func Aggregate(txs []model.Transaction, period Period, env model.Budget, opts ...Option) ([]Row, error) {
	factor, err := period.Factor()
	if err != nil {
		return nil, err
	}
	var cfg aggConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	type key struct {
		category string
		typ      model.TxType
	}
	index := make(map[key]int)
	var rows []Row

	for _, t := range txs {
		k := key{category: t.Category, typ: t.Type}
		if cfg.mergeTypes {
			k.typ = ""
		}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, Row{Category: t.Category})
		}
		rows[i].Type = t.Type
		rows[i].Actual = rows[i].Actual.Add(model.SignedMagnitude(t.Type, t.Amount))
	}

	div := decimal.NewFromInt(factor)
	for i := range rows {
		rows[i].Budgeted = env.Target(rows[i].Type).Div(div)
	}
	return rows, nil
}

// SubcategoryTotal is one sub-category's total inside a category drill-down.
type SubcategoryTotal struct {
	Subcategory string          `json:"subcategory"`
	Type        model.TxType    `json:"type"`
	Total       decimal.Decimal `json:"total"`
}

// BreakdownSubcategory totals a category's transactions by sub-category using the same
// signed-magnitude convention as Aggregate. Missing sub-categories count as "General";
// each total takes the type of the first transaction seen for it.
func BreakdownSubcategory(txs []model.Transaction, category string) []SubcategoryTotal {
	index := make(map[string]int)
	var out []SubcategoryTotal
	for _, t := range txs {
		if t.Category != category {
			continue
		}
		name := t.Subcategory
		if name == "" {
			name = DefaultSubcategory
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, SubcategoryTotal{Subcategory: name, Type: t.Type})
		}
		out[i].Total = out[i].Total.Add(model.SignedMagnitude(t.Type, t.Amount))
	}
	return out
}

// Totals sums the actual and budgeted columns by type.
type Totals struct {
	ActualIncome    decimal.Decimal `json:"actualIncome"`
	ActualExpense   decimal.Decimal `json:"actualExpense"`
	BudgetedIncome  decimal.Decimal `json:"budgetedIncome"`
	BudgetedExpense decimal.Decimal `json:"budgetedExpense"`
}

// Summarize totals recorded actuals by type and scales the envelope to the period.
// The budgeted side is the envelope itself, not the sum of per-row budgets, since every
// row of a type repeats the same envelope value.
func Summarize(rows []Row, period Period, env model.Budget) (Totals, error) {
	factor, err := period.Factor()
	if err != nil {
		return Totals{}, err
	}
	div := decimal.NewFromInt(factor)
	t := Totals{
		BudgetedIncome:  env.Income.Div(div),
		BudgetedExpense: env.Expense.Div(div),
	}
	for _, r := range rows {
		if r.Type == model.Income {
			t.ActualIncome = t.ActualIncome.Add(r.Actual)
		} else {
			t.ActualExpense = t.ActualExpense.Add(r.Actual)
		}
	}
	return t, nil
}
