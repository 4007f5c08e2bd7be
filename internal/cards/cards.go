// Package cards predicts credit-card statement totals from a card's billing cycle
// and its charged transactions.
package cards

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/model"
)

// FullConfidenceCount is the transaction count at which confidence saturates.
const FullConfidenceCount = 10

// CategorySpend is one category's historical spend on a card.
type CategorySpend struct {
	Category string           `json:"category"`
	Spent    decimal.Decimal  `json:"spent"`
	Target   *decimal.Decimal `json:"target,omitempty"`
}

// OverTarget reports whether spend exceeds a configured target.
func (c CategorySpend) OverTarget() bool {
	return c.Target != nil && c.Spent.GreaterThan(*c.Target)
}

// Prediction is a card's upcoming statement.
type Prediction struct {
	Card              model.Card      `json:"card"`
	CloseDate         time.Time       `json:"closeDate"`
	DueDate           time.Time       `json:"dueDate"`
	PredictedTotal    decimal.Decimal `json:"predictedTotal"`
	Confidence        int             `json:"confidence"`
	TransactionCount  int             `json:"transactionCount"`
	CategoryBreakdown []CategorySpend `json:"categoryBreakdown"`
}

// NextStatementDate returns the next statement close on or after now. When now's day of
// month has already reached the statement day the close moves to next month.
func NextStatementDate(statementDay int, now time.Time) time.Time {
	today := calendar.Day(now)
	month := calendar.FirstOfMonth(today)
	if today.Day() >= statementDay {
		month = calendar.AddMonths(month, 1)
	}
	return calendar.WithDay(month, statementDay)
}

// DueDate puts dueDay in the close date's month.
func DueDate(dueDay int, closeDate time.Time) time.Time {
	return calendar.WithDay(closeDate, dueDay)
}

// Charges returns the transactions paid with the named card (names compare case-insensitively).
func Charges(card model.Card, txs []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range txs {
		if strings.EqualFold(strings.TrimSpace(t.Payment), card.Name) {
			out = append(out, t)
		}
	}
	return out
}

// Predict computes the card's next close and due dates, the projected statement total
// and a confidence score that saturates at FullConfidenceCount charges.
func Predict(card model.Card, txs []model.Transaction, now time.Time) Prediction {
	today := calendar.Day(now)
	closeDate := NextStatementDate(card.StatementDay, today)
	charges := Charges(card, txs)

	var posted decimal.Decimal
	for _, t := range charges {
		if !calendar.Day(t.Date).After(closeDate) {
			posted = posted.Add(t.Amount.Abs())
		}
	}
	openDays := max(calendar.DaysBetween(today, closeDate), 0)
	projected := card.AvgDailySpend.Mul(decimal.NewFromInt(int64(openDays)))

	return Prediction{
		Card:              card,
		CloseDate:         closeDate,
		DueDate:           DueDate(card.DueDay, closeDate),
		PredictedTotal:    posted.Add(projected),
		Confidence:        confidence(len(charges)),
		TransactionCount:  len(charges),
		CategoryBreakdown: breakdown(charges, card.CategoryTargets),
	}
}

// PredictScenario predicts every card owned by a scenario against that scenario's transactions.
func PredictScenario(ds model.Dataset, scenarioID string, now time.Time) ([]Prediction, error) {
	if _, err := ds.Scenario(scenarioID); err != nil {
		return nil, err
	}
	txs := ds.ScenarioTransactions(scenarioID)
	var out []Prediction
	for _, c := range ds.ScenarioCards(scenarioID) {
		out = append(out, Predict(c, txs, now))
	}
	return out, nil
}

func confidence(count int) int {
	score := int(math.Round(float64(count) / FullConfidenceCount * 100))
	return min(100, score)
}

// breakdown sums spend per category in first-seen order, then appends targeted categories
// with no spend so every target shows up.
func breakdown(charges []model.Transaction, targets map[string]decimal.Decimal) []CategorySpend {
	index := make(map[string]int)
	var out []CategorySpend
	for _, t := range charges {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategorySpend{Category: t.Category})
		}
		out[i].Spent = out[i].Spent.Add(t.Amount.Abs())
	}

	var missing []string
	for cat := range targets {
		if _, ok := index[cat]; !ok {
			missing = append(missing, cat)
		}
	}
	slices.Sort(missing)
	for _, cat := range missing {
		out = append(out, CategorySpend{Category: cat})
	}

	for i := range out {
		if target, ok := targets[out[i].Category]; ok {
			out[i].Target = &target
		}
	}
	return out
}
