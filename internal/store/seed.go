package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/model"
)

func seedID(kind string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "cashcast:%s:%d", kind, n)).String()
}

// Seed builds the starter dataset: a baseline and a stretch scenario with a few
// transactions, recurring patterns and cards, dated in now's month.
func Seed(now time.Time) model.Dataset {
	month := calendar.FirstOfMonth(calendar.Day(now))
	on := func(day int) time.Time { return calendar.WithDay(month, day) }
	d := decimal.NewFromInt

	ds := model.Dataset{
		Scenarios: []model.Scenario{
			{ID: "baseline", Name: "Baseline", StartBalance: d(4200), Budget: model.Budget{Income: d(5200), Expense: d(3800)}},
			{ID: "stretch", Name: "Stretch Goals", StartBalance: d(4200), Budget: model.Budget{Income: d(5400), Expense: d(3600)}},
		},
	}

	txs := []struct {
		day                          int
		vendor                       string
		amount                       int64
		category, sub, scenario, pay string
	}{
		{28, "Acme Salary", 2600, "Salary", "Primary", "baseline", model.PaymentChecking},
		{15, "Rentals Co", -1500, "Housing", "Rent", "baseline", model.PaymentChecking},
		{21, "Grocer Mart", -220, "Groceries", "Food", "baseline", "Card A"},
		{10, "Utilities Inc", -190, "Utilities", "Electric", "baseline", model.PaymentChecking},
		{7, "Streaming Box", -22, "Entertainment", "Streaming", "baseline", "Card A"},
		{1, "Acme Salary", 2600, "Salary", "Primary", "stretch", model.PaymentChecking},
		{14, "Grocer Mart", -240, "Groceries", "Food", "stretch", "Card A"},
		{18, "Gym Center", -60, "Health", "Fitness", "stretch", "Card B"},
	}
	for i, t := range txs {
		amt := d(t.amount)
		ds.Transactions = append(ds.Transactions, model.Transaction{
			ID:          seedID("txn", i),
			Date:        on(t.day),
			Vendor:      t.vendor,
			Amount:      amt,
			Type:        model.TypeForAmount(amt),
			Category:    t.category,
			Subcategory: t.sub,
			Scenario:    t.scenario,
			Payment:     t.pay,
		})
	}

	recurring := []struct {
		day                            int
		label, category, sub, scenario string
		amount                         int64
		need                           model.Need
	}{
		{1, "Rent", "Housing", "Rent", "baseline", -1500, model.NeedRequired},
		{5, "Internet", "Utilities", "Internet", "baseline", -75, model.NeedRequired},
		{12, "Freelance", "Side Income", "Projects", "stretch", 600, model.NeedDiscretionary},
	}
	for i, r := range recurring {
		amt := d(r.amount)
		ds.Recurring = append(ds.Recurring, model.RecurringPattern{
			ID:          seedID("recurring", i),
			Label:       r.label,
			Category:    r.category,
			Subcategory: r.sub,
			Amount:      amt,
			Type:        model.TypeForAmount(amt),
			Cadence:     model.Monthly,
			Start:       on(r.day),
			Scenario:    r.scenario,
			Need:        r.need,
		})
	}

	ds.Cards = []model.Card{
		{
			ID: seedID("card", 0), Name: "Card A", StatementDay: 20, DueDay: 27, AvgDailySpend: d(25), Scenario: "baseline",
			CategoryTargets: map[string]decimal.Decimal{"Groceries": d(400), "Entertainment": d(80)},
		},
		{
			ID: seedID("card", 1), Name: "Card B", StatementDay: 12, DueDay: 19, AvgDailySpend: d(18), Scenario: "stretch",
			CategoryTargets: map[string]decimal.Decimal{"Health": d(80), "Travel": d(200)},
		},
	}
	return ds
}
