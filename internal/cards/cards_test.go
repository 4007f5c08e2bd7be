package cards

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cardA() model.Card {
	return model.Card{
		ID:            "card-a",
		Name:          "Card A",
		StatementDay:  20,
		DueDay:        27,
		AvgDailySpend: dec("25"),
		Scenario:      "baseline",
		CategoryTargets: map[string]decimal.Decimal{
			"Groceries":     dec("400"),
			"Entertainment": dec("80"),
		},
	}
}

func charge(t *testing.T, date, category, amount, payment string) model.Transaction {
	t.Helper()
	return model.Transaction{
		Date:     mustDate(t, date),
		Vendor:   "v",
		Amount:   dec(amount),
		Type:     model.Expense,
		Category: category,
		Scenario: "baseline",
		Payment:  payment,
	}
}

func TestNextStatementDate(t *testing.T) {
	tests := []struct {
		now  string
		day  int
		want string
	}{
		{"2024-05-10", 20, "2024-05-20"},
		{"2024-05-20", 20, "2024-06-20"},
		{"2024-05-25", 20, "2024-06-20"},
		{"2024-12-25", 20, "2025-01-20"},
		// Day 31 must not skip February.
		{"2024-01-31", 15, "2024-02-15"},
	}
	for _, tt := range tests {
		got := NextStatementDate(tt.day, mustDate(t, tt.now))
		if !got.Equal(mustDate(t, tt.want)) {
			t.Fatalf("NextStatementDate(%d, %s) = %s, want %s", tt.day, tt.now, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestDueDateFollowsCloseMonth(t *testing.T) {
	// Due day earlier than statement day stays in the close month.
	got := DueDate(5, mustDate(t, "2024-06-20"))
	if !got.Equal(mustDate(t, "2024-06-05")) {
		t.Fatalf("DueDate = %s, want 2024-06-05", got.Format("2006-01-02"))
	}
}

func TestPredictNoTransactions(t *testing.T) {
	card := cardA()
	card.AvgDailySpend = dec("20")
	card.CategoryTargets = nil

	p := Predict(card, nil, mustDate(t, "2024-05-10"))
	if !p.CloseDate.Equal(mustDate(t, "2024-05-20")) {
		t.Fatalf("CloseDate = %s, want 2024-05-20", p.CloseDate.Format("2006-01-02"))
	}
	if !p.DueDate.Equal(mustDate(t, "2024-05-27")) {
		t.Fatalf("DueDate = %s, want 2024-05-27", p.DueDate.Format("2006-01-02"))
	}
	if !p.PredictedTotal.Equal(dec("200")) {
		t.Fatalf("PredictedTotal = %s, want 200", p.PredictedTotal)
	}
	if p.Confidence != 0 {
		t.Fatalf("Confidence = %d, want 0", p.Confidence)
	}
	if len(p.CategoryBreakdown) != 0 {
		t.Fatalf("len(CategoryBreakdown) = %d, want 0", len(p.CategoryBreakdown))
	}
}

func TestPredictWithCharges(t *testing.T) {
	txs := []model.Transaction{
		charge(t, "2024-05-02", "Groceries", "-120", "Card A"),
		charge(t, "2024-05-05", "Dining", "-30", "card a"),
		charge(t, "2024-05-25", "Groceries", "-50", "Card A"), // after close
		charge(t, "2024-05-06", "Groceries", "-999", "checking"),
		charge(t, "2024-05-07", "Groceries", "-999", "Card B"),
	}
	p := Predict(cardA(), txs, mustDate(t, "2024-05-10"))

	// 120 + 30 posted on or before the close, plus 25/day for 10 open days.
	if !p.PredictedTotal.Equal(dec("400")) {
		t.Fatalf("PredictedTotal = %s, want 400", p.PredictedTotal)
	}
	if p.TransactionCount != 3 {
		t.Fatalf("TransactionCount = %d, want 3", p.TransactionCount)
	}
	if p.Confidence != 30 {
		t.Fatalf("Confidence = %d, want 30", p.Confidence)
	}

	// Breakdown covers every charge, then the untouched target category.
	want := []struct {
		cat    string
		spent  string
		target string
	}{
		{"Groceries", "170", "400"},
		{"Dining", "30", ""},
		{"Entertainment", "0", "80"},
	}
	if len(p.CategoryBreakdown) != len(want) {
		t.Fatalf("len(CategoryBreakdown) = %d, want %d", len(p.CategoryBreakdown), len(want))
	}
	for i, w := range want {
		got := p.CategoryBreakdown[i]
		if got.Category != w.cat || !got.Spent.Equal(dec(w.spent)) {
			t.Fatalf("breakdown[%d] = %s %s, want %s %s", i, got.Category, got.Spent, w.cat, w.spent)
		}
		if w.target == "" {
			if got.Target != nil {
				t.Fatalf("breakdown[%d] target = %s, want none", i, got.Target)
			}
			continue
		}
		if got.Target == nil || !got.Target.Equal(dec(w.target)) {
			t.Fatalf("breakdown[%d] target = %v, want %s", i, got.Target, w.target)
		}
	}
}

func TestPredictCloseDayIsToday(t *testing.T) {
	p := Predict(cardA(), nil, mustDate(t, "2024-05-20"))
	if !p.CloseDate.Equal(mustDate(t, "2024-06-20")) {
		t.Fatalf("CloseDate = %s, want 2024-06-20", p.CloseDate.Format("2006-01-02"))
	}
	// 31 open days at 25/day.
	if !p.PredictedTotal.Equal(dec("775")) {
		t.Fatalf("PredictedTotal = %s, want 775", p.PredictedTotal)
	}
}

func TestConfidenceSaturates(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0}, {1, 10}, {5, 50}, {10, 100}, {25, 100},
	}
	for _, tt := range tests {
		if got := confidence(tt.count); got != tt.want {
			t.Fatalf("confidence(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestOverTarget(t *testing.T) {
	target := dec("80")
	if !(CategorySpend{Spent: dec("81"), Target: &target}).OverTarget() {
		t.Fatal("81 over 80 target should report over")
	}
	if (CategorySpend{Spent: dec("81")}).OverTarget() {
		t.Fatal("no target should never report over")
	}
}

func TestPredictScenario(t *testing.T) {
	ds := model.Dataset{
		Scenarios: []model.Scenario{{ID: "baseline", Name: "Baseline"}, {ID: "stretch", Name: "Stretch"}},
		Cards: []model.Card{
			cardA(),
			{ID: "card-b", Name: "Card B", StatementDay: 12, DueDay: 19, AvgDailySpend: dec("18"), Scenario: "stretch"},
		},
		Transactions: []model.Transaction{
			charge(t, "2024-05-02", "Groceries", "-10", "Card A"),
		},
	}
	// Same card name in another scenario stays out of baseline's history.
	other := charge(t, "2024-05-03", "Groceries", "-50", "Card A")
	other.Scenario = "stretch"
	ds.Transactions = append(ds.Transactions, other)

	preds, err := PredictScenario(ds, "baseline", mustDate(t, "2024-05-10"))
	if err != nil {
		t.Fatalf("PredictScenario: %v", err)
	}
	if len(preds) != 1 || preds[0].Card.ID != "card-a" {
		t.Fatalf("preds = %+v, want only card-a", preds)
	}
	if preds[0].TransactionCount != 1 {
		t.Fatalf("TransactionCount = %d, want 1", preds[0].TransactionCount)
	}
	if _, err := PredictScenario(ds, "missing", mustDate(t, "2024-05-10")); err == nil {
		t.Fatal("PredictScenario(missing) should fail")
	}
}
