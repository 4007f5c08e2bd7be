package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/budget"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/source"
	"github.com/theirongolddev/cashcast/internal/store"
)

var testNow = time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestForecastReport(t *testing.T) {
	ds := store.Seed(testNow)
	r, err := Forecast(ds, Request{Scenario: "baseline", HorizonDays: 30, Now: testNow, Grouping: forecast.GroupMonthly, IncludeTrend: true})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(r.Series) != 31 {
		t.Fatalf("len(Series) = %d, want 31", len(r.Series))
	}
	if r.Trend == nil || len(r.Trend.Points) != 31 {
		t.Fatal("expected a trend over every point")
	}
	// May 10 through June 9 spans two months.
	if len(r.Buckets) != 2 || r.Buckets[0].Label != "2024-05" || r.Buckets[1].Label != "2024-06" {
		t.Fatalf("buckets = %+v", r.Buckets)
	}
	if !r.Buckets[1].Balance.Equal(r.End()) {
		t.Fatalf("last bucket = %s, want end balance %s", r.Buckets[1].Balance, r.End())
	}

	noTrend, err := Forecast(ds, Request{Scenario: "baseline", HorizonDays: 30, Now: testNow})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if noTrend.Trend != nil {
		t.Fatal("trend computed without IncludeTrend")
	}
	if len(noTrend.Buckets) != 31 {
		t.Fatalf("default grouping buckets = %d, want 31 daily", len(noTrend.Buckets))
	}
}

func TestForecastErrors(t *testing.T) {
	ds := store.Seed(testNow)
	if _, err := Forecast(ds, Request{Scenario: "nope", HorizonDays: 5, Now: testNow}); !errors.Is(err, model.ErrScenarioNotFound) {
		t.Fatalf("err = %v, want ErrScenarioNotFound", err)
	}
	if _, err := Forecast(ds, Request{Scenario: "baseline", HorizonDays: -1, Now: testNow}); !errors.Is(err, forecast.ErrNegativeHorizon) {
		t.Fatalf("err = %v, want ErrNegativeHorizon", err)
	}
	if _, err := Forecast(ds, Request{Scenario: "baseline", HorizonDays: 5, Now: testNow, Grouping: "hourly"}); !errors.Is(err, forecast.ErrUnknownGrouping) {
		t.Fatalf("err = %v, want ErrUnknownGrouping", err)
	}
}

func TestCompare(t *testing.T) {
	ds := store.Seed(testNow)
	for _, id := range []string{"a", "b", "c"} {
		if err := ds.AddScenario(model.Scenario{ID: id, Name: id, StartBalance: dec("100")}); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := Compare(ds, nil, Request{HorizonDays: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(reports) != MaxCompare {
		t.Fatalf("len = %d, want %d", len(reports), MaxCompare)
	}
	if reports[0].Scenario.ID != "baseline" || reports[3].Scenario.ID != "b" {
		t.Fatalf("order = %s..%s", reports[0].Scenario.ID, reports[3].Scenario.ID)
	}

	two, err := Compare(ds, []string{"stretch", "c"}, Request{HorizonDays: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(two) != 2 || two[1].Scenario.ID != "c" || !two[1].End().Equal(dec("100")) {
		t.Fatalf("two = %+v", two)
	}
}

func TestBuildOverview(t *testing.T) {
	ds := store.Seed(testNow)
	o, err := BuildOverview(ds, "baseline", testNow, 60)
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}
	// Recorded baseline: +2600, -1500 -220 -190 -22.
	if !o.Income.Equal(dec("2600")) || !o.Expenses.Equal(dec("1932")) {
		t.Fatalf("income/expenses = %s/%s, want 2600/1932", o.Income, o.Expenses)
	}
	if !o.CurrentCash.Equal(dec("4868")) {
		t.Fatalf("CurrentCash = %s, want 4868", o.CurrentCash)
	}
	if o.RecurringCount != 2 || o.CardFundedCount != 2 {
		t.Fatalf("recurring/card = %d/%d, want 2/2", o.RecurringCount, o.CardFundedCount)
	}
	if o.Low == nil {
		t.Fatal("expected a low over the window")
	}
	if o.AlertCount > 0 && o.NextRisk == nil {
		t.Fatal("alerts without a next risk date")
	}
	for _, u := range o.Upcoming {
		if u.Date.Before(testNow) || u.Date.After(testNow.AddDate(0, 0, 14)) {
			t.Fatalf("upcoming entry outside window: %v", u.Date)
		}
	}

	if _, err := BuildOverview(ds, "nope", testNow, 60); !errors.Is(err, model.ErrScenarioNotFound) {
		t.Fatalf("err = %v, want ErrScenarioNotFound", err)
	}
}

func TestBuildOverviewAlerts(t *testing.T) {
	ds := model.Dataset{
		Scenarios: []model.Scenario{{ID: "tight", Name: "Tight", StartBalance: dec("100")}},
		Recurring: []model.RecurringPattern{{
			ID: "rent", Label: "Rent", Amount: dec("-500"), Type: model.Expense, Cadence: model.Monthly,
			Start: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), Scenario: "tight",
		}},
	}
	o, err := BuildOverview(ds, "tight", testNow, 60)
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}
	// Negative from May 20 through July 9 inclusive.
	if o.AlertCount != 51 {
		t.Fatalf("AlertCount = %d, want 51", o.AlertCount)
	}
	if o.NextRisk == nil || o.NextRisk.Date.Format("2006-01-02") != "2024-05-20" {
		t.Fatalf("NextRisk = %+v, want 2024-05-20", o.NextRisk)
	}
	// The June 20 rent falls outside the 30-day low window.
	if !o.Low.Balance.Equal(dec("-400")) {
		t.Fatalf("Low = %s, want -400", o.Low.Balance)
	}
}

func TestBuildBudget(t *testing.T) {
	ds := store.Seed(testNow)
	r, err := BuildBudget(ds, "baseline", budget.Quarter, BudgetOptions{Expand: []string{"Groceries"}})
	if err != nil {
		t.Fatalf("BuildBudget: %v", err)
	}
	if len(r.Rows) != 5 {
		t.Fatalf("len(Rows) = %d, want 5", len(r.Rows))
	}
	if !r.Totals.BudgetedExpense.Round(2).Equal(dec("1266.67")) {
		t.Fatalf("BudgetedExpense = %s, want 1266.67", r.Totals.BudgetedExpense.Round(2))
	}
	subs := r.Breakdown["Groceries"]
	if len(subs) != 1 || subs[0].Subcategory != "Food" || !subs[0].Total.Equal(dec("220")) {
		t.Fatalf("Groceries breakdown = %+v", subs)
	}

	if _, err := BuildBudget(ds, "baseline", budget.Period("week"), BudgetOptions{}); !errors.Is(err, budget.ErrUnknownPeriod) {
		t.Fatalf("err = %v, want ErrUnknownPeriod", err)
	}
}

func TestDiscoverRejectsMissingPaths(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "may.csv", "2024-05-01,First,-1\n")
	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Discover([]string{csv, empty})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("len(files) = %d, want 1", len(files))
	}

	for _, missing := range []string{filepath.Join(dir, "typo.csv"), filepath.Join(dir, "nodir")} {
		if _, err := Discover([]string{csv, missing}); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("Discover(%s) err = %v, want os.ErrNotExist", missing, err)
		}
	}
}

func TestImportMissingPathFails(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "cashcast.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if _, _, err := st.LoadOrSeed(testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(st, ImportRequest{Paths: []string{filepath.Join(t.TempDir(), "typo.csv")}, Scenario: "baseline"}, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Import err = %v, want os.ErrNotExist", err)
	}
}

func TestImportFilesKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var files []source.DiscoveredFile
	for i, body := range []string{
		"2024-05-01,First,-1\n2024-05-02,Second,-2\n",
		"2024-05-03,Third,-3\nbad,row,x\n",
		"2024-05-04,Fourth,-4\n",
	} {
		df, err := source.Discover(writeFile(t, dir, string(rune('a'+i))+".csv", body))
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, df)
	}
	files = append(files, source.DiscoveredFile{Path: filepath.Join(dir, "missing.csv")})

	var calls atomic.Int64
	res := ImportFiles(files, source.Options{Scenario: "baseline"}, func(current, total int) {
		calls.Add(1)
		if total != 4 {
			t.Errorf("progress total = %d, want 4", total)
		}
	})
	if calls.Load() != 4 {
		t.Fatalf("progress calls = %d, want 4", calls.Load())
	}
	if res.ParsedFiles != 3 || res.FileErrors != 1 || res.SkippedRows != 1 {
		t.Fatalf("parsed/errors/skipped = %d/%d/%d, want 3/1/1", res.ParsedFiles, res.FileErrors, res.SkippedRows)
	}
	var vendors []string
	for _, tx := range res.Transactions {
		vendors = append(vendors, tx.Vendor)
	}
	if got := strings.Join(vendors, ","); got != "First,Second,Third,Fourth" {
		t.Fatalf("vendors = %s", got)
	}
}

func TestImportSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "cashcast.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = st.Close() }()
	if _, _, err := st.LoadOrSeed(testNow); err != nil {
		t.Fatal(err)
	}

	csvDir := filepath.Join(dir, "exports")
	if err := os.MkdirAll(csvDir, 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, csvDir, "may.csv", "date,vendor,amount\n2024-05-03,Grocer Mart #9,-42\n")

	res, err := Import(st, ImportRequest{Paths: []string{csvDir}, Scenario: "baseline"}, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Transactions) != 1 || res.Transactions[0].Category != "Groceries" {
		t.Fatalf("imported = %+v", res.Transactions)
	}

	again, err := Import(st, ImportRequest{Paths: []string{csvDir}, Scenario: "baseline"}, nil)
	if err != nil {
		t.Fatalf("Import again: %v", err)
	}
	if again.Unchanged != 1 || len(again.Transactions) != 0 {
		t.Fatalf("second import unchanged/rows = %d/%d, want 1/0", again.Unchanged, len(again.Transactions))
	}

	ds, _, _ := st.Load()
	if len(ds.Transactions) != 9 {
		t.Fatalf("stored transactions = %d, want 9", len(ds.Transactions))
	}

	dry, err := Import(st, ImportRequest{Paths: []string{csvDir}, Scenario: "baseline", Force: true, DryRun: true}, nil)
	if err != nil {
		t.Fatalf("Import dry run: %v", err)
	}
	if len(dry.Transactions) != 1 {
		t.Fatalf("forced dry run rows = %d, want 1", len(dry.Transactions))
	}
	ds, _, _ = st.Load()
	if len(ds.Transactions) != 9 {
		t.Fatalf("dry run changed the store: %d transactions", len(ds.Transactions))
	}
}

func TestImportRejectsUnknownScenario(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "cashcast.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = st.Close() }()
	if _, _, err := st.LoadOrSeed(testNow); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, dir, "x.csv", "2024-05-03,Shop,-4,,,,ghost\n")

	if _, err := Import(st, ImportRequest{Paths: []string{path}}, nil); !errors.Is(err, model.ErrScenarioNotFound) {
		t.Fatalf("err = %v, want ErrScenarioNotFound", err)
	}
	files, _ := st.GetImportedFiles()
	if len(files) != 0 {
		t.Fatal("failed import was logged")
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	if got := DBPath(); got != "/tmp/xdg/cashcast/cashcast.db" {
		t.Fatalf("DBPath() = %q", got)
	}
}
