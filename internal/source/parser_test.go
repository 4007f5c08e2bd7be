package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/model"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// writeCSV creates a temp CSV file and returns a DiscoveredFile for it.
func writeCSV(t *testing.T, dir, name string, lines ...string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	df, err := Discover(path)
	if err != nil {
		t.Fatal(err)
	}
	return df
}

func TestParseFullRows(t *testing.T) {
	df := writeCSV(t, t.TempDir(), "may.csv",
		"date,vendor,amount,type,category,subcategory,scenario,payment",
		"2024-05-28,Acme Salary,2600,income,Salary,Primary,baseline,checking",
		"2024-05-21, Grocer Mart ,-220.45,expense,Groceries,Food,baseline,Card A",
	)

	res := ParseFile(df, Options{Scenario: "baseline", NewID: seqIDs()})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Path != df.Path {
		t.Fatalf("Path = %q, want %q", res.Path, df.Path)
	}
	if len(res.Transactions) != 2 || len(res.Skipped) != 0 {
		t.Fatalf("got %d transactions, %d skipped, want 2, 0", len(res.Transactions), len(res.Skipped))
	}

	g := res.Transactions[1]
	if g.ID != "id-2" || g.Vendor != "Grocer Mart" || g.Payment != "Card A" || g.Subcategory != "Food" {
		t.Fatalf("row 2 = %+v", g)
	}
	if !g.Amount.Equal(decimal.RequireFromString("-220.45")) || g.Type != model.Expense {
		t.Fatalf("row 2 amount/type = %s/%s, want -220.45/expense", g.Amount, g.Type)
	}
	if g.Date.Format("2006-01-02") != "2024-05-21" {
		t.Fatalf("row 2 date = %v", g.Date)
	}
}

func TestParseDefaults(t *testing.T) {
	history := []model.Transaction{
		{Vendor: "Gym Center", Category: "Health"},
	}
	res := Parse(strings.NewReader(strings.Join([]string{
		"2024-05-18,Gym Center #3,-60",
		"2024-05-19,Mystery Shop,-5",
		"2024-05-20,Refund Co,15",
	}, "\n")), Options{Scenario: "stretch", History: history, NewID: seqIDs()})

	if len(res.Transactions) != 3 {
		t.Fatalf("len = %d, want 3 (skipped %v)", len(res.Transactions), res.Skipped)
	}
	gym := res.Transactions[0]
	if gym.Category != "Health" || gym.Type != model.Expense || gym.Scenario != "stretch" || gym.Payment != model.PaymentChecking {
		t.Fatalf("gym = %+v", gym)
	}
	if res.Transactions[1].Category != Uncategorised {
		t.Fatalf("unknown vendor category = %q, want %q", res.Transactions[1].Category, Uncategorised)
	}
	if res.Transactions[2].Type != model.Income {
		t.Fatalf("positive amount type = %s, want income", res.Transactions[2].Type)
	}
}

func TestParseLearnsFromEarlierRows(t *testing.T) {
	res := Parse(strings.NewReader(strings.Join([]string{
		"2024-05-01,Corner Cafe,-4,,Dining",
		"2024-05-02,Corner Cafe,-6",
	}, "\n")), Options{Scenario: "baseline", NewID: seqIDs()})

	if len(res.Transactions) != 2 {
		t.Fatalf("len = %d, want 2", len(res.Transactions))
	}
	if res.Transactions[1].Category != "Dining" {
		t.Fatalf("second row category = %q, want Dining", res.Transactions[1].Category)
	}
}

func TestParseSkipsBadRows(t *testing.T) {
	res := Parse(strings.NewReader(strings.Join([]string{
		"2024-05-01,,-4",                       // no vendor
		"2024-05-01,Shop",                      // no amount
		"05/01/2024,Shop,-4",                   // bad date
		"2024-05-01,Shop,abc",                  // bad amount
		"2024-05-01,Shop,-4,income",            // type disagrees with sign
		"2024-05-01,Shop,-4,transfer",          // unknown type
		"# a comment line",                     // ignored
		"",                                     // ignored
		"2024-05-03,Shop,-4,expense,Misc,,s,x", // ok
	}, "\n")), Options{NewID: seqIDs()})

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("len = %d, want 1", len(res.Transactions))
	}
	if len(res.Skipped) != 6 {
		t.Fatalf("skipped = %d, want 6: %v", len(res.Skipped), res.Skipped)
	}
	if res.Skipped[0].Line != 1 || res.Skipped[5].Line != 6 {
		t.Fatalf("skipped lines = %d..%d, want 1..6", res.Skipped[0].Line, res.Skipped[5].Line)
	}
}

func TestParseMissingScenarioSkipped(t *testing.T) {
	res := Parse(strings.NewReader("2024-05-01,Shop,-4\n"), Options{NewID: seqIDs()})
	if len(res.Transactions) != 0 || len(res.Skipped) != 1 {
		t.Fatalf("got %d/%d, want 0 transactions and 1 skipped", len(res.Transactions), len(res.Skipped))
	}
}

func TestParseFileMissing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.csv")}, Options{})
	if res.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "b.csv", "2024-05-01,Shop,-4")
	writeCSV(t, dir, "a.CSV", "2024-05-01,Shop,-4")
	writeCSV(t, dir, "notes.txt", "hello")
	if err := os.MkdirAll(filepath.Join(dir, ".hidden"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeCSV(t, filepath.Join(dir, ".hidden"), "c.csv", "2024-05-01,Shop,-4")

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len = %d, want 2", len(files))
	}
	if filepath.Base(files[0].Path) != "a.CSV" || filepath.Base(files[1].Path) != "b.csv" {
		t.Fatalf("files = %s, %s", files[0].Path, files[1].Path)
	}
	if files[0].Size == 0 || files[0].MtimeNs == 0 {
		t.Fatalf("file info not populated: %+v", files[0])
	}

	single, err := ScanDir(files[1].Path)
	if err != nil || len(single) != 1 {
		t.Fatalf("ScanDir(file) = %v, %v", single, err)
	}

	missing, err := ScanDir(filepath.Join(dir, "missing"))
	if err != nil || missing != nil {
		t.Fatalf("ScanDir(missing) = %v, %v, want nil, nil", missing, err)
	}
}
