package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/source"
	"github.com/theirongolddev/cashcast/internal/store"
)

var benchNow = time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

// largeDataset is the seed plus a year of daily coffee purchases.
func largeDataset() model.Dataset {
	ds := store.Seed(benchNow)
	for i := 0; i < 365; i++ {
		ds.Transactions = append(ds.Transactions, model.Transaction{
			ID:       fmt.Sprintf("coffee-%d", i),
			Date:     benchNow.AddDate(0, 0, i),
			Vendor:   "Corner Cafe",
			Amount:   decimal.RequireFromString("-4.35"),
			Type:     model.Expense,
			Category: "Dining",
			Scenario: "baseline",
			Payment:  "Card A",
		})
	}
	return ds
}

func BenchmarkSimulateCashSeries(b *testing.B) {
	ds := largeDataset()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := forecast.SimulateCashSeries(ds, "baseline", 730, benchNow); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForecastWeekly(b *testing.B) {
	ds := largeDataset()
	req := Request{Scenario: "baseline", HorizonDays: 365, Now: benchNow, Grouping: forecast.GroupWeekly, IncludeTrend: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Forecast(ds, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkImportFiles(b *testing.B) {
	dir := b.TempDir()
	var rows []string
	for i := 0; i < 500; i++ {
		rows = append(rows, fmt.Sprintf("2024-05-%02d,Grocer Mart #%d,-%d.25", i%28+1, i, i%90+1))
	}
	for f := 0; f < 8; f++ {
		path := filepath.Join(dir, fmt.Sprintf("export-%d.csv", f))
		if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	files, err := source.ScanDir(dir)
	if err != nil {
		b.Fatal(err)
	}
	opts := source.Options{Scenario: "baseline", History: store.Seed(benchNow).Transactions}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := ImportFiles(files, opts, nil)
		if res.FileErrors > 0 {
			b.Fatal("file errors")
		}
	}
}
