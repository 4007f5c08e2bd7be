package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0", "$0.00"},
		{"4.5", "$4.50"},
		{"999.999", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"-1234.5", "-$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-0.004", "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(decimal.NewFromInt(600)); got != "+$600.00" {
		t.Fatalf("FormatSignedMoney(600) = %q", got)
	}
	if got := FormatSignedMoney(decimal.NewFromInt(-75)); got != "-$75.00" {
		t.Fatalf("FormatSignedMoney(-75) = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct{ in, want string }{
		{"9999", "$9,999.00"},
		{"12345", "$12.3K"},
		{"-2500000", "-$2.5M"},
	}
	for _, tt := range tests {
		if got := FormatCompact(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("FormatCompact(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	d := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Mon May 20 2024" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatPercent(30); got != "30%" {
		t.Fatalf("FormatPercent = %q", got)
	}
	if FormatDays(1) != "1 day" || FormatDays(14) != "14 days" {
		t.Fatalf("FormatDays = %q / %q", FormatDays(1), FormatDays(14))
	}
	if FormatOptional(" ") != "-" || FormatOptional("Food") != "Food" {
		t.Fatal("FormatOptional mismatch")
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-100, 0, 100}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Fatalf("RenderSparkline = %q", string(got))
	}
	if flat := RenderSparkline([]float64{5, 5}); flat != "▁▁" {
		t.Fatalf("flat sparkline = %q", flat)
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("empty sparkline should be empty")
	}
}

func TestDownsample(t *testing.T) {
	values := make([]float64, 91)
	for i := range values {
		values[i] = float64(i)
	}
	got := Downsample(values, 10)
	if len(got) != 10 || got[0] != 0 || got[9] != 90 {
		t.Fatalf("Downsample = %v", got)
	}
	if len(Downsample(values, 200)) != 91 {
		t.Fatal("Downsample should not grow a series")
	}
	if one := Downsample(values, 1); len(one) != 1 || one[0] != 90 {
		t.Fatalf("Downsample(1) = %v", one)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Budget",
		Headers: []string{"Category", "Actual"},
		Rows: [][]string{
			{"Groceries", Money(decimal.NewFromInt(220))},
			{Separator},
			{"Total", Money(decimal.NewFromInt(-5))},
		},
	})
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "$220.00") {
		t.Fatalf("table missing cells:\n%s", out)
	}

	// Every bordered line has the same printable width, styled cells included.
	var width int
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n")[1:] {
		w := lipgloss.Width(line)
		if width == 0 {
			width = w
		}
		if w != width {
			t.Fatalf("line width %d, want %d:\n%s", w, width, out)
		}
	}

	if RenderTable(Table{}) != "" {
		t.Fatal("empty table should render nothing")
	}
}

func TestRenderProgressBar(t *testing.T) {
	if RenderProgressBar(1, 0, 10) != "" {
		t.Fatal("zero total should render nothing")
	}
	if got := RenderProgressBar(3, 4, 8); !strings.HasSuffix(got, "3/4") {
		t.Fatalf("RenderProgressBar = %q", got)
	}
}
