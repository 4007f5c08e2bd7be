// Package source discovers and parses CSV transaction exports.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/classify"
	"github.com/theirongolddev/cashcast/internal/model"
)

// ParseFile reads a CSV file of transactions.
func ParseFile(df DiscoveredFile, opts Options) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Path: df.Path, Err: err}
	}
	defer func() { _ = f.Close() }()

	res := Parse(f, opts)
	res.Path = df.Path
	return res
}

// Parse reads CSV rows in Columns order. A leading header row is skipped. Rows missing a
// date, vendor or amount, or whose fields do not parse, are reported in Skipped.
func Parse(r io.Reader, opts Options) ParseResult {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	history := append([]model.Transaction(nil), opts.History...)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var res ParseResult
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped = append(res.Skipped, RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			res.Err = err
			return res
		}
		if first && isHeader(rec) {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		line, _ := cr.FieldPos(0)
		t, err := parseRow(rec, newID(), opts.Scenario, history)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Line: line, Reason: err.Error()})
			continue
		}
		history = append(history, t)
		res.Transactions = append(res.Transactions, t)
	}
	return res
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Columns[0])
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func parseRow(rec []string, id, scenario string, history []model.Transaction) (model.Transaction, error) {
	date, vendor, amount := field(rec, 0), field(rec, 1), field(rec, 2)
	if date == "" || vendor == "" || amount == "" {
		return model.Transaction{}, errors.New("date, vendor and amount are required")
	}

	day, err := calendar.Parse(date)
	if err != nil {
		return model.Transaction{}, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}

	t := model.Transaction{
		ID:          id,
		Date:        day,
		Vendor:      vendor,
		Amount:      amt,
		Type:        model.TypeForAmount(amt),
		Category:    field(rec, 4),
		Subcategory: field(rec, 5),
		Scenario:    field(rec, 6),
		Payment:     field(rec, 7),
	}
	if typ := field(rec, 3); typ != "" {
		if t.Type, err = model.ParseTxType(typ); err != nil {
			return model.Transaction{}, err
		}
	}
	if t.Category == "" {
		if cat, ok := classify.SuggestCategory(vendor, history); ok {
			t.Category = cat
		} else {
			t.Category = Uncategorised
		}
	}
	if t.Scenario == "" {
		t.Scenario = scenario
	}
	if t.Payment == "" {
		t.Payment = model.PaymentChecking
	}
	if err := t.Validate(); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}
