package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a scenario's monthly envelope.
type Budget struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Target returns the envelope side matching t.
func (b Budget) Target(t TxType) decimal.Decimal {
	if t == Income {
		return b.Income
	}
	return b.Expense
}

// Scenario is a named financial plan with its own starting balance and budget.
type Scenario struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	StartBalance decimal.Decimal `json:"startBalance"`
	Budget       Budget          `json:"budget"`
}

// Transaction is one recorded cash movement. Positive amounts are income.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Vendor      string          `json:"vendor"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TxType          `json:"type"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Scenario    string          `json:"scenario"`
	Payment     string          `json:"payment"`
}

// CardFunded reports whether the payment label names a card.
func (t Transaction) CardFunded() bool {
	return strings.Contains(strings.ToLower(t.Payment), "card")
}

// Validate checks the creation-time invariants.
func (t Transaction) Validate() error {
	if t.Vendor == "" {
		return fmt.Errorf("transaction %s: vendor is required", t.ID)
	}
	if t.Scenario == "" {
		return fmt.Errorf("transaction %s: scenario is required", t.ID)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("transaction %s: unknown type %q", t.ID, t.Type)
	}
	if (t.Type == Income && t.Amount.IsNegative()) || (t.Type == Expense && t.Amount.IsPositive()) {
		return fmt.Errorf("transaction %s: %w", t.ID, ErrTypeMismatch)
	}
	return nil
}

// RecurringPattern repeats a transaction-shaped entry on a cadence.
type RecurringPattern struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TxType          `json:"type"`
	Cadence     Cadence         `json:"cadence"`
	Start       time.Time       `json:"start"`
	End         *time.Time      `json:"end,omitempty"`
	Scenario    string          `json:"scenario"`
	Need        Need            `json:"need"`
}

// Validate rejects unknown cadences and inverted date ranges.
func (p RecurringPattern) Validate() error {
	if !p.Cadence.Valid() {
		return fmt.Errorf("pattern %s: %w: unknown cadence %q", p.ID, ErrInvalidPattern, p.Cadence)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("pattern %s: %w: unknown type %q", p.ID, ErrInvalidPattern, p.Type)
	}
	if p.End != nil && p.End.Before(p.Start) {
		return fmt.Errorf("pattern %s: %w: start %s after end %s", p.ID, ErrInvalidDateRange,
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
	return nil
}

// Card is a credit card with a monthly billing cycle.
type Card struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	StatementDay    int                        `json:"statementDay"`
	DueDay          int                        `json:"dueDay"`
	AvgDailySpend   decimal.Decimal            `json:"avgDailySpend"`
	Scenario        string                     `json:"scenario"`
	CategoryTargets map[string]decimal.Decimal `json:"categoryTargets,omitempty"`
}

// MaxCycleDay caps statement and due days so every month contains them.
const MaxCycleDay = 28

// Validate checks the statement and due days.
func (c Card) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("card %s: %w: name is required", c.ID, ErrInvalidCard)
	}
	if c.StatementDay < 1 || c.StatementDay > MaxCycleDay {
		return fmt.Errorf("card %s: %w: statement day %d outside 1-%d", c.ID, ErrInvalidCard, c.StatementDay, MaxCycleDay)
	}
	if c.DueDay < 1 || c.DueDay > MaxCycleDay {
		return fmt.Errorf("card %s: %w: due day %d outside 1-%d", c.ID, ErrInvalidCard, c.DueDay, MaxCycleDay)
	}
	return nil
}

// SeriesPoint is one day's running balance, rounded to cents.
type SeriesPoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// Occurrence is a transaction materialized from a recurring pattern for one date.
type Occurrence struct {
	Transaction
	PatternID string `json:"patternId"`
}
