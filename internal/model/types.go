// Package model defines the domain types for cashcast scenarios, transactions,
// recurring patterns and cards.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrInvalidPattern   = errors.New("invalid recurring pattern")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidCard      = errors.New("invalid card")
	ErrTypeMismatch     = errors.New("type does not agree with amount sign")
)

// PaymentChecking is the payment label stamped on every generated occurrence.
const PaymentChecking = "checking"

// TxType tags a transaction or pattern as money in or money out.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Valid reports whether t is a recognized type.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// TypeForAmount returns income for non-negative amounts and expense otherwise.
func TypeForAmount(amount decimal.Decimal) TxType {
	if amount.IsNegative() {
		return Expense
	}
	return Income
}

// ParseTxType parses "income" or "expense" (case-insensitive).
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

// SignedMagnitude is the budget convention: income counts its amount as-is,
// expense counts the absolute amount.
func SignedMagnitude(t TxType, amount decimal.Decimal) decimal.Decimal {
	if t == Income {
		return amount
	}
	return amount.Abs()
}

// Cadence is the repeat interval of a recurring pattern.
type Cadence string

const (
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
	Yearly  Cadence = "yearly"
)

// Valid reports whether c is one of the three recognized cadences.
func (c Cadence) Valid() bool {
	switch c {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// ParseCadence parses a cadence name (case-insensitive).
func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown cadence %q", ErrInvalidPattern, s)
	}
	return c, nil
}

// Need is an informational tag on recurring patterns.
type Need string

const (
	NeedRequired      Need = "required"
	NeedDiscretionary Need = "discretionary"
)

// Slug lowercases a display name and joins its words with dashes.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
