package model

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Dataset is the explicit data context handed to every engine operation.
// The engine only reads it; the mutation helpers below are for the host layer.
// Helpers that remove or replace elements build fresh slices, so a value copy
// taken earlier keeps its contents.
type Dataset struct {
	Scenarios    []Scenario         `json:"scenarios"`
	Transactions []Transaction      `json:"transactions"`
	Recurring    []RecurringPattern `json:"recurring"`
	Cards        []Card             `json:"cards"`
}

// Scenario looks up a scenario by id.
func (d Dataset) Scenario(id string) (Scenario, error) {
	for _, s := range d.Scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %q", ErrScenarioNotFound, id)
}

// ScenarioTransactions returns the transactions owned by a scenario, in stored order.
func (d Dataset) ScenarioTransactions(id string) []Transaction {
	var out []Transaction
	for _, t := range d.Transactions {
		if t.Scenario == id {
			out = append(out, t)
		}
	}
	return out
}

// ScenarioRecurring returns the recurring patterns owned by a scenario.
func (d Dataset) ScenarioRecurring(id string) []RecurringPattern {
	var out []RecurringPattern
	for _, p := range d.Recurring {
		if p.Scenario == id {
			out = append(out, p)
		}
	}
	return out
}

// RecurringPattern looks up a recurring pattern by id.
func (d Dataset) RecurringPattern(id string) (RecurringPattern, error) {
	for _, p := range d.Recurring {
		if p.ID == id {
			return p, nil
		}
	}
	return RecurringPattern{}, fmt.Errorf("pattern %q: %w", id, ErrNotFound)
}

// ScenarioCards returns the cards owned by a scenario.
func (d Dataset) ScenarioCards(id string) []Card {
	var out []Card
	for _, c := range d.Cards {
		if c.Scenario == id {
			out = append(out, c)
		}
	}
	return out
}

// AddScenario appends a new scenario with an empty budget.
func (d *Dataset) AddScenario(s Scenario) error {
	if s.ID == "" || s.Name == "" {
		return fmt.Errorf("scenario id and name are required")
	}
	if _, err := d.Scenario(s.ID); err == nil {
		return fmt.Errorf("scenario %q: %w", s.ID, ErrDuplicateID)
	}
	d.Scenarios = append(d.Scenarios, s)
	return nil
}

// SetBudget replaces a scenario's monthly envelope.
func (d *Dataset) SetBudget(id string, income, expense decimal.Decimal) error {
	for i := range d.Scenarios {
		if d.Scenarios[i].ID == id {
			d.Scenarios = slices.Clone(d.Scenarios)
			d.Scenarios[i].Budget = Budget{Income: income, Expense: expense}
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrScenarioNotFound, id)
}

// AddTransactions validates and appends transactions. Nothing is appended if any fails.
func (d *Dataset) AddTransactions(txs ...Transaction) error {
	seen := make(map[string]struct{}, len(d.Transactions)+len(txs))
	for _, t := range d.Transactions {
		seen[t.ID] = struct{}{}
	}
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, err := d.Scenario(t.Scenario); err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("transaction %s: %w", t.ID, ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
	}
	d.Transactions = append(d.Transactions, txs...)
	return nil
}

// DeleteTransaction removes a transaction by id.
func (d *Dataset) DeleteTransaction(id string) error {
	for i, t := range d.Transactions {
		if t.ID == id {
			d.Transactions = slices.Delete(slices.Clone(d.Transactions), i, i+1)
			return nil
		}
	}
	return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
}

// UpsertRecurring validates p and replaces the pattern with the same id in place,
// or appends it when the id is new.
func (d *Dataset) UpsertRecurring(p RecurringPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := d.Scenario(p.Scenario); err != nil {
		return fmt.Errorf("pattern %s: %w", p.ID, err)
	}
	for i := range d.Recurring {
		if d.Recurring[i].ID == p.ID {
			d.Recurring = slices.Clone(d.Recurring)
			d.Recurring[i] = p
			return nil
		}
	}
	d.Recurring = append(d.Recurring, p)
	return nil
}

// DeleteRecurring removes a pattern by id.
func (d *Dataset) DeleteRecurring(id string) error {
	for i, p := range d.Recurring {
		if p.ID == id {
			d.Recurring = slices.Delete(slices.Clone(d.Recurring), i, i+1)
			return nil
		}
	}
	return fmt.Errorf("pattern %q: %w", id, ErrNotFound)
}

// AddCard validates and appends a card.
func (d *Dataset) AddCard(c Card) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := d.Scenario(c.Scenario); err != nil {
		return fmt.Errorf("card %s: %w", c.ID, err)
	}
	for _, existing := range d.Cards {
		if existing.ID == c.ID {
			return fmt.Errorf("card %s: %w", c.ID, ErrDuplicateID)
		}
	}
	d.Cards = append(d.Cards, c)
	return nil
}

// DeleteCard removes a card by id.
func (d *Dataset) DeleteCard(id string) error {
	for i, c := range d.Cards {
		if c.ID == id {
			d.Cards = slices.Delete(slices.Clone(d.Cards), i, i+1)
			return nil
		}
	}
	return fmt.Errorf("card %q: %w", id, ErrNotFound)
}
