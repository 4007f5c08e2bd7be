package forecast

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/model"
)

// MaxHorizonDays caps a simulation at roughly ten years of daily points.
const MaxHorizonDays = 3660

var (
	// ErrNegativeHorizon is returned when a simulation is asked to run backwards.
	ErrNegativeHorizon = errors.New("horizon must not be negative")
	// ErrHorizonTooLong is returned when a simulation exceeds MaxHorizonDays.
	ErrHorizonTooLong = errors.New("horizon too long")
)

// Precision selects how the running balance carries cents between days.
type Precision int

const (
	// PrecisionRounded rounds each day's balance to cents and carries the rounded value forward.
	PrecisionRounded Precision = iota
	// PrecisionExact carries the unrounded balance and rounds only the emitted points.
	PrecisionExact
)

func (p Precision) String() string {
	if p == PrecisionExact {
		return "exact"
	}
	return "rounded"
}

// ParsePrecision parses "rounded" or "exact".
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rounded":
		return PrecisionRounded, nil
	case "exact":
		return PrecisionExact, nil
	}
	return PrecisionRounded, fmt.Errorf("unknown precision %q", s)
}

type simConfig struct {
	precision Precision
}

// SimOption tunes SimulateCashSeries.
type SimOption func(*simConfig)

// WithPrecision sets the balance carry mode.
func WithPrecision(p Precision) SimOption {
	return func(c *simConfig) { c.precision = p }
}

// SimulateCashSeries walks from now's calendar day through now+horizonDays inclusive and
// returns one running-balance point per day, starting from the scenario's starting balance.
// Each day adds every recorded transaction and generated occurrence dated that day.
func SimulateCashSeries(ds model.Dataset, scenarioID string, horizonDays int, now time.Time, opts ...SimOption) ([]model.SeriesPoint, error) {
	if horizonDays < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeHorizon, horizonDays)
	}
	if horizonDays > MaxHorizonDays {
		return nil, fmt.Errorf("%w: %d > %d days", ErrHorizonTooLong, horizonDays, MaxHorizonDays)
	}
	scenario, err := ds.Scenario(scenarioID)
	if err != nil {
		return nil, err
	}

	cfg := simConfig{precision: PrecisionRounded}
	for _, opt := range opts {
		opt(&cfg)
	}

	today := calendar.Day(now)
	end := calendar.AddDays(today, horizonDays)

	// Index same-day sums once instead of rescanning all entries per day.
	daily := make(map[string]decimal.Decimal)
	for _, e := range ScenarioEntries(ds, scenarioID, today, end) {
		key := calendar.Format(calendar.Day(e.Date))
		daily[key] = daily[key].Add(e.Amount)
	}

	series := make([]model.SeriesPoint, 0, horizonDays+1)
	balance := scenario.StartBalance
	for d := today; !d.After(end); d = calendar.AddDays(d, 1) {
		balance = balance.Add(daily[calendar.Format(d)])
		point := balance.Round(2)
		if cfg.precision == PrecisionRounded {
			balance = point
		}
		series = append(series, model.SeriesPoint{Date: d, Balance: point})
	}
	return series, nil
}

// ScenarioEntries merges a scenario's recorded transactions with the occurrences its
// recurring patterns generate over [from, to], stable-sorted by date. Recorded
// transactions come first, so same-day ties keep recorded before generated.
func ScenarioEntries(ds model.Dataset, scenarioID string, from, to time.Time) []model.Transaction {
	entries := ds.ScenarioTransactions(scenarioID)
	for _, p := range ds.ScenarioRecurring(scenarioID) {
		for occ := range GenerateOccurrences(p, from, to) {
			entries = append(entries, occ.Transaction)
		}
	}
	slices.SortStableFunc(entries, func(a, b model.Transaction) int {
		return calendar.Day(a.Date).Compare(calendar.Day(b.Date))
	})
	return entries
}

// Upcoming returns the merged entries dated inside [from, to].
func Upcoming(ds model.Dataset, scenarioID string, from, to time.Time) []model.Transaction {
	from, to = calendar.Day(from), calendar.Day(to)
	var out []model.Transaction
	for _, e := range ScenarioEntries(ds, scenarioID, from, to) {
		d := calendar.Day(e.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}
