// Package pipeline wires the forecasting engine to the host: CSV imports, forecast
// reports, scenario comparisons and the summary overview.
package pipeline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
)

// MaxCompare is the most scenarios Compare puts side by side.
const MaxCompare = 4

// LowWindowDays is the window the overview reports its low balance over.
const LowWindowDays = 30

// Request selects a forecast.
type Request struct {
	Scenario     string
	HorizonDays  int
	Now          time.Time
	Grouping     forecast.Grouping
	IncludeTrend bool
	Precision    forecast.Precision
}

// Report is a computed forecast for one scenario.
type Report struct {
	Scenario model.Scenario       `json:"scenario"`
	Series   []model.SeriesPoint  `json:"series"`
	Buckets  []forecast.Bucket    `json:"buckets"`
	Trend    *forecast.Trend      `json:"trend,omitempty"`
	Risk     forecast.RiskSummary `json:"risk"`
}

// Start is the balance on the first day of the series.
func (r *Report) Start() decimal.Decimal {
	if len(r.Series) == 0 {
		return decimal.Zero
	}
	return r.Series[0].Balance
}

// End is the balance on the last day of the series.
func (r *Report) End() decimal.Decimal {
	if len(r.Series) == 0 {
		return decimal.Zero
	}
	return r.Series[len(r.Series)-1].Balance
}

// Forecast runs the simulator, then derives the trend, risk summary and buckets.
// An empty grouping means daily.
func Forecast(ds model.Dataset, req Request) (*Report, error) {
	sc, err := ds.Scenario(req.Scenario)
	if err != nil {
		return nil, err
	}
	series, err := forecast.SimulateCashSeries(ds, req.Scenario, req.HorizonDays, req.Now,
		forecast.WithPrecision(req.Precision))
	if err != nil {
		return nil, fmt.Errorf("simulating %s: %w", req.Scenario, err)
	}

	g := req.Grouping
	if g == "" {
		g = forecast.GroupDaily
	}
	buckets, err := forecast.BucketSeries(series, g)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Scenario: sc,
		Series:   series,
		Buckets:  buckets,
		Risk:     forecast.SummarizeRisk(series),
	}
	if req.IncludeTrend {
		r.Trend = forecast.EstimateTrend(series)
	}
	return r, nil
}

// Compare forecasts up to MaxCompare scenarios over the same horizon. With no ids it
// takes the first MaxCompare scenarios in dataset order.
func Compare(ds model.Dataset, ids []string, base Request) ([]*Report, error) {
	if len(ids) == 0 {
		for _, s := range ds.Scenarios {
			ids = append(ids, s.ID)
		}
	}
	if len(ids) > MaxCompare {
		ids = ids[:MaxCompare]
	}

	reports := make([]*Report, 0, len(ids))
	for _, id := range ids {
		req := base
		req.Scenario = id
		r, err := Forecast(ds, req)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Overview holds the headline figures for a scenario.
type Overview struct {
	Scenario        model.Scenario      `json:"scenario"`
	Income          decimal.Decimal     `json:"income"`
	Expenses        decimal.Decimal     `json:"expenses"`
	CurrentCash     decimal.Decimal     `json:"currentCash"`
	RiskWindowDays  int                 `json:"riskWindowDays"`
	AlertCount      int                 `json:"alertCount"`
	NextRisk        *model.SeriesPoint  `json:"nextRisk,omitempty"`
	Low             *model.SeriesPoint  `json:"low,omitempty"`
	RecurringCount  int                 `json:"recurringCount"`
	CardFundedCount int                 `json:"cardFundedCount"`
	Upcoming        []model.Transaction `json:"upcoming"`
}

// BuildOverview totals a scenario's recorded activity and scans the next riskDays for
// negative balances. The low is taken over the next LowWindowDays.
func BuildOverview(ds model.Dataset, id string, now time.Time, riskDays int) (*Overview, error) {
	sc, err := ds.Scenario(id)
	if err != nil {
		return nil, err
	}

	o := &Overview{Scenario: sc, RiskWindowDays: riskDays}
	for _, t := range ds.ScenarioTransactions(id) {
		switch t.Type {
		case model.Income:
			o.Income = o.Income.Add(t.Amount)
		case model.Expense:
			o.Expenses = o.Expenses.Add(t.Amount.Abs())
		}
		if t.CardFunded() {
			o.CardFundedCount++
		}
	}
	o.CurrentCash = sc.StartBalance.Add(o.Income).Sub(o.Expenses)
	o.RecurringCount = len(ds.ScenarioRecurring(id))

	riskSeries, err := forecast.SimulateCashSeries(ds, id, riskDays, now)
	if err != nil {
		return nil, err
	}
	risk := forecast.SummarizeRisk(riskSeries)
	o.AlertCount = risk.Count
	o.NextRisk = risk.First

	lowSeries, err := forecast.SimulateCashSeries(ds, id, LowWindowDays, now)
	if err != nil {
		return nil, err
	}
	o.Low = forecast.SummarizeRisk(lowSeries).Low

	today := calendar.Day(now)
	o.Upcoming = forecast.Upcoming(ds, id, today, calendar.AddDays(today, 14))
	return o, nil
}
