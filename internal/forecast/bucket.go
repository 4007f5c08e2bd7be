package forecast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/model"
)

// ErrUnknownGrouping is returned for a grouping mode outside daily/weekly/biweekly/monthly.
var ErrUnknownGrouping = errors.New("unknown grouping")

// Grouping selects the period a series is bucketed into.
type Grouping string

const (
	GroupDaily    Grouping = "daily"
	GroupWeekly   Grouping = "weekly"
	GroupBiweekly Grouping = "biweekly"
	GroupMonthly  Grouping = "monthly"
)

// ParseGrouping parses a grouping name (case-insensitive).
func ParseGrouping(s string) (Grouping, error) {
	g := Grouping(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GroupDaily, GroupWeekly, GroupBiweekly, GroupMonthly:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrouping, s)
}

// Bucket is one period label with the balance of the last point keyed to it.
type Bucket struct {
	Label   string          `json:"label"`
	Balance decimal.Decimal `json:"balance"`
}

// BucketSeries groups a daily series by period. Buckets appear in first-seen order and
// each carries the balance of the last point processed under its key, which on a dense
// date-ordered series is the period's ending balance.
func BucketSeries(series []model.SeriesPoint, g Grouping) ([]Bucket, error) {
	keyFn, err := periodKey(g)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var buckets []Bucket
	for _, p := range series {
		key := keyFn(p)
		if i, ok := index[key]; ok {
			buckets[i].Balance = p.Balance
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, Bucket{Label: key, Balance: p.Balance})
	}
	return buckets, nil
}

func periodKey(g Grouping) (func(model.SeriesPoint) string, error) {
	switch g {
	case GroupDaily:
		return func(p model.SeriesPoint) string { return calendar.Format(p.Date) }, nil
	case GroupWeekly:
		return func(p model.SeriesPoint) string {
			return fmt.Sprintf("%d-W%d", p.Date.Year(), calendar.WeekOfMonth(p.Date, 7))
		}, nil
	case GroupBiweekly:
		return func(p model.SeriesPoint) string {
			return fmt.Sprintf("%d-B%d", p.Date.Year(), calendar.WeekOfMonth(p.Date, 14))
		}, nil
	case GroupMonthly:
		return func(p model.SeriesPoint) string { return p.Date.Format("2006-01") }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGrouping, string(g))
}
