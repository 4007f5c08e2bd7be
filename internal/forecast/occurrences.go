// Package forecast projects a scenario's cash balance day by day and derives
// trend, risk and period summaries from the resulting series.
package forecast

import (
	"iter"
	"time"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/model"
)

// GenerateOccurrences expands a recurring pattern into one occurrence per cadence step
// inside [windowStart, windowEnd]. Stepping starts at the later of the pattern start and
// the window start and stops after min(pattern end, window end).
//
// The sequence is lazy and restartable: ranging over it again regenerates the same
// occurrences with the same ids. Unknown cadences and inverted ranges yield nothing.
func GenerateOccurrences(p model.RecurringPattern, windowStart, windowEnd time.Time) iter.Seq[model.Occurrence] {
	return func(yield func(model.Occurrence) bool) {
		if !p.Cadence.Valid() {
			return
		}

		end := calendar.Day(windowEnd)
		if p.End != nil {
			end = calendar.Min(calendar.Day(*p.End), end)
		}

		for cursor := calendar.Max(calendar.Day(p.Start), calendar.Day(windowStart)); !cursor.After(end); cursor = step(cursor, p.Cadence) {
			if !yield(occurrenceOn(p, cursor)) {
				return
			}
		}
	}
}

// CollectOccurrences materializes GenerateOccurrences into a slice.
func CollectOccurrences(p model.RecurringPattern, windowStart, windowEnd time.Time) []model.Occurrence {
	var out []model.Occurrence
	for occ := range GenerateOccurrences(p, windowStart, windowEnd) {
		out = append(out, occ)
	}
	return out
}

// OccurrenceID is the deterministic id of a pattern's occurrence on a day.
func OccurrenceID(patternID string, day time.Time) string {
	return patternID + "-" + calendar.Format(day)
}

func step(cursor time.Time, c model.Cadence) time.Time {
	switch c {
	case model.Weekly:
		return calendar.AddDays(cursor, 7)
	case model.Monthly:
		return calendar.AddMonths(cursor, 1)
	default:
		return calendar.AddYears(cursor, 1)
	}
}

func occurrenceOn(p model.RecurringPattern, day time.Time) model.Occurrence {
	return model.Occurrence{
		Transaction: model.Transaction{
			ID:          OccurrenceID(p.ID, day),
			Date:        day,
			Vendor:      p.Label,
			Amount:      p.Amount,
			Type:        p.Type,
			Category:    p.Category,
			Subcategory: p.Subcategory,
			Scenario:    p.Scenario,
			Payment:     model.PaymentChecking,
		},
		PatternID: p.ID,
	}
}
