package forecast

import "github.com/theirongolddev/cashcast/internal/model"

// DetectNegativeBalances returns the points whose balance is strictly negative, in series order.
func DetectNegativeBalances(series []model.SeriesPoint) []model.SeriesPoint {
	var out []model.SeriesPoint
	for _, p := range series {
		if p.Balance.IsNegative() {
			out = append(out, p)
		}
	}
	return out
}

// RiskSummary condenses a series into the alert statistics shown to the user.
type RiskSummary struct {
	Count int                `json:"count"`
	First *model.SeriesPoint `json:"first,omitempty"`
	Low   *model.SeriesPoint `json:"low,omitempty"`
}

// SummarizeRisk counts negative days, picks the first one and the lowest balance overall.
// Ties for the low keep the earliest day.
func SummarizeRisk(series []model.SeriesPoint) RiskSummary {
	negatives := DetectNegativeBalances(series)
	rs := RiskSummary{Count: len(negatives)}
	if len(negatives) > 0 {
		first := negatives[0]
		rs.First = &first
	}
	for i := range series {
		if rs.Low == nil || series[i].Balance.LessThan(rs.Low.Balance) {
			low := series[i]
			rs.Low = &low
		}
	}
	return rs
}
