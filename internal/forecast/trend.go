package forecast

import "github.com/theirongolddev/cashcast/internal/model"

// MinTrendPoints is the shortest series a trend is fitted to.
const MinTrendPoints = 3

// TrendPoint is the projected balance at one series index.
type TrendPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Trend is a least-squares line of balance against point index.
type Trend struct {
	Slope     float64      `json:"slope"`
	Intercept float64      `json:"intercept"`
	Points    []TrendPoint `json:"points"`
}

// EstimateTrend fits balance = slope*index + intercept over the series and returns
// the fitted value at every index. It returns nil when the series has fewer than
// MinTrendPoints points.
func EstimateTrend(series []model.SeriesPoint) *Trend {
	n := len(series)
	if n < MinTrendPoints {
		return nil
	}

	var sumY float64
	ys := make([]float64, n)
	for i, p := range series {
		ys[i] = p.Balance.InexactFloat64()
		sumY += ys[i]
	}
	meanX := float64(n-1) / 2
	meanY := sumY / float64(n)

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}

	slope := num / den
	t := &Trend{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		Points:    make([]TrendPoint, n),
	}
	for i := range t.Points {
		t.Points[i] = TrendPoint{Index: i, Value: t.Slope*float64(i) + t.Intercept}
	}
	return t
}
