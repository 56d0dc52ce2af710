package series

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrNotReady signals that the aligned history is still shorter than the
// configured minimum; an expected warm-up condition, not a failure.
var ErrNotReady = errors.New("not enough aligned history")

// Row extends an aligned row with the spread and its rolling statistics.
// Mean, Std and Z are meaningful only when the corresponding flag is set:
// StatsReady is false for the first zscore_length-1 rows, and HasZ is
// additionally false whenever the rolling std is zero. A row without a
// z-score carries no signal and must never be read as z=0.
type Row struct {
	Timestamp  int64           `json:"timestamp"`
	Close1     decimal.Decimal `json:"close_1"`
	Close2     decimal.Decimal `json:"close_2"`
	Spread     decimal.Decimal `json:"spread"`
	Mean       float64         `json:"rolling_mean,omitempty"`
	Std        float64         `json:"rolling_std,omitempty"`
	Z          float64         `json:"z_score,omitempty"`
	StatsReady bool            `json:"stats_ready"`
	HasZ       bool            `json:"has_z_score"`
}

// Compute derives spread and rolling z-score rows from an aligned series.
// spread[i] = close1[i] - hedgeRatio*close2[i], exact in decimal;
// the rolling mean and sample standard deviation cover the trailing
// zscoreLength spreads ending at i. Returns ErrNotReady while
// len(aligned) < spreadLength.
//
// Compute is stateless: re-invoking it over a growing history yields, for
// any row i, statistics that depend only on rows <= i.
func Compute(aligned []AlignedRow, hedgeRatio decimal.Decimal, spreadLength, zscoreLength int) ([]Row, error) {
	if len(aligned) < spreadLength {
		return nil, ErrNotReady
	}

	rows := make([]Row, len(aligned))
	spreads := make([]float64, len(aligned))
	for i, a := range aligned {
		spread := a.Close1.Sub(a.Close2.Mul(hedgeRatio))
		rows[i] = Row{
			Timestamp: a.Timestamp,
			Close1:    a.Close1,
			Close2:    a.Close2,
			Spread:    spread,
		}
		spreads[i], _ = spread.Float64()
	}

	for i := zscoreLength - 1; i < len(rows); i++ {
		window := spreads[i-zscoreLength+1 : i+1]
		mean, std := meanStd(window)
		rows[i].Mean = mean
		rows[i].Std = std
		rows[i].StatsReady = true
		if std > 0 && !math.IsNaN(std) {
			rows[i].Z = (spreads[i] - mean) / std
			rows[i].HasZ = true
		}
	}

	return rows, nil
}

// meanStd returns the mean and sample standard deviation of the window.
func meanStd(window []float64) (float64, float64) {
	n := float64(len(window))
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (n - 1))
}
