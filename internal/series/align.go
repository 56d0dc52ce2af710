// Package series holds the pure spread math: timestamp alignment of two
// price histories and the rolling z-score over the hedge-adjusted spread.
package series

import (
	"sort"

	"github.com/shopspring/decimal"

	"statarb/internal/md"
)

// AlignedRow pairs the closes of both legs observed at the same candle
// timestamp.
type AlignedRow struct {
	Timestamp int64           `json:"timestamp"`
	Close1    decimal.Decimal `json:"close_1"`
	Close2    decimal.Decimal `json:"close_2"`
}

// Align inner-joins two candle histories on exact timestamp equality.
// Timestamps present in only one series are dropped; no interpolation.
// Output is ascending by timestamp. Empty input yields an empty result,
// which callers treat as "not ready" rather than an error.
func Align(series1, series2 []md.PricePoint) []AlignedRow {
	if len(series1) == 0 || len(series2) == 0 {
		return nil
	}

	byTimestamp := make(map[int64]decimal.Decimal, len(series2))
	for _, p := range series2 {
		byTimestamp[p.Timestamp] = p.Close
	}

	rows := make([]AlignedRow, 0, len(series1))
	for _, p := range series1 {
		close2, ok := byTimestamp[p.Timestamp]
		if !ok {
			continue
		}
		rows = append(rows, AlignedRow{
			Timestamp: p.Timestamp,
			Close1:    p.Close,
			Close2:    close2,
		})
	}

	// Feeds produce candles chronologically, but a reconnect can replay
	// out of order; sort keeps the rolling window honest.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })
	return rows
}
