// Package md owns market data ingestion: per-pair candle histories and
// the websocket kline streams that fill them.
package md

import (
	"sync"

	"github.com/shopspring/decimal"
)

// PricePoint is one observed candle close. Timestamp is the candle open
// time in unix seconds.
type PricePoint struct {
	Timestamp int64           `json:"timestamp"`
	Close     decimal.Decimal `json:"close"`
}

// History is a bounded, time-ordered buffer of candle closes for a single
// pair. Writers append from the feed goroutine; readers take copies.
type History struct {
	mu     sync.RWMutex
	points []PricePoint
	max    int
}

func NewHistory(max int) *History {
	return &History{
		points: make([]PricePoint, 0, max),
		max:    max,
	}
}

// Append records a closed candle. A point with the same timestamp as the
// newest entry replaces it (duplicate close events from a reconnect);
// once max is reached the oldest point is dropped.
func (h *History) Append(p PricePoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.points); n > 0 && h.points[n-1].Timestamp == p.Timestamp {
		h.points[n-1] = p
		return
	}
	h.points = append(h.points, p)
	if len(h.points) > h.max {
		h.points = h.points[len(h.points)-h.max:]
	}
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}

// Snapshot returns a copy safe to read while the feed keeps appending.
func (h *History) Snapshot() []PricePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]PricePoint, len(h.points))
	copy(out, h.points)
	return out
}
