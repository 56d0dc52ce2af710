package state

import (
	"testing"

	"github.com/shopspring/decimal"

	"statarb/internal/exchange"
	"statarb/internal/series"
	"statarb/internal/strategy"
)

func TestStoreStartsFlat(t *testing.T) {
	s := NewStore()
	if got := s.Snapshot().Position; got != strategy.Flat {
		t.Fatalf("expected FLAT initial position, got %s", got)
	}
}

func TestStoreKeepsRowTail(t *testing.T) {
	s := NewStore()
	rows := make([]series.Row, 25)
	for i := range rows {
		rows[i] = series.Row{Timestamp: int64(60 * (i + 1)), Spread: decimal.NewFromInt(int64(i))}
	}
	s.SetRows(rows, 10)

	kept := s.Snapshot().Rows
	if len(kept) != 10 {
		t.Fatalf("expected 10 retained rows, got %d", len(kept))
	}
	if kept[0].Timestamp != rows[15].Timestamp {
		t.Fatalf("expected tail of input, got first timestamp %d", kept[0].Timestamp)
	}
}

func TestStoreSnapshotRowsAreACopy(t *testing.T) {
	s := NewStore()
	s.SetRows([]series.Row{{Timestamp: 60}}, 10)

	snapshot := s.Snapshot()
	snapshot.Rows[0].Timestamp = 999

	if s.Snapshot().Rows[0].Timestamp != 60 {
		t.Fatalf("mutating a snapshot must not affect the store")
	}
}

func TestLegRefsSubmittedFlags(t *testing.T) {
	var legs LegRefs
	if legs.Long1Submitted() || legs.Short2Submitted() {
		t.Fatalf("zero refs must read as not submitted")
	}
	legs.Long1 = exchange.OrderRef{ID: "ex-1"}
	if !legs.Long1Submitted() || legs.Short2Submitted() {
		t.Fatalf("unexpected submitted flags: %+v", legs)
	}
}
