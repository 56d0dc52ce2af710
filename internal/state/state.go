// Package state holds the reporting snapshot the engine publishes each
// cycle: current position, submitted leg refs, and the recent spread rows.
// Position state itself lives in the strategy's state machine and is only
// mirrored here; it is not persisted, so a restart starts flat (documented
// behavior, not a defect).
package state

import (
	"sync"
	"time"

	"statarb/internal/exchange"
	"statarb/internal/series"
	"statarb/internal/strategy"
)

// LegRefs records which legs of the paired position were submitted at
// open time. A zero ref means the leg was never opened and its close is
// skipped.
type LegRefs struct {
	Long1  exchange.OrderRef `json:"long_leg_1"`
	Short2 exchange.OrderRef `json:"short_leg_2"`
}

func (l LegRefs) Long1Submitted() bool  { return l.Long1.ID != "" }
func (l LegRefs) Short2Submitted() bool { return l.Short2.ID != "" }

type Snapshot struct {
	Position      strategy.Position `json:"position"`
	Legs          LegRefs           `json:"legs"`
	Rows          []series.Row      `json:"rows"`
	LastCycleTime time.Time         `json:"last_cycle_time"`
}

type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func NewStore() *Store {
	return &Store{snapshot: Snapshot{Position: strategy.Flat}}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot
	out.Rows = make([]series.Row, len(s.snapshot.Rows))
	copy(out.Rows, s.snapshot.Rows)
	return out
}

func (s *Store) SetPosition(p strategy.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Position = p
}

func (s *Store) Legs() LegRefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Legs
}

func (s *Store) SetLegs(legs LegRefs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Legs = legs
}

// SetRows keeps the tail of the computed spread rows for reporting.
func (s *Store) SetRows(rows []series.Row, keep int) {
	if len(rows) > keep {
		rows = rows[len(rows)-keep:]
	}
	copied := make([]series.Row, len(rows))
	copy(copied, rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Rows = copied
}

func (s *Store) SetLastCycleTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastCycleTime = t
}
