package strategy

import "fmt"

// PairStateMachine drives the FLAT/OPEN cycle for one pair of legs.
//
// Entry opens only inside the strict band entry < z < sl: beyond the
// stop-loss threshold the divergence is treated as already extreme and no
// new position is taken. While open, the position closes when z reverts
// below the exit threshold or sits above the entry threshold again; the
// union is deliberate and pinned by tests.
type PairStateMachine struct {
	entry float64
	exit  float64
	sl    float64
	pos   Position
}

// NewPairStateMachine validates the threshold ordering exit < entry < sl.
// A violation is a configuration error and must prevent startup.
func NewPairStateMachine(entry, exit, sl float64) (*PairStateMachine, error) {
	if exit >= entry {
		return nil, fmt.Errorf("exit threshold %v must be below entry threshold %v", exit, entry)
	}
	if entry >= sl {
		return nil, fmt.Errorf("entry threshold %v must be below stop-loss threshold %v", entry, sl)
	}
	return &PairStateMachine{entry: entry, exit: exit, sl: sl, pos: Flat}, nil
}

func (m *PairStateMachine) Position() Position { return m.pos }

// Evaluate proposes a decision for the current cycle without mutating
// state. Rules in priority order: no z-score -> hold; flat and z strictly
// inside (entry, sl) -> open; open and (z < exit or z > entry) -> close;
// otherwise hold.
func (m *PairStateMachine) Evaluate(s Snapshot) Decision {
	if !s.HasZ {
		return Decision{Action: Hold, From: m.pos, To: m.pos, Reason: "no_signal"}
	}

	if m.pos == Flat {
		if s.Z > m.entry && s.Z < m.sl {
			return Decision{Action: OpenLong1Short2, From: Flat, To: Open, Reason: "entry_band"}
		}
		return Decision{Action: Hold, From: Flat, To: Flat, Reason: "outside_entry_band"}
	}

	if s.Z < m.exit {
		return Decision{Action: CloseBoth, From: Open, To: Flat, Reason: "reverted_below_exit"}
	}
	if s.Z > m.entry {
		return Decision{Action: CloseBoth, From: Open, To: Flat, Reason: "above_entry_while_open"}
	}
	return Decision{Action: Hold, From: Open, To: Open, Reason: "holding"}
}

// Commit applies a previously proposed transition. The engine calls it
// only after a dispatch attempt, so state never moves without matching
// orders having been attempted.
func (m *PairStateMachine) Commit(d Decision) {
	if d.Action == Hold {
		return
	}
	m.pos = d.To
}
