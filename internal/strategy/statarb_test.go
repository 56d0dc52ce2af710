package strategy

import "testing"

func newMachine(t *testing.T) *PairStateMachine {
	t.Helper()
	m, err := NewPairStateMachine(1, 0, 3)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return m
}

func z(v float64) Snapshot { return Snapshot{Z: v, HasZ: true} }

func TestNewPairStateMachineRejectsBadThresholds(t *testing.T) {
	if _, err := NewPairStateMachine(1, 1, 3); err == nil {
		t.Fatalf("expected error for exit >= entry")
	}
	if _, err := NewPairStateMachine(3, 0, 3); err == nil {
		t.Fatalf("expected error for entry >= stop-loss")
	}
}

func TestEvaluateOpensInsideEntryBand(t *testing.T) {
	m := newMachine(t)
	d := m.Evaluate(z(1.5))
	if d.Action != OpenLong1Short2 || d.From != Flat || d.To != Open {
		t.Fatalf("expected open transition, got %+v", d)
	}
	if m.Position() != Flat {
		t.Fatalf("Evaluate must not mutate state before Commit")
	}
	m.Commit(d)
	if m.Position() != Open {
		t.Fatalf("expected OPEN after commit, got %s", m.Position())
	}
}

func TestEvaluateEntryBoundariesAreStrict(t *testing.T) {
	m := newMachine(t)
	if d := m.Evaluate(z(1)); d.Action != Hold {
		t.Fatalf("z equal to entry threshold must not open, got %s", d.Action)
	}
	if d := m.Evaluate(z(3)); d.Action != Hold {
		t.Fatalf("z equal to stop-loss threshold must not open, got %s", d.Action)
	}
	if d := m.Evaluate(z(3.5)); d.Action != Hold {
		t.Fatalf("z beyond stop-loss must not open, got %s", d.Action)
	}
}

func TestEvaluateClosesOnMeanReversion(t *testing.T) {
	m := newMachine(t)
	m.Commit(m.Evaluate(z(1.5)))

	if d := m.Evaluate(z(0.5)); d.Action != Hold {
		t.Fatalf("z between exit and entry should hold, got %s", d.Action)
	}

	d := m.Evaluate(z(-0.5))
	if d.Action != CloseBoth || d.To != Flat {
		t.Fatalf("expected close below exit threshold, got %+v", d)
	}
	m.Commit(d)
	if m.Position() != Flat {
		t.Fatalf("expected FLAT after close commit, got %s", m.Position())
	}
}

// Pins the observed close condition: while open, a z-score above the
// entry threshold closes the position even though the spread has diverged
// further rather than reverted. Do not "fix" without a product decision.
func TestEvaluateClosesOnRecrossAboveEntry(t *testing.T) {
	m := newMachine(t)
	m.Commit(m.Evaluate(z(1.5)))

	d := m.Evaluate(z(2.0))
	if d.Action != CloseBoth {
		t.Fatalf("expected close for z above entry while open, got %s", d.Action)
	}
	if d.Reason != "above_entry_while_open" {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestEvaluateNoSignalHoldsInEitherState(t *testing.T) {
	m := newMachine(t)
	if d := m.Evaluate(Snapshot{}); d.Action != Hold || d.Reason != "no_signal" {
		t.Fatalf("expected no-signal hold while flat, got %+v", d)
	}

	m.Commit(m.Evaluate(z(1.5)))
	if d := m.Evaluate(Snapshot{}); d.Action != Hold {
		t.Fatalf("expected no-signal hold while open, got %+v", d)
	}
	if m.Position() != Open {
		t.Fatalf("no-signal cycle must not change state")
	}
}

func TestCommitIgnoresHolds(t *testing.T) {
	m := newMachine(t)
	m.Commit(Decision{Action: Hold, From: Flat, To: Flat})
	if m.Position() != Flat {
		t.Fatalf("hold commit must not move state")
	}
}
