package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"statarb/internal/strategy"
)

func openDecision() strategy.Decision {
	return strategy.Decision{
		Action: strategy.OpenLong1Short2,
		From:   strategy.Flat,
		To:     strategy.Open,
		Reason: "entry_band",
	}
}

func TestGateAllowsHoldsUnconditionally(t *testing.T) {
	g := NewGate(zerolog.Nop())
	ctx := Context{KillSwitch: true}
	d := strategy.Decision{Action: strategy.Hold, From: strategy.Flat, To: strategy.Flat}
	if err := g.Evaluate(d, ctx); err != nil {
		t.Fatalf("holds must pass even with the kill switch on, got %v", err)
	}
}

func TestGateRejectsKillSwitch(t *testing.T) {
	g := NewGate(zerolog.Nop())
	ctx := Context{
		Notional:    decimal.NewFromInt(200),
		MaxNotional: decimal.NewFromInt(1000),
		KillSwitch:  true,
	}
	if err := g.Evaluate(openDecision(), ctx); err == nil {
		t.Fatalf("expected kill switch rejection")
	}
}

func TestGateRejectsBadNotional(t *testing.T) {
	g := NewGate(zerolog.Nop())

	ctx := Context{Notional: decimal.Zero, MaxNotional: decimal.NewFromInt(1000)}
	if err := g.Evaluate(openDecision(), ctx); err == nil {
		t.Fatalf("expected rejection for zero notional")
	}

	ctx = Context{Notional: decimal.NewFromInt(5000), MaxNotional: decimal.NewFromInt(1000)}
	if err := g.Evaluate(openDecision(), ctx); err == nil {
		t.Fatalf("expected rejection above max notional")
	}
}

func TestGateApprovesInBoundsOrder(t *testing.T) {
	g := NewGate(zerolog.Nop())
	ctx := Context{
		Notional:    decimal.NewFromInt(200),
		MaxNotional: decimal.NewFromInt(1000),
	}
	if err := g.Evaluate(openDecision(), ctx); err != nil {
		t.Fatalf("expected approval, got %v", err)
	}
}
