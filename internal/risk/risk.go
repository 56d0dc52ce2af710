// Package risk gates trade decisions between the state machine and the
// dispatcher.
package risk

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"statarb/internal/strategy"
)

// Context carries the per-cycle inputs the gate checks.
type Context struct {
	Notional    decimal.Decimal
	MaxNotional decimal.Decimal
	KillSwitch  bool
}

type Gate struct {
	log zerolog.Logger
}

func NewGate(log zerolog.Logger) Gate {
	return Gate{log: log}
}

// Evaluate approves or rejects a non-hold decision. Rejections leave the
// state machine untouched; the decision is re-proposed next cycle if the
// signal persists.
func (g Gate) Evaluate(d strategy.Decision, ctx Context) error {
	if d.Action == strategy.Hold {
		return nil
	}
	if ctx.KillSwitch {
		g.log.Info().Str("action", string(d.Action)).Msg("risk rejected: kill_switch_enabled")
		return fmt.Errorf("kill_switch_enabled")
	}
	if ctx.Notional.LessThanOrEqual(decimal.Zero) {
		g.log.Info().Str("action", string(d.Action)).Msg("risk rejected: invalid_notional")
		return fmt.Errorf("invalid_notional")
	}
	if ctx.Notional.GreaterThan(ctx.MaxNotional) {
		g.log.Info().
			Str("action", string(d.Action)).
			Str("notional", ctx.Notional.String()).
			Str("max", ctx.MaxNotional.String()).
			Msg("risk rejected: max_notional_exceeded")
		return fmt.Errorf("max_notional_exceeded")
	}
	return nil
}
