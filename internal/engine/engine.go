// Package engine runs the evaluation cycle: align the two feeds, compute
// the spread z-score, let the state machine decide, gate, dispatch, and
// only then commit the transition.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"statarb/internal/config"
	"statarb/internal/md"
	"statarb/internal/metrics"
	"statarb/internal/risk"
	"statarb/internal/series"
	"statarb/internal/state"
	"statarb/internal/strategy"
)

// Feed is the market-data collaborator for one leg.
type Feed interface {
	Pair() string
	Ready() bool
	History() []md.PricePoint
}

type Engine struct {
	cfg        config.Config
	feed1      Feed
	feed2      Feed
	machine    *strategy.PairStateMachine
	gate       risk.Gate
	dispatcher *Dispatcher
	store      *state.Store
	decisions  *DecisionLogger
	log        zerolog.Logger
}

func New(cfg config.Config, feed1, feed2 Feed, machine *strategy.PairStateMachine, gate risk.Gate, dispatcher *Dispatcher, store *state.Store, decisions *DecisionLogger, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		feed1:      feed1,
		feed2:      feed2,
		machine:    machine,
		gate:       gate,
		dispatcher: dispatcher,
		store:      store,
		decisions:  decisions,
		log:        log,
	}
}

// Run evaluates on a fixed tick until the context is canceled. Cycles
// never overlap: each one finishes before the next tick is consumed.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.EvalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle performs one full evaluation. All recoverable conditions
// degrade to "do nothing this cycle".
func (e *Engine) RunCycle(ctx context.Context) {
	metrics.CyclesTotal.Inc()
	e.store.SetLastCycleTime(time.Now().UTC())

	if !e.feed1.Ready() || !e.feed2.Ready() {
		metrics.SkippedCyclesTotal.WithLabelValues("feeds_not_ready").Inc()
		return
	}

	aligned := series.Align(e.feed1.History(), e.feed2.History())
	rows, err := series.Compute(aligned, e.cfg.HedgeRatio, e.cfg.SpreadLength, e.cfg.ZScoreLength)
	if err != nil {
		if errors.Is(err, series.ErrNotReady) {
			metrics.SkippedCyclesTotal.WithLabelValues("history_warmup").Inc()
			e.log.Debug().Int("aligned", len(aligned)).Int("required", e.cfg.SpreadLength).Msg("not enough aligned history")
			return
		}
		metrics.SkippedCyclesTotal.WithLabelValues("compute_error").Inc()
		e.log.Error().Err(err).Msg("spread computation failed")
		return
	}

	last := rows[len(rows)-1]
	e.store.SetRows(rows, e.cfg.ReportRows)
	if last.HasZ {
		metrics.ZScore.Set(last.Z)
	}

	decision := e.machine.Evaluate(strategy.Snapshot{Z: last.Z, HasZ: last.HasZ})
	metrics.DecisionsTotal.WithLabelValues(string(decision.Action)).Inc()

	record := Record{
		Timestamp:  time.Now().UTC(),
		CandleTime: last.Timestamp,
		ZScore:     last.Z,
		HasZ:       last.HasZ,
		Position:   decision.From,
		Action:     decision.Action,
		Reason:     decision.Reason,
	}

	if decision.Action == strategy.Hold {
		record.Result = "hold"
		e.decisions.Append(record)
		return
	}

	riskCtx := risk.Context{
		Notional:    e.cfg.OrderNotional,
		MaxNotional: e.cfg.MaxLegNotional,
		KillSwitch:  e.cfg.KillSwitch,
	}
	if err := e.gate.Evaluate(decision, riskCtx); err != nil {
		record.Result = "rejected"
		record.RejectReason = err.Error()
		e.decisions.Append(record)
		return
	}

	legs, err := e.dispatcher.Dispatch(ctx, decision.Action, e.store.Legs())
	if err != nil {
		// No orders went out, so the transition is deferred rather than
		// committed; the signal is re-evaluated next cycle.
		record.Result = "deferred"
		record.RejectReason = err.Error()
		e.decisions.Append(record)
		e.log.Warn().Err(err).Str("action", string(decision.Action)).Msg("dispatch skipped, transition deferred")
		return
	}

	e.machine.Commit(decision)
	e.store.SetPosition(e.machine.Position())
	e.store.SetLegs(legs)

	record.Result = "committed"
	record.Long1OrderID = legs.Long1.ID
	record.Short2OrderID = legs.Short2.ID
	e.decisions.Append(record)

	e.log.Info().
		Str("action", string(decision.Action)).
		Str("reason", decision.Reason).
		Float64("z_score", last.Z).
		Str("position", string(e.machine.Position())).
		Msg("transition committed")
}
