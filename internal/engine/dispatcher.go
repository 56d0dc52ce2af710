package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"statarb/internal/exchange"
	"statarb/internal/metrics"
	"statarb/internal/state"
	"statarb/internal/strategy"
)

// ErrMissingMarketData is returned when a conversion rate or mid price is
// unavailable. No orders are submitted and the caller must not commit the
// state transition; the cycle is retried on the next tick.
var ErrMissingMarketData = errors.New("required market data unavailable")

// RateSource supplies the sizing inputs. ok=false means the value is
// unavailable this cycle, never zero.
type RateSource interface {
	MidPrice(ctx context.Context, pair string) (decimal.Decimal, bool)
	ConversionRate(ctx context.Context, pair string) (decimal.Decimal, bool)
}

// Execution submits one order leg and returns its opaque reference.
type Execution interface {
	SubmitOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderRef, error)
}

// Dispatcher turns a committed-to-be decision into concrete order legs:
// fixed USD notional divided by the conversion rate per leg, priced at
// mid scaled by the configured offset on both legs.
type Dispatcher struct {
	rates    RateSource
	ex       Execution
	pair1    string
	pair2    string
	notional decimal.Decimal
	offset   decimal.Decimal
	runID    string
	seq      uint64
	log      zerolog.Logger
}

func NewDispatcher(rates RateSource, ex Execution, pair1, pair2 string, notional, offset decimal.Decimal, runID string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		rates:    rates,
		ex:       ex,
		pair1:    pair1,
		pair2:    pair2,
		notional: notional,
		offset:   offset,
		runID:    runID,
		log:      log,
	}
}

type sizing struct {
	amount1, amount2 decimal.Decimal
	price1, price2   decimal.Decimal
}

func (d *Dispatcher) size(ctx context.Context) (sizing, error) {
	rate1, ok := d.rates.ConversionRate(ctx, d.pair1)
	if !ok {
		return sizing{}, fmt.Errorf("%w: conversion rate %s", ErrMissingMarketData, d.pair1)
	}
	rate2, ok := d.rates.ConversionRate(ctx, d.pair2)
	if !ok {
		return sizing{}, fmt.Errorf("%w: conversion rate %s", ErrMissingMarketData, d.pair2)
	}
	mid1, ok := d.rates.MidPrice(ctx, d.pair1)
	if !ok {
		return sizing{}, fmt.Errorf("%w: mid price %s", ErrMissingMarketData, d.pair1)
	}
	mid2, ok := d.rates.MidPrice(ctx, d.pair2)
	if !ok {
		return sizing{}, fmt.Errorf("%w: mid price %s", ErrMissingMarketData, d.pair2)
	}

	scale := decimal.NewFromInt(1).Sub(d.offset)
	return sizing{
		amount1: d.notional.DivRound(rate1, 6),
		amount2: d.notional.DivRound(rate2, 6),
		price1:  mid1.Mul(scale),
		price2:  mid2.Mul(scale),
	}, nil
}

// Dispatch submits the legs for a non-hold decision and returns the leg
// refs to record. Leg submissions are independent: a rejected leg is
// logged and left unfilled in the result, but still counts as a dispatch
// attempt (leg reconciliation is a collaborator's job, not retried here).
func (d *Dispatcher) Dispatch(ctx context.Context, action strategy.Action, open state.LegRefs) (state.LegRefs, error) {
	szg, err := d.size(ctx)
	if err != nil {
		return open, err
	}

	switch action {
	case strategy.OpenLong1Short2:
		var legs state.LegRefs
		legs.Long1 = d.submit(ctx, d.pair1, exchange.Buy, szg.amount1, szg.price1, exchange.ActionOpen)
		legs.Short2 = d.submit(ctx, d.pair2, exchange.Sell, szg.amount2, szg.price2, exchange.ActionOpen)
		return legs, nil

	case strategy.CloseBoth:
		// Only legs that were actually opened get a close; the ref is
		// used solely to decide whether to submit, not to target it.
		if open.Long1Submitted() {
			d.submit(ctx, d.pair1, exchange.Buy, szg.amount1, szg.price1, exchange.ActionClose)
		}
		if open.Short2Submitted() {
			d.submit(ctx, d.pair2, exchange.Sell, szg.amount2, szg.price2, exchange.ActionClose)
		}
		return state.LegRefs{}, nil

	default:
		return open, fmt.Errorf("undispatchable action: %s", action)
	}
}

func (d *Dispatcher) submit(ctx context.Context, pair string, side exchange.Side, amount, price decimal.Decimal, action exchange.PositionAction) exchange.OrderRef {
	ref, err := d.ex.SubmitOrder(ctx, exchange.OrderRequest{
		Pair:           pair,
		Side:           side,
		Amount:         amount,
		Style:          exchange.Market,
		ReferencePrice: price,
		Action:         action,
		ClientOrderID:  d.nextClientOrderID(),
	})
	if err != nil {
		d.log.Error().Err(err).
			Str("pair", pair).
			Str("side", string(side)).
			Str("action", string(action)).
			Msg("leg submission failed")
		return exchange.OrderRef{}
	}
	metrics.OrdersTotal.WithLabelValues(pair, string(side)).Inc()
	return ref
}

func (d *Dispatcher) nextClientOrderID() string {
	seq := atomic.AddUint64(&d.seq, 1)
	return fmt.Sprintf("%s-%d", d.runID, seq)
}
