package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"statarb/internal/config"
	"statarb/internal/engine"
	"statarb/internal/exchange"
	"statarb/internal/logging"
	"statarb/internal/md"
	"statarb/internal/metrics"
	"statarb/internal/risk"
	"statarb/internal/state"
	"statarb/internal/strategy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	machine, err := strategy.NewPairStateMachine(cfg.EntryThreshold, cfg.ExitThreshold, cfg.SLThreshold)
	if err != nil {
		log.Fatalf("threshold configuration error: %v", err)
	}

	runID := generateRunID()
	decisions, err := engine.NewDecisionLogger(cfg.DecisionsPath, runID)
	if err != nil {
		log.Fatalf("decision journal error: %v", err)
	}
	defer func() {
		if err := decisions.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close decision journal")
		}
	}()

	client := exchange.New(cfg.RESTBaseURL, cfg.APIKey, cfg.APISecret, logger)
	var execution engine.Execution = client
	if cfg.Mode == config.ModePaper {
		execution = exchange.NewPaper(logger)
	}

	store := state.NewStore()
	gate := risk.NewGate(logger)
	dispatcher := engine.NewDispatcher(client, execution, cfg.Pair1, cfg.Pair2, cfg.OrderNotional, cfg.PriceOffset, runID, logger)

	feed1 := md.NewFeed(cfg.WSBaseURL, cfg.Pair1, cfg.CandleInterval, cfg.MaxRecords, cfg.SpreadLength, logger)
	feed2 := md.NewFeed(cfg.WSBaseURL, cfg.Pair2, cfg.CandleInterval, cfg.MaxRecords, cfg.SpreadLength, logger)

	engineImpl := engine.New(cfg, feed1, feed2, machine, gate, dispatcher, store, decisions, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	srv := metrics.Serve(cfg.MetricsAddr, statusHandler(store))
	defer srv.Close()

	go func() {
		if err := feed1.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Str("pair", cfg.Pair1).Msg("feed stopped")
		}
	}()
	go func() {
		if err := feed2.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Str("pair", cfg.Pair2).Msg("feed stopped")
		}
	}()

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("exchange", cfg.Exchange).
		Str("pair_1", cfg.Pair1).
		Str("pair_2", cfg.Pair2).
		Msg("starting pairs strategy")

	if err := engineImpl.Run(ctx); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("engine stopped")
	}

	logger.Info().Msg("shutdown complete")
}

func statusHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		payload, err := sonic.Marshal(store.Snapshot())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}
}

func generateRunID() string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return timestamp
	}
	return timestamp + "-" + hex.EncodeToString(randomBytes)
}
