package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validConfig() Config {
	return Config{
		Exchange:       "binance_perpetual_testnet",
		Pair1:          "ETH-USDT",
		Pair2:          "BTC-USDT",
		CandleInterval: "1m",
		MaxRecords:     300,
		HedgeRatio:     decimal.RequireFromString("0.3"),
		SpreadLength:   250,
		ZScoreLength:   200,
		EntryThreshold: 1,
		ExitThreshold:  0,
		SLThreshold:    3,
		OrderNotional:  decimal.NewFromInt(200),
		PriceOffset:    decimal.RequireFromString("0.01"),
		MaxLegNotional: decimal.NewFromInt(1000),
		Mode:           ModePaper,
		EvalInterval:   time.Second,
		ReportRows:     10,
		MetricsAddr:    ":9090",
		DecisionsPath:  "decisions.ndjson",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "backtest" }},
		{"same pairs", func(c *Config) { c.Pair2 = c.Pair1 }},
		{"zscore too small", func(c *Config) { c.ZScoreLength = 1 }},
		{"spread below zscore", func(c *Config) { c.SpreadLength = c.ZScoreLength - 1 }},
		{"max records below spread", func(c *Config) { c.MaxRecords = c.SpreadLength - 1 }},
		{"zero notional", func(c *Config) { c.OrderNotional = decimal.Zero }},
		{"offset out of range", func(c *Config) { c.PriceOffset = decimal.NewFromInt(1) }},
		{"negative offset", func(c *Config) { c.PriceOffset = decimal.RequireFromString("-0.01") }},
		{"zero leg cap", func(c *Config) { c.MaxLegNotional = decimal.Zero }},
		{"zero interval", func(c *Config) { c.EvalInterval = 0 }},
		{"zero report rows", func(c *Config) { c.ReportRows = 0 }},
		{"live without credentials", func(c *Config) { c.Mode = ModeLive }},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateAllowsLiveWithCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeLive
	cfg.APIKey = "key"
	cfg.APISecret = "secret"
	if err := validate(cfg); err != nil {
		t.Fatalf("expected valid live config, got %v", err)
	}
}
