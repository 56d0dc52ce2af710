package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModePaper Mode = "paper"
	ModeLive  Mode = "live"
)

type Config struct {
	Exchange       string
	Pair1          string
	Pair2          string
	CandleInterval string
	MaxRecords     int

	HedgeRatio   decimal.Decimal
	SpreadLength int
	ZScoreLength int

	EntryThreshold float64
	ExitThreshold  float64
	SLThreshold    float64

	OrderNotional  decimal.Decimal
	PriceOffset    decimal.Decimal
	MaxLegNotional decimal.Decimal
	KillSwitch     bool

	Mode          Mode
	EvalInterval  time.Duration
	ReportRows    int
	MetricsAddr   string
	DecisionsPath string
	LogLevel      string

	RESTBaseURL string
	WSBaseURL   string
	APIKey      string
	APISecret   string
}

func Load() (Config, error) {
	var cfg Config
	var mode string
	var hedgeRatio, orderNotional, priceOffset, maxLegNotional float64

	_ = godotenv.Load()

	flag.StringVar(&cfg.Exchange, "exchange", "binance_perpetual_testnet", "execution venue: binance_perpetual or binance_perpetual_testnet")
	flag.StringVar(&cfg.Pair1, "pair-1", "ETH-USDT", "leg 1 trading pair (bought on open)")
	flag.StringVar(&cfg.Pair2, "pair-2", "BTC-USDT", "leg 2 trading pair (sold on open)")
	flag.StringVar(&cfg.CandleInterval, "candle-interval", "1m", "candle interval for both feeds")
	flag.IntVar(&cfg.MaxRecords, "max-records", 300, "candles retained per feed")
	flag.Float64Var(&hedgeRatio, "hedge-ratio", 0.3, "fixed hedge ratio applied to leg 2")
	flag.IntVar(&cfg.ZScoreLength, "zscore-length", 200, "rolling window for spread mean/std")
	flag.IntVar(&cfg.SpreadLength, "spread-length", 250, "minimum aligned history before computing")
	flag.Float64Var(&cfg.EntryThreshold, "entry-threshold", 1, "z-score above which to open")
	flag.Float64Var(&cfg.ExitThreshold, "exit-threshold", 0, "z-score below which to close")
	flag.Float64Var(&cfg.SLThreshold, "sl-threshold", 3, "z-score beyond which entries are refused")
	flag.Float64Var(&orderNotional, "order-notional", 200, "USD notional per leg")
	flag.Float64Var(&priceOffset, "price-offset", 0.01, "fraction applied to mid for reference prices")
	flag.Float64Var(&maxLegNotional, "max-leg-notional", 1000, "hard cap on per-leg notional")
	flag.BoolVar(&cfg.KillSwitch, "kill-switch", false, "if true, never place orders")
	flag.StringVar(&mode, "mode", string(ModePaper), "run mode: paper or live")
	flag.DurationVar(&cfg.EvalInterval, "eval-interval", time.Second, "evaluation cycle interval")
	flag.IntVar(&cfg.ReportRows, "report-rows", 10, "spread rows retained for the status report")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", ":9090", "metrics/status listen address")
	flag.StringVar(&cfg.DecisionsPath, "decisions-path", "decisions.ndjson", "path to decision journal")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level")
	flag.Parse()

	cfg.Mode = Mode(mode)
	cfg.HedgeRatio = decimal.NewFromFloat(hedgeRatio)
	cfg.OrderNotional = decimal.NewFromFloat(orderNotional)
	cfg.PriceOffset = decimal.NewFromFloat(priceOffset)
	cfg.MaxLegNotional = decimal.NewFromFloat(maxLegNotional)
	cfg.APIKey = os.Getenv("BINANCE_API_KEY")
	cfg.APISecret = os.Getenv("BINANCE_API_SECRET")

	if strings.Contains(cfg.Exchange, "testnet") {
		cfg.RESTBaseURL = "https://testnet.binancefuture.com"
		cfg.WSBaseURL = "wss://stream.binancefuture.com"
	} else {
		cfg.RESTBaseURL = "https://fapi.binance.com"
		cfg.WSBaseURL = "wss://fstream.binance.com"
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate covers everything except the threshold ordering, which the
// state machine constructor enforces itself.
func validate(cfg Config) error {
	if cfg.Mode != ModePaper && cfg.Mode != ModeLive {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}
	if cfg.Mode == ModeLive && (cfg.APIKey == "" || cfg.APISecret == "") {
		return fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET are required in live mode")
	}
	if cfg.Pair1 == "" || cfg.Pair2 == "" {
		return fmt.Errorf("both trading pairs are required")
	}
	if cfg.Pair1 == cfg.Pair2 {
		return fmt.Errorf("pair-1 and pair-2 must differ")
	}
	if cfg.ZScoreLength <= 1 {
		return fmt.Errorf("zscore-length must be > 1")
	}
	if cfg.SpreadLength < cfg.ZScoreLength {
		return fmt.Errorf("spread-length must be >= zscore-length")
	}
	if cfg.MaxRecords < cfg.SpreadLength {
		return fmt.Errorf("max-records must be >= spread-length")
	}
	if cfg.OrderNotional.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("order-notional must be > 0")
	}
	if cfg.PriceOffset.IsNegative() || cfg.PriceOffset.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("price-offset must be in [0, 1)")
	}
	if cfg.MaxLegNotional.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("max-leg-notional must be > 0")
	}
	if cfg.EvalInterval <= 0 {
		return fmt.Errorf("eval-interval must be > 0")
	}
	if cfg.ReportRows <= 0 {
		return fmt.Errorf("report-rows must be > 0")
	}
	return nil
}
