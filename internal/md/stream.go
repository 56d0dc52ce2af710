package md

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Feed streams closed klines for one trading pair into a bounded History.
// Ready reports whether enough candles have accumulated for the strategy
// to compute statistics.
type Feed struct {
	pair     string
	symbol   string
	interval string
	wsBase   string
	warmup   int
	history  *History
	log      zerolog.Logger
}

func NewFeed(wsBase, pair, interval string, maxRecords, warmup int, log zerolog.Logger) *Feed {
	return &Feed{
		pair:     pair,
		symbol:   strings.ToLower(strings.ReplaceAll(pair, "-", "")),
		interval: interval,
		wsBase:   strings.TrimSuffix(wsBase, "/"),
		warmup:   warmup,
		history:  NewHistory(maxRecords),
		log:      log,
	}
}

func (f *Feed) Pair() string { return f.pair }

func (f *Feed) Ready() bool { return f.history.Len() >= f.warmup }

func (f *Feed) History() []PricePoint { return f.history.Snapshot() }

type klineEnvelope struct {
	Stream string    `json:"stream"`
	Data   klineData `json:"data"`
}

type klineData struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     kline  `json:"k"`
}

type kline struct {
	OpenTime int64  `json:"t"`
	Interval string `json:"i"`
	Close    string `json:"c"`
	Closed   bool   `json:"x"`
}

// Run consumes the kline stream until the context is canceled,
// reconnecting with backoff on stream errors.
func (f *Feed) Run(ctx context.Context) error {
	url := fmt.Sprintf("%s/stream?streams=%s@kline_%s", f.wsBase, f.symbol, f.interval)
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consume(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Str("pair", f.pair).Msg("kline stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consume(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("pair", f.pair).Str("interval", f.interval).Msg("connected kline stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Str("pair", f.pair).Msg("kline ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env klineEnvelope
		if err := sonic.Unmarshal(message, &env); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode kline message")
			continue
		}
		if env.Data.EventType != "kline" || !env.Data.Kline.Closed {
			continue
		}
		closePrice, err := decimal.NewFromString(env.Data.Kline.Close)
		if err != nil {
			f.log.Warn().Err(err).Str("pair", f.pair).Msg("invalid close price in kline")
			continue
		}
		f.history.Append(PricePoint{
			Timestamp: env.Data.Kline.OpenTime / 1000,
			Close:     closePrice,
		})
	}
}
