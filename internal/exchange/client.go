package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Client talks to the venue's futures REST API. Order endpoints are
// HMAC-SHA256 signed; price endpoints are public.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	log       zerolog.Logger
}

func New(baseURL, apiKey, apiSecret string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

// Symbol maps a "BASE-QUOTE" pair to the venue's concatenated symbol.
func Symbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "-", ""))
}

type orderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Status        string `json:"status"`
}

// SubmitOrder places a single leg. Close legs are sent reduce-only so the
// venue treats them as position-reducing regardless of the original open
// order. The reference price is informational for market-style orders and
// becomes the limit price otherwise.
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (OrderRef, error) {
	params := url.Values{}
	params.Set("symbol", Symbol(req.Pair))
	params.Set("side", string(req.Side))
	params.Set("type", string(req.Style))
	params.Set("quantity", req.Amount.String())
	if req.ClientOrderID != "" {
		params.Set("newClientOrderId", req.ClientOrderID)
	}
	if req.Style == Limit {
		params.Set("price", req.ReferencePrice.String())
		params.Set("timeInForce", "GTC")
	}
	if req.Action == ActionClose {
		params.Set("reduceOnly", "true")
	}
	params.Set("timestamp", fmt.Sprintf("%d", time.Now().UnixMilli()))

	query := params.Encode()
	query += "&signature=" + c.sign(query)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fapi/v1/order?"+query, nil)
	if err != nil {
		return OrderRef{}, fmt.Errorf("submit order request: %w", err)
	}
	httpReq.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return OrderRef{}, fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OrderRef{}, fmt.Errorf("submit order read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return OrderRef{}, fmt.Errorf("submit order rejected: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed orderResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return OrderRef{}, fmt.Errorf("submit order decode: %w", err)
	}

	c.log.Info().
		Str("pair", req.Pair).
		Str("side", string(req.Side)).
		Str("action", string(req.Action)).
		Str("amount", req.Amount.String()).
		Int64("order_id", parsed.OrderID).
		Str("status", parsed.Status).
		Msg("order submitted")

	return OrderRef{
		ID:            fmt.Sprintf("%d", parsed.OrderID),
		ClientOrderID: parsed.ClientOrderID,
		Status:        parsed.Status,
	}, nil
}

type bookTicker struct {
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// MidPrice returns the current bid/ask midpoint, or ok=false when the
// venue is unreachable or returns garbage. Callers skip the cycle on
// ok=false rather than treating it as an error.
func (c *Client) MidPrice(ctx context.Context, pair string) (decimal.Decimal, bool) {
	var ticker bookTicker
	if err := c.getPublic(ctx, "/fapi/v1/ticker/bookTicker", pair, &ticker); err != nil {
		c.log.Warn().Err(err).Str("pair", pair).Msg("mid price lookup failed")
		return decimal.Decimal{}, false
	}
	bid, err := decimal.NewFromString(ticker.BidPrice)
	if err != nil {
		return decimal.Decimal{}, false
	}
	ask, err := decimal.NewFromString(ticker.AskPrice)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if bid.IsZero() && ask.IsZero() {
		return decimal.Decimal{}, false
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), true
}

type premiumIndex struct {
	MarkPrice string `json:"markPrice"`
}

// ConversionRate returns the quote-per-base rate used to size a USD
// notional, taken from the venue's mark price.
func (c *Client) ConversionRate(ctx context.Context, pair string) (decimal.Decimal, bool) {
	var index premiumIndex
	if err := c.getPublic(ctx, "/fapi/v1/premiumIndex", pair, &index); err != nil {
		c.log.Warn().Err(err).Str("pair", pair).Msg("conversion rate lookup failed")
		return decimal.Decimal{}, false
	}
	rate, err := decimal.NewFromString(index.MarkPrice)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, false
	}
	return rate, true
}

func (c *Client) getPublic(ctx context.Context, path, pair string, out interface{}) error {
	endpoint := fmt.Sprintf("%s%s?symbol=%s", c.baseURL, path, Symbol(pair))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return sonic.Unmarshal(body, out)
}

func (c *Client) sign(query string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}
