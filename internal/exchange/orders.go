// Package exchange connects to the perpetual-futures venue: signed order
// submission plus the public mid-price and conversion-rate lookups, and a
// paper executor for dry runs.
package exchange

import "github.com/shopspring/decimal"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderStyle string

const (
	Market OrderStyle = "MARKET"
	Limit  OrderStyle = "LIMIT"
)

// PositionAction distinguishes opening a leg from reducing it. Close must
// work without the original open order being resolvable.
type PositionAction string

const (
	ActionOpen  PositionAction = "OPEN"
	ActionClose PositionAction = "CLOSE"
)

type OrderRequest struct {
	Pair           string
	Side           Side
	Amount         decimal.Decimal
	Style          OrderStyle
	ReferencePrice decimal.Decimal
	Action         PositionAction
	ClientOrderID  string
}

// OrderRef is the opaque submission receipt. It records that a leg was
// submitted; fill status is never polled here.
type OrderRef struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Status        string `json:"status"`
}
