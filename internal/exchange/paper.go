package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Paper accepts every order without touching the venue. It hands out
// sequential refs so the dispatcher's open/close bookkeeping behaves
// exactly as in live mode.
type Paper struct {
	mu     sync.Mutex
	seq    int
	orders map[string]OrderRequest
	log    zerolog.Logger
}

func NewPaper(log zerolog.Logger) *Paper {
	return &Paper{orders: make(map[string]OrderRequest), log: log}
}

func (p *Paper) SubmitOrder(_ context.Context, req OrderRequest) (OrderRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	id := fmt.Sprintf("paper-%d", p.seq)
	p.orders[id] = req

	p.log.Info().
		Str("pair", req.Pair).
		Str("side", string(req.Side)).
		Str("action", string(req.Action)).
		Str("amount", req.Amount.String()).
		Str("ref_price", req.ReferencePrice.String()).
		Str("order_id", id).
		Msg("paper order accepted")

	return OrderRef{ID: id, ClientOrderID: req.ClientOrderID, Status: "accepted"}, nil
}

// Submitted returns how many orders the paper book has accepted.
func (p *Paper) Submitted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.orders)
}
