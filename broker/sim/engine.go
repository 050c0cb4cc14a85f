// Package sim is an in-process paper gateway. It fills orders at the
// current bid/ask without slippage, which is enough to exercise the
// full signal-to-fill path in the run command and in tests.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mt5crs/riskcore/broker"
	"github.com/mt5crs/riskcore/market"
)

const fillBuffer = 64

type Engine struct {
	mu         sync.Mutex
	ticks      *market.TickStore
	fills      chan broker.FillResponse
	nextTicket int
	closed     bool
	log        zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		ticks: market.NewTickStore(),
		fills: make(chan broker.FillResponse, fillBuffer),
		log:   log.With().Str("component", "sim_gateway").Logger(),
	}
}

// Ticks exposes the price store so the feed can push quotes.
func (e *Engine) Ticks() *market.TickStore { return e.ticks }

// SendOrder fills immediately: buys at ask, sells at bid. An order for
// a symbol with no known price is rejected, mirroring a broker with no
// market for the instrument.
func (e *Engine) SendOrder(ctx context.Context, req broker.OrderRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("sim gateway closed")
	}

	tick, err := e.ticks.Get(req.Symbol)
	if err != nil {
		e.log.Warn().Str("order_id", req.OrderID).Str("symbol", req.Symbol).
			Msg("rejecting order, no market price")
		e.push(broker.FillResponse{OrderID: req.OrderID, Status: broker.FillRejected})
		return nil
	}

	price := tick.Ask
	if req.Action == market.Sell {
		price = tick.Bid
	}

	e.nextTicket++
	e.push(broker.FillResponse{
		OrderID:      req.OrderID,
		BrokerTicket: fmt.Sprintf("SIM-%06d", e.nextTicket),
		FilledPrice:  price,
		FilledVolume: req.Volume,
		Status:       broker.FillFilled,
	})
	return nil
}

func (e *Engine) push(fr broker.FillResponse) {
	select {
	case e.fills <- fr:
	default:
		e.log.Error().Str("order_id", fr.OrderID).Msg("fill channel full, dropping response")
	}
}

func (e *Engine) Fills() <-chan broker.FillResponse { return e.fills }

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	close(e.fills)
	return nil
}
