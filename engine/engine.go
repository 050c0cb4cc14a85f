// Package engine wires the signal source, the risk monitor, the
// portfolio manager, and the execution gateway into one serialized
// trading loop. Running everything on a single goroutine is the
// concurrency model here: check-then-record and create-then-fill are
// read-then-write sequences that must not interleave across signals.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mt5crs/riskcore/broker"
	"github.com/mt5crs/riskcore/market"
	"github.com/mt5crs/riskcore/monitoring"
	"github.com/mt5crs/riskcore/portfolio"
	"github.com/mt5crs/riskcore/risk"
)

// Config holds the per-run trading parameters.
type Config struct {
	Symbol      string
	OrderVolume float64
}

type Engine struct {
	cfg       Config
	monitor   *risk.Monitor
	portfolio *portfolio.Manager
	gateway   broker.Gateway
	ticks     *market.TickStore
	log       zerolog.Logger
}

func New(cfg Config, m *risk.Monitor, pf *portfolio.Manager, gw broker.Gateway, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		monitor:   m,
		portfolio: pf,
		gateway:   gw,
		ticks:     market.NewTickStore(),
		log:       log.With().Str("component", "engine").Logger(),
	}
}

// HandleTick stores the quote and re-marks the portfolio so daily PnL
// tracks the market between fills.
func (e *Engine) HandleTick(t market.Tick) {
	e.ticks.Set(t)
	e.portfolio.MarkPrice(t.Symbol, t.Mid())
	monitoring.SetDailyPnL(e.portfolio.DailyPnL())
}

// HandleSignal runs one signal through the full gate: risk checks,
// portfolio policy, then transmission. The returned order is nil when
// anything blocked it; rejection is normal operation, never an error.
func (e *Engine) HandleSignal(ctx context.Context, sig market.Signal) *portfolio.Order {
	approved := e.monitor.CheckSignal(sig)
	monitoring.SignalChecked(approved)
	if !approved {
		return nil
	}

	tick, err := e.ticks.Get(sig.Symbol)
	if err != nil {
		e.log.Warn().Str("symbol", sig.Symbol).Msg("signal approved but no market price yet")
		return nil
	}

	price := tick.Ask
	if sig.Direction == market.Sell {
		price = tick.Bid
	}

	o := e.portfolio.CreateOrder(sig, price, e.cfg.OrderVolume)
	if o == nil {
		return nil
	}
	monitoring.OrderCreated(o.Symbol, o.Action.String())

	if err := e.gateway.SendOrder(ctx, broker.OrderRequest{
		OrderID: o.ID,
		Symbol:  o.Symbol,
		Action:  o.Action,
		Volume:  o.RequestedVolume,
		Price:   o.RequestedPrice,
	}); err != nil {
		// The order never reached the broker: cancel it so the
		// pending entry cannot shadow future fills, and do not count
		// it against the rate limit.
		e.log.Error().Err(err).Str("order_id", o.ID).Msg("gateway send failed, canceling order")
		e.portfolio.CancelOrder(o.ID)
		return nil
	}

	// Exactly once per order actually submitted.
	e.monitor.RecordOrder()
	return o
}

// HandleFill feeds a gateway fill response into the portfolio.
func (e *Engine) HandleFill(fr broker.FillResponse) {
	if e.portfolio.OnFill(fr) {
		monitoring.FillProcessed(string(fr.Status))
	} else {
		monitoring.FillProcessed("unmatched")
	}
	monitoring.SetDailyPnL(e.portfolio.DailyPnL())
}

// Run drives the loop until ctx is canceled or the signal channel
// closes. Ticks, signals, and fills are all consumed here, on one
// goroutine, so no other serialization is needed.
func (e *Engine) Run(ctx context.Context, signals <-chan market.Signal, ticks <-chan market.Tick) error {
	for {
		st := e.monitor.CheckState()
		monitoring.SetKillSwitchActive(st.KillSwitch.Active)

		select {
		case <-ctx.Done():
			return ctx.Err()

		case t, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			e.HandleTick(t)

		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			e.HandleSignal(ctx, sig)

		case fr, ok := <-e.gateway.Fills():
			if !ok {
				return fmt.Errorf("gateway fill stream closed")
			}
			e.HandleFill(fr)
		}
	}
}
