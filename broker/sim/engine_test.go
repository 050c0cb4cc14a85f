package sim

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mt5crs/riskcore/broker"
	"github.com/mt5crs/riskcore/market"
)

func TestSendOrderFillsLongAtAsk(t *testing.T) {
	t.Parallel()

	e := NewEngine(zerolog.Nop())
	e.Ticks().Set(market.Tick{Symbol: "EURUSD", Bid: 1.0541, Ask: 1.0543, Time: time.Now()})

	err := e.SendOrder(context.Background(), broker.OrderRequest{
		OrderID: "O1", Symbol: "EURUSD", Action: market.Buy, Volume: 0.01, Price: 1.0543,
	})
	require.NoError(t, err)

	fr := <-e.Fills()
	assert.Equal(t, "O1", fr.OrderID)
	assert.Equal(t, broker.FillFilled, fr.Status)
	assert.InDelta(t, 1.0543, fr.FilledPrice, 1e-9)
	assert.InDelta(t, 0.01, fr.FilledVolume, 1e-9)
	assert.NotEmpty(t, fr.BrokerTicket)
}

func TestSendOrderFillsShortAtBid(t *testing.T) {
	t.Parallel()

	e := NewEngine(zerolog.Nop())
	e.Ticks().Set(market.Tick{Symbol: "EURUSD", Bid: 1.0541, Ask: 1.0543, Time: time.Now()})

	require.NoError(t, e.SendOrder(context.Background(), broker.OrderRequest{
		OrderID: "O2", Symbol: "EURUSD", Action: market.Sell, Volume: 0.02,
	}))

	fr := <-e.Fills()
	assert.InDelta(t, 1.0541, fr.FilledPrice, 1e-9)
}

func TestSendOrderUnknownSymbolRejected(t *testing.T) {
	t.Parallel()

	e := NewEngine(zerolog.Nop())
	require.NoError(t, e.SendOrder(context.Background(), broker.OrderRequest{
		OrderID: "O3", Symbol: "XAUUSD", Action: market.Buy, Volume: 0.01,
	}))

	fr := <-e.Fills()
	assert.Equal(t, broker.FillRejected, fr.Status)
	assert.Empty(t, fr.BrokerTicket)
}

func TestBrokerTicketsAreUnique(t *testing.T) {
	t.Parallel()

	e := NewEngine(zerolog.Nop())
	e.Ticks().Set(market.Tick{Symbol: "EURUSD", Bid: 1.05, Ask: 1.06})

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		require.NoError(t, e.SendOrder(context.Background(), broker.OrderRequest{
			OrderID: "O", Symbol: "EURUSD", Action: market.Buy, Volume: 0.01,
		}))
		fr := <-e.Fills()
		assert.False(t, seen[fr.BrokerTicket])
		seen[fr.BrokerTicket] = true
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	e := NewEngine(zerolog.Nop())
	assert.NoError(t, e.Close())
	assert.NoError(t, e.Close())
	assert.Error(t, e.SendOrder(context.Background(), broker.OrderRequest{OrderID: "O"}))
}
