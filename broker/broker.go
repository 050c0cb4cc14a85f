// Package broker defines the contract between the portfolio core and
// the order execution gateway. The real gateway (an MT5 bridge or any
// broker adapter) lives outside this module; the core only emits order
// requests and consumes fill responses.
package broker

import (
	"context"

	"github.com/mt5crs/riskcore/market"
)

// OrderRequest is what the core hands to the gateway for transmission.
type OrderRequest struct {
	OrderID string
	Symbol  string
	Action  market.Direction
	Volume  float64
	Price   float64
}

// FillStatus is the broker's verdict on an order.
type FillStatus string

const (
	FillFilled   FillStatus = "FILLED"
	FillRejected FillStatus = "REJECTED"
)

// FillResponse arrives asynchronously from the gateway. It is an
// untrusted external input: unknown order IDs and garbage values must
// be tolerated, never crash the core.
type FillResponse struct {
	OrderID      string
	BrokerTicket string
	FilledPrice  float64
	FilledVolume float64
	Status       FillStatus
}

// Gateway transmits orders and streams back fills.
type Gateway interface {
	SendOrder(ctx context.Context, req OrderRequest) error
	Fills() <-chan FillResponse
	Close() error
}
