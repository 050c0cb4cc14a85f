// Package portfolio owns order lifecycle and position state. It is the
// ground truth the risk monitor reads and the only component allowed
// to mutate orders and positions.
package portfolio

import (
	"time"

	"github.com/mt5crs/riskcore/market"
)

// OrderStatus is the order state machine. PENDING is initial; the
// other three are terminal.
type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderFilled   OrderStatus = "FILLED"
	OrderRejected OrderStatus = "REJECTED"
	OrderCanceled OrderStatus = "CANCELED"
)

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderFilled || s == OrderRejected || s == OrderCanceled
}

// Order tracks one requested trade from creation to its terminal
// state. Creation does not submit anything to the broker; transmission
// is the execution gateway's job.
type Order struct {
	ID              string
	Symbol          string
	Action          market.Direction
	RequestedVolume float64
	RequestedPrice  float64
	Status          OrderStatus
	CreatedAt       time.Time

	// Set on fill.
	BrokerTicket string
	FilledPrice  float64
	FilledVolume float64
}

// SignedFillVolume returns the filled volume with the action's sign
// applied: positive for buys, negative for sells.
func (o *Order) SignedFillVolume() float64 {
	return o.FilledVolume * o.Action.Sign()
}
