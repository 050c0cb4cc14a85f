// Package journal persists the audit trail: every order the portfolio
// creates, every fill it ingests, and every kill-switch or violation
// event the risk monitor raises.
package journal

import "time"

// OrderRecord is one row of the order audit trail. Records are written
// at creation and rewritten when the order reaches a terminal state.
type OrderRecord struct {
	OrderID      string
	Symbol       string
	Action       string
	Volume       float64
	Price        float64
	Status       string
	BrokerTicket string
	FilledPrice  float64
	FilledVolume float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventRecord is a risk event: kill-switch activation or reset, or a
// recorded violation.
type EventRecord struct {
	Time   time.Time
	Kind   string
	Detail string
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEvent(EventRecord) error
	Close() error
}

// Nop discards all records; used when no journal path is configured.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error { return nil }
func (Nop) RecordEvent(EventRecord) error { return nil }
func (Nop) Close() error                  { return nil }
