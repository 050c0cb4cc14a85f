// Package alert delivers best-effort risk notifications. Delivery is
// never on the trading decision path: a dead endpoint must cost the
// caller nothing beyond a log line.
package alert

import "time"

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a single risk notification.
type Alert struct {
	Severity Severity  `json:"severity"`
	Type     string    `json:"type"`
	Message  string    `json:"message"`
	Time     time.Time `json:"timestamp"`
}

// Sink receives alerts. Implementations must return quickly and must
// not propagate delivery failures to the caller.
type Sink interface {
	Publish(a Alert)
}

// Nop discards every alert. Used when no webhook is configured.
type Nop struct{}

func (Nop) Publish(Alert) {}
