// Package market holds the shared primitives exchanged between the
// strategy boundary, the risk monitor, and the portfolio layer.
package market

// Direction is a trade direction. The integer values match the wire
// convention used by the strategy engine (BUY=1, SELL=-1, HOLD=0).
type Direction int

const (
	Buy  Direction = 1
	Sell Direction = -1
	Hold Direction = 0
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

// Sign returns the signed volume multiplier for the direction.
func (d Direction) Sign() float64 {
	switch d {
	case Buy:
		return 1
	case Sell:
		return -1
	default:
		return 0
	}
}

// Opposite reports whether o is the opposing trade direction.
// Hold opposes nothing.
func (d Direction) Opposite(o Direction) bool {
	return d.Sign()*o.Sign() == -1
}

// Signal is a directional trading instruction from the strategy engine.
// It is not an order: it becomes one only after the risk monitor and the
// portfolio policy both allow it.
type Signal struct {
	Symbol     string
	Direction  Direction
	Confidence float64
}

// Actionable reports whether the signal asks for a trade at all.
func (s Signal) Actionable() bool {
	return s.Direction == Buy || s.Direction == Sell
}
