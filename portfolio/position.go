package portfolio

import (
	"math"

	"github.com/mt5crs/riskcore/market"
)

// volEps absorbs float drift when deciding whether a close exactly
// flattens a position. Broker volumes are quoted in 0.01 lot steps, so
// anything below this is zero.
const volEps = 1e-9

// Position is the net position for one symbol. Direction is always
// derived from the sign of NetVolume, never stored separately.
type Position struct {
	Symbol string
	// NetVolume is signed: positive long, negative short, zero flat.
	NetVolume float64
	// AvgEntryPrice is the volume-weighted average of the fills
	// contributing to the current net volume; zero while flat.
	AvgEntryPrice float64
	// ContributingOrders lists the order IDs behind the current
	// volume, oldest first.
	ContributingOrders []string
}

func (p *Position) Flat() bool {
	return math.Abs(p.NetVolume) < volEps
}

func (p *Position) Direction() market.Direction {
	switch {
	case p.NetVolume > volEps:
		return market.Buy
	case p.NetVolume < -volEps:
		return market.Sell
	default:
		return market.Hold
	}
}

// UnrealizedPnL marks the open volume against price. Zero when flat.
func (p *Position) UnrealizedPnL(price float64) float64 {
	if p.Flat() {
		return 0
	}
	return p.NetVolume * (price - p.AvgEntryPrice)
}

// applyFill folds one signed fill into the position and returns the
// PnL realized by any closed volume.
func (p *Position) applyFill(orderID string, signedVolume, price float64) (realized float64) {
	if p.Flat() || sameSign(p.NetVolume, signedVolume) {
		// Opening or adding: volume-weighted average entry.
		total := math.Abs(p.NetVolume) + math.Abs(signedVolume)
		p.AvgEntryPrice = (math.Abs(p.NetVolume)*p.AvgEntryPrice + math.Abs(signedVolume)*price) / total
		p.NetVolume += signedVolume
		p.ContributingOrders = append(p.ContributingOrders, orderID)
		return 0
	}

	// Opposite direction: close existing volume first.
	closing := math.Min(math.Abs(signedVolume), math.Abs(p.NetVolume))
	direction := 1.0
	if p.NetVolume < 0 {
		direction = -1.0
	}
	realized = closing * (price - p.AvgEntryPrice) * direction

	excess := math.Abs(signedVolume) - math.Abs(p.NetVolume)
	switch {
	case excess > volEps:
		// Flip: the excess opens a fresh position in the fill's
		// direction at the fill price.
		p.NetVolume = math.Copysign(excess, signedVolume)
		p.AvgEntryPrice = price
		p.ContributingOrders = []string{orderID}
	case excess < -volEps:
		// Partial close: average entry of the remainder unchanged.
		p.NetVolume += signedVolume
		p.ContributingOrders = append(p.ContributingOrders, orderID)
	default:
		// Exact offset: flat, entry price cleared.
		p.NetVolume = 0
		p.AvgEntryPrice = 0
		p.ContributingOrders = nil
	}
	return realized
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
