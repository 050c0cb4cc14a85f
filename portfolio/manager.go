package portfolio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mt5crs/riskcore/broker"
	"github.com/mt5crs/riskcore/journal"
	"github.com/mt5crs/riskcore/market"
	"github.com/mt5crs/riskcore/pkg/id"
)

// PositionStatus classifies a symbol's position for summaries.
type PositionStatus string

const (
	PositionFlat PositionStatus = "FLAT"
	PositionOpen PositionStatus = "OPEN"
)

// Summary is the answer to a position query at a given market price.
type Summary struct {
	Symbol             string         `json:"symbol"`
	Status             PositionStatus `json:"status"`
	Direction          string         `json:"direction,omitempty"`
	NetVolume          float64        `json:"net_volume,omitempty"`
	AvgEntryPrice      float64        `json:"avg_entry_price,omitempty"`
	UnrealizedPnL      float64        `json:"unrealized_pnl,omitempty"`
	ContributingOrders []string       `json:"contributing_orders,omitempty"`
}

// Manager enforces the single-position-per-symbol policy and keeps
// order and position state reconciled against broker fills. All
// mutations go through one mutex; the signal path and the fill path
// share position state.
type Manager struct {
	mu sync.Mutex

	orders    map[string]*Order
	history   []*Order
	positions map[string]*Position
	marks     map[string]float64

	// realized is the PnL closed since dayStart; both roll over at
	// the UTC day boundary.
	realized float64
	dayStart time.Time

	journal journal.Journal
	log     zerolog.Logger
	now     func() time.Time
}

func NewManager(j journal.Journal, log zerolog.Logger) *Manager {
	if j == nil {
		j = journal.Nop{}
	}
	m := &Manager{
		orders:    make(map[string]*Order),
		positions: make(map[string]*Position),
		marks:     make(map[string]float64),
		journal:   j,
		log:       log.With().Str("component", "portfolio").Logger(),
		now:       time.Now,
	}
	m.dayStart = dayOf(m.now())
	return m
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// rollDay resets realized PnL at the UTC day boundary. Callers hold mu.
func (m *Manager) rollDay() {
	today := dayOf(m.now())
	if today.After(m.dayStart) {
		m.log.Info().Float64("realized", m.realized).Time("day", m.dayStart).
			Msg("trading day rolled, realized pnl reset")
		m.realized = 0
		m.dayStart = today
	}
}

// CreateOrder applies the single-position policy and, if the signal is
// allowed, registers a PENDING order. It returns nil without side
// effects when the policy blocks the signal. Nothing is transmitted to
// the broker here.
//
// The policy evaluates the confirmed position only: pending orders do
// not count until their fills arrive.
func (m *Manager) CreateOrder(sig market.Signal, price, volume float64) *Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !sig.Actionable() {
		return nil
	}
	if volume <= 0 || price <= 0 {
		m.log.Error().Str("symbol", sig.Symbol).Float64("price", price).
			Float64("volume", volume).Msg("refusing order with non-positive price or volume")
		return nil
	}

	if pos, ok := m.positions[sig.Symbol]; ok && !pos.Flat() {
		if pos.Direction() == sig.Direction {
			// No pyramiding: an open position only accepts
			// opposite-direction orders.
			m.log.Warn().Str("symbol", sig.Symbol).
				Str("position", pos.Direction().String()).
				Str("signal", sig.Direction.String()).
				Msg("signal blocked by single-position policy")
			return nil
		}
	}

	o := &Order{
		ID:              id.NewOrderID(),
		Symbol:          sig.Symbol,
		Action:          sig.Direction,
		RequestedVolume: volume,
		RequestedPrice:  price,
		Status:          OrderPending,
		CreatedAt:       m.now().UTC(),
	}
	m.orders[o.ID] = o
	m.history = append(m.history, o)

	if err := m.journal.RecordOrder(orderRecord(o)); err != nil {
		m.log.Error().Err(err).Str("order_id", o.ID).Msg("journal write failed")
	}

	m.log.Info().Str("order_id", o.ID).Str("symbol", o.Symbol).
		Str("action", o.Action.String()).Float64("volume", volume).
		Float64("price", price).Msg("order created")
	return o
}

// OnFill ingests a fill response from the gateway. Fills arrive from
// an untrusted boundary, so bad input is logged and absorbed: an
// unknown order ID returns false, it never panics.
func (m *Manager) OnFill(fr broker.FillResponse) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollDay()

	o, ok := m.orders[fr.OrderID]
	if !ok {
		m.log.Error().Str("order_id", fr.OrderID).Msg("fill for unknown order")
		return false
	}
	if o.Status.Terminal() {
		m.log.Error().Str("order_id", o.ID).Str("status", string(o.Status)).
			Msg("ignoring fill for order in terminal state")
		return false
	}

	switch fr.Status {
	case broker.FillRejected:
		o.Status = OrderRejected
		m.log.Warn().Str("order_id", o.ID).Msg("order rejected by broker")

	case broker.FillFilled:
		o.Status = OrderFilled
		o.BrokerTicket = fr.BrokerTicket
		o.FilledPrice = fr.FilledPrice
		o.FilledVolume = fr.FilledVolume
		m.applyFill(o)

	default:
		m.log.Error().Str("order_id", o.ID).Str("status", string(fr.Status)).
			Msg("fill with unknown status")
		return false
	}

	if err := m.journal.RecordOrder(orderRecord(o)); err != nil {
		m.log.Error().Err(err).Str("order_id", o.ID).Msg("journal write failed")
	}
	return true
}

// applyFill updates the symbol's position from a filled order.
// Callers hold mu.
func (m *Manager) applyFill(o *Order) {
	pos, ok := m.positions[o.Symbol]
	if !ok {
		pos = &Position{Symbol: o.Symbol}
		m.positions[o.Symbol] = pos
	}

	realized := pos.applyFill(o.ID, o.SignedFillVolume(), o.FilledPrice)
	m.realized += realized
	m.marks[o.Symbol] = o.FilledPrice

	ev := m.log.Info().Str("order_id", o.ID).Str("symbol", o.Symbol).
		Float64("net_volume", pos.NetVolume)
	if realized != 0 {
		ev = ev.Float64("realized_pnl", realized)
	}
	ev.Msg("position updated from fill")
}

// CancelOrder moves a PENDING order to CANCELED. Canceling an order in
// a terminal state is a logic error: logged, ignored, returns false.
func (m *Manager) CancelOrder(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		m.log.Error().Str("order_id", orderID).Msg("cancel for unknown order")
		return false
	}
	if o.Status.Terminal() {
		m.log.Error().Str("order_id", orderID).Str("status", string(o.Status)).
			Msg("cannot cancel order in terminal state")
		return false
	}

	o.Status = OrderCanceled
	if err := m.journal.RecordOrder(orderRecord(o)); err != nil {
		m.log.Error().Err(err).Str("order_id", o.ID).Msg("journal write failed")
	}
	return true
}

// MarkPrice records the latest market price for a symbol, used for
// unrealized PnL.
func (m *Manager) MarkPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[symbol] = price
}

// NetVolume returns the confirmed signed position for a symbol.
func (m *Manager) NetVolume(symbol string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[symbol]
	if !ok {
		return 0
	}
	return pos.NetVolume
}

// DailyPnL is realized PnL since the UTC day start plus unrealized PnL
// across open positions at their latest marks.
func (m *Manager) DailyPnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollDay()

	total := m.realized
	for sym, pos := range m.positions {
		if mark, ok := m.marks[sym]; ok {
			total += pos.UnrealizedPnL(mark)
		}
	}
	return total
}

// PositionSummary reports a symbol's position against price.
func (m *Manager) PositionSummary(symbol string, price float64) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[symbol]
	if !ok || pos.Flat() {
		return Summary{Symbol: symbol, Status: PositionFlat}
	}

	direction := "LONG"
	if pos.NetVolume < 0 {
		direction = "SHORT"
	}

	return Summary{
		Symbol:             symbol,
		Status:             PositionOpen,
		Direction:          direction,
		NetVolume:          pos.NetVolume,
		AvgEntryPrice:      pos.AvgEntryPrice,
		UnrealizedPnL:      pos.UnrealizedPnL(price),
		ContributingOrders: append([]string(nil), pos.ContributingOrders...),
	}
}

// OrderHistory returns every order ever created, insertion-ordered.
func (m *Manager) OrderHistory() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Order, len(m.history))
	for i, o := range m.history {
		out[i] = *o
	}
	return out
}

// RealizedPnL returns PnL closed since the current UTC day started.
func (m *Manager) RealizedPnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollDay()
	return m.realized
}

func orderRecord(o *Order) journal.OrderRecord {
	return journal.OrderRecord{
		OrderID:      o.ID,
		Symbol:       o.Symbol,
		Action:       o.Action.String(),
		Volume:       o.RequestedVolume,
		Price:        o.RequestedPrice,
		Status:       string(o.Status),
		BrokerTicket: o.BrokerTicket,
		FilledPrice:  o.FilledPrice,
		FilledVolume: o.FilledVolume,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}
}
