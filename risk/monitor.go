package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mt5crs/riskcore/alert"
	"github.com/mt5crs/riskcore/market"
)

const (
	rateWindow        = 60 * time.Second
	violationCapacity = 1000
)

// PortfolioView is the read-only slice of portfolio state the monitor
// needs. The monitor never mutates positions or orders.
type PortfolioView interface {
	// NetVolume returns the signed confirmed position for a symbol,
	// zero when flat.
	NetVolume(symbol string) float64
	// DailyPnL returns realized plus unrealized profit for the
	// current trading day, in account currency.
	DailyPnL() float64
}

// HealthChecker reports drift between expected and broker-side state.
// A non-empty reason or an error both mean the reconciler is degraded.
type HealthChecker interface {
	DetectDrift() (string, error)
}

// Limits are the generic risk thresholds the monitor enforces.
type Limits struct {
	// MaxDailyLoss is a negative threshold; a daily PnL below it
	// trips the kill switch.
	MaxDailyLoss float64
	// MaxOrderRate is the order budget per 60-second window.
	MaxOrderRate int
	// MaxPositionSize caps absolute net volume per symbol.
	MaxPositionSize float64
}

func (l Limits) Validate() error {
	if l.MaxDailyLoss >= 0 {
		return fmt.Errorf("max daily loss must be negative, got %v", l.MaxDailyLoss)
	}
	if l.MaxOrderRate <= 0 {
		return fmt.Errorf("max order rate must be positive, got %d", l.MaxOrderRate)
	}
	if l.MaxPositionSize <= 0 {
		return fmt.Errorf("max position size must be positive, got %v", l.MaxPositionSize)
	}
	return nil
}

// Status is the non-mutating health snapshot served to ops tooling.
type Status struct {
	KillSwitch        KillSwitchStatus `json:"kill_switch"`
	ReconcilerHealthy bool             `json:"reconciler_healthy"`
	DriftReason       string           `json:"drift_reason,omitempty"`
	DailyPnL          float64          `json:"daily_pnl"`
	OrdersInWindow    int              `json:"orders_in_window"`
	ViolationsTotal   uint64           `json:"violations_total"`
}

// Monitor is the single authoritative answer to "is it safe to trade
// right now". Every signal passes through CheckSignal before it may
// become an order.
type Monitor struct {
	// mu serializes CheckSignal, RecordOrder, and CheckState as a
	// whole. Check-then-record is a read-then-write sequence; making
	// each call individually atomic would not be enough if two
	// signals raced, so callers should also drive the monitor from a
	// single goroutine per account (the engine loop does).
	mu sync.Mutex

	limits     Limits
	killSwitch *KillSwitch
	limiter    *RateLimiter
	portfolio  PortfolioView
	health     HealthChecker
	sink       alert.Sink
	violations *ViolationLog
	log        zerolog.Logger

	now func() time.Time
}

func NewMonitor(
	limits Limits,
	ks *KillSwitch,
	pf PortfolioView,
	hc HealthChecker,
	sink alert.Sink,
	log zerolog.Logger,
) *Monitor {
	if sink == nil {
		sink = alert.Nop{}
	}
	return &Monitor{
		limits:     limits,
		killSwitch: ks,
		limiter:    NewRateLimiter(limits.MaxOrderRate, rateWindow),
		portfolio:  pf,
		health:     hc,
		sink:       sink,
		violations: NewViolationLog(violationCapacity),
		log:        log.With().Str("component", "risk_monitor").Logger(),
		now:        time.Now,
	}
}

// CheckSignal runs the pre-trade checks in strict order, stopping at
// the first failure:
//
//  1. HOLD is never actionable.
//  2. Kill switch.
//  3. Reconciler health (errors count as unhealthy).
//  4. Order rate.
//  5. Position size for the signal's symbol.
//  6. Daily loss limit, which also trips the kill switch.
//
// Rejections are reported through the boolean return, logs, and
// alerts; they are never errors. The caller must invoke RecordOrder
// only for orders actually submitted.
func (m *Monitor) CheckSignal(sig market.Signal) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !sig.Actionable() {
		return false
	}

	if m.killSwitch.IsActive() {
		m.log.Warn().Str("symbol", sig.Symbol).Str("signal", sig.Direction.String()).
			Msg("signal rejected, kill switch active")
		return false
	}

	if reason, ok := m.reconcilerHealthy(); !ok {
		m.reject(alert.SeverityWarning, ViolationReconciler,
			fmt.Sprintf("reconciler degraded: %s", reason))
		return false
	}

	now := m.now()
	if !m.limiter.Allow(now) {
		m.reject(alert.SeverityWarning, ViolationOrderRate,
			fmt.Sprintf("order rate limit reached: %d orders in the last %s",
				m.limiter.Count(now), rateWindow))
		return false
	}

	if net := m.portfolio.NetVolume(sig.Symbol); math.Abs(net) >= m.limits.MaxPositionSize {
		m.reject(alert.SeverityWarning, ViolationPositionSize,
			fmt.Sprintf("position size %.4f for %s at or above limit %.4f",
				math.Abs(net), sig.Symbol, m.limits.MaxPositionSize))
		return false
	}

	if pnl := m.portfolio.DailyPnL(); pnl < m.limits.MaxDailyLoss {
		reason := fmt.Sprintf("daily loss limit breached: pnl %.1f below %.1f",
			pnl, m.limits.MaxDailyLoss)
		m.killSwitch.Activate(reason)
		m.violations.Add(Violation{
			Severity: alert.SeverityCritical,
			Type:     ViolationDailyLoss,
			Message:  reason,
			Time:     m.now(),
		})
		m.sink.Publish(alert.Alert{
			Severity: alert.SeverityCritical,
			Type:     string(ViolationDailyLoss),
			Message:  reason,
			Time:     m.now(),
		})
		m.log.WithLevel(zerolog.FatalLevel).Float64("daily_pnl", pnl).
			Float64("limit", m.limits.MaxDailyLoss).Msg(reason)
		return false
	}

	return true
}

func (m *Monitor) reconcilerHealthy() (string, bool) {
	if m.health == nil {
		return "", true
	}
	reason, err := m.health.DetectDrift()
	if err != nil {
		// A reconciler that cannot answer is a reconciler that is
		// not watching; fail safe.
		return err.Error(), false
	}
	if reason != "" {
		return reason, false
	}
	return "", true
}

func (m *Monitor) reject(sev alert.Severity, vt ViolationType, msg string) {
	now := m.now()
	m.violations.Add(Violation{Severity: sev, Type: vt, Message: msg, Time: now})
	m.sink.Publish(alert.Alert{Severity: sev, Type: string(vt), Message: msg, Time: now})
	m.log.Warn().Str("violation", string(vt)).Msg(msg)
}

// RecordOrder counts one submitted order against the rate window.
// Call exactly once per order handed to the execution gateway.
func (m *Monitor) RecordOrder() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiter.Record(m.now())
}

// Violations returns the retained violation history, oldest first.
func (m *Monitor) Violations() []Violation {
	return m.violations.All()
}

// CheckState assembles a health snapshot without mutating anything.
func (m *Monitor) CheckState() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	reason, healthy := m.reconcilerHealthy()
	return Status{
		KillSwitch:        m.killSwitch.Status(),
		ReconcilerHealthy: healthy,
		DriftReason:       reason,
		DailyPnL:          m.portfolio.DailyPnL(),
		OrdersInWindow:    m.limiter.Count(m.now()),
		ViolationsTotal:   m.violations.Total(),
	}
}
