package risk

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mt5crs/riskcore/alert"
	"github.com/mt5crs/riskcore/market"
)

type stubPortfolio struct {
	net map[string]float64
	pnl float64
}

func (s *stubPortfolio) NetVolume(symbol string) float64 { return s.net[symbol] }
func (s *stubPortfolio) DailyPnL() float64               { return s.pnl }

type stubHealth struct {
	drift string
	err   error
}

func (s *stubHealth) DetectDrift() (string, error) { return s.drift, s.err }

type captureSink struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (c *captureSink) Publish(a alert.Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, a)
}

func (c *captureSink) all() []alert.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]alert.Alert(nil), c.alerts...)
}

type monitorFixture struct {
	monitor   *Monitor
	killSwitch *KillSwitch
	portfolio *stubPortfolio
	health    *stubHealth
	sink      *captureSink
	clock     *time.Time
}

func newMonitorFixture(t *testing.T, limits Limits) *monitorFixture {
	t.Helper()

	ks, err := NewKillSwitch(filepath.Join(t.TempDir(), "ks.lock"), zerolog.Nop())
	require.NoError(t, err)

	pf := &stubPortfolio{net: map[string]float64{}}
	hc := &stubHealth{}
	sink := &captureSink{}

	m := NewMonitor(limits, ks, pf, hc, sink, zerolog.Nop())

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	return &monitorFixture{monitor: m, killSwitch: ks, portfolio: pf, health: hc, sink: sink, clock: &now}
}

func defaultLimits() Limits {
	return Limits{MaxDailyLoss: -50.0, MaxOrderRate: 3, MaxPositionSize: 1.0}
}

func buy(symbol string) market.Signal {
	return market.Signal{Symbol: symbol, Direction: market.Buy, Confidence: 0.9}
}

func TestCheckSignalHoldAlwaysRejected(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	assert.False(t, f.monitor.CheckSignal(market.Signal{Symbol: "EURUSD", Direction: market.Hold}))
	// HOLD is not a violation, just never actionable.
	assert.Empty(t, f.monitor.Violations())
}

func TestCheckSignalPassesWhenAllClear(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	assert.True(t, f.monitor.CheckSignal(buy("EURUSD")))
}

func TestCheckSignalKillSwitchDominates(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.killSwitch.Activate("manual")

	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))
	assert.False(t, f.monitor.CheckSignal(market.Signal{Symbol: "EURUSD", Direction: market.Sell}))
}

func TestCheckSignalReconcilerDriftBlocks(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.health.drift = "expected 0.01 lots, broker reports 0.02"

	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))

	v := f.monitor.Violations()
	require.Len(t, v, 1)
	assert.Equal(t, ViolationReconciler, v[0].Type)
}

func TestCheckSignalReconcilerErrorTreatedAsUnhealthy(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.health.err = errors.New("bridge timeout")

	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))

	v := f.monitor.Violations()
	require.Len(t, v, 1)
	assert.Contains(t, v[0].Message, "bridge timeout")
}

func TestCheckSignalOrderRateBoundary(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())

	// Record exactly max_order_rate orders inside the window.
	for i := 0; i < 3; i++ {
		require.True(t, f.monitor.CheckSignal(buy("EURUSD")))
		f.monitor.RecordOrder()
	}

	// The 4th is rejected at the boundary, with an alert.
	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))

	alerts := f.sink.all()
	require.NotEmpty(t, alerts)
	assert.Equal(t, string(ViolationOrderRate), alerts[len(alerts)-1].Type)

	// Once a stamp ages past the window the next signal passes.
	*f.clock = f.clock.Add(61 * time.Second)
	assert.True(t, f.monitor.CheckSignal(buy("EURUSD")))
}

func TestCheckSignalPositionSizeLimit(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.portfolio.net["EURUSD"] = -1.0 // short at exactly the cap

	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))

	// Other symbols are unaffected.
	assert.True(t, f.monitor.CheckSignal(buy("GBPUSD")))
}

func TestCheckSignalDailyLossTripsKillSwitch(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.portfolio.pnl = -75.0

	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))

	require.True(t, f.killSwitch.IsActive())
	assert.Contains(t, f.killSwitch.Status().Reason, "-75.0")

	alerts := f.sink.all()
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, string(ViolationDailyLoss), alerts[0].Type)

	// Every subsequent signal is rejected until reset, regardless of PnL.
	f.portfolio.pnl = 0
	assert.False(t, f.monitor.CheckSignal(buy("EURUSD")))
	assert.False(t, f.monitor.CheckSignal(market.Signal{Symbol: "GBPUSD", Direction: market.Sell}))

	require.NoError(t, f.killSwitch.Reset("ops"))
	assert.True(t, f.monitor.CheckSignal(buy("EURUSD")))
}

func TestCheckSignalDailyLossBoundaryIsExclusive(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.portfolio.pnl = -50.0 // exactly at the limit, not below it

	assert.True(t, f.monitor.CheckSignal(buy("EURUSD")))
	assert.False(t, f.killSwitch.IsActive())
}

func TestCheckStateDoesNotMutate(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(t, defaultLimits())
	f.portfolio.pnl = -10.5

	st := f.monitor.CheckState()
	assert.False(t, st.KillSwitch.Active)
	assert.True(t, st.ReconcilerHealthy)
	assert.InDelta(t, -10.5, st.DailyPnL, 1e-9)
	assert.Equal(t, 0, st.OrdersInWindow)

	// Repeated calls see identical state.
	assert.Equal(t, st, f.monitor.CheckState())
}

func TestLimitsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limits  Limits
		wantErr bool
	}{
		{"valid", Limits{MaxDailyLoss: -50, MaxOrderRate: 5, MaxPositionSize: 1}, false},
		{"positive daily loss", Limits{MaxDailyLoss: 50, MaxOrderRate: 5, MaxPositionSize: 1}, true},
		{"zero daily loss", Limits{MaxDailyLoss: 0, MaxOrderRate: 5, MaxPositionSize: 1}, true},
		{"zero rate", Limits{MaxDailyLoss: -50, MaxOrderRate: 0, MaxPositionSize: 1}, true},
		{"zero position size", Limits{MaxDailyLoss: -50, MaxOrderRate: 5, MaxPositionSize: 0}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.limits.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
