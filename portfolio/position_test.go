package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mt5crs/riskcore/market"
)

func TestPositionOpenLong(t *testing.T) {
	t.Parallel()

	p := &Position{Symbol: "EURUSD"}
	realized := p.applyFill("O1", 0.01, 1.0543)

	assert.Zero(t, realized)
	assert.InDelta(t, 0.01, p.NetVolume, 1e-12)
	assert.InDelta(t, 1.0543, p.AvgEntryPrice, 1e-12)
	assert.Equal(t, market.Buy, p.Direction())
	assert.Equal(t, []string{"O1"}, p.ContributingOrders)
}

func TestPositionAddSameDirectionAveragesEntry(t *testing.T) {
	t.Parallel()

	p := &Position{Symbol: "EURUSD"}
	p.applyFill("O1", 0.01, 1.0000)
	realized := p.applyFill("O2", 0.03, 1.0400)

	assert.Zero(t, realized)
	assert.InDelta(t, 0.04, p.NetVolume, 1e-12)
	// (0.01*1.0000 + 0.03*1.0400) / 0.04 = 1.0300
	assert.InDelta(t, 1.03, p.AvgEntryPrice, 1e-9)
	assert.Equal(t, []string{"O1", "O2"}, p.ContributingOrders)
}

func TestPositionPartialCloseKeepsEntry(t *testing.T) {
	t.Parallel()

	p := &Position{Symbol: "EURUSD"}
	p.applyFill("O1", 0.04, 1.0300)
	realized := p.applyFill("O2", -0.01, 1.0500)

	// Closed 0.01 long at +0.02.
	assert.InDelta(t, 0.01*(1.0500-1.0300), realized, 1e-9)
	assert.InDelta(t, 0.03, p.NetVolume, 1e-12)
	assert.InDelta(t, 1.03, p.AvgEntryPrice, 1e-9)
}

func TestPositionFullCloseClearsEntry(t *testing.T) {
	t.Parallel()

	p := &Position{Symbol: "EURUSD"}
	p.applyFill("O1", 0.02, 1.1000)
	realized := p.applyFill("O2", -0.02, 1.0900)

	assert.InDelta(t, 0.02*(1.0900-1.1000), realized, 1e-9)
	assert.True(t, p.Flat())
	assert.Zero(t, p.AvgEntryPrice)
	assert.Empty(t, p.ContributingOrders)
	assert.Equal(t, market.Hold, p.Direction())
}

func TestPositionFlipLongToShort(t *testing.T) {
	t.Parallel()

	// LONG 0.01 at 1.0543; SELL 0.02 at 1.0550 flips to SHORT 0.01.
	p := &Position{Symbol: "EURUSD"}
	p.applyFill("O1", 0.01, 1.0543)
	realized := p.applyFill("O2", -0.02, 1.0550)

	assert.InDelta(t, 0.01*(1.0550-1.0543), realized, 1e-9)
	assert.InDelta(t, -0.01, p.NetVolume, 1e-9)
	assert.InDelta(t, 1.0550, p.AvgEntryPrice, 1e-12)
	assert.Equal(t, market.Sell, p.Direction())
	assert.Equal(t, []string{"O2"}, p.ContributingOrders)
}

func TestPositionShortSideRealization(t *testing.T) {
	t.Parallel()

	// SHORT 0.02 at 1.1000, buy back 0.02 at 1.0800: profit.
	p := &Position{Symbol: "EURUSD"}
	p.applyFill("O1", -0.02, 1.1000)
	realized := p.applyFill("O2", 0.02, 1.0800)

	assert.InDelta(t, 0.02*(1.1000-1.0800), realized, 1e-9)
	assert.True(t, p.Flat())
}

func TestPositionUnrealizedPnL(t *testing.T) {
	t.Parallel()

	long := &Position{Symbol: "EURUSD"}
	long.applyFill("O1", 0.01, 1.0500)
	assert.InDelta(t, 0.01*(1.0600-1.0500), long.UnrealizedPnL(1.0600), 1e-9)

	short := &Position{Symbol: "EURUSD"}
	short.applyFill("O1", -0.01, 1.0500)
	assert.InDelta(t, -0.01*(1.0400-1.0500), short.UnrealizedPnL(1.0400), 1e-9)

	flat := &Position{Symbol: "EURUSD"}
	assert.Zero(t, flat.UnrealizedPnL(1.0600))
}

func TestPositionCanReopenAfterClose(t *testing.T) {
	t.Parallel()

	p := &Position{Symbol: "EURUSD"}
	p.applyFill("O1", 0.01, 1.0500)
	p.applyFill("O2", -0.01, 1.0600)
	assert.True(t, p.Flat())

	p.applyFill("O3", -0.05, 1.0700)
	assert.InDelta(t, -0.05, p.NetVolume, 1e-12)
	assert.InDelta(t, 1.0700, p.AvgEntryPrice, 1e-12)
}
