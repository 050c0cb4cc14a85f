package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionSignAndString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Buy.Sign())
	assert.Equal(t, -1.0, Sell.Sign())
	assert.Equal(t, 0.0, Hold.Sign())

	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "HOLD", Hold.String())
	assert.Equal(t, "UNKNOWN", Direction(7).String())
}

func TestDirectionOpposite(t *testing.T) {
	t.Parallel()

	assert.True(t, Buy.Opposite(Sell))
	assert.True(t, Sell.Opposite(Buy))
	assert.False(t, Buy.Opposite(Buy))
	assert.False(t, Buy.Opposite(Hold))
	assert.False(t, Hold.Opposite(Hold))
}

func TestSignalActionable(t *testing.T) {
	t.Parallel()

	assert.True(t, Signal{Direction: Buy}.Actionable())
	assert.True(t, Signal{Direction: Sell}.Actionable())
	assert.False(t, Signal{Direction: Hold}.Actionable())
}

func TestTickStore(t *testing.T) {
	t.Parallel()

	s := NewTickStore()
	_, err := s.Get("EURUSD")
	assert.ErrorIs(t, err, ErrNoPrice)

	s.Set(Tick{Symbol: "EURUSD", Bid: 1.0541, Ask: 1.0543})
	got, err := s.Get("EURUSD")
	assert.NoError(t, err)
	assert.InDelta(t, 1.0542, got.Mid(), 1e-9)
	assert.InDelta(t, 0.0002, got.Spread(), 1e-9)
}
