package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autotrader/market"
)

func feed(ind Indicator, closes ...float64) {
	for _, c := range closes {
		ind.Update(market.Candle{Close: c})
	}
}

func TestSimpleMA_Window(t *testing.T) {
	t.Parallel()

	ma := NewMA(3)
	feed(ma, 1, 2)
	assert.False(t, ma.Ready())
	assert.Zero(t, ma.Value())

	feed(ma, 3)
	assert.True(t, ma.Ready())
	assert.InDelta(t, 2.0, ma.Value(), 1e-9)

	// Window slides: (2+3+7)/3.
	feed(ma, 7)
	assert.InDelta(t, 4.0, ma.Value(), 1e-9)
}

func TestExponentialMA_SeededWithSimpleAverage(t *testing.T) {
	t.Parallel()

	ema := NewEMA(3)
	feed(ema, 2, 4, 6)
	assert.True(t, ema.Ready())
	assert.InDelta(t, 4.0, ema.Value(), 1e-9)

	// Next update applies the 2/(n+1) multiplier: (8-4)*0.5 + 4.
	feed(ema, 8)
	assert.InDelta(t, 6.0, ema.Value(), 1e-9)
}

func TestExponentialMA_ConstantSeries(t *testing.T) {
	t.Parallel()

	ema := NewEMA(5)
	feed(ema, 10, 10, 10, 10, 10, 10, 10)
	assert.InDelta(t, 10.0, ema.Value(), 1e-9)
}

func TestReset(t *testing.T) {
	t.Parallel()

	ema := NewEMA(2)
	feed(ema, 1, 2, 3)
	assert.True(t, ema.Ready())

	ema.Reset()
	assert.False(t, ema.Ready())
	assert.Zero(t, ema.Value())
}
