package strategies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autotrader/market"
)

type stubCandles struct {
	bars []market.Candle
	err  error
}

func (s stubCandles) Candles(_ context.Context, _, _ string, _ int) ([]market.Candle, error) {
	return s.bars, s.err
}

func barsFromCloses(closes ...float64) []market.Candle {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{Time: base.Add(time.Duration(i) * time.Hour), Close: c}
	}
	return out
}

func fastSlow(src *EMACross) *EMACross {
	src.FastPeriod = 2
	src.SlowPeriod = 3
	return src
}

func TestGenerate_BuyOnUpwardCross(t *testing.T) {
	t.Parallel()

	src := fastSlow(NewEMACross(stubCandles{bars: barsFromCloses(10, 10, 10, 10, 20)}, nil, zap.NewNop()))
	sig, err := src.Generate(context.Background(), "EURUSD")
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, market.Buy, sig.Direction)
	assert.Equal(t, "EURUSD", sig.Symbol)
	assert.InDelta(t, 20, sig.Price, 1e-9)
	assert.GreaterOrEqual(t, sig.Confidence, 55.0)
	assert.LessOrEqual(t, sig.Confidence, 95.0)
}

func TestGenerate_SellOnDownwardCross(t *testing.T) {
	t.Parallel()

	src := fastSlow(NewEMACross(stubCandles{bars: barsFromCloses(10, 10, 10, 10, 2)}, nil, zap.NewNop()))
	sig, err := src.Generate(context.Background(), "EURUSD")
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, market.Sell, sig.Direction)
}

func TestGenerate_NoCrossNoSignal(t *testing.T) {
	t.Parallel()

	src := fastSlow(NewEMACross(stubCandles{bars: barsFromCloses(10, 10, 10, 10, 10)}, nil, zap.NewNop()))
	sig, err := src.Generate(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestGenerate_NotEnoughBars(t *testing.T) {
	t.Parallel()

	src := fastSlow(NewEMACross(stubCandles{bars: barsFromCloses(10, 10)}, nil, zap.NewNop()))
	sig, err := src.Generate(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestGenerate_SourceError(t *testing.T) {
	t.Parallel()

	src := fastSlow(NewEMACross(stubCandles{err: errors.New("feed down")}, nil, zap.NewNop()))
	_, err := src.Generate(context.Background(), "EURUSD")
	assert.ErrorContains(t, err, "feed down")
}

func TestGenerate_StableSignalTime(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(10, 10, 10, 10, 20)
	src := fastSlow(NewEMACross(stubCandles{bars: bars}, nil, zap.NewNop()))

	a, err := src.Generate(context.Background(), "EURUSD")
	require.NoError(t, err)
	b, err := src.Generate(context.Background(), "EURUSD")
	require.NoError(t, err)

	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.Key(), b.Key(), "same bar must dedupe in the ledger")
}
