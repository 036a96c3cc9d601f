package market

import (
	"context"
	"time"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CandleSource supplies historical bars for a symbol and timeframe
// (e.g. "M15", "H1"). Consumed by signal sources, not by the execution
// core directly.
type CandleSource interface {
	Candles(ctx context.Context, symbol, timeframe string, count int) ([]Candle, error)
}
