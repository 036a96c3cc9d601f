package strategies

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"autotrader/indicators"
	"autotrader/market"
	"autotrader/signal"
)

// EMACross is a signal source that fires when the fast EMA crosses the slow
// EMA on the most recent closed candle. No cross means no signal, not an
// error. The signal's time is the closing candle's time, so repeated
// generation over the same bar dedupes to a single ledger entry.
type EMACross struct {
	candles market.CandleSource
	quotes  market.TickSource
	log     *zap.Logger

	Timeframe  string
	FastPeriod int
	SlowPeriod int
	StopPoints float64 // 0 means the engine applies the configured default
	TakePoints float64
}

func NewEMACross(candles market.CandleSource, quotes market.TickSource, log *zap.Logger) *EMACross {
	if log == nil {
		log = zap.NewNop()
	}
	return &EMACross{
		candles:    candles,
		quotes:     quotes,
		log:        log,
		Timeframe:  "H1",
		FastPeriod: 20,
		SlowPeriod: 50,
	}
}

func (s *EMACross) Generate(ctx context.Context, symbol string) (*signal.Signal, error) {
	count := s.SlowPeriod * 3
	bars, err := s.candles.Candles(ctx, symbol, s.Timeframe, count)
	if err != nil {
		return nil, fmt.Errorf("candles for %s %s: %w", symbol, s.Timeframe, err)
	}
	if len(bars) < s.SlowPeriod+2 {
		s.log.Debug("not enough bars for crossover",
			zap.String("symbol", symbol), zap.Int("bars", len(bars)))
		return nil, nil
	}

	fast := indicators.NewEMA(s.FastPeriod)
	slow := indicators.NewEMA(s.SlowPeriod)

	var diff, prevDiff float64
	ready, havePrev := false, false
	for _, c := range bars {
		fast.Update(c)
		slow.Update(c)
		if !fast.Ready() || !slow.Ready() {
			continue
		}
		if ready {
			prevDiff = diff
			havePrev = true
		}
		diff = fast.Value() - slow.Value()
		ready = true
	}
	if !havePrev {
		return nil, nil
	}

	var dir market.Direction
	switch {
	case prevDiff <= 0 && diff > 0:
		dir = market.Buy
	case prevDiff >= 0 && diff < 0:
		dir = market.Sell
	default:
		return nil, nil
	}

	last := bars[len(bars)-1]
	sig := &signal.Signal{
		Time:       last.Time.UTC(),
		Symbol:     symbol,
		Direction:  dir,
		Confidence: crossConfidence(diff, last.Close),
		Price:      last.Close,
		StopPoints: s.StopPoints,
		TakePoints: s.TakePoints,
	}
	if s.quotes != nil {
		if tick, err := s.quotes.Tick(ctx, symbol); err == nil {
			sig.SpreadPoints = tick.SpreadPoints
		}
	}

	s.log.Info("crossover signal",
		zap.String("symbol", symbol),
		zap.String("direction", string(dir)),
		zap.Float64("confidence", sig.Confidence),
		zap.Float64("ema_diff", diff))
	return sig, nil
}

// crossConfidence maps the EMA separation, relative to price, onto 55–95.
// A wider gap at the cross means more momentum behind it.
func crossConfidence(diff, close float64) float64 {
	if close <= 0 {
		return 55
	}
	return 55 + math.Min(40, math.Abs(diff)/close*1e4)
}
