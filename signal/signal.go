package signal

import (
	"context"
	"time"

	"autotrader/market"
)

// Signal is one trading signal, produced by the model or loaded from the
// store. Uniquely identified by (time, symbol). The execution core mutates
// Executed and Note in place after an attempt; signals are never deleted,
// only appended and merged.
type Signal struct {
	Time         time.Time // event timestamp, UTC
	Symbol       string
	Direction    market.Direction
	Confidence   float64 // 0–100
	Price        float64 // reference price at generation
	SpreadPoints int     // spread observed at generation
	StopPoints   float64 // stop-loss distance in points
	TakePoints   float64 // take-profit distance in points
	Executed     bool
	Note         string
}

// Key identifies a signal for dedupe and status updates.
type Key struct {
	Unix   int64
	Symbol string
}

func (s Signal) Key() Key {
	return Key{Unix: s.Time.UTC().Unix(), Symbol: s.Symbol}
}

// Source produces a fresh signal for a symbol, or nil when there is not
// enough data or no trained model is available.
type Source interface {
	Generate(ctx context.Context, symbol string) (*Signal, error)
}
