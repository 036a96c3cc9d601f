package market

import (
	"context"
	"math"
	"time"
)

// Direction is the side of a trade.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// Opposite returns the side that closes a position opened in direction d.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

// Tick is one quote for a symbol. SpreadPoints is the venue-reported spread
// in points; 0 means the venue did not report one.
type Tick struct {
	Symbol       string
	Time         time.Time
	Bid          float64
	Ask          float64
	SpreadPoints int
}

func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Side returns the price a market order in direction d would fill at:
// ask for buys, bid for sells.
func (t Tick) Side(d Direction) float64 {
	if d == Buy {
		return t.Ask
	}
	return t.Bid
}

// SpreadIn returns the spread expressed in points of the given point size,
// preferring the venue-reported value.
func (t Tick) SpreadIn(point float64) int {
	if t.SpreadPoints > 0 {
		return t.SpreadPoints
	}
	if point <= 0 {
		return 0
	}
	return int(math.Round((t.Ask - t.Bid) / point))
}

// TickSource provides fresh quotes. Implementations must not serve
// stale cached ticks to sizing or guard checks.
type TickSource interface {
	Tick(ctx context.Context, symbol string) (Tick, error)
}
