package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"autotrader/market"
	"autotrader/signal"
)

func buySignal(symbol string) signal.Signal {
	return signal.Signal{
		Time:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Symbol:    symbol,
		Direction: market.Buy,
	}
}

func at(hour, min int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
	}
}

func TestHoursGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		enabled    bool
		start, end string
		now        func() time.Time
		allowed    bool
	}{
		{"disabled always passes", false, "09:00", "10:00", at(3, 0), true},
		{"inside normal window", true, "09:00", "17:00", at(12, 0), true},
		{"outside normal window", true, "09:00", "17:00", at(18, 0), false},
		{"overnight inside late", true, "22:00", "05:00", at(23, 30), true},
		{"overnight inside early", true, "22:00", "05:00", at(3, 0), true},
		{"overnight outside", true, "22:00", "05:00", at(12, 0), false},
		{"boundary start", true, "09:00", "17:00", at(9, 0), true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := HoursGate{Enabled: tt.enabled, Start: tt.start, End: tt.end, Now: tt.now}
			v := g.Check(context.Background(), buySignal("XAUUSD"))
			assert.Equal(t, tt.allowed, v.Allowed, v.Reason)
		})
	}
}

func TestNewsGate(t *testing.T) {
	t.Parallel()

	halted := true
	g := NewsGate{Enabled: true, Halted: func() bool { return halted }}
	assert.False(t, g.Check(context.Background(), buySignal("XAUUSD")).Allowed)

	halted = false
	assert.True(t, g.Check(context.Background(), buySignal("XAUUSD")).Allowed)

	halted = true
	g.Enabled = false
	assert.True(t, g.Check(context.Background(), buySignal("XAUUSD")).Allowed)
}

type fakeConn bool

func (f fakeConn) IsConnected() bool { return bool(f) }

func TestConnGate(t *testing.T) {
	t.Parallel()

	assert.True(t, ConnGate{Conn: fakeConn(true)}.Check(context.Background(), buySignal("X")).Allowed)
	assert.False(t, ConnGate{Conn: fakeConn(false)}.Check(context.Background(), buySignal("X")).Allowed)
}

func TestValidityGate(t *testing.T) {
	t.Parallel()

	g := ValidityGate{}

	ok := buySignal("XAUUSD")
	assert.True(t, g.Check(context.Background(), ok).Allowed)

	bad := ok
	bad.Direction = "hold"
	assert.False(t, g.Check(context.Background(), bad).Allowed)

	bad = ok
	bad.Symbol = " "
	assert.False(t, g.Check(context.Background(), bad).Allowed)

	bad = ok
	bad.Symbol = "N/A"
	assert.False(t, g.Check(context.Background(), bad).Allowed)
}

type fakeTrades map[string]time.Time

func (f fakeTrades) LastTrade(symbol string) (time.Time, bool) {
	t, ok := f[symbol]
	return t, ok
}

func TestReentryGate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g := ReentryGate{
		Trades:   fakeTrades{"XAUUSD": now.Add(-5 * time.Minute)},
		Interval: func(string) time.Duration { return 15 * time.Minute },
		Now:      func() time.Time { return now },
	}

	v := g.Check(context.Background(), buySignal("XAUUSD"))
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "Wait 10m 0s")

	// A different symbol is unaffected.
	assert.True(t, g.Check(context.Background(), buySignal("BTCUSD")).Allowed)

	// After the interval elapses the same symbol passes.
	g.Now = func() time.Time { return now.Add(11 * time.Minute) }
	assert.True(t, g.Check(context.Background(), buySignal("XAUUSD")).Allowed)
}

func TestSpreadGate(t *testing.T) {
	t.Parallel()

	live := func(spread int, err error) func(context.Context, string) (int, error) {
		return func(context.Context, string) (int, error) { return spread, err }
	}
	ceiling := func(max int) func(string) int {
		return func(string) int { return max }
	}

	g := SpreadGate{Spread: live(25, nil), Ceiling: ceiling(30)}
	assert.True(t, g.Check(context.Background(), buySignal("XAUUSD")).Allowed)

	g = SpreadGate{Spread: live(45, nil), Ceiling: ceiling(30)}
	v := g.Check(context.Background(), buySignal("XAUUSD"))
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "45 pts")

	// Zero ceiling means unlimited for the class.
	g = SpreadGate{Spread: live(9999, nil), Ceiling: ceiling(0)}
	assert.True(t, g.Check(context.Background(), buySignal("XAUUSD")).Allowed)

	// Live tick unavailable: fall back to the signal's recorded spread.
	g = SpreadGate{Spread: live(0, errors.New("no tick")), Ceiling: ceiling(30)}
	sig := buySignal("XAUUSD")
	sig.SpreadPoints = 50
	assert.False(t, g.Check(context.Background(), sig).Allowed)

	sig.SpreadPoints = 0
	v = g.Check(context.Background(), sig)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "Cannot determine")
}

func TestPipeline_OrderAndShortCircuit(t *testing.T) {
	t.Parallel()

	p := NewPipeline(nil,
		ConnGate{Conn: fakeConn(false)},
		ValidityGate{},
	)
	sig := buySignal("XAUUSD")
	sig.Direction = "hold" // would also fail validity, but connectivity runs first

	v := p.Evaluate(context.Background(), sig)
	assert.False(t, v.Allowed)
	assert.Equal(t, "Venue not connected", v.Reason)
}

func TestPipeline_Deterministic(t *testing.T) {
	t.Parallel()

	p := NewPipeline(nil,
		HoursGate{Enabled: true, Start: "22:00", End: "05:00", Now: at(23, 30)},
		ValidityGate{},
	)
	first := p.Evaluate(context.Background(), buySignal("XAUUSD"))
	second := p.Evaluate(context.Background(), buySignal("XAUUSD"))
	assert.Equal(t, first, second)
	assert.True(t, first.Allowed)
}
