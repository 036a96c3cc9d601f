package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"autotrader/signal"
)

// Verdict is the outcome of an admission check. Reason is attached verbatim
// to the signal's note when blocking, so every non-executed signal carries a
// traceable cause.
type Verdict struct {
	Allowed bool
	Reason  string
}

func Allow() Verdict {
	return Verdict{Allowed: true}
}

func Block(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Gate is one admission check. Gates must be deterministic for identical
// inputs and clock/venue state.
type Gate interface {
	Name() string
	Check(ctx context.Context, sig signal.Signal) Verdict
}

// Pipeline evaluates gates strictly in order; the first failing gate
// short-circuits and its reason is returned.
type Pipeline struct {
	gates []Gate
	log   *zap.Logger
}

func NewPipeline(log *zap.Logger, gates ...Gate) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{gates: gates, log: log}
}

func (p *Pipeline) Evaluate(ctx context.Context, sig signal.Signal) Verdict {
	for _, g := range p.gates {
		if v := g.Check(ctx, sig); !v.Allowed {
			// A guard rejection is an expected outcome, not an error.
			p.log.Info("signal blocked",
				zap.String("gate", g.Name()),
				zap.String("symbol", sig.Symbol),
				zap.String("reason", v.Reason))
			return v
		}
	}
	return Allow()
}

// HoursGate blocks outside the configured UTC trading window. Overnight
// windows (start > end) wrap past midnight. Disabled means always pass.
type HoursGate struct {
	Enabled bool
	Start   string // "HH:MM"
	End     string // "HH:MM"
	Now     func() time.Time
}

func (g HoursGate) Name() string { return "trading-hours" }

func (g HoursGate) Check(_ context.Context, _ signal.Signal) Verdict {
	if !g.Enabled {
		return Allow()
	}
	start, err1 := parseClock(g.Start)
	end, err2 := parseClock(g.End)
	if err1 != nil || err2 != nil {
		// Malformed window: allow rather than silently freeze trading.
		return Allow()
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	t := now().UTC()
	minute := t.Hour()*60 + t.Minute()

	var inside bool
	if start <= end {
		inside = minute >= start && minute <= end
	} else {
		inside = minute >= start || minute <= end
	}
	if inside {
		return Allow()
	}
	return Block("Blocked by time filter: current UTC time %02d:%02d is outside allowed range %s-%s",
		t.Hour(), t.Minute(), g.Start, g.End)
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewsGate blocks while the news feed reports an active high-impact window,
// when halt-on-news is enabled.
type NewsGate struct {
	Enabled bool
	Halted  func() bool
}

func (g NewsGate) Name() string { return "news" }

func (g NewsGate) Check(_ context.Context, _ signal.Signal) Verdict {
	if !g.Enabled || g.Halted == nil {
		return Allow()
	}
	if g.Halted() {
		return Block("Blocked by news event")
	}
	return Allow()
}

// ConnGate requires a live venue session.
type ConnGate struct {
	Conn interface{ IsConnected() bool }
}

func (g ConnGate) Name() string { return "connectivity" }

func (g ConnGate) Check(_ context.Context, _ signal.Signal) Verdict {
	if g.Conn == nil || !g.Conn.IsConnected() {
		return Block("Venue not connected")
	}
	return Allow()
}

// ValidityGate rejects signals without a usable direction or symbol.
type ValidityGate struct{}

func (ValidityGate) Name() string { return "signal-validity" }

func (ValidityGate) Check(_ context.Context, sig signal.Signal) Verdict {
	if !sig.Direction.Valid() {
		return Block("Invalid signal type %q for %s", string(sig.Direction), sig.Symbol)
	}
	sym := strings.TrimSpace(sig.Symbol)
	if sym == "" || strings.EqualFold(sym, "n/a") || strings.EqualFold(sym, "unknown") {
		return Block("Missing symbol in signal data")
	}
	return Allow()
}

// LastTrades exposes the per-symbol last successful order time; written by
// the engine on successful resolution, read here.
type LastTrades interface {
	LastTrade(symbol string) (time.Time, bool)
}

// ReentryGate enforces a per-symbol minimum interval between orders and
// reports the remaining wait when blocking.
type ReentryGate struct {
	Trades   LastTrades
	Interval func(symbol string) time.Duration
	Now      func() time.Time
}

func (g ReentryGate) Name() string { return "reentry-interval" }

func (g ReentryGate) Check(_ context.Context, sig signal.Signal) Verdict {
	if g.Trades == nil || g.Interval == nil {
		return Allow()
	}
	min := g.Interval(sig.Symbol)
	if min <= 0 {
		return Allow()
	}
	last, ok := g.Trades.LastTrade(sig.Symbol)
	if !ok {
		return Allow()
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	elapsed := now().UTC().Sub(last)
	if elapsed >= min {
		return Allow()
	}
	wait := (min - elapsed).Round(time.Second)
	return Block("Min interval for %s (%s) not met. Wait %dm %ds.",
		sig.Symbol, min, int(wait.Seconds())/60, int(wait.Seconds())%60)
}

// SpreadGate blocks when the current spread exceeds the symbol's ceiling.
// Falls back to the spread recorded on the signal when no live value is
// obtainable; 0 ceiling means unlimited for that symbol class.
type SpreadGate struct {
	Spread  func(ctx context.Context, symbol string) (int, error)
	Ceiling func(symbol string) int
}

func (g SpreadGate) Name() string { return "spread" }

func (g SpreadGate) Check(ctx context.Context, sig signal.Signal) Verdict {
	if g.Ceiling == nil {
		return Allow()
	}
	max := g.Ceiling(sig.Symbol)

	current := -1
	if g.Spread != nil {
		if s, err := g.Spread(ctx, sig.Symbol); err == nil {
			current = s
		}
	}
	if current < 0 {
		if sig.SpreadPoints > 0 {
			current = sig.SpreadPoints
		} else {
			return Block("Cannot determine current market spread for %s", sig.Symbol)
		}
	}
	if max > 0 && current > max {
		return Block("Spread for %s (%d pts) > Max allowed (%d pts)", sig.Symbol, current, max)
	}
	return Allow()
}
