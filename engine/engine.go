package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"autotrader/config"
	"autotrader/guard"
	"autotrader/market"
	"autotrader/news"
	"autotrader/risk"
	"autotrader/signal"
	"autotrader/venue"
)

// Lock gates auto-execution so only one automated order is in flight at a
// time. A held lock means skip, not wait. *sync.Mutex satisfies it.
type Lock interface {
	TryLock() bool
	Unlock()
}

// Engine ties the pieces together: it admits signals through the guard
// pipeline, sizes them, submits orders and records outcomes on the ledger.
type Engine struct {
	cfg      *config.Config
	conn     *venue.Conn
	exec     *Executor
	sizer    *risk.Sizer
	pipeline *guard.Pipeline
	ledger   *signal.Ledger
	store    *signal.Store
	sources  []signal.Source
	lock     Lock
	log      *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastTrades map[string]time.Time
}

// New builds an engine and its guard pipeline. The gate order is fixed:
// hours, news, connectivity, validity, re-entry, spread. feed may be nil
// (no news halts), store may be nil (no persistence), lock may be nil
// (a private mutex is used).
func New(cfg *config.Config, conn *venue.Conn, exec *Executor, sizer *risk.Sizer,
	ledger *signal.Ledger, store *signal.Store, feed news.Feed, lock Lock, log *zap.Logger) *Engine {

	if feed == nil {
		feed = news.None{}
	}
	if lock == nil {
		lock = &sync.Mutex{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		cfg:        cfg,
		conn:       conn,
		exec:       exec,
		sizer:      sizer,
		ledger:     ledger,
		store:      store,
		lock:       lock,
		log:        log,
		now:        time.Now,
		lastTrades: make(map[string]time.Time),
	}
	e.pipeline = guard.NewPipeline(log,
		guard.HoursGate{
			Enabled: cfg.Trading.TimeFilterEnabled,
			Start:   cfg.Trading.TradeStart,
			End:     cfg.Trading.TradeEnd,
		},
		guard.NewsGate{
			Enabled: cfg.News.HaltOnNews,
			Halted:  func() bool { return feed.HaltActive(e.now()) },
		},
		guard.ConnGate{Conn: conn},
		guard.ValidityGate{},
		guard.ReentryGate{Trades: e, Interval: cfg.MinInterval},
		guard.SpreadGate{Spread: conn.Spread, Ceiling: cfg.MaxSpread},
	)
	return e
}

// AddSource registers a signal generator for RefreshSignals.
func (e *Engine) AddSource(src signal.Source) {
	e.sources = append(e.sources, src)
}

func (e *Engine) Ledger() *signal.Ledger {
	return e.ledger
}

// LastTrade returns the time of the last successful order on a symbol.
func (e *Engine) LastTrade(symbol string) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.lastTrades[symbol]
	return t, ok
}

func (e *Engine) markTraded(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastTrades[symbol] = e.now().UTC()
}

// ExecuteSignal runs a signal through the guards and, when admitted, sizes
// and submits the order. The outcome is written back to the ledger either
// way. Returns whether an order was placed and the note recorded.
func (e *Engine) ExecuteSignal(ctx context.Context, sig signal.Signal, auto bool) (bool, string) {
	label := "ManualTrade"
	if auto {
		label = "AutoTrade"
	}

	if v := e.pipeline.Evaluate(ctx, sig); !v.Allowed {
		e.ledger.Mark(sig.Time, sig.Symbol, false, v.Reason)
		return false, v.Reason
	}

	spec, err := e.conn.Symbol(ctx, sig.Symbol)
	if err != nil {
		return e.fail(sig, fmt.Sprintf("Cannot get symbol info for %s", sig.Symbol))
	}
	acct, err := e.conn.Account(ctx)
	if err != nil {
		return e.fail(sig, "Cannot get account info")
	}
	tick, err := e.conn.Tick(ctx, sig.Symbol)
	if err != nil {
		return e.fail(sig, fmt.Sprintf("Cannot get current price for %s", sig.Symbol))
	}

	stopPoints := sig.StopPoints
	if stopPoints <= 0 {
		stopPoints = e.cfg.StopPoints(sig.Symbol)
	}
	takePoints := sig.TakePoints
	if takePoints <= 0 {
		takePoints = e.cfg.TakePoints(sig.Symbol)
	}

	volume := e.sizer.ComputeVolume(ctx, spec, acct, e.cfg.Risk.Percent, stopPoints)

	price := tick.Side(sig.Direction)
	var stopLoss, takeProfit float64
	if sig.Direction == market.Buy {
		stopLoss = price - stopPoints*spec.Point
		if takePoints > 0 {
			takeProfit = price + takePoints*spec.Point
		}
	} else {
		stopLoss = price + stopPoints*spec.Point
		if takePoints > 0 {
			takeProfit = price - takePoints*spec.Point
		}
	}
	stopLoss = spec.RoundPrice(stopLoss)
	takeProfit = spec.RoundPrice(takeProfit)

	res, err := e.exec.Submit(ctx, venue.OrderRequest{
		Symbol:     sig.Symbol,
		Direction:  sig.Direction,
		Volume:     volume,
		Price:      price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Deviation:  e.cfg.Trading.DeviationPoints,
		Magic:      e.cfg.Venue.Magic,
		Comment:    orderComment(auto, sig.Direction, sig.Time),
	})
	if err != nil {
		return e.fail(sig, fmt.Sprintf("%s failed: %v", label, err))
	}

	e.markTraded(sig.Symbol)
	note := fmt.Sprintf("%s: %s at %.*f (order %d)",
		label, venue.RetcodeText(res.Retcode), spec.Digits, res.Price, res.OrderID)
	e.ledger.Mark(sig.Time, sig.Symbol, true, note)
	e.log.Info("signal executed",
		zap.String("symbol", sig.Symbol),
		zap.String("direction", string(sig.Direction)),
		zap.Float64("volume", volume),
		zap.String("note", note))
	return true, note
}

func (e *Engine) fail(sig signal.Signal, note string) (bool, string) {
	e.ledger.Mark(sig.Time, sig.Symbol, false, note)
	e.log.Warn("signal not executed",
		zap.String("symbol", sig.Symbol), zap.String("note", note))
	return false, note
}

// AutoExecute applies the automation preconditions before handing the signal
// to ExecuteSignal: auto-trading enabled, live session, confidence above
// threshold and the auto-trade lock free. A held lock skips the signal
// immediately rather than queueing behind the holder.
func (e *Engine) AutoExecute(ctx context.Context, sig signal.Signal) (bool, string) {
	if !e.cfg.Trading.AutoTrade {
		return e.fail(sig, "Auto-trading disabled")
	}
	if !e.conn.IsConnected() {
		return e.fail(sig, "Venue not connected")
	}
	if sig.Confidence < e.cfg.Trading.MinConfidence {
		return e.fail(sig, fmt.Sprintf("Confidence %.1f%% below threshold %.1f%%",
			sig.Confidence, e.cfg.Trading.MinConfidence))
	}
	if !e.lock.TryLock() {
		return e.fail(sig, "Auto-trade lock active, signal skipped")
	}
	defer e.lock.Unlock()

	return e.ExecuteSignal(ctx, sig, true)
}

// RefreshSignals loads the persisted ledger, asks every source for a fresh
// signal per symbol, merges, auto-executes the fresh ones and persists the
// merged view. Source failures are logged and skipped; the refresh carries
// on with whatever it got.
func (e *Engine) RefreshSignals(ctx context.Context, symbols []string) ([]signal.Signal, error) {
	if e.store != nil {
		persisted, err := e.store.Load()
		if err != nil {
			e.log.Warn("signal store load failed, continuing without history", zap.Error(err))
		} else {
			e.ledger.Merge(persisted)
		}
	}

	var fresh []signal.Signal
	for _, sym := range symbols {
		for _, src := range e.sources {
			s, err := src.Generate(ctx, sym)
			if err != nil {
				e.log.Warn("signal generation failed",
					zap.String("symbol", sym), zap.Error(err))
				continue
			}
			if s == nil {
				continue
			}
			fresh = append(fresh, *s)
		}
	}
	e.ledger.Merge(fresh)

	for _, s := range fresh {
		if e.cfg.Trading.AutoTrade {
			e.AutoExecute(ctx, s)
		}
	}

	if e.store != nil {
		if err := e.store.Save(e.ledger.All()); err != nil {
			return fresh, fmt.Errorf("persist signals: %w", err)
		}
	}
	return fresh, nil
}

// ConnectionStatus is a one-line state summary for display.
func (e *Engine) ConnectionStatus() string {
	st := e.conn.State()
	if reason := e.conn.LastError(); reason != "" && st != venue.Connected {
		return fmt.Sprintf("%s (%s)", st, reason)
	}
	return st.String()
}
