package venue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"autotrader/market"
)

// State of the connection to the venue. Owned exclusively by Conn.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Conn manages the authenticated session to the venue: connect with bounded
// retry, idempotent disconnect, and session-gated access to account, symbol
// and tick queries. Connection management is serialized; a Connect call
// already in flight is never duplicated, a second caller waits and then
// observes the outcome.
type Conn struct {
	mu      sync.Mutex
	term    Terminal
	creds   Credentials
	retry   RetryPolicy
	log     *zap.Logger
	state   State
	lastErr string
}

func NewConn(term Terminal, creds Credentials, retry RetryPolicy, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{term: term, creds: creds, retry: retry, log: log}
}

// Connect opens the session. Idempotent: returns immediately when already
// connected. Network and auth failures are retried up to the policy's
// budget; malformed credentials are a configuration error and fail at once.
// Returns ok=false with the last captured failure reason after exhausting
// retries. Once started the attempt runs its full retry budget or succeeds
// early; there is no mid-retry cancellation.
func (c *Conn) Connect(ctx context.Context) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Connected {
		c.log.Debug("already connected")
		return true, ""
	}

	c.lastErr = ""
	if err := c.creds.Validate(); err != nil {
		c.lastErr = err.Error()
		c.state = Failed
		c.log.Error("credential configuration error", zap.String("reason", c.lastErr))
		return false, c.lastErr
	}

	c.state = Connecting
	attempts := c.retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		c.log.Info("venue connection attempt",
			zap.Int("attempt", attempt),
			zap.Int("of", attempts),
			zap.String("server", c.creds.Server))

		if err := c.term.Initialize(ctx, c.creds); err != nil {
			c.lastErr = Describe(fmt.Errorf("initialize failed: %w", err))
			c.log.Error("venue initialize failed",
				zap.Int("attempt", attempt), zap.String("reason", c.lastErr))
			_ = c.term.Shutdown()
			if attempt < attempts {
				c.retry.sleep()
			}
			continue
		}

		// Verify the session actually works by fetching the account.
		snap, err := c.term.AccountInfo(ctx)
		if err != nil {
			c.lastErr = Describe(fmt.Errorf("account info failed after initialize: %w", err))
			c.log.Error("venue account verification failed",
				zap.Int("attempt", attempt), zap.String("reason", c.lastErr))
			_ = c.term.Shutdown()
			if attempt < attempts {
				c.retry.sleep()
			}
			continue
		}

		c.state = Connected
		c.lastErr = ""
		c.log.Info("venue connected",
			zap.Int64("account", snap.Login),
			zap.String("name", snap.Name),
			zap.String("broker", snap.Broker),
			zap.String("currency", snap.Currency))
		return true, ""
	}

	c.state = Failed
	if c.lastErr == "" {
		c.lastErr = "failed to connect after all retries, no specific error captured"
	}
	c.log.Error("venue connection failed", zap.String("reason", c.lastErr))
	return false, c.lastErr
}

// Disconnect closes the session. Idempotent.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return
	}
	_ = c.term.Shutdown()
	c.state = Disconnected
	c.log.Info("venue connection terminated")
}

// IsConnected is a cheap local flag check, not a live probe.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Connected
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the most recent failure reason, retained for
// user-facing reporting.
func (c *Conn) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Account fetches a fresh account snapshot from the venue.
func (c *Conn) Account(ctx context.Context) (AccountSnapshot, error) {
	if !c.IsConnected() {
		return AccountSnapshot{}, ErrNotConnected
	}
	return c.term.AccountInfo(ctx)
}

// Symbol fetches the venue's metadata for a symbol.
func (c *Conn) Symbol(ctx context.Context, symbol string) (market.SymbolSpec, error) {
	if !c.IsConnected() {
		return market.SymbolSpec{}, ErrNotConnected
	}
	return c.term.SymbolInfo(ctx, symbol)
}

// Tick fetches a fresh quote.
func (c *Conn) Tick(ctx context.Context, symbol string) (market.Tick, error) {
	if !c.IsConnected() {
		return market.Tick{}, ErrNotConnected
	}
	return c.term.Tick(ctx, symbol)
}

// Spread returns the current spread in points: from the live tick when
// available, else from the symbol's static metadata.
func (c *Conn) Spread(ctx context.Context, symbol string) (int, error) {
	if !c.IsConnected() {
		return 0, ErrNotConnected
	}
	spec, specErr := c.term.SymbolInfo(ctx, symbol)

	tick, err := c.term.Tick(ctx, symbol)
	if err == nil {
		if s := tick.SpreadIn(spec.Point); s > 0 || tick.Ask > tick.Bid {
			return s, nil
		}
	}
	if specErr == nil && spec.SpreadPoints > 0 {
		return spec.SpreadPoints, nil
	}
	if err == nil && specErr == nil {
		// Both sources answered but neither carries a usable spread.
		return 0, fmt.Errorf("no spread available for %s", symbol)
	}
	return 0, errors.Join(err, specErr)
}

// Positions lists open positions, filtered by magic tag when non-zero.
func (c *Conn) Positions(ctx context.Context, magic int64) ([]Position, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	return c.term.Positions(ctx, "", magic)
}

// Terminal exposes the raw venue API for order submission. Callers must
// hold a connected session; the executor checks IsConnected first.
func (c *Conn) Terminal() Terminal {
	return c.term
}
