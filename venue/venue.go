package venue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"autotrader/market"
)

// ErrBadCredentials marks a configuration error: the attempt must not be
// retried, the config has to be fixed first.
var ErrBadCredentials = errors.New("bad venue credentials")

// ErrNotConnected is returned by operations that require a live session.
var ErrNotConnected = errors.New("not connected to venue")

// Credentials identify a venue account. Login is the numeric account id
// as text, exactly as it appears in the settings file.
type Credentials struct {
	Login    string
	Password string
	Server   string
}

// Validate reports a configuration error for malformed credentials.
// A non-numeric login is fatal to the connect attempt, never retried.
func (c Credentials) Validate() error {
	if c.Login == "" || c.Password == "" || c.Server == "" {
		return fmt.Errorf("%w: login, password and server must all be set", ErrBadCredentials)
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(c.Login), 10, 64); err != nil {
		return fmt.Errorf("%w: login %q must be numeric", ErrBadCredentials, c.Login)
	}
	return nil
}

// AccountSnapshot is a read-only view of the account, fetched fresh from
// the venue on demand. Never cache one across calls that affect sizing or
// guard decisions.
type AccountSnapshot struct {
	Login          int64
	Name           string
	Broker         string
	Currency       string
	Balance        float64
	Equity         float64
	MarginUsed     float64
	MarginFree     float64
	MarginLevel    float64
	FloatingProfit float64
}

// Position is a venue-owned open position. The core only reads snapshots;
// always re-fetch before acting on them.
type Position struct {
	Ticket    int64
	Symbol    string
	Direction market.Direction
	Volume    float64
	OpenPrice float64
	Magic     int64
}

// OrderRequest is built fresh per attempt and not retained after submission.
// Price 0 means market: the executor resolves bid/ask from a fresh tick.
// Position, when non-zero, is the ticket this order closes.
type OrderRequest struct {
	Symbol     string
	Direction  market.Direction
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Deviation  int
	Magic      int64
	Comment    string
	Position   int64
}

// OrderResult is the venue's answer to a check or send. Immutable.
type OrderResult struct {
	Retcode int
	OrderID int64
	DealID  int64
	Price   float64
	Comment string
}

// Accepted reports whether the result code means the order went through.
func (r OrderResult) Accepted() bool {
	return r.Retcode == RetDone || r.Retcode == RetPlaced
}

// Terminal is the raw venue API. Implementations wrap a broker terminal or
// gateway; SimTerminal provides an in-memory one for tests and demos.
// All calls are expected to complete or fail within a bounded timeout.
type Terminal interface {
	Initialize(ctx context.Context, creds Credentials) error
	Shutdown() error
	AccountInfo(ctx context.Context) (AccountSnapshot, error)
	SymbolInfo(ctx context.Context, symbol string) (market.SymbolSpec, error)
	Tick(ctx context.Context, symbol string) (market.Tick, error)
	OrderCheck(ctx context.Context, req OrderRequest) (OrderResult, error)
	OrderSend(ctx context.Context, req OrderRequest) (OrderResult, error)
	Positions(ctx context.Context, symbol string, magic int64) ([]Position, error)
}
