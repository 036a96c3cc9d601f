package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"autotrader/id"
	"autotrader/journal"
	"autotrader/market"
	"autotrader/venue"
)

// Venue-side limit on the order comment field.
const maxCommentBytes = 31

// Executor drives one order through its lifecycle: resolve the fill price,
// validate with the venue, submit, and journal the outcome. Every attempt is
// journaled whether or not the venue accepted it.
type Executor struct {
	conn *venue.Conn
	jrnl journal.Journal
	log  *zap.Logger
	now  func() time.Time
}

func NewExecutor(conn *venue.Conn, jrnl journal.Journal, log *zap.Logger) *Executor {
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{conn: conn, jrnl: jrnl, log: log, now: time.Now}
}

// Submit sends a market order. Price 0 is resolved from a fresh tick; a
// missing tick fails the attempt immediately. A check rejection is terminal:
// the request shape is wrong and resubmitting the same request cannot
// succeed, so it is never retried here.
func (e *Executor) Submit(ctx context.Context, req venue.OrderRequest) (venue.OrderResult, error) {
	if !e.conn.IsConnected() {
		return venue.OrderResult{}, venue.ErrNotConnected
	}
	req.Comment = truncateComment(req.Comment)

	term := e.conn.Terminal()
	if req.Price == 0 {
		tick, err := term.Tick(ctx, req.Symbol)
		if err != nil {
			return venue.OrderResult{}, fmt.Errorf("no fresh tick for %s: %w", req.Symbol, err)
		}
		req.Price = tick.Side(req.Direction)
	}

	check, err := term.OrderCheck(ctx, req)
	if err != nil {
		return venue.OrderResult{}, fmt.Errorf("order check for %s: %w", req.Symbol, err)
	}
	if !check.Accepted() {
		e.record(req, check)
		return check, fmt.Errorf("order check rejected: %s (retcode %d)",
			venue.RetcodeText(check.Retcode), check.Retcode)
	}

	res, err := term.OrderSend(ctx, req)
	if err != nil {
		return venue.OrderResult{}, fmt.Errorf("order send for %s: %w", req.Symbol, err)
	}
	e.record(req, res)
	if !res.Accepted() {
		return res, fmt.Errorf("order rejected: %s (retcode %d)",
			venue.RetcodeText(res.Retcode), res.Retcode)
	}

	e.log.Info("order filled",
		zap.String("symbol", req.Symbol),
		zap.String("direction", string(req.Direction)),
		zap.Float64("volume", req.Volume),
		zap.Float64("price", res.Price),
		zap.Int64("order", res.OrderID))
	return res, nil
}

// CloseReport summarizes a close-all sweep. Success means Failed == 0.
type CloseReport struct {
	Magic   int64
	Closed  int
	Failed  int
	Details []string
}

func (r CloseReport) Ok() bool {
	return r.Failed == 0
}

func (r CloseReport) Summary() string {
	return fmt.Sprintf("Close All Summary (Magic: %d): Closed %d, Failed %d.",
		r.Magic, r.Closed, r.Failed)
}

// CloseAll closes every open position carrying the magic tag. Failures on
// individual positions do not stop the sweep; each outcome is reported per
// position and the sweep only counts as clean when nothing failed.
func (e *Executor) CloseAll(ctx context.Context, magic int64, comment string) (CloseReport, error) {
	report := CloseReport{Magic: magic}

	positions, err := e.conn.Positions(ctx, magic)
	if err != nil {
		return report, fmt.Errorf("list positions: %w", err)
	}

	term := e.conn.Terminal()
	for _, p := range positions {
		closeDir := p.Direction.Opposite()

		tick, err := term.Tick(ctx, p.Symbol)
		if err != nil {
			report.Failed++
			report.Details = append(report.Details,
				fmt.Sprintf("Pos %d(%s): Fail - no tick: %v", p.Ticket, p.Symbol, err))
			continue
		}

		req := venue.OrderRequest{
			Symbol:    p.Symbol,
			Direction: closeDir,
			Volume:    p.Volume,
			Price:     tick.Side(closeDir),
			Magic:     magic,
			Comment:   truncateComment(comment),
			Position:  p.Ticket,
		}
		res, err := term.OrderSend(ctx, req)
		if err != nil {
			report.Failed++
			report.Details = append(report.Details,
				fmt.Sprintf("Pos %d(%s): Fail - %v", p.Ticket, p.Symbol, err))
			continue
		}
		e.record(req, res)
		if !res.Accepted() {
			report.Failed++
			report.Details = append(report.Details,
				fmt.Sprintf("Pos %d(%s): Fail - %s", p.Ticket, p.Symbol,
					venue.RetcodeText(res.Retcode)))
			continue
		}
		report.Closed++
		report.Details = append(report.Details,
			fmt.Sprintf("Pos %d(%s): Closed.", p.Ticket, p.Symbol))
	}

	e.log.Info("close all finished",
		zap.Int64("magic", magic),
		zap.Int("closed", report.Closed),
		zap.Int("failed", report.Failed))
	return report, nil
}

// RecordEquity journals an account snapshot.
func (e *Executor) RecordEquity(snap venue.AccountSnapshot) {
	err := e.jrnl.RecordEquity(journal.EquitySnapshot{
		Time:           e.now().UTC(),
		Balance:        snap.Balance,
		Equity:         snap.Equity,
		MarginUsed:     snap.MarginUsed,
		MarginFree:     snap.MarginFree,
		MarginLevel:    snap.MarginLevel,
		FloatingProfit: snap.FloatingProfit,
	})
	if err != nil {
		e.log.Error("equity journal write failed", zap.Error(err))
	}
}

// record journals the request/result pair. Journal failures are logged and
// never affect the trading outcome.
func (e *Executor) record(req venue.OrderRequest, res venue.OrderResult) {
	err := e.jrnl.RecordOrder(journal.OrderRecord{
		RequestID:     id.New(),
		Time:          e.now().UTC(),
		Symbol:        req.Symbol,
		Direction:     string(req.Direction),
		Volume:        req.Volume,
		Price:         req.Price,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		Comment:       req.Comment,
		OrderID:       res.OrderID,
		DealID:        res.DealID,
		Retcode:       res.Retcode,
		RetcodeText:   venue.RetcodeText(res.Retcode),
		ResultComment: res.Comment,
	})
	if err != nil {
		e.log.Error("order journal write failed",
			zap.String("symbol", req.Symbol), zap.Error(err))
	}
}

func truncateComment(c string) string {
	if len(c) <= maxCommentBytes {
		return c
	}
	return c[:maxCommentBytes]
}

// orderComment builds the venue comment for a signal-driven order:
// Auto/Man prefix, direction initial and the signal timestamp, stripped of
// anything the venue rejects and capped at the comment byte limit.
func orderComment(auto bool, dir market.Direction, at time.Time) string {
	prefix := "Man"
	if auto {
		prefix = "Auto"
	}
	initial := "B"
	if dir == market.Sell {
		initial = "S"
	}
	c := fmt.Sprintf("%s %s %s", prefix, initial, at.UTC().Format("0102-1504"))
	return truncateComment(sanitizeComment(c))
}

func sanitizeComment(c string) string {
	out := make([]byte, 0, len(c))
	for i := 0; i < len(c); i++ {
		b := c[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9',
			b == ' ', b == '-', b == '.', b == '_':
			out = append(out, b)
		}
	}
	return string(out)
}
