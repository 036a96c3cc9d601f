package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"autotrader/config"
	"autotrader/market"
	"autotrader/venue"
)

// Monitor watches the aggregate floating profit of the magic-tagged position
// set and triggers a close-all once the configured point target is reached.
type Monitor struct {
	conn  *venue.Conn
	exec  *Executor
	cfg   config.AutoCloseConfig
	magic int64
	log   *zap.Logger
}

func NewMonitor(conn *venue.Conn, exec *Executor, cfg config.AutoCloseConfig, magic int64, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{conn: conn, exec: exec, cfg: cfg, magic: magic, log: log}
}

// FloatingPoints sums the open profit of all tagged positions, in points.
// Longs are valued at bid, shorts at ask: the price the position would
// actually close at. Positions with no symbol metadata or tick are skipped
// and logged, not treated as zero profit silently.
func (m *Monitor) FloatingPoints(ctx context.Context) (float64, error) {
	positions, err := m.conn.Positions(ctx, m.magic)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, p := range positions {
		spec, err := m.conn.Symbol(ctx, p.Symbol)
		if err != nil || spec.Point <= 0 {
			m.log.Warn("skipping position, no usable symbol metadata",
				zap.Int64("ticket", p.Ticket), zap.String("symbol", p.Symbol))
			continue
		}
		tick, err := m.conn.Tick(ctx, p.Symbol)
		if err != nil {
			m.log.Warn("skipping position, no tick",
				zap.Int64("ticket", p.Ticket), zap.String("symbol", p.Symbol))
			continue
		}
		if p.Direction == market.Buy {
			total += (tick.Bid - p.OpenPrice) / spec.Point
		} else {
			total += (p.OpenPrice - tick.Ask) / spec.Point
		}
	}
	return total, nil
}

// Sweep runs one monitor pass. Returns a non-nil report only when the
// target was reached and a close-all ran. Disabled or disconnected monitors
// are a no-op.
func (m *Monitor) Sweep(ctx context.Context) (*CloseReport, error) {
	if !m.cfg.Enabled || m.cfg.TargetPoints <= 0 {
		return nil, nil
	}
	if !m.conn.IsConnected() {
		return nil, nil
	}

	if acct, err := m.conn.Account(ctx); err == nil {
		m.exec.RecordEquity(acct)
	}

	points, err := m.FloatingPoints(ctx)
	if err != nil {
		return nil, err
	}
	if points < m.cfg.TargetPoints {
		m.log.Debug("profit below target",
			zap.Float64("points", points), zap.Float64("target", m.cfg.TargetPoints))
		return nil, nil
	}

	m.log.Info("profit target reached, closing all positions",
		zap.Float64("points", points), zap.Float64("target", m.cfg.TargetPoints))
	report, err := m.exec.CloseAll(ctx, m.magic, fmt.Sprintf("AutoClose M%d PtsTgt", m.magic))
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Run sweeps on the configured interval until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.log.Error("monitor sweep failed", zap.Error(err))
			}
		}
	}
}
