package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autotrader/config"
	"autotrader/market"
	"autotrader/venue"
)

func gbpusdSpec() market.SymbolSpec {
	return market.SymbolSpec{
		Name:           "GBPUSD",
		Point:          0.0001,
		Digits:         4,
		VolumeMin:      0.01,
		VolumeMax:      100,
		VolumeStep:     0.01,
		VolumeDigits:   2,
		ContractSize:   100000,
		ProfitCurrency: "USD",
	}
}

func monitorFixture(t *testing.T, autoClose config.AutoCloseConfig) (*Monitor, *venue.Conn, *captureJournal) {
	t.Helper()

	term := venue.NewSimTerminal(testAccount())
	term.SetSymbol(eurusdSpec())
	term.SetSymbol(gbpusdSpec())
	term.SetTick(market.Tick{Symbol: "EURUSD", Bid: 1.1050, Ask: 1.1051})
	term.SetTick(market.Tick{Symbol: "GBPUSD", Bid: 1.2478, Ask: 1.2480})

	// Long EURUSD opened at 1.1000: (1.1050-1.1000)/0.0001 = 50 points at bid.
	// Short GBPUSD opened at 1.2500: (1.2500-1.2480)/0.0001 = 20 points at ask.
	term.AddPosition(venue.Position{Symbol: "EURUSD", Direction: market.Buy, Volume: 0.10, OpenPrice: 1.1000, Magic: 234000})
	term.AddPosition(venue.Position{Symbol: "GBPUSD", Direction: market.Sell, Volume: 0.10, OpenPrice: 1.2500, Magic: 234000})

	conn := newConnectedConn(t, term)
	jrnl := &captureJournal{}
	exec := NewExecutor(conn, jrnl, zap.NewNop())
	return NewMonitor(conn, exec, autoClose, 234000, zap.NewNop()), conn, jrnl
}

func TestFloatingPoints(t *testing.T) {
	t.Parallel()

	m, _, _ := monitorFixture(t, config.AutoCloseConfig{})
	pts, err := m.FloatingPoints(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 70, pts, 1e-6)
}

func TestSweep_BelowTargetLeavesPositions(t *testing.T) {
	t.Parallel()

	m, conn, _ := monitorFixture(t, config.AutoCloseConfig{Enabled: true, TargetPoints: 1000})
	report, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)

	positions, err := conn.Positions(context.Background(), 234000)
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestSweep_TargetReachedClosesAll(t *testing.T) {
	t.Parallel()

	m, conn, jrnl := monitorFixture(t, config.AutoCloseConfig{Enabled: true, TargetPoints: 50})
	report, err := m.Sweep(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Closed)
	assert.Equal(t, 0, report.Failed)

	positions, err := conn.Positions(context.Background(), 234000)
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.NotEmpty(t, jrnl.equity, "each sweep records an equity snapshot")
}

func TestSweep_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	m, conn, jrnl := monitorFixture(t, config.AutoCloseConfig{Enabled: false, TargetPoints: 1})
	report, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Empty(t, jrnl.equity)

	positions, err := conn.Positions(context.Background(), 234000)
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestSweep_SkipsPositionWithoutTick(t *testing.T) {
	t.Parallel()

	term := venue.NewSimTerminal(testAccount())
	term.SetSymbol(eurusdSpec())
	term.SetTick(market.Tick{Symbol: "EURUSD", Bid: 1.1050, Ask: 1.1051})
	term.AddPosition(venue.Position{Symbol: "EURUSD", Direction: market.Buy, Volume: 0.10, OpenPrice: 1.1000, Magic: 1})
	term.AddPosition(venue.Position{Symbol: "XAUUSD", Direction: market.Buy, Volume: 0.10, OpenPrice: 2400, Magic: 1})

	conn := newConnectedConn(t, term)
	exec := NewExecutor(conn, &captureJournal{}, zap.NewNop())
	m := NewMonitor(conn, exec, config.AutoCloseConfig{}, 1, zap.NewNop())

	pts, err := m.FloatingPoints(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 50, pts, 1e-6, "unpriceable position contributes nothing")
}
