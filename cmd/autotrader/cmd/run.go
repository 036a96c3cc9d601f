package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"autotrader/engine"
	"autotrader/market"
	"autotrader/news"
	"autotrader/risk"
	"autotrader/signal"
	"autotrader/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the venue and execute fresh signals",
	Long: `Run one signal cycle against the built-in simulated venue: connect,
generate signals, pass them through the guard pipeline, size and submit the
admitted ones, then sweep the auto-close monitor.

The signal ledger, orders and equity snapshots are persisted per the
journal section of the config file.

Example:
  autotrader run --config settings.yaml --symbol EURUSD --symbol XAUUSD`,
	RunE: runRun,
}

var (
	runConfigPath string
	runSymbols    []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults apply when omitted")
	runCmd.Flags().StringArrayVarP(&runSymbols, "symbol", "s", []string{"EURUSD"}, "symbols to generate signals for")
}

// demoCandles serves a flat series with a jump on the final bar, so the
// crossover source produces exactly one buy signal per run.
type demoCandles struct{}

func (demoCandles) Candles(_ context.Context, symbol, _ string, count int) ([]market.Candle, error) {
	d, ok := demoSpecs[symbol]
	if !ok {
		return nil, fmt.Errorf("no candle history for %s", symbol)
	}
	base := d.tick.Mid()
	start := time.Now().UTC().Truncate(time.Hour).Add(-time.Duration(count) * time.Hour)

	out := make([]market.Candle, count)
	for i := range out {
		close := base
		if i == count-1 {
			close = base * 1.005
		}
		out[i] = market.Candle{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  base,
			High:  close,
			Low:   base,
			Close: close,
		}
	}
	return out, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := buildLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	term := seedTerminal(runSymbols)
	conn, err := connectVenue(ctx, cfg, term, log)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	jrnl, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	store, err := signal.OpenStore(cfg.Journal.SignalsDB)
	if err != nil {
		return fmt.Errorf("open signal store: %w", err)
	}
	defer store.Close()

	exec := engine.NewExecutor(conn, jrnl, log)
	sizer := risk.NewSizer(conn, log)
	eng := engine.New(cfg, conn, exec, sizer, signal.NewLedger(), store, news.None{}, nil, log)
	eng.AddSource(strategies.NewEMACross(demoCandles{}, conn, log))

	fresh, err := eng.RefreshSignals(ctx, runSymbols)
	if err != nil {
		return err
	}

	fmt.Printf("Signal cycle complete: %d fresh signal(s), connection %s\n\n",
		len(fresh), eng.ConnectionStatus())
	for _, s := range eng.Ledger().All() {
		status := "pending"
		if s.Executed {
			status = "executed"
		} else if s.Note != "" {
			status = "skipped"
		}
		fmt.Printf("  %s  %-7s %-4s conf=%5.1f  [%s] %s\n",
			s.Time.Format("2006-01-02 15:04"), s.Symbol, s.Direction, s.Confidence, status, s.Note)
	}

	mon := engine.NewMonitor(conn, exec, cfg.AutoClose, cfg.Venue.Magic, log)
	if report, err := mon.Sweep(ctx); err != nil {
		return err
	} else if report != nil {
		fmt.Printf("\n%s\n", report.Summary())
		for _, d := range report.Details {
			fmt.Printf("  %s\n", d)
		}
	}

	if acct, err := conn.Account(ctx); err == nil {
		fmt.Printf("\nAccount: balance $%.2f, equity $%.2f, free margin $%.2f\n",
			acct.Balance, acct.Equity, acct.MarginFree)
	}
	return nil
}
