package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"autotrader/config"
	"autotrader/journal"
	"autotrader/logger"
	"autotrader/market"
	"autotrader/venue"
)

func buildLogger() (*zap.Logger, error) {
	if verbose {
		return logger.NewDebug()
	}
	return logger.New()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch {
	case cfg.Journal.OrdersCSV != "" && cfg.Journal.EquityCSV != "":
		return journal.NewCSV(cfg.Journal.OrdersCSV, cfg.Journal.EquityCSV)
	case cfg.Journal.OrdersDB != "":
		return journal.NewSQLite(cfg.Journal.OrdersDB)
	default:
		return journal.Nop{}, nil
	}
}

// demoSpecs are the instruments the built-in simulated venue knows about.
var demoSpecs = map[string]struct {
	spec market.SymbolSpec
	tick market.Tick
}{
	"EURUSD": {
		spec: market.SymbolSpec{Name: "EURUSD", Point: 0.0001, Digits: 4,
			VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01, VolumeDigits: 2,
			ContractSize: 100000, ProfitCurrency: "USD"},
		tick: market.Tick{Symbol: "EURUSD", Bid: 1.1000, Ask: 1.1001},
	},
	"GBPUSD": {
		spec: market.SymbolSpec{Name: "GBPUSD", Point: 0.0001, Digits: 4,
			VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01, VolumeDigits: 2,
			ContractSize: 100000, ProfitCurrency: "USD"},
		tick: market.Tick{Symbol: "GBPUSD", Bid: 1.2500, Ask: 1.2502},
	},
	"XAUUSD": {
		spec: market.SymbolSpec{Name: "XAUUSD", Point: 0.01, Digits: 2,
			VolumeMin: 0.01, VolumeMax: 50, VolumeStep: 0.01, VolumeDigits: 2,
			ContractSize: 100, ProfitCurrency: "USD"},
		tick: market.Tick{Symbol: "XAUUSD", Bid: 2400.10, Ask: 2400.35},
	},
	"BTCUSD": {
		spec: market.SymbolSpec{Name: "BTCUSD", Point: 0.01, Digits: 2,
			VolumeMin: 0.01, VolumeMax: 10, VolumeStep: 0.01, VolumeDigits: 2,
			ContractSize: 1, ProfitCurrency: "USD"},
		tick: market.Tick{Symbol: "BTCUSD", Bid: 64000.00, Ask: 64008.00},
	},
}

// seedTerminal builds the simulated venue with demo account and quotes.
func seedTerminal(symbols []string) *venue.SimTerminal {
	term := venue.NewSimTerminal(venue.AccountSnapshot{
		Login:    10000001,
		Name:     "Demo",
		Broker:   "Sim",
		Currency: "USD",
		Balance:  10000,
		Equity:   10000,
	})
	for _, sym := range symbols {
		d, ok := demoSpecs[sym]
		if !ok {
			continue
		}
		term.SetSymbol(d.spec)
		t := d.tick
		t.Time = time.Now().UTC()
		term.SetTick(t)
	}
	return term
}

func credentials(cfg *config.Config) venue.Credentials {
	creds := venue.Credentials{
		Login:    cfg.Venue.Login,
		Password: cfg.Venue.Password,
		Server:   cfg.Venue.Server,
	}
	if creds.Login == "" {
		creds = venue.Credentials{Login: "10000001", Password: "demo", Server: "Sim-Server"}
	}
	return creds
}

func connectVenue(ctx context.Context, cfg *config.Config, term venue.Terminal, log *zap.Logger) (*venue.Conn, error) {
	conn := venue.NewConn(term, credentials(cfg), venue.RetryPolicy{
		MaxAttempts: cfg.Venue.Retries,
		Delay:       cfg.Venue.RetryDelay(),
	}, log)
	if ok, reason := conn.Connect(ctx); !ok {
		return nil, fmt.Errorf("venue connect failed: %s", reason)
	}
	return conn, nil
}
