package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete settings surface of the trading client.
type Config struct {
	Venue     VenueConfig     `json:"venue" yaml:"venue"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Trading   TradingConfig   `json:"trading" yaml:"trading"`
	News      NewsConfig      `json:"news" yaml:"news"`
	AutoClose AutoCloseConfig `json:"auto_close" yaml:"auto_close"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Symbols   map[string]SymbolConfig `json:"symbols,omitempty" yaml:"symbols,omitempty"`
}

// VenueConfig holds credentials and connection behavior.
type VenueConfig struct {
	Login             string  `json:"login" yaml:"login"`
	Password          string  `json:"password" yaml:"password"`
	Server            string  `json:"server" yaml:"server"`
	Magic             int64   `json:"magic" yaml:"magic"`
	Retries           int     `json:"retries" yaml:"retries"`
	RetryDelaySeconds float64 `json:"retry_delay_seconds" yaml:"retry_delay_seconds"`
}

func (v VenueConfig) RetryDelay() time.Duration {
	return time.Duration(v.RetryDelaySeconds * float64(time.Second))
}

// RiskConfig controls position sizing and default order distances.
type RiskConfig struct {
	Percent           float64 `json:"percent" yaml:"percent"` // % of balance per trade
	DefaultStopPoints float64 `json:"default_stop_points" yaml:"default_stop_points"`
	DefaultTakePoints float64 `json:"default_take_points" yaml:"default_take_points"`
}

// TradingConfig controls the execution path and its guards.
type TradingConfig struct {
	AutoTrade          bool    `json:"auto_trade" yaml:"auto_trade"`
	MinConfidence      float64 `json:"min_confidence" yaml:"min_confidence"`
	TimeFilterEnabled  bool    `json:"time_filter_enabled" yaml:"time_filter_enabled"`
	TradeStart         string  `json:"trade_start" yaml:"trade_start"` // "HH:MM" UTC
	TradeEnd           string  `json:"trade_end" yaml:"trade_end"`
	MinIntervalMinutes int     `json:"min_interval_minutes" yaml:"min_interval_minutes"`
	DeviationPoints    int     `json:"deviation_points" yaml:"deviation_points"`
	SignalIntervalMin  int     `json:"signal_interval_minutes" yaml:"signal_interval_minutes"`
}

// NewsConfig controls the news blackout guard.
type NewsConfig struct {
	HaltOnNews    bool `json:"halt_on_news" yaml:"halt_on_news"`
	BeforeMinutes int  `json:"halt_minutes_before" yaml:"halt_minutes_before"`
	AfterMinutes  int  `json:"halt_minutes_after" yaml:"halt_minutes_after"`
}

// AutoCloseConfig controls the position monitor.
type AutoCloseConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	TargetPoints    float64 `json:"target_points" yaml:"target_points"`
	IntervalSeconds int     `json:"interval_seconds" yaml:"interval_seconds"`
}

func (a AutoCloseConfig) Interval() time.Duration {
	if a.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.IntervalSeconds) * time.Second
}

// JournalConfig names the persistence files.
type JournalConfig struct {
	SignalsDB string `json:"signals_db" yaml:"signals_db"`
	OrdersDB  string `json:"orders_db,omitempty" yaml:"orders_db,omitempty"`
	OrdersCSV string `json:"orders_csv,omitempty" yaml:"orders_csv,omitempty"`
	EquityCSV string `json:"equity_csv,omitempty" yaml:"equity_csv,omitempty"`
}

// SymbolConfig overrides per-symbol distances, ceilings and intervals.
// Zero values fall through to the defaults.
type SymbolConfig struct {
	StopPoints         float64 `json:"stop_points,omitempty" yaml:"stop_points,omitempty"`
	TakePoints         float64 `json:"take_points,omitempty" yaml:"take_points,omitempty"`
	MaxSpreadPoints    int     `json:"max_spread_points,omitempty" yaml:"max_spread_points,omitempty"`
	MinIntervalMinutes int     `json:"min_interval_minutes,omitempty" yaml:"min_interval_minutes,omitempty"`
}

// StopPoints returns the stop distance for a symbol: the symbol override
// when set, else the global default.
func (c *Config) StopPoints(symbol string) float64 {
	if s, ok := c.Symbols[symbol]; ok && s.StopPoints > 0 {
		return s.StopPoints
	}
	return c.Risk.DefaultStopPoints
}

func (c *Config) TakePoints(symbol string) float64 {
	if s, ok := c.Symbols[symbol]; ok && s.TakePoints > 0 {
		return s.TakePoints
	}
	return c.Risk.DefaultTakePoints
}

// MaxSpread returns the spread ceiling for a symbol's class; 0 means
// unlimited.
func (c *Config) MaxSpread(symbol string) int {
	if s, ok := c.Symbols[symbol]; ok {
		return s.MaxSpreadPoints
	}
	return 0
}

// MinInterval returns the per-symbol re-entry interval, falling back to
// the global default.
func (c *Config) MinInterval(symbol string) time.Duration {
	if s, ok := c.Symbols[symbol]; ok && s.MinIntervalMinutes > 0 {
		return time.Duration(s.MinIntervalMinutes) * time.Minute
	}
	return time.Duration(c.Trading.MinIntervalMinutes) * time.Minute
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration before the engine starts.
func (c *Config) Validate() error {
	if c.Venue.Retries < 1 {
		return fmt.Errorf("venue.retries must be at least 1")
	}
	if c.Risk.Percent <= 0 || c.Risk.Percent > 100 {
		return fmt.Errorf("risk.percent must be in (0, 100]")
	}
	if c.Risk.DefaultStopPoints <= 0 {
		return fmt.Errorf("risk.default_stop_points must be positive")
	}
	if c.Trading.TimeFilterEnabled {
		if _, err := time.Parse("15:04", c.Trading.TradeStart); err != nil {
			return fmt.Errorf("trading.trade_start: %w", err)
		}
		if _, err := time.Parse("15:04", c.Trading.TradeEnd); err != nil {
			return fmt.Errorf("trading.trade_end: %w", err)
		}
	}
	if c.Trading.MinConfidence < 0 || c.Trading.MinConfidence > 100 {
		return fmt.Errorf("trading.min_confidence must be in [0, 100]")
	}
	if c.AutoClose.Enabled && c.AutoClose.TargetPoints <= 0 {
		return fmt.Errorf("auto_close.target_points must be positive when enabled")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Venue: VenueConfig{
			Magic:             234000,
			Retries:           3,
			RetryDelaySeconds: 2.0,
		},
		Risk: RiskConfig{
			Percent:           1.0,
			DefaultStopPoints: 50,
			DefaultTakePoints: 100,
		},
		Trading: TradingConfig{
			MinConfidence:      70,
			MinIntervalMinutes: 15,
			DeviationPoints:    20,
			SignalIntervalMin:  15,
		},
		News: NewsConfig{
			HaltOnNews:    true,
			BeforeMinutes: 15,
			AfterMinutes:  15,
		},
		AutoClose: AutoCloseConfig{
			TargetPoints:    1000,
			IntervalSeconds: 30,
		},
		Journal: JournalConfig{
			SignalsDB: "./signals.sqlite",
			OrdersDB:  "./orders.sqlite",
		},
		Symbols: map[string]SymbolConfig{
			"XAUUSD": {MaxSpreadPoints: 30},
			"BTCUSD": {MaxSpreadPoints: 1000},
		},
	}
}
