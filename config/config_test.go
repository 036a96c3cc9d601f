package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestLoadFromFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
venue:
  login: "5001234"
  password: secret
  server: Demo-Server
  magic: 777001
  retries: 5
  retry_delay_seconds: 0.5
risk:
  percent: 2.0
  default_stop_points: 80
  default_take_points: 160
trading:
  auto_trade: true
  min_confidence: 75
  time_filter_enabled: true
  trade_start: "22:00"
  trade_end: "05:00"
  min_interval_minutes: 20
symbols:
  XAUUSD:
    stop_points: 500
    max_spread_points: 30
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "5001234", cfg.Venue.Login)
	assert.Equal(t, int64(777001), cfg.Venue.Magic)
	assert.Equal(t, 500*time.Millisecond, cfg.Venue.RetryDelay())
	assert.True(t, cfg.Trading.AutoTrade)
	assert.InDelta(t, 2.0, cfg.Risk.Percent, 1e-9)

	// Symbol override wins, default fills the rest.
	assert.InDelta(t, 500, cfg.StopPoints("XAUUSD"), 1e-9)
	assert.InDelta(t, 80, cfg.StopPoints("EURUSD"), 1e-9)
	assert.Equal(t, 30, cfg.MaxSpread("XAUUSD"))
	assert.Equal(t, 0, cfg.MaxSpread("EURUSD"), "no ceiling configured means unlimited")
	assert.Equal(t, 20*time.Minute, cfg.MinInterval("XAUUSD"))
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero retries", func(c *Config) { c.Venue.Retries = 0 }},
		{"negative risk", func(c *Config) { c.Risk.Percent = -1 }},
		{"risk above 100", func(c *Config) { c.Risk.Percent = 150 }},
		{"zero stop points", func(c *Config) { c.Risk.DefaultStopPoints = 0 }},
		{"bad trade start", func(c *Config) {
			c.Trading.TimeFilterEnabled = true
			c.Trading.TradeStart = "25:99"
			c.Trading.TradeEnd = "17:00"
		}},
		{"autoclose without target", func(c *Config) {
			c.AutoClose.Enabled = true
			c.AutoClose.TargetPoints = 0
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
