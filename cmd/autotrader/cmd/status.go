package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"autotrader/market"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current trading session and effective settings",
	RunE:  runStatus,
}

var statusConfigPath string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(statusConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	now := time.Now().UTC()
	fmt.Printf("Time (UTC): %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Printf("Session:    %s\n\n", market.CurrentSession(now))

	fmt.Printf("Auto-trade:     %v (min confidence %.0f%%)\n",
		cfg.Trading.AutoTrade, cfg.Trading.MinConfidence)
	if cfg.Trading.TimeFilterEnabled {
		fmt.Printf("Trading hours:  %s-%s UTC\n", cfg.Trading.TradeStart, cfg.Trading.TradeEnd)
	} else {
		fmt.Println("Trading hours:  unrestricted")
	}
	fmt.Printf("Risk per trade: %.2f%% (stop %.0f pts, take %.0f pts default)\n",
		cfg.Risk.Percent, cfg.Risk.DefaultStopPoints, cfg.Risk.DefaultTakePoints)
	fmt.Printf("Re-entry:       %d min per symbol\n", cfg.Trading.MinIntervalMinutes)
	fmt.Printf("News halt:      %v (%dm before, %dm after)\n",
		cfg.News.HaltOnNews, cfg.News.BeforeMinutes, cfg.News.AfterMinutes)
	fmt.Printf("Auto-close:     %v (target %.0f pts, every %s)\n",
		cfg.AutoClose.Enabled, cfg.AutoClose.TargetPoints, cfg.AutoClose.Interval())

	if len(cfg.Symbols) > 0 {
		fmt.Println("\nSymbol overrides:")
		for sym, s := range cfg.Symbols {
			fmt.Printf("  %-8s", sym)
			if s.MaxSpreadPoints > 0 {
				fmt.Printf(" max spread %d pts", s.MaxSpreadPoints)
			}
			if s.StopPoints > 0 {
				fmt.Printf(" stop %.0f pts", s.StopPoints)
			}
			if s.TakePoints > 0 {
				fmt.Printf(" take %.0f pts", s.TakePoints)
			}
			if s.MinIntervalMinutes > 0 {
				fmt.Printf(" interval %dm", s.MinIntervalMinutes)
			}
			fmt.Println()
		}
	}
	return nil
}
