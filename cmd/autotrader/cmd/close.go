package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autotrader/engine"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close all open positions carrying the magic tag",
	Long: `Connect to the venue and close every open position tagged with the
configured magic number. Each position's outcome is reported individually;
the command fails when any close was rejected.

Example:
  autotrader close --config settings.yaml --magic 234000`,
	RunE: runClose,
}

var (
	closeConfigPath string
	closeMagic      int64
)

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().StringVarP(&closeConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	closeCmd.Flags().Int64Var(&closeMagic, "magic", 0, "magic tag to close (default: the configured one)")
}

func runClose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(closeConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := buildLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	magic := closeMagic
	if magic == 0 {
		magic = cfg.Venue.Magic
	}

	ctx := context.Background()
	term := seedTerminal([]string{"EURUSD", "GBPUSD", "XAUUSD", "BTCUSD"})
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

	exec := engine.NewExecutor(conn, jrnl, log)
	report, err := exec.CloseAll(ctx, magic, "ManualCloseAll")
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())
	for _, d := range report.Details {
		fmt.Printf("  %s\n", d)
	}
	if !report.Ok() {
		return fmt.Errorf("%d position(s) failed to close", report.Failed)
	}
	return nil
}
