package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/scribe/internal/app"
	"github.com/newthinker/scribe/internal/config"
	"github.com/newthinker/scribe/internal/logger"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every configured provider and report reachability",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	unreachable := 0
	for kind, ok := range a.ValidateProviders(ctx) {
		status := "ok"
		if !ok {
			status = "UNREACHABLE"
			unreachable++
		}
		fmt.Printf("%-10s %s\n", kind, status)
	}

	if unreachable > 0 {
		return fmt.Errorf("%d provider(s) unreachable", unreachable)
	}
	return nil
}
