// Command stunctl is a diagnostic client for STUN/TURN servers: it sends
// BINDING requests over real UDP sockets, runs RFC 5780 NAT behavior
// discovery, and mints TURN REST API credentials.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("stunctl failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		logLevel string
	)

	root := &cobra.Command{
		Use:   "stunctl",
		Short: "STUN/TURN diagnostic client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("stunctl: invalid --log-level %q: %w", logLevel, err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to stunctl's TOML config (default: $XDG_CONFIG_HOME/stunctl/config.toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cobra.OnInitialize(func() {
		if cfgPath == "" {
			if p, err := DefaultConfigPath(); err == nil {
				cfgPath = p
			}
		}
	})

	loggerFactory := logging.NewDefaultLoggerFactory()

	root.AddCommand(newBindCmd(loggerFactory))
	root.AddCommand(newDiscoverCmd(loggerFactory, &cfgPath))
	root.AddCommand(newTurnAllocateCmd(&cfgPath))
	return root
}
