package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
)

func newBindCmd(loggerFactory logging.LoggerFactory) *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Send one STUN BINDING request and print the reflexive address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				return fmt.Errorf("--server is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			log := loggerFactory.NewLogger("bind")
			result, err := bindingProbe(ctx, log, server, nil, timeout)
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s:%d (rtt %s)\n", server, result.MappedAddr.IP, result.MappedAddr.Port, result.RTT)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "STUN server address (host:port)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-probe timeout")
	return cmd
}
