package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kuuji/stunkit/stun"
)

// natReport is the outcome of an RFC 5780 NAT behavior discovery pass
// against one server.
type natReport struct {
	Server               string
	MappingIndependent   bool
	FilteringIndependent bool
	Err                  error
}

func newDiscoverCmd(loggerFactory logging.LoggerFactory, cfgPath *string) *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run RFC 5780 NAT mapping/filtering behavior discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*cfgPath)
			if err != nil {
				return err
			}
			servers := configuredServers(cfg, server)
			if len(servers) == 0 {
				return fmt.Errorf("no servers configured: pass --server or populate the config file")
			}

			log := loggerFactory.NewLogger("discover")
			g, ctx := errgroup.WithContext(cmd.Context())
			reports := make([]natReport, len(servers))

			for i, s := range servers {
				i, s := i, s
				g.Go(func() error {
					reports[i] = discoverOne(ctx, log, s, timeout)
					return nil // per-server failures are reported, not fatal to the group
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for _, r := range reports {
				if r.Err != nil {
					fmt.Printf("%s: FAILED: %v\n", r.Server, r.Err)
					continue
				}
				fmt.Printf("%s: mapping=%s filtering=%s\n",
					r.Server, behaviorName(r.MappingIndependent), behaviorName(r.FilteringIndependent))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "single server to test (overrides the config file's server list)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-probe timeout")
	return cmd
}

func configuredServers(cfg *Config, override string) []string {
	if override != "" {
		return []string{override}
	}
	var out []string
	for _, s := range cfg.Servers {
		if !s.IsTURN {
			out = append(out, s.Addr)
		}
	}
	return out
}

func behaviorName(independent bool) string {
	if independent {
		return "endpoint-independent"
	}
	return "address-dependent"
}

// discoverOne runs the classic three-part discovery sequence against one
// server: Test I establishes the base mapping and learns the server's
// OTHER-ADDRESS; Test II repeats the bind against that other address to
// see whether the mapping changes (mapping behavior); Test III sends a
// CHANGE-REQUEST asking the server to answer from its other address and
// port (filtering behavior).
func discoverOne(ctx context.Context, log logging.LeveledLogger, addr string, timeout time.Duration) natReport {
	report := natReport{Server: addr}

	first, err := bindingProbe(ctx, log, addr, nil, timeout)
	if err != nil {
		report.Err = fmt.Errorf("test I: %w", err)
		return report
	}

	if first.OtherAddr == nil {
		report.Err = fmt.Errorf("server did not advertise OTHER-ADDRESS; RFC 5780 discovery requires it")
		return report
	}
	other := fmt.Sprintf("%s:%d", first.OtherAddr.IP, first.OtherAddr.Port)

	second, err := bindingProbe(ctx, log, other, nil, timeout)
	if err != nil {
		report.Err = fmt.Errorf("test II (against %s): %w", other, err)
		return report
	}
	report.MappingIndependent = first.MappedAddr.IP.Equal(second.MappedAddr.IP) && first.MappedAddr.Port == second.MappedAddr.Port

	_, err = bindingProbe(ctx, log, addr, &stun.ChangeRequest{ChangeIP: true, ChangePort: true}, timeout)
	report.FilteringIndependent = err == nil
	return report
}
