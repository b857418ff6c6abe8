package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
	"github.com/spf13/cobra"
)

func newSystemCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "System information",
		Long:  `Display system information and diagnostics.`,
	}

	var showMetrics bool
	info := &cobra.Command{
		Use:   "info",
		Short: "Show system info",
		Long:  `Display OS, configuration and API reachability. --metrics adds the request metrics of this run.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := s.out
			fmt.Fprintln(out, "System Information:")
			fmt.Fprintln(out, "-------------------")
			fmt.Fprintf(out, "Version: %s\n", Version)
			fmt.Fprintf(out, "OS: %s\n", runtime.GOOS)
			fmt.Fprintf(out, "Architecture: %s\n", runtime.GOARCH)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())

			path, _ := config.GetConfigPath()
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintln(out, "\nConfiguration: Not initialized")
				return nil
			}
			s.cfg = cfg
			fmt.Fprintln(out, "\nConfiguration:")
			fmt.Fprintf(out, "  Config Path: %s\n", path)
			fmt.Fprintf(out, "  Server: %s\n", cfg.Server.BaseURL)
			fmt.Fprintf(out, "  Logged in: %v\n", cfg.User.Token != "")

			fmt.Fprintln(out, "\nServer Connectivity:")
			client, err := s.apiClient()
			if err != nil {
				fmt.Fprintf(out, "  Status: Unknown (%s)\n", err)
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			start := time.Now()
			if err := client.Health(ctx); err != nil {
				fmt.Fprintf(out, "  Status: ✗ Unreachable (%s)\n", userMessage(err))
			} else {
				fmt.Fprintf(out, "  Status: ✓ Online (%d ms)\n", time.Since(start).Milliseconds())
			}

			if showMetrics {
				samples, err := metrics.Snapshot(s.registry)
				if err != nil {
					return fmt.Errorf("failed to gather metrics: %w", err)
				}
				fmt.Fprintln(out, "\nMetrics:")
				for _, m := range samples {
					if m.Labels != "" {
						fmt.Fprintf(out, "  %s{%s} %g\n", m.Name, m.Labels, m.Value)
					} else {
						fmt.Fprintf(out, "  %s %g\n", m.Name, m.Value)
					}
				}
			}
			return nil
		},
	}
	info.Flags().BoolVar(&showMetrics, "metrics", false, "Print request metrics")

	cmd.AddCommand(info)
	return cmd
}
