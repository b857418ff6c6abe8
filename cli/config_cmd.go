package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/spf13/cobra"
)

func newInitCmd(s *session) *cobra.Command {
	var (
		serverURL string
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration",
		Long:  `Create ~/.rmp/config.yaml pointing at the ratings API.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Init(serverURL, force)
			if err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}
			path, _ := config.GetConfigPath()
			printSuccess(s.out, "Configuration ready at "+path)
			fmt.Fprintf(s.out, "Server: %s\n", cfg.Server.BaseURL)

			client, err := s.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			defer cancel()
			if err := client.Health(ctx); err != nil {
				printInfo(s.out, "Server is not reachable yet: "+userMessage(err))
				return nil
			}
			printSuccess(s.out, "Server is online")
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server-url", config.DefaultServerURL, "Base URL of the ratings API")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}

func newConfigCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify rmp configuration.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration, including RMP_* environment overrides.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprintln(s.out, "Current Configuration:")
			fmt.Fprintln(s.out, "----------------------")
			for _, kv := range cfg.Keys() {
				fmt.Fprintf(s.out, "  %s: %s\n", kv[0], kv[1])
			}
			if cfg.User.Email != "" {
				fmt.Fprintf(s.out, "  user.email: %s\n", cfg.User.Email)
			}
			fmt.Fprintf(s.out, "  user.token: %s\n", mask(cfg.User.Token))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration value",
		Long:  `Set a configuration value. Key should be in format 'section.key' (e.g., logging.level).`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(args[0], args[1]); err != nil {
				if errors.Is(err, config.ErrNotInitialized) {
					printError(s.errOut, "Configuration not initialized")
				}
				return err
			}
			printSuccess(s.out, fmt.Sprintf("Updated %s to %s", args[0], args[1]))
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func mask(token string) string {
	switch {
	case token == "":
		return "(not logged in)"
	case len(token) <= 8:
		return "********"
	default:
		return token[:4] + "…" + token[len(token)-4:]
	}
}
