package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/binhbb2204/RateMyProf-Group13/internal/api"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
)

func newAuthCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Register, login, logout and inspect the stored session.`,
	}
	cmd.AddCommand(
		newAuthRegisterCmd(s),
		newAuthLoginCmd(s),
		newAuthLogoutCmd(s),
		newAuthStatusCmd(s),
	)
	return cmd
}

func newAuthRegisterCmd(s *session) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long:  `Register a new account with an email and an optional display name.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := s.apiClient()
			if err != nil {
				return err
			}

			password, err := s.readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := s.readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				printError(s.errOut, "Passwords do not match")
				return errors.New("passwords do not match")
			}

			user, err := client.Register(cmd.Context(), models.RegisterRequest{Name: name, Email: email, Password: password})
			if err != nil {
				printError(s.errOut, "Registration failed: "+userMessage(err))
				return err
			}

			printSuccess(s.out, "Account created successfully!")
			fmt.Fprintf(s.out, "User ID: %d\n", user.ID)
			fmt.Fprintf(s.out, "Email: %s\n", user.Email)
			fmt.Fprintf(s.out, "\nTo login: rmp auth login --email %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email for registration")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAuthLoginCmd(s *session) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to your account",
		Long:  `Login with your email and store the session token in the config file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := s.apiClient()
			if err != nil {
				return err
			}

			password, err := s.readPassword("Password: ")
			if err != nil {
				return err
			}

			creds, err := client.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
			if err != nil {
				printError(s.errOut, "Login failed: "+userMessage(err))
				if errors.Is(err, api.ErrNotAuthenticated) {
					fmt.Fprintln(s.errOut, "Check your email and password")
				}
				return err
			}

			if err := config.UpdateUserToken(strings.TrimSpace(email), creds.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			printSuccess(s.out, "Login successful!")
			if exp, ok := tokenExpiry(creds.Token); ok {
				fmt.Fprintf(s.out, "  Token expires: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email for login")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAuthLogoutCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from your account",
		Long:  `Remove the stored session token.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.loadConfig()
			if err != nil {
				return err
			}
			if cfg.User.Token == "" {
				printInfo(s.out, "You are not logged in")
				return nil
			}
			if err := config.ClearUserToken(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			printSuccess(s.out, "Logged out successfully!")
			return nil
		},
	}
}

func newAuthStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.loadConfig()
			if err != nil {
				return err
			}
			if cfg.User.Token == "" {
				printInfo(s.out, "You are not logged in")
				return nil
			}

			fmt.Fprintf(s.out, "Logged in as: %s\n", orDash(cfg.User.Email))
			exp, ok := tokenExpiry(cfg.User.Token)
			switch {
			case !ok:
				fmt.Fprintln(s.out, "Token expires: unknown")
			case exp.Before(time.Now()):
				fmt.Fprintf(s.out, "Token expired: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
				fmt.Fprintln(s.out, "Run: rmp auth login")
			default:
				fmt.Fprintf(s.out, "Token expires: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client has no key and only uses it for display.
func tokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func orDash(s string) string {
	if s == "" {
		return models.Placeholder
	}
	return s
}
