// Package cli implements the rmp command line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/binhbb2204/RateMyProf-Group13/internal/api"
	"github.com/binhbb2204/RateMyProf-Group13/internal/professor"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const Version = "0.3.0"

// session carries what the commands of one invocation share: the streams,
// the loaded config and a lazily built API client.
type session struct {
	in     *bufio.Reader
	stdin  io.Reader
	out    io.Writer
	errOut io.Writer

	verbose  bool
	registry *prometheus.Registry
	metrics  *metrics.ClientMetrics
	logFile  *os.File

	cfg    *config.Config
	client *api.Client
	cards  *professor.Service
}

// NewRootCmd builds the full command tree. Each call returns an independent
// tree, which lets tests run commands side by side.
func NewRootCmd() *cobra.Command {
	reg := prometheus.NewRegistry()
	s := &session{
		registry: reg,
		metrics:  metrics.NewClientMetrics(reg),
	}

	root := &cobra.Command{
		Use:           "rmp",
		Short:         "Browse schools, professors and their ratings",
		Long:          `rmp searches schools and professors, shows rating summaries, submits ratings and compares professors side by side.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s.bind(cmd)
			_ = godotenv.Load()
			return s.initLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.logFile != nil {
				s.logFile.Close()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newInitCmd(s),
		newAuthCmd(s),
		newConfigCmd(s),
		newSchoolsCmd(s),
		newProfessorsCmd(s),
		newCompareCmd(s),
		newExportCmd(s),
		newImportCmd(s),
		newLogsCmd(s),
		newSystemCmd(s),
	)
	return root
}

// Execute runs the CLI with os.Args and prints a failing command's error.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err.Error())
	}
	return err
}

func (s *session) bind(cmd *cobra.Command) {
	s.stdin = cmd.InOrStdin()
	s.in = bufio.NewReader(s.stdin)
	s.out = cmd.OutOrStdout()
	s.errOut = cmd.ErrOrStderr()
}

// initLogging configures the global logger from the config file when there
// is one, LOG_LEVEL and LOG_FORMAT otherwise.
func (s *session) initLogging() error {
	level := logger.WARN
	jsonFormat := os.Getenv("LOG_FORMAT") == "json"
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = logger.ParseLevel(v)
	}

	var w io.Writer = s.errOut
	if cfg, err := config.Load(); err == nil {
		if cfg.Logging.Level != "" {
			level = logger.ParseLevel(cfg.Logging.Level)
		}
		jsonFormat = jsonFormat || cfg.Logging.Format == "json"
		if path := cfg.LogFile(); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			s.logFile = f
			w = f
			jsonFormat = true
		}
	}
	if s.verbose {
		level = logger.DEBUG
		if s.logFile == nil {
			w = s.errOut
		}
	}

	logger.Init(level, jsonFormat, w)
	return nil
}

// loadConfig reads the config once per invocation.
func (s *session) loadConfig() (*config.Config, error) {
	if s.cfg != nil {
		return s.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrNotInitialized) {
			printError(s.errOut, "Configuration not initialized")
			fmt.Fprintln(s.errOut, "Run: rmp init")
		}
		return nil, err
	}
	s.cfg = cfg
	return cfg, nil
}

func (s *session) apiClient() (*api.Client, error) {
	if s.client != nil {
		return s.client, nil
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	c, err := api.New(cfg.Server.BaseURL,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithCacheTTL(cfg.Server.CacheTTL),
		api.WithRateLimit(cfg.Server.RateLimit, 2),
		api.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid server.base_url: %w", err)
	}
	s.client = c
	s.cards = professor.NewService(c)
	return c, nil
}

func (s *session) cardService() (*professor.Service, error) {
	if _, err := s.apiClient(); err != nil {
		return nil, err
	}
	return s.cards, nil
}

// authed attaches the stored token, if any, to ctx.
func (s *session) authed(ctx context.Context) context.Context {
	if s.cfg == nil || s.cfg.User.Token == "" {
		return ctx
	}
	return api.WithCredentials(ctx, api.Credentials{Token: s.cfg.User.Token})
}

// readLine reads one line of user input without the trailing newline.
func (s *session) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line otherwise, so input can be piped.
func (s *session) readPassword(prompt string) (string, error) {
	if f, ok := s.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := s.readLine(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// userMessage picks the text shown for a failed API call.
func userMessage(err error) string {
	var fe *api.FetchError
	if errors.As(err, &fe) {
		return fe.UserMessage()
	}
	var se *api.SubmissionError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	fmt.Fprintf(w, "✗ %s\n", msg)
}

func printInfo(w io.Writer, msg string) {
	fmt.Fprintf(w, "ℹ %s\n", msg)
}
