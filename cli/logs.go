package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLogsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage logs",
		Long:  `View, search and rotate the CLI log written to logging.path.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "errors",
			Short: "Show warnings and errors",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.scanLogs("Warnings and errors:", func(line string) bool {
					return strings.Contains(line, `"level":"WARN"`) || strings.Contains(line, `"level":"ERROR"`)
				})
			},
		},
		&cobra.Command{
			Use:   "search [query]",
			Short: "Search logs",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				query := strings.ToLower(args[0])
				return s.scanLogs(fmt.Sprintf("Searching for %q in logs...", args[0]), func(line string) bool {
					return strings.Contains(strings.ToLower(line), query)
				})
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Delete log files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				files, err := s.logFiles()
				if err != nil {
					return err
				}
				count := 0
				for _, path := range files {
					if err := os.Remove(path); err == nil {
						count++
					}
				}
				printSuccess(s.out, fmt.Sprintf("Deleted %d log files", count))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rotate",
			Short: "Archive the current log",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := s.loadConfig()
				if err != nil {
					return err
				}
				current := cfg.LogFile()
				if current == "" {
					return errLogPathUnset
				}
				if _, err := os.Stat(current); errors.Is(err, os.ErrNotExist) {
					printInfo(s.out, "Nothing to rotate")
					return nil
				}
				// the running command may hold the file open itself
				if s.logFile != nil {
					s.logFile.Close()
					s.logFile = nil
				}
				archived := strings.TrimSuffix(current, ".log") + ".archive." + time.Now().Format("20060102-150405") + ".log"
				if err := os.Rename(current, archived); err != nil {
					return fmt.Errorf("failed to rotate log: %w", err)
				}
				printSuccess(s.out, "Rotated log to "+filepath.Base(archived))
				return nil
			},
		},
	)
	return cmd
}

var errLogPathUnset = errors.New("logging.path is not set; logs go to stderr (rmp config set logging.path <dir>)")

func (s *session) logFiles() ([]string, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Logging.Path == "" {
		return nil, errLogPathUnset
	}

	entries, err := os.ReadDir(cfg.Logging.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			files = append(files, filepath.Join(cfg.Logging.Path, e.Name()))
		}
	}
	return files, nil
}

func (s *session) scanLogs(title string, match func(string) bool) error {
	files, err := s.logFiles()
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, title)
	fmt.Fprintln(s.out, strings.Repeat("-", len(title)))

	found := false
	for _, path := range files {
		if err := scanFile(path, func(n int, line string) {
			if match(line) {
				fmt.Fprintf(s.out, "[%s:%d] %s\n", filepath.Base(path), n, line)
				found = true
			}
		}); err != nil {
			return err
		}
	}
	if !found {
		fmt.Fprintln(s.out, "No matches found.")
	}
	return nil
}

func scanFile(path string, fn func(n int, line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		fn(n, sc.Text())
	}
	return sc.Err()
}
