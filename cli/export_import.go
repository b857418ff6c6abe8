package cli

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type exportedRating struct {
	ID          int    `json:"id"`
	ProfessorID int    `json:"professor_id"`
	Stars       *int   `json:"stars"`
	Comment     string `json:"comment,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func newExportCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data",
		Long:  `Export ratings to a file.`,
	}

	var format, output string
	ratings := &cobra.Command{
		Use:   "ratings [professor-id]",
		Short: "Export the ratings of a professor",
		Long:  `Export the ratings of a professor to JSON or CSV. Unreadable stars are exported empty.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := s.apiClient()
			if err != nil {
				return err
			}

			list, err := client.Ratings(cmd.Context(), id)
			if err != nil {
				printError(s.errOut, userMessage(err))
				return err
			}

			rows := make([]exportedRating, 0, len(list))
			for _, r := range list {
				row := exportedRating{ID: r.ID, ProfessorID: r.ProfessorID, Comment: r.Comment}
				if r.Valid {
					stars := r.Stars
					row.Stars = &stars
				}
				if !r.CreatedAt.IsZero() {
					row.CreatedAt = r.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
				}
				rows = append(rows, row)
			}

			var data []byte
			switch strings.ToLower(format) {
			case "json":
				data, err = json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode ratings: %w", err)
				}
			case "csv":
				var buf bytes.Buffer
				w := csv.NewWriter(&buf)
				_ = w.Write([]string{"id", "professor_id", "stars", "comment", "created_at"})
				for _, row := range rows {
					stars := ""
					if row.Stars != nil {
						stars = strconv.Itoa(*row.Stars)
					}
					_ = w.Write([]string{strconv.Itoa(row.ID), strconv.Itoa(row.ProfessorID), stars, row.Comment, row.CreatedAt})
				}
				w.Flush()
				if err := w.Error(); err != nil {
					return fmt.Errorf("failed to encode ratings: %w", err)
				}
				data = buf.Bytes()
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}

			if output == "" {
				fmt.Fprintln(s.out, strings.TrimRight(string(data), "\n"))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			printSuccess(s.out, fmt.Sprintf("Exported %d ratings to %s", len(rows), output))
			return nil
		},
	}
	ratings.Flags().StringVar(&format, "format", "json", "Output format (json, csv)")
	ratings.Flags().StringVar(&output, "output", "", "Output file path")

	cmd.AddCommand(ratings)
	return cmd
}

type importRow struct {
	ProfessorID int    `json:"professor_id"`
	Stars       int    `json:"stars"`
	Comment     string `json:"comment"`
}

func newImportCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data",
		Long:  `Submit ratings in bulk from a file.`,
	}

	var format, input string
	ratings := &cobra.Command{
		Use:   "ratings",
		Short: "Submit ratings from a file",
		Long: `Submit ratings from a CSV file with the columns professor_id,stars,comment
or a JSON array of {"professor_id","stars","comment"}. Requires login.
Rows that fail keep their comment as a draft for "rmp professors rate".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			var rows []importRow
			switch strings.ToLower(format) {
			case "csv":
				rows, err = parseImportCSV(bytes.NewReader(data))
			case "json":
				err = json.Unmarshal(data, &rows)
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", input, err)
			}

			client, err := s.apiClient()
			if err != nil {
				return err
			}
			ctx := s.authed(cmd.Context())

			ok, failed := 0, 0
			for i, row := range rows {
				err := client.SubmitRating(ctx, row.ProfessorID, models.RatingSubmission{Stars: row.Stars, Comment: row.Comment})
				if err != nil {
					failed++
					printError(s.errOut, fmt.Sprintf("Row %d (professor #%d): %s", i+1, row.ProfessorID, userMessage(err)))
					if row.Comment != "" {
						_ = config.SaveDraft(row.ProfessorID, row.Stars, row.Comment)
					}
					continue
				}
				ok++
			}

			printSuccess(s.out, fmt.Sprintf("Imported %d of %d ratings", ok, len(rows)))
			if failed > 0 {
				return fmt.Errorf("%d ratings failed", failed)
			}
			return nil
		},
	}
	ratings.Flags().StringVar(&format, "format", "csv", "Input format (csv, json)")
	ratings.Flags().StringVar(&input, "input", "", "Input file path")
	_ = ratings.MarkFlagRequired("input")

	cmd.AddCommand(ratings)
	return cmd
}

// parseImportCSV reads professor_id,stars,comment rows. A header row is
// skipped when its first cell is not a number.
func parseImportCSV(r io.Reader) ([]importRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var rows []importRow
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: expected professor_id,stars[,comment]", i+1)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid professor_id %q", i+1, rec[0])
		}
		stars, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid stars %q", i+1, rec[1])
		}
		row := importRow{ProfessorID: id, Stars: stars}
		if len(rec) > 2 {
			row.Comment = strings.TrimSpace(rec[2])
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no ratings found")
	}
	return rows, nil
}
