package cli

import (
	"errors"
	"fmt"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/binhbb2204/RateMyProf-Group13/internal/api"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/spf13/cobra"
)

func newProfessorsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "professors",
		Aliases: []string{"prof"},
		Short:   "Professor commands",
		Long:    `Search professors, view their ratings and rate them.`,
	}
	cmd.AddCommand(
		newProfessorsSearchCmd(s),
		newProfessorsShowCmd(s),
		newProfessorsRatingsCmd(s),
		newProfessorsRateCmd(s),
	)
	return cmd
}

func newProfessorsSearchCmd(s *session) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for professors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := s.apiClient()
			if err != nil {
				return err
			}

			list, err := client.SearchProfessors(cmd.Context(), args[0], limit)
			if err != nil {
				printError(s.errOut, "Search failed: "+userMessage(err))
				return err
			}
			if len(list) == 0 {
				fmt.Fprintf(s.out, "No professors found for query: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(s.out, "Found %d professor(s):\n\n", len(list))
			renderProfessorList(s.out, list)
			fmt.Fprintln(s.out, "\nFor details: rmp professors show <id>")
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", api.DefaultSearchLimit, "Maximum number of results")
	return cmd
}

func newProfessorsShowCmd(s *session) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "show [professor-id]",
		Short: "Show a professor with rating summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := s.cardService()
			if err != nil {
				return err
			}

			card, err := svc.Card(cmd.Context(), id)
			if err != nil {
				printError(s.errOut, userMessage(err))
				return err
			}
			renderCard(s.out, card)
			if recent > 0 {
				fmt.Fprintln(s.out, "\nRecent ratings:")
				renderRatings(s.out, card.Ratings, recent)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "Number of recent ratings to show")
	return cmd
}

func newProfessorsRatingsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings [professor-id]",
		Short: "List all ratings of a professor",
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

			ratings, err := client.Ratings(cmd.Context(), id)
			if err != nil {
				printError(s.errOut, userMessage(err))
				return err
			}
			renderRatings(s.out, ratings, 0)
			return nil
		},
	}
}

func newProfessorsRateCmd(s *session) *cobra.Command {
	var (
		stars   int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "rate [professor-id]",
		Short: "Rate a professor",
		Long: `Submit a 1 to 5 star rating with an optional comment. Requires login.
If the submission fails the comment is kept and reused by the next attempt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := s.cardService()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("comment") {
				if d, ok, _ := config.LoadDraft(id); ok {
					comment = d.Comment
					printInfo(s.out, "Using your saved comment from the last attempt")
				}
			}

			card, err := svc.Submit(s.authed(cmd.Context()), id, models.RatingSubmission{Stars: stars, Comment: comment})
			if err != nil {
				printError(s.errOut, userMessage(err))
				if errors.Is(err, api.ErrNotAuthenticated) {
					fmt.Fprintln(s.errOut, "Run: rmp auth login")
				}
				if comment != "" {
					if derr := config.SaveDraft(id, stars, comment); derr != nil {
						logger.GetLogger().Warn("draft_save_failed", "professor_id", id, logger.Err(derr))
					} else {
						printInfo(s.errOut, "Your comment was kept. Run the command again to retry.")
					}
				}
				return err
			}

			if err := config.ClearDraft(id); err != nil {
				logger.GetLogger().Warn("draft_clear_failed", "professor_id", id, logger.Err(err))
			}
			printSuccess(s.out, fmt.Sprintf("Rated %s %d star(s)", card.Professor.Name, stars))
			renderSummary(s.out, card.Summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&stars, "stars", 0, "Stars from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment")
	_ = cmd.MarkFlagRequired("stars")
	return cmd
}
