package cli

import (
	"fmt"
	"strconv"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/spf13/cobra"
)

func newSchoolsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schools",
		Short: "School commands",
		Long:  `Search schools and list their professors.`,
	}
	cmd.AddCommand(newSchoolsSearchCmd(s), newSchoolsShowCmd(s), newSchoolsProfessorsCmd(s))
	return cmd
}

func newSchoolsSearchCmd(s *session) *cobra.Command {
	var (
		f          models.SchoolFilters
		maxTuition string
	)
	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search for schools",
		Long:  `Search schools by name, state, type and maximum tuition.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := s.apiClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				f.Search = args[0]
			}
			f.MaxTuition = models.ParseMaxTuition(maxTuition)

			page, err := client.SearchSchools(cmd.Context(), f)
			if err != nil {
				printError(s.errOut, "Search failed: "+userMessage(err))
				return err
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(s.out, "No schools found.")
				return nil
			}

			fmt.Fprintf(s.out, "Found %d school(s)", page.Total)
			if page.PageSize > 0 {
				fmt.Fprintf(s.out, " (page %d)", page.Page)
			}
			fmt.Fprint(s.out, ":\n\n")
			renderSchoolList(s.out, page.Items)
			fmt.Fprintln(s.out, "\nTo list professors: rmp schools professors <school-id>")
			return nil
		},
	}
	cmd.Flags().StringVar(&f.State, "state", "", "Filter by state")
	cmd.Flags().StringVar(&f.Type, "type", "", "Public or Private")
	cmd.Flags().StringVar(&maxTuition, "max-tuition", "", "Maximum tuition, e.g. $50,000")
	cmd.Flags().StringVar(&f.Sort, "sort", "", "Sort order understood by the server")
	cmd.Flags().IntVar(&f.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.PageSize, "page-size", 0, "Results per page")
	return cmd
}

func newSchoolsShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [school-id]",
		Short: "Show one school",
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

			school, err := client.School(cmd.Context(), id)
			if err != nil {
				printError(s.errOut, userMessage(err))
				return err
			}
			fmt.Fprintf(s.out, "%s (#%d)\n", school.Name, school.ID)
			fmt.Fprintf(s.out, "Location: %s\n", school.Location())
			fmt.Fprintf(s.out, "Type: %s\n", school.Type)
			fmt.Fprintf(s.out, "Tuition: %s\n", school.Tuition)
			return nil
		},
	}
}

func newSchoolsProfessorsCmd(s *session) *cobra.Command {
	var (
		f   models.ProfessorFilters
		all bool
	)
	cmd := &cobra.Command{
		Use:   "professors [school-id]",
		Short: "List professors of a school",
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

			page, err := client.SchoolProfessors(cmd.Context(), id, f)
			if err != nil {
				printError(s.errOut, userMessage(err))
				return err
			}

			limit := models.SchoolListLimit
			if all {
				limit = 0
			}
			list := models.DedupeProfessors(page.Items, limit)
			if len(list) == 0 {
				fmt.Fprintln(s.out, "No professors found.")
				return nil
			}
			renderProfessorList(s.out, list)
			if len(list) < page.Total && !all {
				fmt.Fprintf(s.out, "\nShowing %d of %d. Use --all or --page to see more.\n", len(list), page.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Level, "level", "", "Filter by level, e.g. Professor")
	cmd.Flags().StringVar(&f.Department, "department", "", "Filter by department")
	cmd.Flags().StringVar(&f.Search, "search", "", "Filter by name")
	cmd.Flags().StringVar(&f.Sort, "sort", "", "Sort order understood by the server")
	cmd.Flags().IntVar(&f.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.PageSize, "page-size", 0, "Results per page")
	cmd.Flags().BoolVar(&all, "all", false, "Do not cap the listing")
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
