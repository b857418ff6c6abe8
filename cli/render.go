package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/binhbb2204/RateMyProf-Group13/internal/professor"
	"github.com/binhbb2204/RateMyProf-Group13/internal/rating"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/samber/lo"
)

const barCells = 20

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// distributionBar renders one histogram row as a fixed width bar.
func distributionBar(s rating.Summary, star int) string {
	width := s.BarWidth(star)
	filled := min(max(int(math.Round(width/100*barCells)), 0), barCells)
	return fmt.Sprintf("%d ★ %s%s %3.0f%% (%d)",
		star,
		strings.Repeat("█", filled),
		strings.Repeat("░", barCells-filled),
		width,
		s.Histogram[star],
	)
}

func renderSummary(w io.Writer, s rating.Summary) {
	fmt.Fprintf(w, "Average: %s (%d ratings)\n", rating.FormatAverage(s.Average), s.Count)
	fmt.Fprintf(w, "Would take again: %s\n", rating.FormatPct(s.WouldTakeAgainPct))
	for star := rating.MaxStars; star >= rating.MinStars; star-- {
		fmt.Fprintf(w, "  %s\n", distributionBar(s, star))
	}
}

func renderProfessorList(w io.Writer, list []models.ProfessorView) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDEPARTMENT\tLEVEL\tEMAIL")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Department, p.Level, orDash(p.Email))
	}
	tw.Flush()
}

func renderSchoolList(w io.Writer, list []models.SchoolView) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tTYPE\tTUITION")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Location(), s.Type, s.Tuition)
	}
	tw.Flush()
}

func renderCard(w io.Writer, c professor.Card) {
	p := c.Professor
	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "Department: %s\n", p.Department)
	fmt.Fprintf(w, "Level: %s\n", p.Level)
	if p.Email != "" {
		fmt.Fprintf(w, "Email: %s\n", p.Email)
	}
	if p.Bio != "" {
		fmt.Fprintf(w, "Bio: %s\n", p.Bio)
	}
	fmt.Fprintln(w)
	renderSummary(w, c.Summary)
	if c.Source == professor.SourceServer {
		fmt.Fprintln(w, "(summary reported by the server; no individual ratings available)")
	}
	if n := rating.Ignored(c.Ratings); n > 0 {
		fmt.Fprintf(w, "(%d unreadable ratings not counted)\n", n)
	}
}

// renderRatings lists the newest ratings first; limit <= 0 shows all.
func renderRatings(w io.Writer, ratings []models.Rating, limit int) {
	if len(ratings) == 0 {
		fmt.Fprintln(w, "No ratings yet.")
		return
	}
	shown := ratings
	if limit > 0 && len(shown) > limit {
		shown = shown[len(shown)-limit:]
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTARS\tDATE\tCOMMENT")
	for i := len(shown) - 1; i >= 0; i-- {
		r := shown[i]
		stars := "invalid"
		if rating.ValidStars(r) {
			stars = strings.Repeat("★", r.Stars)
		}
		date := models.Placeholder
		if !r.CreatedAt.IsZero() {
			date = r.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, stars, date, orDash(r.Comment))
	}
	tw.Flush()
}

// renderComparison prints the compared cards side by side and marks the one
// with the best star-sort score.
func renderComparison(w io.Writer, cards []professor.Card, schools map[int]string) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "Nothing to compare yet. Use: add <id>")
		return
	}

	best := lo.MaxBy(cards, func(a, b professor.Card) bool {
		return a.Summary.Score() > b.Summary.Score()
	})

	tw := newTable(w)
	fmt.Fprintln(tw, "\tID\tNAME\tDEPARTMENT\tSCHOOL\tAVG\tRATINGS\tTAKE AGAIN\tSCORE")
	for _, c := range cards {
		mark := ""
		if c.Professor.ID == best.Professor.ID && best.Summary.Count > 0 {
			mark = "*"
		}
		school := schools[c.Professor.ID]
		if school == "" {
			school = models.Placeholder
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%d\t%s\t%.2f\n",
			mark,
			c.Professor.ID,
			c.Professor.Name,
			c.Professor.Department,
			school,
			rating.FormatAverage(c.Summary.Average),
			c.Summary.Count,
			rating.FormatPct(c.Summary.WouldTakeAgainPct),
			c.Summary.Score(),
		)
	}
	tw.Flush()

	for _, c := range cards {
		fmt.Fprintf(w, "\n%s\n", c.Professor.Name)
		for star := rating.MaxStars; star >= rating.MinStars; star-- {
			fmt.Fprintf(w, "  %s\n", distributionBar(c.Summary, star))
		}
	}
}
