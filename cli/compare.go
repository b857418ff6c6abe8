package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/binhbb2204/RateMyProf-Group13/internal/api"
	"github.com/binhbb2204/RateMyProf-Group13/internal/compare"
	"github.com/binhbb2204/RateMyProf-Group13/internal/professor"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const comparePrompt = "compare> "

const compareHelp = `Commands:
  search <query>             search professors (runs in the background)
  add <id>                   add a professor to the comparison
  rm <id>                    remove a professor
  list                       list compared professors
  show                       compare ratings side by side
  rate <id> <stars> [text]   rate a professor (login required)
  help                       show this help
  quit                       leave`

func newCompareCmd(s *session) *cobra.Command {
	var maxSize int
	cmd := &cobra.Command{
		Use:   "compare [professor-id...]",
		Short: "Compare professors interactively",
		Long: `Start an interactive comparison session. Professor ids given as arguments
are added first. With --max 2 the oldest professor is replaced when a third is added.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.cardService()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max") {
				maxSize = s.cfg.Compare.MaxSize
			}

			cs := &compareSession{
				s:        s,
				client:   s.client,
				cards:    svc,
				set:      compare.New(maxSize),
				results:  make(chan searchResult),
				comments: map[int]string{},
				log:      logger.WithContext("component", "compare"),
			}
			for _, arg := range args {
				cs.add(cmd.Context(), arg)
			}
			return cs.run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&maxSize, "max", compare.Unbounded, "Maximum number of compared professors, 0 for no limit")
	return cmd
}

type searchResult struct {
	ticket api.Ticket
	query  string
	list   []models.ProfessorView
	err    error
}

// compareSession is one interactive comparison. All state is owned by the
// run loop; search goroutines only report back through results.
type compareSession struct {
	s       *session
	client  *api.Client
	cards   *professor.Service
	set     *compare.Set
	search  api.Latest[[]models.ProfessorView]
	results chan searchResult
	pending int
	// comments of failed rate attempts, reused by the next attempt
	comments map[int]string
	log      *logger.Logger
}

func (cs *compareSession) run(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	out := cs.s.out
	inputs := make(chan string)
	go func() {
		defer close(inputs)
		for {
			line, err := cs.s.readLine("")
			if err != nil {
				return
			}
			select {
			case inputs <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, "Type 'help' for commands.")
	fmt.Fprint(out, comparePrompt)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case res := <-cs.results:
			cs.pending--
			cs.applySearch(res)
			if inputs == nil && cs.pending == 0 {
				return nil
			}
		case line, ok := <-inputs:
			if !ok {
				inputs = nil
				if cs.pending == 0 {
					fmt.Fprintln(out)
					return nil
				}
				continue
			}
			if cs.handle(ctx, strings.TrimSpace(line)) {
				return nil
			}
			fmt.Fprint(out, comparePrompt)
		}
	}
}

// handle runs one command line and reports whether the session should end.
func (cs *compareSession) handle(ctx context.Context, line string) bool {
	out := cs.s.out
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, rest := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(out, compareHelp)
	case "search":
		if len(rest) == 0 {
			printError(out, "Usage: search <query>")
			break
		}
		cs.startSearch(ctx, strings.Join(rest, " "))
	case "add":
		if len(rest) != 1 {
			printError(out, "Usage: add <id>")
			break
		}
		cs.add(ctx, rest[0])
	case "rm", "remove":
		if len(rest) != 1 {
			printError(out, "Usage: rm <id>")
			break
		}
		id, err := parseID(rest[0])
		if err != nil {
			printError(out, err.Error())
			break
		}
		if cs.set.Remove(id) {
			printSuccess(out, fmt.Sprintf("Removed #%d", id))
		} else {
			printInfo(out, fmt.Sprintf("#%d is not in the comparison", id))
		}
	case "list", "ls":
		cs.list()
	case "show":
		cs.show(ctx)
	case "rate":
		cs.rate(ctx, rest)
	default:
		printError(out, fmt.Sprintf("Unknown command %q. Type 'help' for commands.", cmd))
	}
	return false
}

func (cs *compareSession) startSearch(ctx context.Context, query string) {
	ticket := cs.search.Begin()
	cs.pending++
	fmt.Fprintf(cs.s.out, "Searching for %q...\n", query)

	go func() {
		list, err := cs.client.SearchProfessors(ctx, query, api.DefaultSearchLimit)
		select {
		case cs.results <- searchResult{ticket: ticket, query: query, list: list, err: err}:
		case <-ctx.Done():
		}
	}()
}

// applySearch shows a search result unless a newer search superseded it.
func (cs *compareSession) applySearch(res searchResult) {
	out := cs.s.out
	if !cs.search.Current(res.ticket) {
		cs.log.Debug("search_result_dropped", "query", res.query)
		return
	}
	if res.err != nil {
		printError(out, fmt.Sprintf("Search %q failed: %s", res.query, userMessage(res.err)))
		return
	}
	cs.search.Commit(res.ticket, res.list)

	fmt.Fprintf(out, "\nResults for %q:\n", res.query)
	if len(res.list) == 0 {
		fmt.Fprintln(out, "No professors found.")
	} else {
		renderProfessorList(out, res.list)
	}
	fmt.Fprint(out, comparePrompt)
}

func (cs *compareSession) add(ctx context.Context, arg string) {
	out := cs.s.out
	id, err := parseID(arg)
	if err != nil {
		printError(out, err.Error())
		return
	}
	if cs.set.Contains(id) {
		printInfo(out, fmt.Sprintf("#%d is already in the comparison", id))
		return
	}

	p := models.ProfessorView{ID: id}
	if found, ok := cs.searchHit(id); ok {
		p = found
	}

	evicted, err := cs.set.AddResolved(ctx, cs.client, p, nil)
	if err != nil {
		printError(out, fmt.Sprintf("Could not add #%d: %s", id, userMessage(err)))
		return
	}
	entries := cs.set.Entries()
	printSuccess(out, "Added "+entries[len(entries)-1].Professor.Name)
	if evicted != nil {
		printInfo(out, "Replaced "+evicted.Professor.Name)
	}
}

func (cs *compareSession) searchHit(id int) (models.ProfessorView, bool) {
	list, ok := cs.search.Value()
	if !ok {
		return models.ProfessorView{}, false
	}
	return lo.Find(list, func(p models.ProfessorView) bool { return p.ID == id })
}

func (cs *compareSession) list() {
	out := cs.s.out
	if cs.set.IsEmpty() {
		fmt.Fprintln(out, "Nothing to compare yet. Use: add <id>")
		return
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "#\tID\tNAME\tDEPARTMENT")
	for i, e := range cs.set.Entries() {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, e.Professor.ID, e.Professor.Name, e.Professor.Department)
	}
	tw.Flush()
	if limit := cs.set.MaxSize(); limit != compare.Unbounded {
		fmt.Fprintf(out, "(%d of %d slots used)\n", cs.set.Len(), limit)
	}
}

func (cs *compareSession) show(ctx context.Context) {
	out := cs.s.out
	cards, err := cs.cards.Cards(ctx, cs.set.IDs())
	if err != nil {
		printError(out, userMessage(err))
		return
	}
	renderComparison(out, cards, cs.schoolNames(ctx))
}

// schoolNames resolves the school of each compared professor. Lookups that
// fail are left out.
func (cs *compareSession) schoolNames(ctx context.Context) map[int]string {
	names := map[int]string{}
	for _, e := range cs.set.Entries() {
		if e.School != nil {
			names[e.Professor.ID] = e.School.Name
			continue
		}
		if e.Professor.SchoolID == 0 {
			continue
		}
		school, err := cs.client.School(ctx, e.Professor.SchoolID)
		if err != nil {
			cs.log.Debug("school_lookup_failed", "school_id", e.Professor.SchoolID, logger.Err(err))
			continue
		}
		names[e.Professor.ID] = school.Name
	}
	return names
}

func (cs *compareSession) rate(ctx context.Context, args []string) {
	out := cs.s.out
	if len(args) < 2 {
		printError(out, "Usage: rate <id> <stars> [comment]")
		return
	}
	id, err := parseID(args[0])
	if err != nil {
		printError(out, err.Error())
		return
	}
	stars, err := strconv.Atoi(args[1])
	if err != nil {
		printError(out, "stars must be a whole number from 1 to 5")
		return
	}

	comment := strings.Join(args[2:], " ")
	if comment == "" {
		if kept, ok := cs.comments[id]; ok {
			comment = kept
			printInfo(out, "Using your comment from the last attempt")
		}
	}

	card, err := cs.cards.Submit(cs.s.authed(ctx), id, models.RatingSubmission{Stars: stars, Comment: comment})
	if err != nil {
		printError(out, userMessage(err))
		if comment != "" {
			cs.comments[id] = comment
			printInfo(out, "Your comment was kept. Send 'rate "+args[0]+" <stars>' to retry.")
		}
		return
	}

	delete(cs.comments, id)
	printSuccess(out, fmt.Sprintf("Rated %s %d star(s)", card.Professor.Name, stars))
	renderSummary(out, card.Summary)
}
