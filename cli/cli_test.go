package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binhbb2204/RateMyProf-Group13/cli"
	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/binhbb2204/RateMyProf-Group13/internal/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	out string
	err string
}

func run(t *testing.T, stdin string, args ...string) (result, error) {
	t.Helper()
	root := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), err: errOut.String()}, err
}

func mustRun(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	res, err := run(t, stdin, args...)
	require.NoError(t, err, "stdout: %s\nstderr: %s", res.out, res.err)
	return res
}

// setup points the CLI at a seeded fake API with a fresh config directory.
func setup(t *testing.T) *apitest.Server {
	t.Helper()
	t.Setenv("RMP_CONFIG_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	srv := apitest.New()
	t.Cleanup(srv.Close)
	srv.SeedDemo()

	res := mustRun(t, "", "init", "--server-url", srv.URL)
	require.Contains(t, res.out, "Server is online")
	return srv
}

func login(t *testing.T) {
	t.Helper()
	res := mustRun(t, "demo1234\n", "auth", "login", "--email", "demo@example.edu")
	require.Contains(t, res.out, "Login successful!")
}

func TestCommands_RequireInit(t *testing.T) {
	t.Setenv("RMP_CONFIG_DIR", t.TempDir())

	res, err := run(t, "", "schools", "search")
	require.ErrorIs(t, err, config.ErrNotInitialized)
	assert.Contains(t, res.err, "Run: rmp init")
}

func TestConfig_ShowAndSet(t *testing.T) {
	srv := setup(t)

	res := mustRun(t, "", "config", "show")
	assert.Contains(t, res.out, "server.base_url: "+srv.URL)
	assert.Contains(t, res.out, "user.token: (not logged in)")

	mustRun(t, "", "config", "set", "compare.max_size", "2")
	res = mustRun(t, "", "config", "show")
	assert.Contains(t, res.out, "compare.max_size: 2")

	_, err := run(t, "", "config", "set", "nope", "x")
	require.Error(t, err)
}

func TestSchools(t *testing.T) {
	setup(t)

	res := mustRun(t, "", "schools", "search", "--state", "ME")
	assert.Contains(t, res.out, "Harbor College")
	assert.Contains(t, res.out, "$54,800")
	assert.NotContains(t, res.out, "Northfield")

	res = mustRun(t, "", "schools", "search", "--max-tuition", "$20,000")
	assert.Contains(t, res.out, "Northfield State University")
	assert.NotContains(t, res.out, "Harbor College")

	res = mustRun(t, "", "schools", "show", "3")
	assert.Contains(t, res.out, "Tuition: —")

	res = mustRun(t, "", "schools", "professors", "1")
	assert.Contains(t, res.out, "Ada Lovelace")
	assert.Contains(t, res.out, "Alan Turing")
	assert.NotContains(t, res.out, "Grace Hopper")

	res, err := run(t, "", "schools", "show", "99")
	require.Error(t, err)
	assert.Contains(t, res.err, "Not found or failed to load.")
}

func TestProfessors_SearchAndShow(t *testing.T) {
	setup(t)

	res := mustRun(t, "", "professors", "search", "turing")
	assert.Contains(t, res.out, "Alan Turing")

	res = mustRun(t, "", "professors", "show", "1")
	assert.Contains(t, res.out, "Ada Lovelace (#1)")
	assert.Contains(t, res.out, "Average: 4.7 (3 ratings)")
	assert.Contains(t, res.out, "Would take again: 100%")
	assert.Contains(t, res.out, "5 ★")
	assert.Contains(t, res.out, "Clear and demanding.")

	res = mustRun(t, "", "professors", "show", "2")
	assert.Contains(t, res.out, "Average: 3.5 (2 ratings)")
	assert.Contains(t, res.out, "(1 unreadable ratings not counted)")

	res = mustRun(t, "", "professors", "ratings", "2")
	assert.Contains(t, res.out, "invalid")
	assert.Contains(t, res.out, "Brilliant but fast.")
}

func TestAuth_LoginStatusLogout(t *testing.T) {
	setup(t)

	res := mustRun(t, "", "auth", "status")
	assert.Contains(t, res.out, "You are not logged in")

	_, err := run(t, "wrong\n", "auth", "login", "--email", "demo@example.edu")
	require.Error(t, err)

	login(t)
	res = mustRun(t, "", "auth", "status")
	assert.Contains(t, res.out, "Logged in as: demo@example.edu")
	assert.Contains(t, res.out, "Token expires:")

	mustRun(t, "", "auth", "logout")
	res = mustRun(t, "", "auth", "status")
	assert.Contains(t, res.out, "You are not logged in")
}

func TestAuth_Register(t *testing.T) {
	setup(t)

	_, err := run(t, "secret1\nsecret2\n", "auth", "register", "--email", "new@example.edu")
	require.Error(t, err)

	res := mustRun(t, "secret1\nsecret1\n", "auth", "register", "--email", "new@example.edu", "--name", "New")
	assert.Contains(t, res.out, "Account created successfully!")

	res = mustRun(t, "secret1\n", "auth", "login", "--email", "new@example.edu")
	assert.Contains(t, res.out, "Login successful!")
}

func TestRate_KeepsCommentUntilAccepted(t *testing.T) {
	srv := setup(t)

	res, err := run(t, "", "professors", "rate", "4", "--stars", "5", "--comment", "Rigorous")
	require.Error(t, err)
	assert.Contains(t, res.err, "You need to log in before rating.")
	assert.Contains(t, res.err, "Your comment was kept")
	assert.Zero(t, srv.RatingCount(4))

	d, ok, err := config.LoadDraft(4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Rigorous", d.Comment)

	login(t)
	res = mustRun(t, "", "professors", "rate", "4", "--stars", "5")
	assert.Contains(t, res.out, "Using your saved comment")
	assert.Contains(t, res.out, "Rated Edsger Dijkstra 5 star(s)")
	assert.Contains(t, res.out, "Average: 5.0 (1 ratings)")
	assert.Equal(t, 1, srv.RatingCount(4))

	_, ok, err = config.LoadDraft(4)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = run(t, "", "professors", "rate", "4", "--stars", "9")
	require.Error(t, err)
	assert.Equal(t, 1, srv.RatingCount(4))
}

func TestCompare_BoundedSessionEvictsOldest(t *testing.T) {
	setup(t)

	res := mustRun(t, "add 1\nadd 2\nadd 2\nadd 3\nlist\nshow\nrm 7\nquit\n", "compare", "--max", "2")
	assert.Contains(t, res.out, "Added Ada Lovelace")
	assert.Contains(t, res.out, "#2 is already in the comparison")
	assert.Contains(t, res.out, "Replaced Ada Lovelace")
	assert.Contains(t, res.out, "(2 of 2 slots used)")
	assert.Contains(t, res.out, "Harbor College")
	assert.Contains(t, res.out, "#7 is not in the comparison")

	listing := res.out[strings.Index(res.out, "#  ID"):]
	listing = listing[:strings.Index(listing, "slots used")]
	assert.NotContains(t, listing, "Ada Lovelace")
}

func TestCompare_ArgsAndFailedAdd(t *testing.T) {
	setup(t)

	res := mustRun(t, "add 404\nlist\n", "compare", "1")
	assert.Contains(t, res.out, "Added Ada Lovelace")
	assert.Contains(t, res.out, "Could not add #404")
	assert.Contains(t, res.out, "Ada Lovelace")
}

func TestCompare_SearchRunsInBackground(t *testing.T) {
	setup(t)

	res := mustRun(t, "search gra\n", "compare")
	assert.Contains(t, res.out, `Results for "gra"`)
	assert.Contains(t, res.out, "Grace Hopper")
}

func TestCompare_RateKeepsCommentOnFailure(t *testing.T) {
	srv := setup(t)

	res := mustRun(t, "rate 1 4 nice pacing\nquit\n", "compare")
	assert.Contains(t, res.out, "You need to log in before rating.")
	assert.Contains(t, res.out, "Your comment was kept")

	login(t)
	srv.Fail("/professors/1/ratings", 500, "try later")
	res = mustRun(t, "rate 1 4 nice pacing\nquit\n", "compare")
	assert.Contains(t, res.out, "try later")

	srv.Fail("/professors/1/ratings", 0, "")
	res = mustRun(t, "rate 1 4 nice pacing\nrate 1 x\nquit\n", "compare")
	assert.Contains(t, res.out, "Rated Ada Lovelace 4 star(s)")
	assert.Contains(t, res.out, "Average: 4.5 (4 ratings)")
	assert.Contains(t, res.out, "stars must be a whole number")
}

func TestExportRatings(t *testing.T) {
	setup(t)

	res := mustRun(t, "", "export", "ratings", "2", "--format", "csv")
	assert.Contains(t, res.out, "id,professor_id,stars,comment,created_at")
	assert.Contains(t, res.out, ",2,,imported row without stars,")

	out := filepath.Join(t.TempDir(), "ratings.json")
	res = mustRun(t, "", "export", "ratings", "1", "--output", out)
	assert.Contains(t, res.out, "Exported 3 ratings")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"comment": "Clear and demanding."`)
}

func TestImportRatings(t *testing.T) {
	srv := setup(t)
	login(t)

	file := filepath.Join(t.TempDir(), "ratings.csv")
	require.NoError(t, os.WriteFile(file, []byte("professor_id,stars,comment\n4,4,solid\n4,9,out of range\n"), 0o644))

	res, err := run(t, "", "import", "ratings", "--input", file)
	require.Error(t, err)
	assert.Contains(t, res.out, "Imported 1 of 2 ratings")
	assert.Contains(t, res.err, "Row 2")
	assert.Equal(t, 1, srv.RatingCount(4))

	d, ok, err := config.LoadDraft(4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "out of range", d.Comment)
}

func TestLogs_WrittenToConfiguredPath(t *testing.T) {
	setup(t)
	logDir := t.TempDir()
	mustRun(t, "", "config", "set", "logging.path", logDir)

	_, err := run(t, "", "professors", "rate", "1", "--stars", "3")
	require.Error(t, err)

	res := mustRun(t, "", "logs", "errors")
	assert.Contains(t, res.out, "rating_submit_failed")

	res = mustRun(t, "", "logs", "search", "RATING_SUBMIT")
	assert.Contains(t, res.out, "rmp.log:")

	res = mustRun(t, "", "logs", "rotate")
	assert.Contains(t, res.out, "Rotated log to rmp.archive.")
}

func TestSystemInfo_Metrics(t *testing.T) {
	setup(t)

	res := mustRun(t, "", "system", "info", "--metrics")
	assert.Contains(t, res.out, "Status: ✓ Online")
	assert.Contains(t, res.out, "rmp_api_requests_total{endpoint=health,method=GET,status=200} 1")
}
