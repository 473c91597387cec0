package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/activity-timeline/internal/model"
)

// resetFlags restores every flag to its default so package-level commands
// can be executed more than once per test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cli struct {
	t   *testing.T
	dir string
}

// newCLI returns a harness whose data and config live in a temp dir, with
// the clock fixed at 2024-05-15.
func newCLI(t *testing.T) *cli {
	t.Helper()
	prev := clock
	clock = clockwork.NewFakeClockAt(time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC))
	t.Cleanup(func() { clock = prev })
	return &cli{t: t, dir: t.TempDir()}
}

// withFixture seeds the file backend with testdata/timeline.json.
func (c *cli) withFixture() *cli {
	c.t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "timeline.json"))
	require.NoError(c.t, err)
	require.NoError(c.t, os.WriteFile(filepath.Join(c.dir, "timeline.json"), data, 0o644))
	return c
}

func (c *cli) run(args ...string) (stdout, stderr string, code int) {
	c.t.Helper()
	resetFlags(rootCmd)
	full := append([]string{"--config", filepath.Join(c.dir, "config.json"), "--data-dir", c.dir}, args...)
	var out, errOut bytes.Buffer
	code = run(full, &out, &errOut)
	return out.String(), errOut.String(), code
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, code := c.run(args...)
	require.Equal(c.t, ExitSuccess, code, "tl %v failed: %s", args, errOut)
	return out
}

func (c *cli) timeline() model.Timeline {
	c.t.Helper()
	var tl model.Timeline
	require.NoError(c.t, json.Unmarshal([]byte(c.mustRun("export", "--format", "json")), &tl))
	return tl
}

func TestGoldenOutput(t *testing.T) {
	tests := []struct {
		golden string
		args   []string
	}{
		{"list", []string{"list"}},
		{"list_current", []string{"list", "--current"}},
		{"list_filtered", []string{"list", "--type", "learn,watch", "--status", "completed"}},
		{"export_csv", []string{"export"}},
		{"export_md", []string{"export", "--format", "md"}},
		{"report_md", []string{"report"}},
		{"report_csv", []string{"report", "--format", "csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			out := newCLI(t).withFixture().mustRun(tt.args...)
			g := goldie.New(t)
			g.Assert(t, tt.golden, []byte(out))
		})
	}
}

func TestListEmpty(t *testing.T) {
	c := newCLI(t)
	assert.Equal(t, "No entries found.\n", c.mustRun("list"))
	assert.Equal(t, "May 2024\n  (nothing yet)\n", c.mustRun("list", "--current"))
}

func TestLearnGoLifecycle(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("add", "Learn", "Go", "--type", "learn", "--month", "2024-05")
	assert.Contains(t, out, `Added "Learn Go" to May 2024`)
	_, err := os.Stat(filepath.Join(c.dir, "timeline.json"))
	require.NoError(t, err, "the add must be persisted before the process exits")

	tl := c.timeline()
	require.Len(t, tl.Months, 1)
	id := tl.Months[0].Entries[0].ID
	assert.Equal(t, model.StatusNotStarted, tl.Months[0].Entries[0].Status)

	assert.Contains(t, c.mustRun("next", id), "is now in_progress")
	assert.Contains(t, c.mustRun("next", id), "is now completed")
	assert.Contains(t, c.mustRun("next", id), "is now completed")

	assert.Contains(t, c.mustRun("mv", id, "--to", "2024-06"), "from May 2024 to June 2024")

	tl = c.timeline()
	require.Len(t, tl.Months, 1, "May must be pruned")
	assert.Equal(t, model.MonthKey{Year: 2024, Month: 6}, tl.Months[0].Key())
	assert.Equal(t, id, tl.Months[0].Entries[0].ID)
	assert.Equal(t, model.StatusCompleted, tl.Months[0].Entries[0].Status)
	require.NotNil(t, tl.LastUpdated)
}

func TestAddDefaultsToCurrentMonth(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "Severance", "--type", "watch", "--status", "in_progress", "--notes", "season 2")

	tl := c.timeline()
	require.Len(t, tl.Months, 1)
	assert.Equal(t, model.MonthKey{Year: 2024, Month: 5}, tl.Months[0].Key())
	e := tl.Months[0].Entries[0]
	assert.Equal(t, model.StatusInProgress, e.Status)
	assert.Equal(t, "season 2", e.Notes)
}

func TestAddRejectsBadInput(t *testing.T) {
	tests := map[string][]string{
		"missing type": {"add", "x"},
		"bad type":     {"add", "x", "--type", "cook"},
		"bad status":   {"add", "x", "--type", "read", "--status", "done"},
		"bad month":    {"add", "x", "--type", "read", "--month", "2024-13"},
		"blank name":   {"add", " ", "--type", "read"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			c := newCLI(t)
			_, stderr, code := c.run(args...)
			assert.Equal(t, ExitFailure, code)
			assert.Contains(t, stderr, "Error:")
			assert.Empty(t, c.timeline().Months)
		})
	}
}

func TestUnknownID(t *testing.T) {
	for _, args := range [][]string{
		{"rm", "nope"},
		{"next", "nope"},
		{"edit", "nope", "--name", "x"},
		{"mv", "nope", "--by", "1"},
	} {
		c := newCLI(t).withFixture()
		_, stderr, code := c.run(args...)
		assert.Equal(t, ExitFailure, code, "tl %v", args)
		assert.Contains(t, stderr, `no activity with id "nope"`)
	}
}

func TestEdit(t *testing.T) {
	c := newCLI(t).withFixture()

	out := c.mustRun("edit", "a1", "--notes", "", "--type", "read")
	assert.Equal(t, "  [x] read   Learn Go  [a1]\n", out)

	_, _, code := c.run("edit", "a2", "--status", "done")
	assert.Equal(t, ExitFailure, code)
	_, _, code = c.run("edit", "a2", "--name", "  ")
	assert.Equal(t, ExitFailure, code)

	tl := c.timeline()
	assert.Equal(t, model.Entry{ID: "a1", Name: "Learn Go", Type: model.TypeRead, Status: model.StatusCompleted}, tl.Months[0].Entries[0])
	assert.Equal(t, "Zelda", tl.Months[0].Entries[1].Name)
}

func TestRm(t *testing.T) {
	c := newCLI(t).withFixture()
	assert.Equal(t, "Deleted \"Dune\" from June 2024\n", c.mustRun("rm", "a3"))

	tl := c.timeline()
	require.Len(t, tl.Months, 1, "June must be pruned")
	assert.Equal(t, 4, tl.Months[0].Month)
}

func TestMvBy(t *testing.T) {
	c := newCLI(t).withFixture()
	c.mustRun("mv", "a3", "--by", "-3")

	tl := c.timeline()
	assert.Equal(t, []model.MonthKey{{Year: 2024, Month: 3}, {Year: 2024, Month: 4}}, []model.MonthKey{tl.Months[0].Key(), tl.Months[1].Key()})

	_, _, code := c.run("mv", "a3")
	assert.Equal(t, ExitFailure, code, "one of --to or --by is required")
	_, _, code = c.run("mv", "a3", "--to", "2024-01", "--by", "1")
	assert.Equal(t, ExitFailure, code, "--to and --by are exclusive")
	_, _, code = c.run("mv", "a3", "--to", "someday")
	assert.Equal(t, ExitFailure, code)
}

func TestPrune(t *testing.T) {
	c := newCLI(t).withFixture()
	assert.Equal(t, "Removed 0 empty month(s)\n", c.mustRun("prune"))
}

func TestClear(t *testing.T) {
	c := newCLI(t).withFixture()

	_, stderr, code := c.run("clear")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "without --yes")
	assert.Len(t, c.timeline().Months, 2)

	assert.Equal(t, "Timeline cleared.\n", c.mustRun("clear", "--yes"))
	_, err := os.Stat(filepath.Join(c.dir, "timeline.json"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, c.timeline().Months)
}

func TestExportYAML(t *testing.T) {
	c := newCLI(t).withFixture()

	var tl model.Timeline
	require.NoError(t, yaml.Unmarshal([]byte(c.mustRun("export", "--format", "yaml")), &tl))
	assert.Equal(t, c.timeline().Months, tl.Months)
	require.NotNil(t, tl.LastUpdated)
	assert.True(t, tl.LastUpdated.Equal(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)))
}

func TestReportJSON(t *testing.T) {
	c := newCLI(t).withFixture()
	var s summary
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("report", "--format", "json")), &s))
	assert.Equal(t, 3, s.Entries)
	assert.Equal(t, 3, s.Span)
	assert.Equal(t, tally{Key: "watch", Count: 0}, s.ByType[2])
}

func TestUnknownFormat(t *testing.T) {
	c := newCLI(t)
	_, _, code := c.run("export", "--format", "xml")
	assert.Equal(t, ExitFailure, code)
	_, _, code = c.run("report", "--format", "xml")
	assert.Equal(t, ExitFailure, code)
}

func TestMalformedDataStartsEmpty(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "timeline.json"), []byte("{not json"), 0o644))

	out, stderr, code := c.run("list")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "No entries found.\n", out)
	assert.Contains(t, stderr, "malformed timeline")

	backup, err := os.ReadFile(filepath.Join(c.dir, "timeline.corrupt.json"))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
}

func TestSQLiteBackend(t *testing.T) {
	c := newCLI(t)
	c.mustRun("--backend", "sqlite", "add", "Dune", "--type", "read", "--month", "2024-06")

	_, err := os.Stat(filepath.Join(c.dir, "timeline.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(c.dir, "timeline.json"))
	assert.True(t, os.IsNotExist(err), "sqlite backend must not write the JSON file")

	out := c.mustRun("--backend", "sqlite", "list")
	assert.Contains(t, out, "June 2024")
	assert.Contains(t, out, "Dune")
}

func TestBackendFromConfig(t *testing.T) {
	c := newCLI(t)
	cfg := `{"storage": {"backend": "memory"}}`
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "config.json"), []byte(cfg), 0o600))

	c.mustRun("add", "Dune", "--type", "read")
	assert.Equal(t, "No entries found.\n", c.mustRun("list"), "memory backend keeps nothing between runs")
}

func TestCommandErrors(t *testing.T) {
	c := newCLI(t)
	_, stderr, code := c.run("--backend", "tape", "list")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "opening storage")

	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "config.json"), []byte(`{"storage": `), 0o600))
	_, _, code = c.run("list")
	assert.Equal(t, ExitCommandError, code)
}

func TestUnreadableDataDirFailsBeforeChanging(t *testing.T) {
	c := newCLI(t)
	notDir := filepath.Join(c.dir, "plain-file")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0o644))

	out, stderr, code := c.run("--data-dir", notDir, "add", "Learn Go", "--type", "learn", "--month", "2024-05")
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Error: reading timeline")
	assert.Contains(t, stderr, "not a directory")
}

func TestFailedSaveIsReported(t *testing.T) {
	c := newCLI(t)
	// The file backend writes <key>.json.tmp before renaming; a directory in
	// its place makes every write fail while reads still succeed.
	require.NoError(t, os.Mkdir(filepath.Join(c.dir, "timeline.json.tmp"), 0o700))

	out, stderr, code := c.run("add", "Learn Go", "--type", "learn", "--month", "2024-05")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, `Added "Learn Go"`)
	assert.Contains(t, stderr, "save failed")
	assert.Contains(t, stderr, "Error: saving timeline")

	_, err := os.Stat(filepath.Join(c.dir, "timeline.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, exitCode(assert.AnError))
	assert.Equal(t, ExitFailure, exitCode(notFound("x")))
	assert.Equal(t, ExitCommandError, exitCode(commandError("opening storage", assert.AnError)))
}
