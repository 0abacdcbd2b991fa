package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/daylist/internal/cli"
	"github.com/idilsaglam/daylist/internal/kv"
	"github.com/idilsaglam/daylist/internal/model"
	"github.com/idilsaglam/daylist/internal/store"
)

var testNow = func() time.Time { return time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC) }

type harness struct {
	home   string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{home: t.TempDir()}
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	full := append([]string{"--data-dir", filepath.Join(h.home, "data")}, args...)
	return cli.Main(context.Background(), full, cli.Env{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Vars:   map[string]string{"HOME": h.home, "DAYLIST_LOG_LEVEL": "error"},
		Now:    testNow,
	})
}

func Test_Add_Ls_Done_Rm_Round_Trip(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("add", "Milk"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "added to 2024-03-01")

	require.Equal(t, 0, h.run("add", "Whole", "grain", "bread"), h.stderr.String())

	require.Equal(t, 0, h.run("ls"), h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, " 1. ☐ Milk")
	assert.Contains(t, out, " 2. ☐ Whole grain bread")
	assert.Less(t, strings.Index(out, "Milk"), strings.Index(out, "Whole grain bread"))

	require.Equal(t, 0, h.run("done", "1"), h.stderr.String())
	require.Equal(t, 0, h.run("ls"))
	assert.Contains(t, h.stdout.String(), " 1. ☑ Milk")

	require.Equal(t, 0, h.run("rm", "1"), h.stderr.String())
	require.Equal(t, 0, h.run("ls"))
	assert.NotContains(t, h.stdout.String(), "Milk")
	assert.Contains(t, h.stdout.String(), " 1. ☐ Whole grain bread")

	_, err := os.Stat(filepath.Join(h.home, "data", "@grocery_list_2024-03-01.json"))
	require.NoError(t, err)
}

func Test_Date_Flag_Selects_Independent_Lists(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("--date", "2024-03-02", "add", "Eggs"))
	require.Equal(t, 0, h.run("-d", "tomorrow", "ls"))
	assert.Contains(t, h.stdout.String(), "Eggs")

	require.Equal(t, 0, h.run("ls"))
	assert.NotContains(t, h.stdout.String(), "Eggs")
	assert.Contains(t, h.stdout.String(), "no items")

	require.Equal(t, 0, h.run("-d", "2024-03-02", "key"))
	assert.Equal(t, "@grocery_list_2024-03-02\n", h.stdout.String())
}

func Test_Usage_Errors_Exit_2(t *testing.T) {
	h := newHarness(t)

	testCases := [][]string{
		{},
		{"add"},
		{"add", "   "},
		{"add", "Milk\xff"},
		{"done"},
		{"done", "x"},
		{"rm", "1"},
		{"bogus"},
		{"--date", "03/01/2024", "ls"},
		{"--backend", "redis", "ls"},
	}
	for _, args := range testCases {
		assert.Equal(t, 2, h.run(args...), "args %q", args)
		assert.NotEmpty(t, h.stderr.String(), "args %q", args)
	}
}

func Test_Group_Keeps_Flat_Indexes(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("add", "Milk"))
	require.Equal(t, 0, h.run("add", "Eggs"))
	require.Equal(t, 0, h.run("done", "2"))

	require.Equal(t, 0, h.run("--group", "ls"))
	out := h.stdout.String()
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, " 1. ☐ Milk")
	assert.Contains(t, out, " 2. ☑ Eggs")
	assert.Less(t, strings.Index(out, "Pending"), strings.Index(out, "Milk"))
	assert.Less(t, strings.Index(out, "Done"), strings.Index(out, "Eggs"))
}

func Test_Sqlite_Backend(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("--backend", "sqlite", "add", "Milk"), h.stderr.String())
	require.Equal(t, 0, h.run("--backend", "sqlite", "ls"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Milk")

	_, err := os.Stat(filepath.Join(h.home, "data", "daylist.db"))
	require.NoError(t, err)
}

func Test_Corrupt_Day_Reports_And_Still_Renders(t *testing.T) {
	h := newHarness(t)

	dir := filepath.Join(h.home, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "@grocery_list_2024-03-01.json"), []byte("{oops"), 0o644))

	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.stderr.String(), "corrupt")
	assert.Contains(t, h.stdout.String(), "no items")

	assert.Equal(t, 1, h.run("add", "Milk"))

	h.stdout.Reset()
	full := []string{"--data-dir", dir, "add", "Milk"}
	code := cli.Main(context.Background(), full, cli.Env{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Vars:   map[string]string{"HOME": h.home, "DAYLIST_CORRUPT_POLICY": "lenient", "DAYLIST_LOG_LEVEL": "error"},
		Now:    testNow,
	})
	require.Equal(t, 0, code, h.stderr.String())
}

func Test_Run_Ui_Uses_Interactive_Hook(t *testing.T) {
	var gotDay time.Time
	st := store.New(kv.NewMemory())
	var stdout, stderr bytes.Buffer

	code := cli.Run(context.Background(), st, []string{"ui"}, cli.Options{
		Day:    testNow(),
		Stdout: &stdout,
		Stderr: &stderr,
		Interactive: func(_ context.Context, _ *store.Store, day time.Time) error {
			gotDay = day
			return nil
		},
	})
	require.Equal(t, 0, code)
	assert.True(t, gotDay.Equal(testNow()))

	code = cli.Run(context.Background(), st, []string{"ui"}, cli.Options{Day: testNow(), Stdout: &stdout, Stderr: &stderr})
	assert.Equal(t, 1, code)
}

func Test_Run_Index_Out_Of_Range(t *testing.T) {
	st := store.New(kv.NewMemory())
	_, err := st.Add(context.Background(), testNow(), []model.Entry{}, "Milk")
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := cli.Run(context.Background(), st, []string{"done", "2"}, cli.Options{Day: testNow(), Stdout: &stdout, Stderr: &stderr})
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "index out of range: have 1, got 2")
}
