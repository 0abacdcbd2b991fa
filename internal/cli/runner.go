package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/daylist/internal/datekey"
	"github.com/idilsaglam/daylist/internal/model"
	"github.com/idilsaglam/daylist/internal/store"
	"github.com/idilsaglam/daylist/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool      // list grouped by pending/done
	Day    time.Time // active day
	Stdout io.Writer
	Stderr io.Writer

	// Interactive runs the TUI for the "ui" subcommand.
	Interactive func(ctx context.Context, st *store.Store, day time.Time) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, st *store.Store, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp(opt.Stderr)
		return 2
	}
	cmd, a := args[0], args[1:]
	r := runner{ctx: ctx, st: st, opt: opt}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "ls":
		return r.list()

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Stderr, "usage: daylist add <name...>")
			return 2
		}
		return r.add(strings.Join(a, " "))

	case "done", "rm":
		if len(a) != 1 {
			ui.Fail(opt.Stderr, "usage: daylist "+cmd+" <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail(opt.Stderr, cmd+": not a number: "+a[0])
			return 2
		}
		if cmd == "done" {
			return r.toggle(n)
		}
		return r.remove(n)

	case "key":
		fmt.Fprintln(opt.Stdout, st.KeyFor(opt.Day))
		return 0

	case "ui":
		if opt.Interactive == nil {
			ui.Fail(opt.Stderr, "ui: not available")
			return 1
		}
		if err := opt.Interactive(ctx, st, opt.Day); err != nil {
			ui.Fail(opt.Stderr, "ui: "+err.Error())
			return 1
		}
		return 0
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `daylist - a grocery checklist per day

Usage:
  daylist [flags] <subcommand> [args]

Subcommands:
  ls                 List the day's items
  add <name...>      Add an item (name can be multiple words)
  done <index>       Toggle done for item at 1-based index
  rm <index>         Remove item at 1-based index
  ui                 Interactive list with day navigation
  key                Print the storage key of the day

Flags:
  -d, --date <day>   YYYY-MM-DD, today, yesterday or tomorrow (default today)
      --group        Group ls output by pending/done
  -c, --config <p>   Config file (JSON with comments)
      --backend <b>  file, sqlite or memory
      --data-dir <p> Directory for the file and sqlite backends
      --theme <t>    classic, neon or mono
      --no-color     Disable colors

Examples:
  daylist add Milk
  daylist --date 2024-03-01 ls
  daylist done 2
  daylist rm 3
`)
}

type runner struct {
	ctx context.Context
	st  *store.Store
	opt Options
}

func (r runner) dayLabel() string { return r.opt.Day.Format(datekey.Layout) }

// load reads the day's list, reporting failures on stderr. The returned list
// is usable even when err is set.
func (r runner) load() ([]model.Entry, error) {
	items, err := r.st.Load(r.ctx, r.opt.Day)
	if err != nil {
		ui.Fail(r.opt.Stderr, "load: "+err.Error())
		if errors.Is(err, store.ErrCorrupt) {
			fmt.Fprintln(r.opt.Stderr, ui.For(r.opt.Stderr).C(ui.Dim,
				"Hint: set corrupt_policy to \"lenient\" to start over with an empty list"))
		}
	}
	return items, err
}

// resolve maps a 1-based display index to an entry id.
func (r runner) resolve(items []model.Entry, userIndex int) (string, bool) {
	if userIndex < 1 || userIndex > len(items) {
		ui.Fail(r.opt.Stderr, fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		fmt.Fprintln(r.opt.Stderr, ui.For(r.opt.Stderr).C(ui.Dim, "Hint: run `daylist ls` to see valid indexes"))
		return "", false
	}
	return items[userIndex-1].ID, true
}

// -------------- subcommand impls ----------------

func (r runner) list() int {
	items, err := r.load()

	p := ui.For(r.opt.Stdout)
	th := ui.Current()
	d, pn := model.Stats(items)
	header := fmt.Sprintf("%s  %s  %s %d  %s %d  %s %d",
		p.C(th.Title, "Groceries"),
		p.C(th.Accent, r.dayLabel()),
		p.C(th.Success, th.SymDone), d,
		p.C(th.Pending, th.SymPending), pn,
		p.C(th.Accent, "Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, p.C(th.Muted, ui.ProgressBar(d, d+pn, 28)))
	lines = append(lines, "")

	if r.opt.Group {
		lines = append(lines, groupLines(p, items)...)
	} else {
		lines = append(lines, flatLines(p, items)...)
	}
	lines = append(lines, "")
	lines = append(lines, p.C(th.Muted, "Tip: add with `daylist add Milk`"))
	ui.Panel(r.opt.Stdout, lines)

	if err != nil {
		return 1
	}
	return 0
}

func (r runner) add(name string) int {
	if _, err := model.NewEntry("", name); err != nil {
		ui.Fail(r.opt.Stderr, "add: "+err.Error())
		return 2
	}
	if _, err := r.st.AddTo(r.ctx, r.opt.Day, name); err != nil {
		ui.Fail(r.opt.Stderr, "add: "+err.Error())
		return 1
	}
	ui.OK(r.opt.Stdout, "added to "+r.dayLabel())
	return 0
}

func (r runner) toggle(userIndex int) int {
	items, err := r.load()
	if err != nil {
		return 1
	}
	id, ok := r.resolve(items, userIndex)
	if !ok {
		return 2
	}
	if _, err := r.st.ToggleIn(r.ctx, r.opt.Day, id); err != nil {
		ui.Fail(r.opt.Stderr, "save: "+err.Error())
		return 1
	}
	ui.OK(r.opt.Stdout, "toggled")
	return 0
}

func (r runner) remove(userIndex int) int {
	items, err := r.load()
	if err != nil {
		return 1
	}
	id, ok := r.resolve(items, userIndex)
	if !ok {
		return 2
	}
	if _, err := r.st.DeleteFrom(r.ctx, r.opt.Day, id); err != nil {
		ui.Fail(r.opt.Stderr, "save: "+err.Error())
		return 1
	}
	ui.OK(r.opt.Stdout, "removed")
	return 0
}

// -------------- rendering helpers --------------

// entryLine renders one item with its 1-based display index.
func entryLine(p ui.Painter, index int, it model.Entry) string {
	th := ui.Current()
	box, color := th.BoxUnchecked, th.Muted
	if it.Done {
		box, color = th.BoxChecked, th.Success
	}
	name := it.Name
	if r := []rune(name); len(r) > 80 {
		name = string(r[:77]) + "..."
	}
	return fmt.Sprintf("%s %s %s", p.C(ui.Dim, fmt.Sprintf("%2d.", index)), p.C(color, box), name)
}

func flatLines(p ui.Painter, items []model.Entry) []string {
	if len(items) == 0 {
		return []string{p.C(ui.Current().Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, entryLine(p, i+1, it))
	}
	return out
}

// groupLines keeps the flat numbering so `done`/`rm` indexes stay valid.
func groupLines(p ui.Painter, items []model.Entry) []string {
	th := ui.Current()
	var pend, done []string
	for i, it := range items {
		if it.Done {
			done = append(done, entryLine(p, i+1, it))
		} else {
			pend = append(pend, entryLine(p, i+1, it))
		}
	}
	section := func(title string, rows []string) []string {
		out := []string{p.C(th.Accent, title)}
		if len(rows) == 0 {
			return append(out, p.C(th.Muted, "(none)"))
		}
		return append(out, rows...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
