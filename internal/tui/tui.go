// Package tui is the interactive checklist screen: one day at a time, with
// day navigation, an add dialog and a delete confirmation. It holds only a
// snapshot of the active day's list and replaces it with whatever the store
// returns after each action.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/daylist/internal/datekey"
	"github.com/idilsaglam/daylist/internal/model"
	"github.com/idilsaglam/daylist/internal/store"
)

// entryItem adapts model.Entry to bubbles/list.Item
type entryItem struct{ model.Entry }

func (i entryItem) Title() string {
	box := boxUnchecked
	if i.Done {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Name)
}
func (i entryItem) Description() string { return "" }
func (i entryItem) FilterValue() string { return i.Name }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(entryItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.Name
	if it.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeDate
	modeConfirmDelete
)

type keyMap struct {
	Prev, Next, Today, GoTo key.Binding
	Add, Toggle, Delete     key.Binding
	Quit                    key.Binding
}

var keys = keyMap{
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
	Today:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
	GoTo:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to date")),
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Delete: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Today, k.GoTo, k.Add, k.Toggle, k.Delete}
}

// loadedMsg and savedMsg carry the store's answer for one day. Answers for a
// day that is no longer on screen are dropped, and so are saves older than
// the last one applied.
type loadedMsg struct {
	key     datekey.Key
	entries []model.Entry
	err     error
}

type savedMsg struct {
	key     datekey.Key
	seq     uint64
	verb    string
	entries []model.Entry
	err     error
}

// Model is the Bubble Tea model of the checklist screen.
type Model struct {
	ctx context.Context
	st  *store.Store
	now func() time.Time

	day     time.Time
	entries []model.Entry
	loaded  bool

	list  list.Model
	input textinput.Model
	mode  mode

	issued, applied uint64 // mutation sequence numbers

	pendingDelete model.Entry
	status        string
	statusErr     bool
	width, height int
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now for "today" and relative dates.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New returns the screen for day.
func New(ctx context.Context, st *store.Store, day time.Time, opts ...Option) Model {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		ctx:    ctx,
		st:     st,
		now:    time.Now,
		day:    datekey.Day(day),
		list:   l,
		input:  ti,
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refreshTitle()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, st *store.Store, day time.Time) error {
	p := tea.NewProgram(New(ctx, st, day), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Day is the day on screen.
func (m Model) Day() time.Time { return m.day }

// Entries is the snapshot on screen.
func (m Model) Entries() []model.Entry { return m.entries }

// Status is the last status line message.
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd { return m.load() }

func (m Model) load() tea.Cmd {
	ctx, st, day := m.ctx, m.st, m.day
	return func() tea.Msg {
		entries, err := st.Load(ctx, day)
		return loadedMsg{key: datekey.For(day), entries: entries, err: err}
	}
}

// mutate runs fn off the UI loop. Replies may arrive out of order, so each
// carries the sequence number it was issued with.
func (m *Model) mutate(verb string, fn func(ctx context.Context, day time.Time) ([]model.Entry, error)) tea.Cmd {
	m.issued++
	ctx, day, seq := m.ctx, m.day, m.issued
	return func() tea.Msg {
		entries, err := fn(ctx, day)
		return savedMsg{key: datekey.For(day), seq: seq, verb: verb, entries: entries, err: err}
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

func (m *Model) setEntries(entries []model.Entry) tea.Cmd {
	m.entries = entries
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryItem{e})
	}
	cmd := m.list.SetItems(items)
	m.refreshTitle()
	return cmd
}

// refreshTitle shows the day and live counts in the list header.
func (m *Model) refreshTitle() {
	dn, pn := model.Stats(m.entries)
	label := m.day.Format("Mon 2006-01-02")
	if datekey.SameDay(m.day, m.now()) {
		label += " (today)"
	}
	m.list.Title = fmt.Sprintf("%s  %s   %s %d  %s %d  %s %d",
		titleStyle.Render("Groceries"),
		accentStyle.Render(label),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), len(m.entries),
	)
}

func (m *Model) goTo(day time.Time) tea.Cmd {
	m.day = datekey.Day(day)
	m.loaded = false
	m.mode = modeBrowse
	m.setStatus("", false)
	cmd := m.setEntries(nil)
	return tea.Batch(cmd, m.load())
}

func (m Model) selected() (model.Entry, bool) {
	it, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		return model.Entry{}, false
	}
	return it.Entry, true
}

func (m *Model) openInput(md mode, placeholder string) tea.Cmd {
	m.mode = md
	m.setStatus("", false)
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		if msg.key != datekey.For(m.day) {
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			m.setStatus("load failed: "+msg.err.Error(), true)
		}
		cmd := m.setEntries(msg.entries)
		return m, cmd

	case savedMsg:
		if msg.key != datekey.For(m.day) || msg.seq < m.applied {
			return m, nil
		}
		m.applied = msg.seq
		if msg.err != nil {
			// keep the last stored snapshot on screen
			m.setStatus(msg.verb+" failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus(msg.verb, false)
		cmd := m.setEntries(msg.entries)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeDate:
			return m.updateDate(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeAdd || m.mode == modeDate {
		// cursor blink
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Prev):
		cmd := m.goTo(datekey.Shift(m.day, -1))
		return m, cmd
	case key.Matches(msg, keys.Next):
		cmd := m.goTo(datekey.Shift(m.day, 1))
		return m, cmd
	case key.Matches(msg, keys.Today):
		cmd := m.goTo(m.now())
		return m, cmd
	case key.Matches(msg, keys.GoTo):
		cmd := m.openInput(modeDate, "YYYY-MM-DD, today, yesterday, tomorrow")
		return m, cmd
	case key.Matches(msg, keys.Add):
		cmd := m.openInput(modeAdd, "New item name...")
		return m, cmd
	case key.Matches(msg, keys.Toggle):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := m.mutate("toggled", func(ctx context.Context, day time.Time) ([]model.Entry, error) {
			return m.st.ToggleIn(ctx, day, e.ID)
		})
		return m, cmd
	case key.Matches(msg, keys.Delete):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pendingDelete = e
		m.mode = modeConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.setStatus("Name cannot be empty", true)
			return m, nil
		}
		m.closeInput()
		cmd := m.mutate("added", func(ctx context.Context, day time.Time) ([]model.Entry, error) {
			return m.st.AddTo(ctx, day, name)
		})
		return m, cmd
	case "esc":
		m.closeInput()
		m.setStatus("", false)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		d, err := datekey.Parse(m.input.Value(), m.now())
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.closeInput()
		cmd := m.goTo(d)
		return m, cmd
	case "esc":
		m.closeInput()
		m.setStatus("", false)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.pendingDelete.ID
		m.mode = modeBrowse
		m.pendingDelete = model.Entry{}
		cmd := m.mutate("deleted", func(ctx context.Context, day time.Time) ([]model.Entry, error) {
			return m.st.DeleteFrom(ctx, day, id)
		})
		return m, cmd
	case "n", "N", "esc", "q":
		m.mode = modeBrowse
		m.pendingDelete = model.Entry{}
		return m, nil
	}
	return m, nil
}

func (m *Model) resize() {
	listHeight := m.height - 4
	if m.mode != modeBrowse {
		listHeight = m.height - 7
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

// View implements tea.Model.
func (m Model) View() string {
	m.resize()

	content := m.list.View()
	if !m.loaded {
		content += "\n" + mutedStyle.Render("loading...")
	}

	var dialog string
	switch m.mode {
	case modeAdd:
		dialog = "Add item to " + m.day.Format(datekey.Layout) + "\n" + m.input.View()
	case modeDate:
		dialog = "Go to date\n" + m.input.View()
	case modeConfirmDelete:
		dialog = fmt.Sprintf("Delete %q? %s", m.pendingDelete.Name, helpStyle.Render("y/n"))
	}
	if dialog != "" {
		content += "\n" + dialogStyle.Render(dialog)
	}

	if m.status != "" {
		st := mutedStyle
		if m.statusErr {
			st = errorStyle
		}
		content += "\n" + st.Render(m.status)
	}
	return panelStyle.Render(content)
}
