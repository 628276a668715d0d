// Package tui provides the BubbleTea-based terminal desktop.
package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/deskshell/internal/config"
	"github.com/jmylchreest/deskshell/internal/shell"
)

// Area is a focusable region of the desktop.
type Area int

const (
	AreaIcons Area = iota
	AreaMenubar
	AreaWindow
	AreaTaskbar
	AreaStartMenu
	areaCount
)

var areaNames = [areaCount]string{"icons", "menubar", "window", "taskbar", "start menu"}

// String returns the display name of the area.
func (a Area) String() string {
	if a < 0 || a >= areaCount {
		return "unknown"
	}
	return areaNames[a]
}

// item is one clickable element in an area.
type item struct {
	label  string
	target shell.Target
}

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg        *config.Config
	shell      *shell.Shell
	dispatcher *shell.Dispatcher

	// Components
	help     help.Model
	keys     KeyMap
	showHelp bool

	// State
	layout shell.Layout
	snap   shell.Snapshot
	area   Area
	cursor [areaCount]int
	width  int
	height int

	// Status message
	statusMsg string
	statusErr bool

	changes <-chan shell.ChangeEvent
}

// New creates a new TUI model. The model subscribes to shell changes so
// popup timers and the clock show up without a key press.
func New(cfg *config.Config, d *shell.Dispatcher) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := d.Shell()

	m := Model{
		cfg:        cfg,
		shell:      s,
		dispatcher: d,
		help:       help.New(),
		keys:       DefaultKeyMap(),
		showHelp:   cfg.TUI.ShowHelp,
		changes:    s.Subscribe(),
	}
	m.refresh()
	m.area = m.firstArea()
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.watchForChanges,
		tick(),
	)
}

// watchForChanges waits for the next shell change.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	ev, ok := <-m.changes
	if !ok {
		return nil
	}
	return refreshMsg{change: ev}
}

type refreshMsg struct {
	change shell.ChangeEvent
}

type tickMsg time.Time

// tick redraws popup countdowns once a second.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, m.watchForChanges

	case tickMsg:
		m.refresh()
		return m, tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.NextArea):
		m.area = m.nextArea(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevArea):
		m.area = m.nextArea(-1)
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
		m.move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
		m.move(1)
		return m, nil

	case key.Matches(msg, m.keys.Click):
		items := m.items(m.area)
		if len(items) == 0 {
			return m, nil
		}
		return m.dispatch(shell.Click(items[m.cursor[m.area]].target))

	case key.Matches(msg, m.keys.Start):
		if !m.layout.HasStartMenu {
			return m, status("No start menu on this desktop", true)
		}
		return m.dispatch(shell.Click(shell.Target{Role: shell.RoleStartButton, InStartButton: true}))

	case key.Matches(msg, m.keys.Close):
		if m.snap.Front == "" {
			return m, status("No open window", true)
		}
		return m.dispatch(shell.Click(shell.Target{Role: shell.RoleCloseButton, Window: m.snap.Front}))

	case key.Matches(msg, m.keys.Minimize):
		if m.snap.Front == "" {
			return m, status("No open window", true)
		}
		return m.dispatch(shell.Click(shell.Target{Role: shell.RoleMinButton, Window: m.snap.Front}))

	case key.Matches(msg, m.keys.Cycle):
		back := m.backWindow()
		if back == "" {
			return m, nil
		}
		return m.dispatch(shell.Click(shell.Target{Role: shell.RoleWindow, Window: back}))

	case key.Matches(msg, m.keys.Escape):
		return m.dispatch(shell.KeyPress(shell.KeyEscape))
	}

	return m, nil
}

// dispatch sends ev through the dispatcher and refreshes the view.
func (m Model) dispatch(ev shell.Event) (tea.Model, tea.Cmd) {
	if !m.dispatcher.Dispatch(ev) {
		return m, nil
	}
	wasOpen := m.snap.StartMenuOpen
	m.refresh()
	switch {
	case m.snap.StartMenuOpen && !wasOpen:
		m.area = AreaStartMenu
		m.cursor[AreaStartMenu] = 0
	case !m.snap.StartMenuOpen && m.area == AreaStartMenu:
		m.area = m.firstArea()
	}
	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// refresh re-reads layout and state from the shell and clamps cursors.
func (m *Model) refresh() {
	m.layout = m.shell.Layout()
	m.snap = m.shell.Snapshot()
	for a := range areaCount {
		n := len(m.items(a))
		switch {
		case n == 0:
			m.cursor[a] = 0
		case m.cursor[a] >= n:
			m.cursor[a] = n - 1
		}
	}
	if len(m.items(m.area)) == 0 {
		m.area = m.firstArea()
	}
}

func (m *Model) move(delta int) {
	n := len(m.items(m.area))
	if n == 0 {
		return
	}
	m.cursor[m.area] = (m.cursor[m.area] + delta + n) % n
}

func (m Model) firstArea() Area {
	for a := range areaCount {
		if len(m.items(a)) > 0 {
			return a
		}
	}
	return AreaIcons
}

// nextArea returns the next area in direction dir that has items.
func (m Model) nextArea(dir int) Area {
	a := m.area
	for range areaCount {
		a = (a + Area(dir) + areaCount) % areaCount
		if len(m.items(a)) > 0 {
			return a
		}
	}
	return m.area
}

// backWindow returns the back-most open window, which w raises.
func (m Model) backWindow() string {
	var back *shell.WindowView
	for i, w := range m.snap.Windows {
		if !w.Visible() || w.Front {
			continue
		}
		if back == nil || w.Z < back.Z {
			back = &m.snap.Windows[i]
		}
	}
	if back == nil {
		return ""
	}
	return back.ID
}

// items lists the clickable elements of area a.
func (m Model) items(a Area) []item {
	var out []item
	switch a {
	case AreaIcons:
		for _, l := range m.layout.Icons {
			out = append(out, item{label: l.Label, target: shell.Target{Role: shell.RoleIcon, Window: l.Window}})
		}
	case AreaMenubar:
		for _, l := range m.layout.MenubarLinks {
			out = append(out, item{label: l.Label, target: shell.Target{Role: shell.RoleMenubarLink, Window: l.Window}})
		}
	case AreaWindow:
		front := m.snap.Front
		if front == "" {
			return nil
		}
		if front == m.layout.FolderWindow {
			for _, f := range m.snap.Folders {
				out = append(out, item{label: f.Name, target: shell.Target{Role: shell.RoleFolderEntry, Window: front, Folder: f.Name}})
			}
		}
		if w, ok := m.snap.Window(front); ok && w.Kind == shell.WindowRegular {
			out = append(out, item{label: "_", target: shell.Target{Role: shell.RoleMinButton, Window: front}})
		}
		out = append(out, item{label: "x", target: shell.Target{Role: shell.RoleCloseButton, Window: front}})
	case AreaTaskbar:
		if m.layout.HasStartMenu {
			out = append(out, item{label: "Start", target: shell.Target{Role: shell.RoleStartButton, InStartButton: true}})
		}
		for _, w := range m.snap.Taskbar() {
			out = append(out, item{label: w.Title, target: shell.Target{Role: shell.RoleTaskbarEntry, Window: w.ID}})
		}
	case AreaStartMenu:
		if !m.snap.StartMenuOpen {
			return nil
		}
		for _, l := range m.layout.StartMenuItems {
			out = append(out, item{label: l.Label, target: shell.Target{Role: shell.RoleStartMenuItem, Window: l.Window, InStartMenu: true}})
		}
	}
	return out
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	frontBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	popupBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1)
	startBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
)

// View renders the desktop.
func (m Model) View() string {
	var sections []string

	sections = append(sections, m.viewRow(AreaMenubar, " "))
	sections = append(sections, m.viewRow(AreaIcons, "  "))
	sections = append(sections, "")

	if windows := m.viewWindows(); windows != "" {
		sections = append(sections, windows)
	} else {
		sections = append(sections, dimStyle.Render("(no open windows)"))
	}

	if m.snap.StartMenuOpen {
		sections = append(sections, startBox.Render(m.viewColumn(AreaStartMenu)))
	}

	sections = append(sections, m.viewTaskbar())

	if m.statusMsg != "" {
		style := dimStyle
		if m.statusErr {
			style = errStyle
		}
		sections = append(sections, style.Render(m.statusMsg))
	}

	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// label renders one item, highlighting the cursor in the focused area.
func (m Model) label(a Area, i int, text string) string {
	if a == m.area && i == m.cursor[a] {
		return selectedStyle.Render(text)
	}
	return text
}

func (m Model) viewRow(a Area, sep string) string {
	items := m.items(a)
	parts := make([]string, 0, len(items))
	for i, it := range items {
		parts = append(parts, m.label(a, i, "["+it.label+"]"))
	}
	return strings.Join(parts, sep)
}

func (m Model) viewColumn(a Area) string {
	items := m.items(a)
	lines := make([]string, 0, len(items))
	for i, it := range items {
		lines = append(lines, m.label(a, i, it.label))
	}
	return strings.Join(lines, "\n")
}

// viewWindows draws the front window in full and the windows behind it as
// title lines, front-most first.
func (m Model) viewWindows() string {
	visible := make([]shell.WindowView, 0, len(m.snap.Windows))
	for _, w := range m.snap.Windows {
		if w.Visible() {
			visible = append(visible, w)
		}
	}
	if len(visible) == 0 {
		return ""
	}
	slices.SortFunc(visible, func(a, b shell.WindowView) int {
		return cmp.Compare(b.Z, a.Z)
	})

	var out []string
	for _, w := range visible {
		if !w.Front {
			out = append(out, dimStyle.Render(fmt.Sprintf("  %s (z=%d)%s", w.Title, w.Z, m.expiry(w))))
			continue
		}
		out = append(out, m.viewFront(w))
	}
	return strings.Join(out, "\n")
}

func (m Model) viewFront(w shell.WindowView) string {
	var b strings.Builder

	controls := m.items(AreaWindow)
	buttons := make([]string, 0, 2)
	for i, it := range controls {
		if it.target.Role == shell.RoleFolderEntry {
			continue
		}
		buttons = append(buttons, m.label(AreaWindow, i, "["+it.label+"]"))
	}
	b.WriteString(titleStyle.Render(w.Title))
	b.WriteString("  ")
	b.WriteString(strings.Join(buttons, " "))
	if exp := m.expiry(w); exp != "" {
		b.WriteString(dimStyle.Render(exp))
	}

	if spec, ok := m.layout.Window(w.ID); ok && spec.Body != "" && w.ID != m.layout.FolderWindow {
		b.WriteString("\n\n")
		b.WriteString(spec.Body)
	}

	if w.ID == m.layout.FolderWindow {
		b.WriteString("\n\n")
		b.WriteString(m.viewExplorer(controls))
	}

	style := frontBox
	if w.Kind == shell.WindowPopup {
		style = popupBox
	}
	if m.width > 4 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(b.String())
}

// viewExplorer draws the folder sidebar next to the visible gallery.
func (m Model) viewExplorer(controls []item) string {
	var folders []string
	for i, it := range controls {
		if it.target.Role != shell.RoleFolderEntry {
			continue
		}
		text := it.target.Folder
		for _, f := range m.snap.Folders {
			if f.Name == text && f.Selected {
				text = activeStyle.Render(text)
			}
		}
		folders = append(folders, m.label(AreaWindow, i, text))
	}

	gallery := dimStyle.Render("(empty)")
	if id := m.snap.VisibleGallery(); id != "" {
		if g, ok := m.layout.Gallery(id); ok && len(g.Items) > 0 {
			gallery = strings.Join(g.Items, "\n")
		}
	}

	sidebar := lipgloss.NewStyle().PaddingRight(3).Render(strings.Join(folders, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, gallery)
}

func (m Model) expiry(w shell.WindowView) string {
	if w.ExpiresAt.IsZero() {
		return ""
	}
	return "  closes " + humanize.Time(w.ExpiresAt)
}

func (m Model) viewTaskbar() string {
	items := m.items(AreaTaskbar)
	parts := make([]string, 0, len(items)+1)
	for i, it := range items {
		text := "[" + it.label + "]"
		if it.target.Role == shell.RoleTaskbarEntry {
			if w, ok := m.snap.Window(it.target.Window); ok {
				switch {
				case w.Front:
					text = activeStyle.Render(text)
				case w.State == shell.WindowMinimized:
					text = dimStyle.Render(text)
				}
			}
		}
		parts = append(parts, m.label(AreaTaskbar, i, text))
	}

	bar := strings.Join(parts, " ")
	if m.snap.Clock != "" {
		gap := 2
		if m.width > 0 {
			gap = max(2, m.width-lipgloss.Width(bar)-lipgloss.Width(m.snap.Clock))
		}
		bar += strings.Repeat(" ", gap) + m.snap.Clock
	}
	return bar
}

// Snapshot returns the state last shown by the model.
func (m Model) Snapshot() shell.Snapshot {
	return m.snap
}

// Area returns the focused area.
func (m Model) Area() Area {
	return m.area
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	Dispatcher *shell.Dispatcher
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	if opts.Dispatcher == nil {
		return fmt.Errorf("tui: dispatcher is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := New(cfg, opts.Dispatcher)
	defer opts.Dispatcher.Shell().Unsubscribe(m.changes)

	var progOpts []tea.ProgramOption
	if cfg.TUI.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
