// Package tui provides an interactive terminal browser for the tracker using Bubble Tea.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/ui"
)

// ViewMode represents the current view state.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Tab selects which collection the list shows.
type Tab int

const (
	TabAll Tab = iota
	TabPrioritized
	TabHistory
)

var tabNames = []string{"All", "Prioritized", "History"}

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone   InputMode = iota
	InputSearch           // Entering search text
)

// Status icons
const (
	iconNew        = "○"
	iconInProgress = "◐"
	iconDone       = "●"
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	mgr      *manager.Manager
	records  []model.Record // records for the current tab
	filtered []model.Record // records after filtering
	cursor   int
	tab      Tab
	viewMode ViewMode

	filterSearch string

	// Input state
	inputMode  InputMode
	inputText  string
	inputLabel string

	// Detail view state
	detail         *model.Record
	detailSubtasks []model.Record

	// UI state
	width   int
	height  int
	err     error
	message string // temporary status message
	now     func() time.Time
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	statusColors = map[model.Status]lipgloss.Color{
		model.StatusNew:        lipgloss.Color("252"),
		model.StatusInProgress: lipgloss.Color("214"),
		model.StatusDone:       lipgloss.Color("42"),
	}

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Content area padding
	contentPadding = 2
)

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusNew:
		return iconNew
	case model.StatusInProgress:
		return iconInProgress
	case model.StatusDone:
		return iconDone
	default:
		return "?"
	}
}

// New creates a new TUI model browsing the given manager.
func New(mgr *manager.Manager) Model {
	return Model{
		mgr:      mgr,
		viewMode: ViewList,
		now:      time.Now,
	}
}

// Messages
type itemsMsg struct {
	tab     Tab
	records []model.Record
}

type detailMsg struct {
	record   model.Record
	subtasks []model.Record
	err      error
}

type actionMsg struct {
	message string
	err     error
}

// loadItems loads the records for the current tab. The All tab reads a
// snapshot so browsing does not count as viewing.
func (m Model) loadItems() tea.Cmd {
	tab := m.tab
	return func() tea.Msg {
		var records []model.Record
		switch tab {
		case TabPrioritized:
			records = m.mgr.GetPrioritized()
		case TabHistory:
			records = m.mgr.GetHistory()
			slices.Reverse(records) // most recent first
		default:
			records = m.mgr.Snapshot()
			slices.SortFunc(records, func(a, b model.Record) int { return a.ID - b.ID })
		}
		return itemsMsg{tab: tab, records: records}
	}
}

// loadDetail opens the selected item. This is a tracked read.
func (m Model) loadDetail() tea.Cmd {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	r := m.filtered[m.cursor]
	return func() tea.Msg {
		switch r.Kind {
		case model.KindEpic:
			e, err := m.mgr.GetEpic(r.ID)
			if err != nil {
				return detailMsg{err: err}
			}
			subs, err := m.mgr.EpicSubtasks(r.ID)
			if err != nil {
				return detailMsg{err: err}
			}
			msg := detailMsg{record: e.Record()}
			for _, s := range subs {
				msg.subtasks = append(msg.subtasks, s.Record())
			}
			return msg
		case model.KindSubtask:
			s, err := m.mgr.GetSubtask(r.ID)
			return detailMsg{record: s.Record(), err: err}
		default:
			t, err := m.mgr.GetTask(r.ID)
			return detailMsg{record: t.Record(), err: err}
		}
	}
}

// applyFilters filters records based on current filter state.
func (m *Model) applyFilters() {
	m.filtered = nil
	search := strings.ToLower(m.filterSearch)
	for _, r := range m.records {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) &&
			!strings.Contains(fmt.Sprint(r.ID), search) {
			continue
		}
		m.filtered = append(m.filtered, r)
	}
	// Adjust cursor
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadItems()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear message on any key
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case itemsMsg:
		// Ignore results for a tab that is no longer shown
		if msg.tab != m.tab {
			return m, nil
		}
		m.records = msg.records
		m.applyFilters()
		return m, nil

	case detailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.detail = &msg.record
		m.detailSubtasks = msg.subtasks
		m.viewMode = ViewDetail
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
		}
		return m, m.loadItems()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle input mode first
	if m.inputMode != InputNone {
		return m.handleInputKey(msg)
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.inputText = ""
		m.filterSearch = ""
		m.applyFilters()
		return m, nil

	case "enter":
		m.inputMode = InputNone
		m.filterSearch = m.inputText
		m.inputText = ""
		m.applyFilters()
		return m, nil

	case "backspace":
		if len(m.inputText) > 0 {
			m.inputText = m.inputText[:len(m.inputText)-1]
		}

	default:
		// Add character if printable
		if len(msg.String()) == 1 {
			m.inputText += msg.String()
		}
	}
	// Live filter
	m.filterSearch = m.inputText
	m.applyFilters()
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.cursor = 0
		m.records = nil
		m.filtered = nil
		return m, m.loadItems()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "enter":
		return m, m.loadDetail()

	case "s":
		return m.doCycleStatus()

	case "d":
		return m.doDelete()

	case "r":
		return m, m.loadItems()

	case "/":
		return m.startInput(InputSearch, "Search: ")
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace", "enter":
		m.viewMode = ViewList
		m.detail = nil
		m.detailSubtasks = nil
		// History changed by opening the detail
		return m, m.loadItems()
	}
	return m, nil
}

func (m Model) startInput(mode InputMode, label string) (Model, tea.Cmd) {
	m.inputMode = mode
	m.inputLabel = label
	m.inputText = ""
	return m, nil
}

// nextStatus cycles NEW → IN_PROGRESS → DONE → NEW.
func nextStatus(s model.Status) model.Status {
	i := slices.Index(model.Statuses, s)
	return model.Statuses[(i+1)%len(model.Statuses)]
}

func itemOf(r model.Record) model.Item {
	return model.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartTime:   r.StartTime,
		Duration:    r.Duration,
	}
}

func (m Model) doCycleStatus() (Model, tea.Cmd) {
	if len(m.filtered) == 0 {
		return m, nil
	}
	r := m.filtered[m.cursor]
	if r.Kind == model.KindEpic {
		m.message = "Epic status is derived from its subtasks"
		return m, nil
	}
	item := itemOf(r)
	item.Status = nextStatus(r.Status)
	return m, func() tea.Msg {
		var err error
		if r.Kind == model.KindSubtask {
			_, err = m.mgr.UpdateSubtask(model.Subtask{Item: item, EpicID: *r.EpicID})
		} else {
			_, err = m.mgr.UpdateTask(model.Task{Item: item})
		}
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("#%d is now %s", r.ID, item.Status)}
	}
}

func (m Model) doDelete() (Model, tea.Cmd) {
	if len(m.filtered) == 0 {
		return m, nil
	}
	r := m.filtered[m.cursor]
	return m, func() tea.Msg {
		var err error
		switch r.Kind {
		case model.KindEpic:
			_, err = m.mgr.DeleteEpic(r.ID)
		case model.KindSubtask:
			_, err = m.mgr.DeleteSubtask(r.ID)
		default:
			_, err = m.mgr.DeleteTask(r.ID)
		}
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Deleted #%d", r.ID)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	switch m.viewMode {
	case ViewList:
		b.WriteString(m.listView())
	case ViewDetail:
		b.WriteString(m.detailView())
	}

	// Input line
	if m.inputMode != InputNone {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.inputLabel + m.inputText + "█"))
	}

	// Status message
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	// Apply padding to entire content
	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

func (m Model) tabBar() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tracker"))
	b.WriteString("  ")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("  nothing here"))
		b.WriteString("\n")
	}

	// Keep the cursor visible on short terminals
	start, end := 0, len(m.filtered)
	if visible := m.height - 8; visible > 0 && end > visible {
		start = max(0, m.cursor-visible+1)
		end = start + visible
	}
	now := m.now()
	for i := start; i < end; i++ {
		line := m.formatLine(m.filtered[i], now)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.filterSearch != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("\nfilter: %q", m.filterSearch)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k move • enter open • s status • d delete • / search • tab view • q quit"))
	return b.String()
}

func (m Model) formatLine(r model.Record, now time.Time) string {
	icon := lipgloss.NewStyle().Foreground(statusColors[r.Status]).Render(statusIcon(r.Status))
	kind := strings.ToLower(string(r.Kind))
	line := fmt.Sprintf("%s #%-4d %-7s %s", icon, r.ID, kind, r.Name)
	if r.StartTime != nil {
		line += dimStyle.Render("  " + ui.Window(r.StartTime, r.Duration, now))
	}
	return line
}

func (m Model) detailView() string {
	if m.detail == nil {
		return ""
	}
	r := *m.detail
	now := m.now()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", r.ID, r.Name)))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Type", strings.ToLower(string(r.Kind)))
	field("Status", lipgloss.NewStyle().Foreground(statusColors[r.Status]).Render(string(r.Status)))
	field("When", ui.Window(r.StartTime, r.Duration, now))
	if r.EndTime != nil {
		field("Ends", r.EndTime.Local().Format("Jan 2 15:04"))
	}
	if r.EpicID != nil {
		field("Epic", fmt.Sprintf("#%d", *r.EpicID))
	}
	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(r.Description)
		b.WriteString("\n")
	}

	if r.Kind == model.KindEpic {
		b.WriteString("\n")
		b.WriteString(detailLabelStyle.Render("Subtasks"))
		b.WriteString("\n")
		if len(m.detailSubtasks) == 0 {
			b.WriteString(dimStyle.Render("  none"))
			b.WriteString("\n")
		}
		for _, s := range m.detailSubtasks {
			b.WriteString("  ")
			b.WriteString(m.formatLine(s, now))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc back • q quit"))
	return b.String()
}

// Run starts the TUI.
func Run(mgr *manager.Manager) error {
	m := New(mgr)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
