// Package observerui provides the Bubble Tea interface of the Observer
// station: the parameter form, live metrics and session history.
package observerui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/observer"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/scenario"
	"github.com/verte-zerg/wsim/internal/termui"
)

const (
	tabControl = iota
	tabMetrics
	tabHistory
)

type tickMsg time.Time

// MessageMsg carries a message received from the User station.
type MessageMsg struct {
	Message link.Message
}

// StatusMsg reports a change of the link state.
type StatusMsg struct {
	Connected bool
}

// ScenarioMsg delivers a reloaded scenario file.
type ScenarioMsg struct {
	Scenario scenario.Scenario
	Err      error
}

// Options configures the Observer UI.
type Options struct {
	// ScenarioPath is where ctrl+s saves the scenario; empty disables saving.
	ScenarioPath string
	History      HistorySource
	// Address is shown in the header so the User can connect manually.
	Address string
}

// Model implements the Bubble Tea Observer UI.
type Model struct {
	station *observer.Station
	opts    Options
	keys    keyMap
	help    help.Model

	tabs      []string
	activeTab int
	width     int
	height    int

	fields   []field
	selected int
	editing  bool
	input    textinput.Model

	connected bool
	flashOn   bool
	errMsg    string
	info      string

	metricsView viewport.Model
	history     table.Model
	historyRows int
	historyErr  string
}

// New constructs the Observer UI around st.
func New(st *observer.Station, opts Options) *Model {
	return &Model{
		station:     st,
		opts:        opts,
		keys:        defaultKeys(),
		help:        help.New(),
		tabs:        []string{"Control", "Metrics", "History"},
		fields:      formFields(),
		input:       newTextInput("> "),
		metricsView: viewport.New(0, 0),
		history:     newHistoryTable(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), loadHistory(m.opts.History))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tickMsg:
		completed := m.station.Tick()
		if m.station.Session().Flashing() {
			m.flashOn = !m.flashOn
		}
		m.refreshMetrics()
		if completed {
			m.syncErr()
			return m, tea.Batch(tick(), loadHistory(m.opts.History))
		}
		return m, tick()
	case MessageMsg:
		m.station.HandleMessage(msg.Message)
		m.refreshMetrics()
		return m, nil
	case StatusMsg:
		m.connected = msg.Connected
		return m, nil
	case ScenarioMsg:
		m.applyScenario(msg)
		return m, nil
	case historyMsg:
		if msg.err != nil {
			m.historyErr = msg.err.Error()
			return m, nil
		}
		m.historyErr = ""
		m.historyRows = len(msg.rows)
		m.history.SetRows(msg.rows)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateEdit(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	control := m.station.Control()
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.station.Running() {
			control.PressStop()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.updateLayout()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.moveTab(1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.PrevTab):
		m.moveTab(-1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Start):
		if m.station.Running() {
			return m, nil
		}
		if len(control.ActiveTasks()) == 0 {
			m.errMsg = "Enable at least one task before starting."
			return m, nil
		}
		m.flashOn = false
		control.PressStart()
		m.syncErr()
		m.refreshMetrics()
		return m, nil
	case key.Matches(msg, m.keys.Pause):
		control.PressPause()
		return m, nil
	case key.Matches(msg, m.keys.Complete):
		control.PressComplete()
		m.syncErr()
		return m, loadHistory(m.opts.History)
	case key.Matches(msg, m.keys.Stop):
		control.PressStop()
		m.syncErr()
		return m, loadHistory(m.opts.History)
	case key.Matches(msg, m.keys.Save):
		m.saveScenario()
		return m, nil
	}

	switch m.activeTab {
	case tabControl:
		return m.updateForm(msg)
	case tabHistory:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.metricsView, cmd = m.metricsView.Update(msg)
		return m, cmd
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selected = cycle(m.selected, -1, len(m.fields))
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.selected = cycle(m.selected, 1, len(m.fields))
		return m, nil
	}
	if m.station.Running() {
		return m, nil
	}
	f := m.fields[m.selected]
	switch {
	case key.Matches(msg, m.keys.Edit):
		if f.text == noText {
			return m, nil
		}
		m.editing = true
		m.errMsg = ""
		m.input.SetValue(m.station.Control().Scenario().Name)
		if f.text == limitText {
			m.input.SetValue(m.station.Control().Scenario().TimeLimit)
		}
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(f, -1)
	case key.Matches(msg, m.keys.Increase), key.Matches(msg, m.keys.Toggle):
		m.adjust(f, 1)
	}
	return m, nil
}

func (m *Model) adjust(f field, delta int) {
	if f.adjust == nil {
		return
	}
	m.station.Control().Update(func(s *scenario.Scenario) { f.adjust(s, delta) })
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		f := m.fields[m.selected]
		if f.text == limitText && value != "" && params.NormalizeTimeLimit(value) != value {
			normalized := params.NormalizeTimeLimit(value)
			m.info = fmt.Sprintf("Time limit %q read as %s.", value, normalized)
		}
		m.station.Control().Update(func(s *scenario.Scenario) {
			if f.text == nameText {
				s.Name = value
			} else {
				s.TimeLimit = value
			}
		})
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyScenario(msg ScenarioMsg) {
	if msg.Err != nil {
		m.errMsg = "Scenario reload failed: " + msg.Err.Error()
		return
	}
	if m.station.Running() {
		m.info = "Scenario file changed; reload skipped during a session."
		return
	}
	m.station.Control().Replace(msg.Scenario)
	m.errMsg = ""
	m.info = "Scenario reloaded."
}

func (m *Model) saveScenario() {
	if m.opts.ScenarioPath == "" {
		m.errMsg = "No scenario file; start with --scenario to enable saving."
		return
	}
	if err := scenario.Save(m.opts.ScenarioPath, m.station.Control().Scenario()); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.info = "Scenario saved to " + m.opts.ScenarioPath
}

func (m *Model) syncErr() {
	if err := m.station.Err(); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
}

func (m *Model) moveTab(delta int) {
	m.activeTab = cycle(m.activeTab, delta, len(m.tabs))
	if m.activeTab == tabHistory {
		m.history.Focus()
	} else {
		m.history.Blur()
	}
	m.refreshMetrics()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = termui.TabsHeight() + 1
	footerHeight = strings.Count(m.help.View(m.keys), "\n") + 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.help.Width = m.width
	m.metricsView.Width = m.width
	m.metricsView.Height = bodyHeight
	m.history.SetWidth(m.width)
	m.history.SetHeight(termui.MaxInt(1, bodyHeight-1))
	m.input.Width = termui.MaxInt(10, m.width-4)
	m.refreshMetrics()
}

func (m *Model) refreshMetrics() {
	st := m.station
	content := renderMetrics(st.Board(), st.Control().ActiveTasks(), st.Session().Elapsed().Seconds(), m.width)
	m.metricsView.SetContent(content)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := termui.FitLines(m.renderHeader(), m.width, headerHeight)
	body := termui.FitLines(m.renderBody(), m.width, bodyHeight)
	footer := termui.FitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderHeader() string {
	row := termui.Tabs(m.tabs, m.activeTab) + "  " + termui.Badge(m.connected) + "  " + m.renderTimer()
	sc := m.station.Control().Scenario()
	status := fmt.Sprintf("Scenario: %s", orNone(sc.Name))
	if m.opts.Address != "" {
		status += "  Listening on " + m.opts.Address
	}
	if notice := m.station.Notice(); notice != "" {
		status += "  " + notice
	} else if m.info != "" {
		status += "  " + m.info
	}
	return termui.PadLines(row, m.width) + "\n" + termui.HeaderStyle.Render(termui.TruncateLine(status, m.width))
}

// renderTimer shows the countdown when a limit is set, the elapsed clock
// otherwise. After completion it blinks on every timer tick.
func (m *Model) renderTimer() string {
	sess := m.station.Session()
	clock := sess.Timestamp()
	if left, ok := sess.Remaining(); ok {
		clock = params.FormatClock(left)
	}
	if sess.Flashing() && !m.flashOn {
		return strings.Repeat(" ", len(clock))
	}
	return termui.ValueStyle.Render(clock)
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabControl:
		sc := m.station.Control().Scenario()
		form := renderForm(m.fields, sc, m.selected, m.station.Running())
		if m.editing {
			form += "\n\n" + m.input.View()
		}
		return form
	case tabHistory:
		switch {
		case m.historyErr != "":
			return termui.ErrorStyle.Render("Failed to load history: " + m.historyErr)
		case m.opts.History == nil:
			return "History is disabled."
		case m.historyRows == 0:
			return "No sessions found."
		default:
			return termui.MutedStyle.Render(m.history.View())
		}
	default:
		return m.metricsView.View()
	}
}

func (m *Model) renderFooter() string {
	out := m.help.View(m.keys)
	if m.errMsg != "" {
		out += "\n" + termui.ErrorStyle.Render(m.errMsg)
	}
	return out
}

func orNone(s string) string {
	if s == "" {
		return "(unnamed)"
	}
	return s
}
