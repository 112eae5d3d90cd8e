// Package userui provides the Bubble Tea interface of the User station: the
// animated task scenes and correction clicks.
package userui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/sim"
	"github.com/verte-zerg/wsim/internal/sound"
	"github.com/verte-zerg/wsim/internal/termui"
	"github.com/verte-zerg/wsim/internal/user"
)

type frameMsg time.Time

// MessageMsg carries a command received from the Observer.
type MessageMsg struct {
	Message link.Message
}

// StatusMsg reports a change of the link state.
type StatusMsg struct {
	Connected bool
	Target    string
}

type keyMap struct {
	NextTask key.Binding
	PrevTask key.Binding
	Left     key.Binding
	Right    key.Binding
	Correct  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		NextTask: key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next task")),
		PrevTask: key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "prev task")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev container")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next container")),
		Correct:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/click", "correct")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Correct, k.NextTask, k.Right, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Correct, k.Left, k.Right},
		{k.NextTask, k.PrevTask, k.Help, k.Quit},
	}
}

// Model implements the Bubble Tea User UI.
type Model struct {
	station *user.Station
	keys    keyMap
	help    help.Model

	width  int
	height int

	connected bool
	target    string

	focusTask   int
	focusTarget int
	zones       []zone

	lastCue   sound.Cue
	lastCueAt time.Time
	now       func() time.Time
}

// New constructs the User UI around st.
func New(st *user.Station) *Model {
	return &Model{
		station: st,
		keys:    defaultKeys(),
		help:    help.New(),
		now:     time.Now,
	}
}

func frame() tea.Cmd {
	return tea.Tick(sim.TickInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return frame()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case frameMsg:
		cues := m.station.Tick(sim.TickInterval)
		return m, tea.Batch(frame(), m.play(cues))
	case MessageMsg:
		m.station.Handle(msg.Message)
		m.clampFocus()
		return m, nil
	case StatusMsg:
		m.connected = msg.Connected
		if msg.Target != "" {
			m.target = msg.Target
		}
		return m, nil
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		z, ok := hitZone(m.zones, msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.focusOn(z)
		return m, m.play(m.station.Click(z.task, z.target))
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	scenes := m.station.Engine().Scenes()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextTask):
		m.moveTask(1, len(scenes))
	case key.Matches(msg, m.keys.PrevTask):
		m.moveTask(-1, len(scenes))
	case key.Matches(msg, m.keys.Left):
		m.focusTarget--
		m.clampFocus()
	case key.Matches(msg, m.keys.Right):
		m.focusTarget++
		m.clampFocus()
	case key.Matches(msg, m.keys.Correct):
		if m.focusTask >= len(scenes) {
			return m, nil
		}
		return m, m.play(m.station.Click(scenes[m.focusTask].Task, m.focusTarget))
	}
	return m, nil
}

func (m *Model) moveTask(delta, n int) {
	if n == 0 {
		return
	}
	m.focusTask = ((m.focusTask+delta)%n + n) % n
	m.focusTarget = 0
}

func (m *Model) focusOn(z zone) {
	for i, s := range m.station.Engine().Scenes() {
		if s.Task == z.task {
			m.focusTask = i
			m.focusTarget = z.target
			return
		}
	}
}

func (m *Model) clampFocus() {
	scenes := m.station.Engine().Scenes()
	if m.focusTask >= len(scenes) {
		m.focusTask = 0
	}
	if len(scenes) == 0 {
		m.focusTarget = 0
		return
	}
	n := len(scenes[m.focusTask].Containers)
	if m.focusTarget >= n {
		m.focusTarget = n - 1
	}
	if m.focusTarget < 0 {
		m.focusTarget = 0
	}
}

// play records the latest cue. Playback is external; the alarm rings the
// terminal bell.
func (m *Model) play(cues []sound.Cue) tea.Cmd {
	if len(cues) == 0 {
		return nil
	}
	m.lastCue = cues[len(cues)-1]
	m.lastCueAt = m.now()
	for _, c := range cues {
		if c == sound.Alarm {
			return bell
		}
	}
	return nil
}

func bell() tea.Msg {
	_, _ = fmt.Fprint(os.Stderr, "\a")
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	top := strings.Count(header, "\n") + 2
	var body string
	scenes := m.station.Engine().Scenes()
	if len(scenes) == 0 {
		body = "Waiting for the Observer to start a session."
		m.zones = nil
	} else {
		body, m.zones = renderScenes(scenes, m.width, top, m.focusTask, m.focusTarget)
	}
	footer := m.help.View(m.keys)
	footerHeight := strings.Count(footer, "\n") + 1
	bodyHeight := termui.MaxInt(1, m.height-top-footerHeight)
	return strings.Join([]string{
		termui.PadLines(header, m.width),
		"",
		termui.FitLines(body, m.width, bodyHeight),
		footer,
	}, "\n")
}

func (m *Model) renderHeader() string {
	status := termui.Badge(m.connected)
	if m.target != "" {
		status += "  " + termui.HeaderStyle.Render("Observer "+m.target)
	}
	if notice := m.station.Notice(); notice != "" {
		status += "  " + termui.ValueStyle.Render(notice)
	}
	if m.lastCue != "" && m.now().Sub(m.lastCueAt) < 2*time.Second {
		if path, ok := m.station.Sounds().Path(m.lastCue); ok {
			status += "  " + termui.MutedStyle.Render("♪ "+path)
		}
	}
	return status
}
