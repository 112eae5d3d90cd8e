// Package termui holds layout helpers and styles shared by the station UIs.
package termui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ActiveNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	InactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	CardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	CardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	ValueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	SelectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)

	connectedBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0B0B0B")).
			Background(lipgloss.Color("#52C41A")).
			Padding(0, 1)
	disconnectedBadge = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F0F0F0")).
				Background(lipgloss.Color("#CF1322")).
				Padding(0, 1)
)

// Badge texts for the link state.
const (
	ConnectedText    = "Connection successful"
	DisconnectedText = "Disconnected"
)

// Badge renders the connection state.
func Badge(connected bool) string {
	if connected {
		return connectedBadge.Render(ConnectedText)
	}
	return disconnectedBadge.Render(DisconnectedText)
}

// Tabs renders the navigation row.
func Tabs(names []string, active int) string {
	parts := make([]string, 0, len(names))
	for i, name := range names {
		if i == active {
			parts = append(parts, ActiveNavStyle.Render(name))
		} else {
			parts = append(parts, InactiveNavStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// TabsHeight is the rendered height of the navigation row.
func TabsHeight() int {
	h := lipgloss.Height(ActiveNavStyle.Render("X"))
	if h < 1 {
		return 1
	}
	return h
}

// PadLines right-pads every line of s to width.
func PadLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = PadLine(line, width)
	}
	return strings.Join(lines, "\n")
}

// PadLine right-pads line to width.
func PadLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

// FitLines pads s to width and cuts or fills it to exactly height lines.
func FitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = PadLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// TruncateLine cuts s to width runes with an ellipsis.
func TruncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
