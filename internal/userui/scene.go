package userui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/sim"
	"github.com/verte-zerg/wsim/internal/termui"
)

const (
	minBeltCells = 20
	maxBeltCells = 100
	itemGlyph    = "●"
	boxGlyph     = "■"
)

var (
	colorStyles = map[model.Color]lipgloss.Style{
		model.Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		model.Blue:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1890FF")),
		model.Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		model.Purple: lipgloss.NewStyle().Foreground(lipgloss.Color("#9254DE")),
		model.Orange: lipgloss.NewStyle().Foreground(lipgloss.Color("#FA8C16")),
		model.Teal:   lipgloss.NewStyle().Foreground(lipgloss.Color("#13C2C2")),
	}
	beltStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	armStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	fadedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	errorBox     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	focusBox     = lipgloss.NewStyle().Underline(true)
	boxTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

func paintColor(c model.Color, s string) string {
	if st, ok := colorStyles[c]; ok {
		return st.Render(s)
	}
	return s
}

// zone is a clickable container cell on screen.
type zone struct {
	task   model.Task
	target int
	row    int
	x0, x1 int
}

// beltCells maps the available width to belt cells.
func beltCells(width int) int {
	cells := width - 4
	if cells < minBeltCells {
		return minBeltCells
	}
	if cells > maxBeltCells {
		return maxBeltCells
	}
	return cells
}

func cellFor(x float64, cells int) int {
	c := int(x / sim.BeltLength * float64(cells))
	if c < 0 {
		return 0
	}
	if c >= cells {
		return cells - 1
	}
	return c
}

// renderBelt draws the moving stripes and the items. The stripe pattern
// shifts with the belt phase.
func renderBelt(s sim.Scene, cells int) string {
	glyphs := make([]string, cells)
	cellPx := sim.BeltLength / float64(cells)
	for i := range glyphs {
		pos := math.Mod(float64(i)*cellPx-s.BeltPhase+2*sim.StripeWidth, 2*sim.StripeWidth)
		if pos < sim.StripeWidth {
			glyphs[i] = beltStyle.Render("═")
		} else {
			glyphs[i] = beltStyle.Render("─")
		}
	}
	for _, item := range s.Items {
		glyphs[cellFor(item.X, cells)] = paintColor(item.Color, itemGlyph)
	}
	return strings.Join(glyphs, "")
}

// renderArm draws the gripper above the grip point and the arm state.
func renderArm(s sim.Scene, cells int) string {
	col := cellFor(sim.GripX, cells)
	head := "▼"
	if s.Holding {
		head = paintColor(s.HeldColor, itemGlyph)
	}
	state := fmt.Sprintf("  %s %3.0f°/%3.0f°", s.ArmState, s.ArmPose.Shoulder, s.ArmPose.Elbow)
	return strings.Repeat(" ", col) + armStyle.Render(head) + termui.MutedStyle.Render(state)
}

func containerLabel(t model.Task, c sim.Container) string {
	switch {
	case t == model.TaskPackaging && c.Variant == sim.VariantOverfill && !c.Fixed:
		return fmt.Sprintf("[%s %d/%d+%d %s!]", boxGlyph, c.Count, c.Capacity, c.Extra, c.Variant)
	case t == model.TaskPackaging && c.Variant != sim.VariantNone && !c.Fixed:
		return fmt.Sprintf("[%s %d/%d %s!]", boxGlyph, c.Count, c.Capacity, c.Variant)
	case t == model.TaskPackaging:
		return fmt.Sprintf("[%s %d/%d]", boxGlyph, c.Count, c.Capacity)
	case c.Error:
		return fmt.Sprintf("[%s %d !%d]", boxGlyph, c.Count, c.PendingErrors)
	default:
		return fmt.Sprintf("[%s %d]", boxGlyph, c.Count)
	}
}

// renderContainers lays the containers out on one row and returns the
// column span of each one.
func renderContainers(s sim.Scene, focus int, focused bool) (string, [][2]int) {
	var b strings.Builder
	spans := make([][2]int, 0, len(s.Containers))
	x := 0
	for i, c := range s.Containers {
		label := containerLabel(s.Task, c)
		w := runewidth.StringWidth(label)
		var styled string
		switch {
		case c.Opacity < 0.5:
			styled = fadedStyle.Render(label)
		case c.Error || (c.Variant != sim.VariantNone && !c.Fixed):
			styled = errorBox.Render(label)
		case s.Task == model.TaskPackaging:
			styled = boxTextStyle.Render(label)
		default:
			styled = paintColor(c.Color, label)
		}
		if focused && i == focus {
			styled = focusBox.Render(styled)
		}
		if s.Task == model.TaskPackaging && i == s.Active {
			styled = armStyle.Render("›") + styled
			x++
		}
		b.WriteString(styled)
		spans = append(spans, [2]int{x, x + w})
		b.WriteString(" ")
		x += w + 1
	}
	return b.String(), spans
}

func renderTally(s sim.Scene) string {
	t := s.Tally
	line := fmt.Sprintf("total %d  errors %d  corrections %d  error %.1f%%  correction %.1f%%",
		t.Total, t.Errors, t.Corrections, t.ErrorRate()*100, t.CorrectionRate()*100)
	if s.Task == model.TaskInspection {
		line += fmt.Sprintf("  defects missed %d", t.DefectsMissed)
	}
	return termui.HeaderStyle.Render(line)
}

func sceneState(s sim.Scene) string {
	switch {
	case s.Paused:
		return "paused"
	case s.Running:
		return "running"
	default:
		return "stopped"
	}
}

// renderScenes draws every task panel starting at screen row top and
// returns the clickable zones.
func renderScenes(scenes []sim.Scene, width, top, focusTask, focusTarget int) (string, []zone) {
	cells := beltCells(width)
	var lines []string
	var zones []zone
	for i, s := range scenes {
		title := termui.SelectedStyle.Render(s.Task.Title())
		if i != focusTask {
			title = termui.CardTitleStyle.Render(s.Task.Title())
		}
		lines = append(lines, title+"  "+termui.MutedStyle.Render(sceneState(s)))
		lines = append(lines, renderArm(s, cells))
		lines = append(lines, renderBelt(s, cells))
		row, spans := renderContainers(s, focusTarget, i == focusTask)
		for target, span := range spans {
			zones = append(zones, zone{task: s.Task, target: target, row: top + len(lines), x0: span[0], x1: span[1]})
		}
		lines = append(lines, row)
		lines = append(lines, renderTally(s))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), zones
}

func hitZone(zones []zone, x, y int) (zone, bool) {
	for _, z := range zones {
		if y == z.row && x >= z.x0 && x < z.x1 {
			return z, true
		}
	}
	return zone{}, false
}
