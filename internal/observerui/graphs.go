package observerui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wsim/internal/metrics"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/stats"
	"github.com/verte-zerg/wsim/internal/termui"
)

const plotHeight = 6

var seriesStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
}

func lipglossPaint(i int, s string) string {
	return seriesStyles[i%len(seriesStyles)].Render(s)
}

// metricCard renders a label/value pair as a bordered card.
func metricCard(label, value string) string {
	return termui.CardStyle.Render(termui.CardTitleStyle.Render(label) + "\n" + termui.ValueStyle.Render(value))
}

func renderLabels(m model.TaskMetrics) string {
	cards := []string{
		metricCard("Total", fmt.Sprintf("%d", m.Total)),
		metricCard("Errors", fmt.Sprintf("%d", m.Errors)),
		metricCard("Corrections", fmt.Sprintf("%d", m.Corrections)),
		metricCard("Error rate", fmt.Sprintf("%.1f%%", m.ErrorRate)),
		metricCard("Correction rate", fmt.Sprintf("%.1f%%", m.CorrectionRate)),
	}
	if m.Task == model.TaskInspection {
		cards = append(cards, metricCard("Defects missed", fmt.Sprintf("%d", m.DefectsMissed)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// seriesLines converts a task's rolling series into plot lines.
func seriesLines(s *metrics.Series) []stats.Line {
	errs := stats.Line{Name: "Errors"}
	corr := stats.Line{Name: "Corrections"}
	for _, smp := range s.Samples() {
		errs.Points = append(errs.Points, stats.Point{X: smp.T, Y: smp.Errors})
		corr.Points = append(corr.Points, stats.Point{X: smp.T, Y: smp.Corrections})
	}
	return []stats.Line{errs, corr}
}

// renderMetrics draws the labels and graph of every active task.
func renderMetrics(board *metrics.Board, active []model.Task, elapsed float64, width int) string {
	if len(active) == 0 {
		return "No active tasks. Enable a task on the Control tab."
	}
	var blocks []string
	for _, t := range active {
		series := board.Series(t)
		lines := seriesLines(series)
		plot := stats.Plot(lines, series.Axes(elapsed), stats.PlotWidthFor(width), plotHeight, lipglossPaint)
		block := []string{
			termui.SelectedStyle.Render(t.Title()),
			renderLabels(board.Label(t)),
			strings.Join(plot, "\n"),
			stats.Legend(lines, lipglossPaint),
		}
		blocks = append(blocks, strings.Join(block, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
