package observerui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wsim/internal/model"
)

const historyLimit = 50

// HistorySource reads stored sessions.
type HistorySource interface {
	ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error)
	ListMetrics(ctx context.Context, sessionIDs []string) (map[string][]model.TaskMetrics, error)
}

type historyMsg struct {
	rows []table.Row
	err  error
}

func loadHistory(src HistorySource) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sessions, err := src.ListSessions(ctx, historyLimit)
		if err != nil {
			return historyMsg{err: err}
		}
		ids := make([]string, len(sessions))
		for i, s := range sessions {
			ids[i] = s.ID
		}
		byID, err := src.ListMetrics(ctx, ids)
		if err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{rows: historyRows(sessions, byID)}
	}
}

func historyColumns() []table.Column {
	cols := []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Scenario", Width: 14},
		{Title: "Outcome", Width: 9},
		{Title: "Duration", Width: 8},
	}
	for _, t := range model.AllTasks {
		cols = append(cols, table.Column{Title: t.Title() + " t/e/c", Width: 18})
	}
	return cols
}

// historyRows lists sessions newest first.
func historyRows(sessions []model.SessionRecord, byID map[string][]model.TaskMetrics) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		row := table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.ScenarioName,
			string(s.Outcome),
			(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second).String(),
		}
		tasks := map[model.Task]model.TaskMetrics{}
		for _, m := range byID[s.ID] {
			tasks[m.Task] = m
		}
		for _, t := range model.AllTasks {
			m, ok := tasks[t]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%d/%d/%d (%.1f%%)", m.Total, m.Errors, m.Corrections, m.ErrorRate))
		}
		rows = append(rows, row)
	}
	return rows
}

func newHistoryTable() table.Model {
	return table.New(
		table.WithColumns(historyColumns()),
		table.WithStyles(historyTableStyles()),
	)
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
