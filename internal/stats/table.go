package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column is one table column. Numeric columns are right-aligned.
type Column struct {
	Title   string
	Numeric bool
}

func textCol(title string) Column { return Column{Title: title} }
func numCol(title string) Column  { return Column{Title: title, Numeric: true} }

// renderTable lays rows out under cols with a rule below the header.
// Short rows are padded with empty cells; extra cells are dropped.
func renderTable(cols []Column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.Title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}

	titles := make([]string, len(cols))
	rules := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
		rules[i] = strings.Repeat("─", widths[i])
	}
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, joinCells(cols, widths, titles), strings.Join(rules, "  "))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []Column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		if c.Numeric {
			cells[i] = runewidth.FillLeft(v, widths[i])
		} else {
			cells[i] = runewidth.FillRight(v, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}
