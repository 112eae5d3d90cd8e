// Package stats renders session statistics: braille plots on fixed axes and
// aligned tables.
package stats

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/wsim/internal/metrics"
)

// Point is one plotted sample.
type Point struct {
	X float64
	Y float64
}

// Line is a named series of points, in increasing X.
type Line struct {
	Name   string
	Points []Point
}

// Paint colors a rendered fragment for the series at index i. A nil Paint
// leaves text uncolored.
type Paint func(i int, s string) string

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	minPlotWidth        = 10
	minPlotHeight       = 3
	axisSeparator       = " │"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

var ansiPalette = []string{
	"\x1b[31m", // red
	"\x1b[32m", // green
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
}

// ANSIPaint colors series with terminal escape codes when enabled.
func ANSIPaint(enabled bool) Paint {
	if !enabled || os.Getenv("NO_COLOR") != "" {
		return nil
	}
	return func(i int, s string) string {
		return ansiPalette[i%len(ansiPalette)] + s + colorReset
	}
}

// Plot renders lines inside the fixed axes as text rows: a labelled y axis,
// the braille body, the x axis with tick marks and the x tick labels.
// Points outside the x range are skipped; y values are clipped.
func Plot(lines []Line, axes metrics.Axes, width, height int, paint Paint) []string {
	if width < minPlotWidth {
		width = minPlotWidth
	}
	if height < minPlotHeight {
		height = minPlotHeight
	}
	axes = sanitizeAxes(axes)

	dotW, dotH := width*2, height*4
	seriesCells := make([][][]uint8, len(lines))
	for si, line := range lines {
		cells := makeCells(height, width)
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for _, p := range line.Points {
			if p.X < axes.XMin || p.X > axes.XMax {
				prevX, prevY = -1, -1
				continue
			}
			px := scale(p.X, axes.XMin, axes.XMax, dotW)
			py := dotH - 1 - scale(p.Y, axes.YMin, axes.YMax, dotH)
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(cells, dx, dy)
					}
				})
			} else {
				setBrailleDot(cells, px, py)
			}
			prevX, prevY = px, py
		}
		seriesCells[si] = cells
	}

	labels, labelWidth := yLabels(axes, height)
	out := make([]string, 0, height+2)
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(labels[y], labelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := composeCell(seriesCells, x, y)
			ch := string(brailleFromMask(mask))
			if paint != nil && owner >= 0 {
				ch = paint(owner, ch)
			}
			row.WriteString(ch)
		}
		out = append(out, row.String())
	}

	ticks := xTicks(axes, width)
	axis := []rune(strings.Repeat("─", width))
	tickLabels := []rune(strings.Repeat(" ", width+8))
	for _, tk := range ticks {
		axis[tk.col] = '┴'
		for i, r := range tk.label {
			pos := tk.col + i
			if pos < len(tickLabels) {
				tickLabels[pos] = r
			}
		}
	}
	pad := strings.Repeat(" ", labelWidth)
	out = append(out, pad+" └"+string(axis))
	out = append(out, strings.TrimRight(pad+"  "+string(tickLabels), " "))
	return out
}

// Legend renders the line names with their styles.
func Legend(lines []Line, paint Paint) string {
	parts := make([]string, 0, len(lines))
	marker := string(brailleFromMask(0x1b))
	for i, l := range lines {
		label := fmt.Sprintf("%s %s (%s)", marker, l.Name, lineStyles[i%len(lineStyles)].name)
		if paint != nil {
			label = paint(i, label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func sanitizeAxes(a metrics.Axes) metrics.Axes {
	if !(a.XMax > a.XMin) {
		a.XMax = a.XMin + 1
	}
	if !(a.YMax > a.YMin) {
		a.YMax = a.YMin + 1
	}
	if a.XTick <= 0 {
		a.XTick = a.XMax - a.XMin
	}
	if a.YTick <= 0 {
		a.YTick = a.YMax - a.YMin
	}
	return a
}

// scale maps v in [lo,hi] onto [0,n-1].
func scale(v, lo, hi float64, n int) int {
	pos := (v - lo) / (hi - lo)
	i := int(math.Round(pos * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func yLabels(a metrics.Axes, height int) ([]string, int) {
	labels := make([]string, height)
	for v := a.YMin; v <= a.YMax+1e-9; v += a.YTick {
		row := height - 1 - scale(v, a.YMin, a.YMax, height)
		if labels[row] == "" {
			labels[row] = formatTick(v)
		}
	}
	width := 0
	for _, l := range labels {
		if w := runewidth.StringWidth(l); w > width {
			width = w
		}
	}
	return labels, width
}

type xTick struct {
	col   int
	label string
}

// xTicks returns the major x ticks, dropping labels that would collide.
func xTicks(a metrics.Axes, width int) []xTick {
	var ticks []xTick
	start := math.Ceil(a.XMin/a.XTick) * a.XTick
	next := 0
	for v := start; v <= a.XMax+1e-9; v += a.XTick {
		col := scale(v, a.XMin, a.XMax, width)
		if col < next {
			continue
		}
		label := formatTick(v)
		ticks = append(ticks, xTick{col: col, label: label})
		next = col + runewidth.StringWidth(label) + 1
	}
	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// PlotWidthFor computes a plot width that fits within the total available
// width, leaving room for the y labels.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - 6 - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the dots of every series; the first series with dots
// in the cell owns its color.
func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if owner == -1 {
			owner = i
		}
		mask |= cellMask
	}
	return mask, owner
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask maps a dot inside a 2x4 cell to its Unicode bit.
func brailleDotMask(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
