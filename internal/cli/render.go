package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cachesim/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Plain CLI output always uses the default dark palette; only the TUI
// switches themes.
var palette = theme.FlexokiDark

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(palette.TextPrimary).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(palette.Accent)

	valueStyle = lipgloss.NewStyle().
			Foreground(palette.TextPrimary)

	totalStyle = valueStyle.Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)

	savingStyle = lipgloss.NewStyle().
			Foreground(palette.Green)

	lossStyle = lipgloss.NewStyle().
			Foreground(palette.Red)

	tokenStyle = lipgloss.NewStyle().
			Foreground(palette.Blue)

	dimStyle = lipgloss.NewStyle().
			Foreground(palette.TextDim)
)

// separatorRow is the row value RenderTable draws as a horizontal rule.
const separatorRow = "---"

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil

	RightAlignFirst bool // first column holds numbers too
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(palette.Border).
		Width(64).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// only "---" becomes a rule; rows after the last rule are drawn bold, and a
// row of "..." cells is dimmed.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	lastSep := -1
	for i, row := range t.Rows {
		if isSeparator(row) {
			lastSep = i
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		cells := make([]string, numCols)
		for i := range cells {
			if i < len(t.Headers) {
				cells[i] = fmt.Sprintf(" %-*s ", widths[i], t.Headers[i])
			} else {
				cells[i] = strings.Repeat(" ", widths[i]+2)
			}
		}
		b.WriteString(line(cells, headerStyle))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}

	for ri, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}

		style := valueStyle
		switch {
		case lastSep >= 0 && ri > lastSep:
			style = totalStyle
		case isEllipsis(row):
			style = dimStyle
		}

		cells := make([]string, numCols)
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == 0 && !t.RightAlignFirst {
				cells[i] = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				cells[i] = fmt.Sprintf(" %*s ", widths[i], cell)
			}
		}
		b.WriteString(line(cells, style))
	}

	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(i int, cell string) {
		if i < numCols {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for i, h := range t.Headers {
		grow(i, h)
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			continue
		}
		for i, cell := range row {
			grow(i, cell)
		}
	}
	return widths
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == separatorRow
}

func isEllipsis(row []string) bool {
	for _, c := range row {
		if c != "..." {
			return false
		}
	}
	return len(row) > 0
}

// rule draws a horizontal border line across all columns.
func rule(widths []int, left, mid, right string) string {
	segs := make([]string, len(widths))
	for i, w := range widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
}

// line joins pre-padded cells with dim column borders.
func line(cells []string, style lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("│"))
	for i, c := range cells {
		b.WriteString(style.Render(c))
		if i < len(cells)-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString(dimStyle.Render("│"))
	b.WriteString("\n")
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	bar := strings.Repeat("█", barLen)
	if label == "" {
		return "  " + bar
	}
	return fmt.Sprintf("  %s %s", label, bar)
}
