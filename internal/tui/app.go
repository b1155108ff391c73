// Package tui implements the interactive cachesim projection browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cachesim/internal/cli"
	"github.com/theirongolddev/cachesim/internal/model"
	"github.com/theirongolddev/cachesim/internal/tui/components"
	"github.com/theirongolddev/cachesim/internal/tui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 140

	// RowsPerPage is the page size when the terminal is tall enough.
	RowsPerPage = 50
	minPageRows = 5

	// title + config line + cards (4) + table header (2) + blank + status bar
	chromeHeight = 11
)

type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Theme key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:  key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev")),
		Next:  key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next")),
		First: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Theme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// App is the bubbletea model that pages through a finished projection.
type App struct {
	cfg        model.SimulationConfig
	projection model.Projection

	pager paginator.Model
	keys  keyMap
	help  help.Model

	width  int
	height int
}

// NewApp creates the browser for a projection.
func NewApp(cfg model.SimulationConfig, p model.Projection) App {
	keys := defaultKeyMap()

	pg := paginator.New()
	pg.Type = paginator.Arabic
	pg.PerPage = RowsPerPage
	pg.KeyMap = paginator.KeyMap{PrevPage: keys.Prev, NextPage: keys.Next}
	pg.SetTotalPages(len(p.Records))

	return App{
		cfg:        cfg,
		projection: p,
		pager:      pg,
		keys:       keys,
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resizePages()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Theme):
			theme.Active = theme.Next(theme.Active.Name)
			return a, nil
		case key.Matches(msg, a.keys.First):
			a.pager.Page = 0
			return a, nil
		case key.Matches(msg, a.keys.Last):
			a.pager.Page = max(a.pager.TotalPages-1, 0)
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.pager, cmd = a.pager.Update(msg)
	return a, cmd
}

// resizePages fits the page size to the terminal while keeping the first
// visible record on screen.
func (a *App) resizePages() {
	first := a.pager.Page * a.pager.PerPage

	perPage := RowsPerPage
	if a.height > 0 {
		perPage = min(RowsPerPage, max(minPageRows, a.height-chromeHeight))
	}
	a.pager.PerPage = perPage
	a.pager.SetTotalPages(len(a.projection.Records))
	a.pager.Page = min(first/perPage, max(a.pager.TotalPages-1, 0))
}

// VisibleRange returns the half-open record index range on the current page.
func (a App) VisibleRange() (start, end int) {
	return a.pager.GetSliceBounds(len(a.projection.Records))
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  cachesim needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}

	cw := a.contentWidth()
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderCards(cw))
	b.WriteString("\n")
	b.WriteString(a.renderPage())
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar(cw))

	return b.String()
}

func (a App) renderHeader() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	mode := fmt.Sprintf("%d turns, trim to %s", a.cfg.Iterations, cli.FormatTokens(a.cfg.TrimmedSize))
	if a.cfg.CalculateToMax {
		mode = "until context is full"
	}
	line := fmt.Sprintf("prompt %s  +%s/turn  max %s  %s  $%g in / $%g out per MTok  cache x%g hit x%g miss",
		cli.FormatTokens(a.cfg.PromptSize),
		cli.FormatTokens(a.cfg.TurnGrowth()),
		cli.FormatTokens(a.cfg.MaxPromptSize),
		mode,
		a.cfg.SendingCost, a.cfg.ModelCost,
		a.cfg.CacheHitMultiplier, a.cfg.CacheMissMultiplier,
	)

	return " " + titleStyle.Render("CACHE COST PROJECTION") + "\n " + mutedStyle.Render(line) + "\n"
}

func (a App) renderCards(cw int) string {
	t := theme.Active
	s := a.projection.Summary

	savingsColor := t.Green
	if s.TotalDifference < 0 {
		savingsColor = t.Red
	}

	turnsNote := ""
	switch {
	case s.StoppedAtMax:
		turnsNote = "stopped at max context"
	case s.Truncations > 0:
		turnsNote = fmt.Sprintf("%d truncations", s.Truncations)
	}

	return components.MetricCardRow([]components.Metric{
		{Label: "With Cache", Value: cli.FormatCost(s.TotalCostWithCache), Note: cli.FormatCostExact(s.TotalCostWithCache)},
		{Label: "Without Cache", Value: cli.FormatCost(s.TotalCostWithoutCache), Note: cli.FormatCostExact(s.TotalCostWithoutCache)},
		{
			Label: "Savings",
			Value: cli.FormatCost(s.TotalDifference),
			Note:  cli.FormatPercentExact(s.TotalDifferencePercent) + "%",
			Color: savingsColor,
		},
		{Label: "Turns", Value: cli.FormatNumber(int64(s.Iterations)), Note: turnsNote},
	}, cw)
}

// column widths for the page table, matching cli.ProjectionHeaders
var pageColumns = []int{6, 10, 16, 16, 16, 10}

func (a App) renderPage() string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	ruleStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	trimmedStyle := lipgloss.NewStyle().Foreground(t.Orange)
	lossStyle := lipgloss.NewStyle().Foreground(t.Red)

	var b strings.Builder
	b.WriteString(headerStyle.Render(formatCells(cli.ProjectionHeaders)))
	b.WriteString("\n")

	ruleWidth := 0
	for _, w := range pageColumns {
		ruleWidth += w + 1
	}
	b.WriteString(ruleStyle.Render(strings.Repeat("─", ruleWidth)))
	b.WriteString("\n")

	if len(a.projection.Records) == 0 {
		b.WriteString(ruleStyle.Render(" No turns fit within the maximum context size."))
		b.WriteString("\n")
		return b.String()
	}

	start, end := a.VisibleRange()
	for _, r := range a.projection.Records[start:end] {
		style := rowStyle
		switch {
		case r.Difference < 0:
			style = lossStyle
		case r.Trimmed:
			style = trimmedStyle
		}
		b.WriteString(style.Render(formatCells(cli.IterationRow(r))))
		b.WriteString("\n")
	}
	return b.String()
}

func formatCells(cells []string) string {
	var b strings.Builder
	for i, w := range pageColumns {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		fmt.Fprintf(&b, "%*s ", w, cell)
	}
	return b.String()
}

func (a App) renderStatusBar(cw int) string {
	position := ""
	if n := len(a.projection.Records); n > 0 {
		start, end := a.VisibleRange()
		position = fmt.Sprintf("turns %d-%d of %d  page %s  %s",
			start+1, end, n, a.pager.View(), theme.Active.Name)
	}
	return components.RenderStatusBar(cw, a.help.ShortHelpView(a.keys.ShortHelp()), position)
}
