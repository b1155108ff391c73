package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cachesim/internal/model"
)

const (
	// maxFullRows is the largest projection rendered without elision.
	maxFullRows = 30
	// edgeRows is how many rows are kept at each end of an elided table.
	edgeRows = 15

	sparklineWidth = 60
)

// ProjectionHeaders are the column titles of the per-turn table.
var ProjectionHeaders = []string{"Iter", "Size", "With Cache ($)", "No Cache ($)", "Diff ($)", "Diff (%)"}

// VisibleRecords returns the records shown in the table and whether the
// middle was elided. Projections longer than 30 turns keep the first and
// last 15.
func VisibleRecords(records []model.IterationRecord) (head, tail []model.IterationRecord, elided bool) {
	if len(records) <= maxFullRows {
		return records, nil, false
	}
	return records[:edgeRows], records[len(records)-edgeRows:], true
}

// IterationRow formats one record as table cells.
func IterationRow(r model.IterationRecord) []string {
	return []string{
		strconv.Itoa(r.Iteration),
		FormatNumber(r.SendingTokens),
		FormatCostExact(r.CostWithCache),
		FormatCostExact(r.CostWithoutCache),
		FormatCostExact(r.Difference),
		FormatPercentExact(r.DifferencePercent),
	}
}

// TotalRow formats the summary as the closing table row.
func TotalRow(s model.SimulationSummary) []string {
	return []string{
		"Total",
		"",
		FormatCostExact(s.TotalCostWithCache),
		FormatCostExact(s.TotalCostWithoutCache),
		FormatCostExact(s.TotalDifference),
		FormatPercentExact(s.TotalDifferencePercent),
	}
}

// ProjectionRows builds the table body: visible iteration rows, an ellipsis
// row where records were elided, a separator, then the total.
func ProjectionRows(p model.Projection) [][]string {
	head, tail, elided := VisibleRecords(p.Records)

	rows := make([][]string, 0, len(head)+len(tail)+3)
	for _, r := range head {
		rows = append(rows, IterationRow(r))
	}
	if elided {
		ellipsis := make([]string, len(ProjectionHeaders))
		for i := range ellipsis {
			ellipsis[i] = "..."
		}
		rows = append(rows, ellipsis)
		for _, r := range tail {
			rows = append(rows, IterationRow(r))
		}
	}
	rows = append(rows, []string{separatorRow})
	rows = append(rows, TotalRow(p.Summary))
	return rows
}

// RenderProjection renders the per-turn cost table.
func RenderProjection(p model.Projection) string {
	return RenderTable(Table{
		Headers:         ProjectionHeaders,
		Rows:            ProjectionRows(p),
		RightAlignFirst: true,
	})
}

// RenderSummary renders a short human summary of a projection.
func RenderSummary(cfg model.SimulationConfig, p model.Projection) string {
	s := p.Summary
	var b strings.Builder

	run := strconv.Itoa(s.Iterations)
	if s.RequestedBound != s.Iterations {
		run = fmt.Sprintf("%d of %d", s.Iterations, s.RequestedBound)
	}
	fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Turns:        "), valueStyle.Render(run))

	switch {
	case cfg.CalculateToMax && s.StoppedAtMax:
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Stopped:      "),
			valueStyle.Render("context exceeded "+FormatTokens(cfg.MaxPromptSize)+" tokens"))
	case s.Truncations > 0:
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Truncations:  "),
			tokenStyle.Render(fmt.Sprintf("%d (trimmed to %s tokens)", s.Truncations, FormatTokens(cfg.TrimmedSize))))
	}

	if n := len(p.Records); n > 0 && cfg.MaxPromptSize > 0 {
		last := p.Records[n-1].SendingTokens
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Last context: "),
			RenderProgressBar(int(last), int(cfg.MaxPromptSize), 20))
	}

	peak := max(s.TotalCostWithCache, s.TotalCostWithoutCache)
	fmt.Fprintf(&b, "  %s %s  %s\n", mutedStyle.Render("With cache:   "),
		RenderHorizontalBar("", s.TotalCostWithCache, peak, 30), valueStyle.Render(FormatCost(s.TotalCostWithCache)))
	fmt.Fprintf(&b, "  %s %s  %s\n", mutedStyle.Render("Without cache:"),
		RenderHorizontalBar("", s.TotalCostWithoutCache, peak, 30), valueStyle.Render(FormatCost(s.TotalCostWithoutCache)))

	savings := fmt.Sprintf("%s (%s)", FormatCost(s.TotalDifference), FormatPercent(s.TotalDifferencePercent/100))
	style := savingStyle
	if s.TotalDifference < 0 {
		style = lossStyle
	}
	fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Savings:      "), style.Render(savings))

	if len(p.Records) > 1 {
		costs := make([]float64, len(p.Records))
		for i, r := range p.Records {
			costs[i] = r.CostWithCache
		}
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Cost/turn:    "),
			dimStyle.Render(RenderSparkline(downsample(costs, sparklineWidth))))
	}

	return b.String()
}

// downsample averages values into at most n buckets.
func downsample(values []float64, n int) []float64 {
	if len(values) <= n || n <= 0 {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(values) / n
		hi := (i + 1) * len(values) / n
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
