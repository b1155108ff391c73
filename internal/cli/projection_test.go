package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/cachesim/internal/model"
)

func init() {
	// Plain output so assertions can match cell text.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func fakeProjection(n int) model.Projection {
	p := model.Projection{Records: make([]model.IterationRecord, n)}
	for i := range p.Records {
		p.Records[i] = model.IterationRecord{
			Iteration:         i + 1,
			SendingTokens:     int64(1000 + 100*i),
			CostWithCache:     0.001,
			CostWithoutCache:  0.002,
			Difference:        0.001,
			DifferencePercent: 50,
		}
	}
	p.Summary = model.SimulationSummary{
		TotalCostWithCache:     0.001 * float64(n),
		TotalCostWithoutCache:  0.002 * float64(n),
		TotalDifference:        0.001 * float64(n),
		TotalDifferencePercent: 50,
		Iterations:             n,
		RequestedBound:         n,
	}
	return p
}

func TestIterationRow_Precision(t *testing.T) {
	row := IterationRow(model.IterationRecord{
		Iteration:         7,
		SendingTokens:     12345,
		CostWithCache:     0.00423,
		CostWithoutCache:  0.0072,
		Difference:        0.00297,
		DifferencePercent: 41.25,
	})
	want := []string{"7", "12,345", "0.00423000", "0.00720000", "0.00297000", "41.2500"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestProjectionRows_NoElisionAtThirty(t *testing.T) {
	rows := ProjectionRows(fakeProjection(30))
	// 30 iterations + separator + total
	if len(rows) != 32 {
		t.Fatalf("rows = %d, want 32", len(rows))
	}
	for _, r := range rows {
		if r[0] == "..." {
			t.Fatal("unexpected ellipsis row for 30 records")
		}
	}
}

func TestProjectionRows_ElidesAboveThirty(t *testing.T) {
	rows := ProjectionRows(fakeProjection(31))
	// 15 + ellipsis + 15 + separator + total
	if len(rows) != 33 {
		t.Fatalf("rows = %d, want 33", len(rows))
	}
	if rows[14][0] != "15" {
		t.Errorf("last head row = %q, want 15", rows[14][0])
	}
	for _, cell := range rows[15] {
		if cell != "..." {
			t.Errorf("ellipsis row cell = %q, want ...", cell)
		}
	}
	if rows[16][0] != "17" {
		t.Errorf("first tail row = %q, want 17", rows[16][0])
	}
	if rows[30][0] != "31" {
		t.Errorf("last tail row = %q, want 31", rows[30][0])
	}
	if rows[31][0] != "---" {
		t.Errorf("separator = %v", rows[31])
	}
	if rows[32][0] != "Total" {
		t.Errorf("total row label = %q, want Total", rows[32][0])
	}
}

func TestProjectionRows_LargeProjectionStaysBounded(t *testing.T) {
	rows := ProjectionRows(fakeProjection(10_000))
	if len(rows) != 33 {
		t.Fatalf("rows = %d, want 33", len(rows))
	}
	if rows[30][0] != "10000" {
		t.Errorf("last row = %q, want 10000", rows[30][0])
	}
}

func TestRenderProjection_ContainsHeadersAndTotal(t *testing.T) {
	out := RenderProjection(fakeProjection(3))

	for _, h := range ProjectionHeaders {
		if !strings.Contains(out, h) {
			t.Errorf("output missing header %q", h)
		}
	}
	if !strings.Contains(out, "Total") {
		t.Error("output missing Total row")
	}
	if !strings.Contains(out, "0.00300000") {
		t.Error("output missing formatted total cost")
	}
	if strings.Contains(out, "...") {
		t.Error("short projection should not be elided")
	}
}

func TestRenderProjection_EmptyStillHasTotal(t *testing.T) {
	out := RenderProjection(model.Projection{})
	if !strings.Contains(out, "Total") {
		t.Error("empty projection should still render the total row")
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Value"},
		Rows:    [][]string{{"a", "1"}, {"long name", "12345"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d width = %d, want %d: %q", i, w, width, line)
		}
	}
}

func TestRenderSummary_ReportsTruncations(t *testing.T) {
	p := fakeProjection(5)
	p.Summary.Truncations = 2
	cfg := model.SimulationConfig{MaxPromptSize: 2000, TrimmedSize: 1500}

	out := RenderSummary(cfg, p)
	if !strings.Contains(out, "2 (trimmed to 1.5K tokens)") {
		t.Errorf("summary missing truncation line:\n%s", out)
	}
	if !strings.Contains(out, "50.0%") {
		t.Errorf("summary missing savings percent:\n%s", out)
	}
}

func TestRenderSummary_ReportsEarlyStop(t *testing.T) {
	p := fakeProjection(4)
	p.Summary.RequestedBound = 5
	p.Summary.StoppedAtMax = true
	cfg := model.SimulationConfig{MaxPromptSize: 2050, CalculateToMax: true}

	out := RenderSummary(cfg, p)
	if !strings.Contains(out, "4 of 5") {
		t.Errorf("summary missing run count:\n%s", out)
	}
	if !strings.Contains(out, "context exceeded") {
		t.Errorf("summary missing stop reason:\n%s", out)
	}
}

func TestDownsample(t *testing.T) {
	in := make([]float64, 120)
	for i := range in {
		in[i] = float64(i % 2)
	}
	out := downsample(in, 60)
	if len(out) != 60 {
		t.Fatalf("len = %d, want 60", len(out))
	}
	for i, v := range out {
		if v != 0.5 {
			t.Errorf("bucket %d = %v, want 0.5", i, v)
		}
	}
	if got := downsample(in[:10], 60); len(got) != 10 {
		t.Errorf("short input len = %d, want 10", len(got))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, fakeProjection(40)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded struct {
		Iterations []struct {
			Iteration int `json:"iteration"`
		} `json:"iterations"`
		Summary struct {
			Iterations int `json:"iterations"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Iterations) != 40 {
		t.Errorf("iterations = %d, want 40 (no elision)", len(decoded.Iterations))
	}
	if decoded.Summary.Iterations != 40 {
		t.Errorf("summary iterations = %d, want 40", decoded.Summary.Iterations)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, fakeProjection(40)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	// header + 40 + total
	if len(rows) != 42 {
		t.Fatalf("rows = %d, want 42", len(rows))
	}
	if rows[0][0] != "iteration" || rows[41][0] != "total" {
		t.Errorf("unexpected framing rows: %v / %v", rows[0], rows[41])
	}
	if rows[1][5] != "0.00100000" {
		t.Errorf("first cost = %q, want 0.00100000", rows[1][5])
	}
}
