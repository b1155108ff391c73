package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/theirongolddev/cachesim/internal/model"
)

// jsonRecord is the wire shape of one iteration.
type jsonRecord struct {
	Iteration         int     `json:"iteration"`
	SendingTokens     int64   `json:"sending_tokens"`
	CacheHitTokens    int64   `json:"cache_hit_tokens"`
	CacheMissTokens   int64   `json:"cache_miss_tokens"`
	Trimmed           bool    `json:"trimmed,omitempty"`
	CostWithCache     float64 `json:"cost_with_cache_usd"`
	CostWithoutCache  float64 `json:"cost_without_cache_usd"`
	Difference        float64 `json:"difference_usd"`
	DifferencePercent float64 `json:"difference_percent"`
}

type jsonSummary struct {
	TotalCostWithCache     float64 `json:"total_cost_with_cache_usd"`
	TotalCostWithoutCache  float64 `json:"total_cost_without_cache_usd"`
	TotalDifference        float64 `json:"total_difference_usd"`
	TotalDifferencePercent float64 `json:"total_difference_percent"`
	Iterations             int     `json:"iterations"`
	RequestedBound         int     `json:"requested_iterations"`
	Truncations            int     `json:"truncations"`
	StoppedAtMax           bool    `json:"stopped_at_max"`
}

type jsonProjection struct {
	Iterations []jsonRecord `json:"iterations"`
	Summary    jsonSummary  `json:"summary"`
}

// WriteJSON writes every record and the summary as indented JSON.
func WriteJSON(w io.Writer, p model.Projection) error {
	out := jsonProjection{
		Iterations: make([]jsonRecord, 0, len(p.Records)),
		Summary: jsonSummary{
			TotalCostWithCache:     p.Summary.TotalCostWithCache,
			TotalCostWithoutCache:  p.Summary.TotalCostWithoutCache,
			TotalDifference:        p.Summary.TotalDifference,
			TotalDifferencePercent: p.Summary.TotalDifferencePercent,
			Iterations:             p.Summary.Iterations,
			RequestedBound:         p.Summary.RequestedBound,
			Truncations:            p.Summary.Truncations,
			StoppedAtMax:           p.Summary.StoppedAtMax,
		},
	}
	for _, r := range p.Records {
		out.Iterations = append(out.Iterations, jsonRecord(r))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteCSV writes a header, one row per record, and a final total row.
func WriteCSV(w io.Writer, p model.Projection) error {
	cw := csv.NewWriter(w)

	header := []string{
		"iteration", "sending_tokens", "cache_hit_tokens", "cache_miss_tokens", "trimmed",
		"cost_with_cache", "cost_without_cache", "difference", "difference_percent",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	for _, r := range p.Records {
		row := []string{
			strconv.Itoa(r.Iteration),
			strconv.FormatInt(r.SendingTokens, 10),
			strconv.FormatInt(r.CacheHitTokens, 10),
			strconv.FormatInt(r.CacheMissTokens, 10),
			strconv.FormatBool(r.Trimmed),
			FormatCostExact(r.CostWithCache),
			FormatCostExact(r.CostWithoutCache),
			FormatCostExact(r.Difference),
			FormatPercentExact(r.DifferencePercent),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}

	s := p.Summary
	total := []string{
		"total", "", "", "", "",
		FormatCostExact(s.TotalCostWithCache),
		FormatCostExact(s.TotalCostWithoutCache),
		FormatCostExact(s.TotalDifference),
		FormatPercentExact(s.TotalDifferencePercent),
	}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
