// Package pipeline projects conversation costs turn by turn.
package pipeline

import (
	"github.com/theirongolddev/cachesim/internal/config"
	"github.com/theirongolddev/cachesim/internal/model"
)

// TokensPerPriceUnit is the token count that prices are quoted against.
const TokensPerPriceUnit = 1_000_000

// IterationBound returns the maximum number of turns the run may take.
// When calculating to max it is the number of turns needed to fill the
// context window; otherwise it is the configured count.
func IterationBound(cfg model.SimulationConfig) int {
	if !cfg.CalculateToMax {
		return cfg.Iterations
	}

	growth := cfg.TurnGrowth()
	available := cfg.MaxPromptSize - cfg.PromptSize - cfg.UserMessageSize
	if available <= 0 || growth <= 0 {
		return 0
	}
	return int((available + growth - 1) / growth)
}

// turnState is the running context carried between turns.
type turnState struct {
	contextSize int64
	trimmed     bool
}

// Project simulates the conversation and prices every turn with and without
// prompt caching.
func Project(cfg model.SimulationConfig) (model.Projection, error) {
	if err := config.Validate(cfg); err != nil {
		return model.Projection{}, err
	}

	bound := IterationBound(cfg)
	records := make([]model.IterationRecord, 0, bound)
	summary := model.SimulationSummary{RequestedBound: bound}

	state := turnState{contextSize: cfg.PromptSize + cfg.UserMessageSize}

	for i := 1; i <= bound; i++ {
		rec := priceTurn(cfg, i, state)
		records = append(records, rec)
		if rec.Trimmed {
			summary.Truncations++
		}

		summary.TotalCostWithCache += rec.CostWithCache
		summary.TotalCostWithoutCache += rec.CostWithoutCache

		state.contextSize += cfg.TurnGrowth()
		if state.contextSize > cfg.MaxPromptSize {
			if cfg.CalculateToMax {
				summary.StoppedAtMax = true
				break
			}
			state.contextSize = cfg.TrimmedSize
			state.trimmed = true
		} else {
			state.trimmed = false
		}
	}

	summary.Iterations = len(records)
	summary.TotalDifference = summary.TotalCostWithoutCache - summary.TotalCostWithCache
	summary.TotalDifferencePercent = percentOf(summary.TotalDifference, summary.TotalCostWithoutCache)

	return model.Projection{Records: records, Summary: summary}, nil
}

// priceTurn computes one turn's costs from the context entering that turn.
func priceTurn(cfg model.SimulationConfig, iteration int, state turnState) model.IterationRecord {
	sending := state.contextSize
	receiving := cfg.ModelResponseSize

	hit, miss := splitCache(cfg, iteration, state)

	sendingNoCache := perUnit(float64(sending) * cfg.SendingCost)
	sendingWithCache := perUnit(float64(hit)*cfg.SendingCost*cfg.CacheHitMultiplier +
		float64(miss)*cfg.SendingCost*cfg.CacheMissMultiplier)
	receivingCost := perUnit(float64(receiving) * cfg.ModelCost)

	withCache := sendingWithCache + receivingCost
	withoutCache := sendingNoCache + receivingCost
	diff := withoutCache - withCache

	return model.IterationRecord{
		Iteration:         iteration,
		SendingTokens:     sending,
		CacheHitTokens:    hit,
		CacheMissTokens:   miss,
		Trimmed:           state.trimmed,
		CostWithCache:     withCache,
		CostWithoutCache:  withoutCache,
		Difference:        diff,
		DifferencePercent: percentOf(diff, withoutCache),
	}
}

// splitCache divides the sending tokens into cached and uncached parts.
// After a trim only the original prompt is still cached; on the first turn
// nothing is. Otherwise everything but the last response and the new user
// message is a hit.
func splitCache(cfg model.SimulationConfig, iteration int, state turnState) (hit, miss int64) {
	sending := state.contextSize
	switch {
	case state.trimmed:
		return cfg.PromptSize, sending - cfg.PromptSize
	case iteration == 1:
		return 0, sending
	default:
		fresh := cfg.ModelResponseSize + cfg.UserMessageSize
		return sending - fresh, fresh
	}
}

func perUnit(v float64) float64 {
	return v / TokensPerPriceUnit
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
