package config

import (
	"fmt"

	"github.com/theirongolddev/cachesim/internal/model"
)

// Resolve turns the document into a validated SimulationConfig. A named model
// preset fills in any pricing keys the document leaves out.
func (d Document) Resolve() (model.SimulationConfig, error) {
	if d.Model != "" {
		filled, err := d.withPreset()
		if err != nil {
			return model.SimulationConfig{}, err
		}
		d = filled
	}

	cerr := &ConfigError{}
	require := func(key string, present bool) {
		if !present {
			cerr.Missing = append(cerr.Missing, key)
		}
	}
	require("promptSize", d.PromptSize != nil)
	require("userMessageSize", d.UserMessageSize != nil)
	require("modelResponseSize", d.ModelResponseSize != nil)
	require("maxPromptSize", d.MaxPromptSize != nil)
	require("trimmedSize", d.TrimmedSize != nil)
	require("sendingCost", d.SendingCost != nil)
	require("modelCost", d.ModelCost != nil)
	require("cacheMissMultiplier", d.CacheMissMultiplier != nil)
	require("cacheHitMultiplier", d.CacheHitMultiplier != nil)

	toMax := d.CalculateToMax != nil && *d.CalculateToMax
	if !toMax {
		require("iterations", d.Iterations != nil)
	}
	if !cerr.empty() {
		return model.SimulationConfig{}, cerr
	}

	cfg := model.SimulationConfig{
		PromptSize:          *d.PromptSize,
		UserMessageSize:     *d.UserMessageSize,
		ModelResponseSize:   *d.ModelResponseSize,
		MaxPromptSize:       *d.MaxPromptSize,
		TrimmedSize:         *d.TrimmedSize,
		SendingCost:         *d.SendingCost,
		ModelCost:           *d.ModelCost,
		CacheMissMultiplier: *d.CacheMissMultiplier,
		CacheHitMultiplier:  *d.CacheHitMultiplier,
		CalculateToMax:      toMax,
	}
	if d.Iterations != nil {
		cfg.Iterations = *d.Iterations
	}

	if err := Validate(cfg); err != nil {
		return model.SimulationConfig{}, err
	}
	return cfg, nil
}

func (d Document) withPreset() (Document, error) {
	pricing, ok := LookupPricing(d.Model)
	if !ok {
		return d, &ConfigError{Problems: []string{fmt.Sprintf("unknown model preset %q (see `cachesim models`)", d.Model)}}
	}

	var miss float64
	switch d.CacheTTL {
	case "", "5m":
		miss = pricing.CacheMissMultiplier5m()
	case "1h":
		miss = pricing.CacheMissMultiplier1h()
	default:
		return d, &ConfigError{Problems: []string{fmt.Sprintf("cacheTTL must be 5m or 1h, got %q", d.CacheTTL)}}
	}

	if d.SendingCost == nil {
		d.SendingCost = ptr(pricing.InputPerMTok)
	}
	if d.ModelCost == nil {
		d.ModelCost = ptr(pricing.OutputPerMTok)
	}
	if d.CacheMissMultiplier == nil {
		d.CacheMissMultiplier = ptr(miss)
	}
	if d.CacheHitMultiplier == nil {
		d.CacheHitMultiplier = ptr(pricing.CacheHitMultiplier())
	}
	return d, nil
}

// Validate checks the numeric invariants the projector relies on.
func Validate(cfg model.SimulationConfig) error {
	cerr := &ConfigError{}

	sizes := []struct {
		key string
		v   int64
	}{
		{"promptSize", cfg.PromptSize},
		{"userMessageSize", cfg.UserMessageSize},
		{"modelResponseSize", cfg.ModelResponseSize},
		{"maxPromptSize", cfg.MaxPromptSize},
		{"trimmedSize", cfg.TrimmedSize},
	}
	for _, s := range sizes {
		if s.v < 0 {
			cerr.addProblem("%s must be non-negative, got %d", s.key, s.v)
		}
	}

	rates := []struct {
		key string
		v   float64
	}{
		{"sendingCost", cfg.SendingCost},
		{"modelCost", cfg.ModelCost},
		{"cacheMissMultiplier", cfg.CacheMissMultiplier},
		{"cacheHitMultiplier", cfg.CacheHitMultiplier},
	}
	for _, r := range rates {
		// NaN fails this comparison too.
		if !(r.v >= 0) {
			cerr.addProblem("%s must be non-negative, got %v", r.key, r.v)
		}
	}

	if cfg.TrimmedSize > cfg.MaxPromptSize {
		cerr.addProblem("trimmedSize (%d) must not exceed maxPromptSize (%d)", cfg.TrimmedSize, cfg.MaxPromptSize)
	}

	if cfg.CalculateToMax {
		if cfg.TurnGrowth() <= 0 {
			cerr.addProblem("modelResponseSize + userMessageSize must be positive when calculateToMax is set")
		}
	} else if cfg.Iterations < 1 {
		cerr.addProblem("iterations must be at least 1, got %d", cfg.Iterations)
	}

	if cerr.empty() {
		return nil
	}
	return cerr
}
