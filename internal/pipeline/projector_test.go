package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/theirongolddev/cachesim/internal/config"
	"github.com/theirongolddev/cachesim/internal/model"
)

const eps = 1e-12

func baseConfig() model.SimulationConfig {
	return model.SimulationConfig{
		PromptSize:          1000,
		UserMessageSize:     100,
		ModelResponseSize:   200,
		MaxPromptSize:       2000,
		TrimmedSize:         500,
		SendingCost:         3,
		ModelCost:           15,
		CacheMissMultiplier: 1,
		CacheHitMultiplier:  0.1,
		Iterations:          3,
	}
}

func mustProject(t *testing.T, cfg model.SimulationConfig) model.Projection {
	t.Helper()
	p, err := Project(cfg)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	return p
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %.12f, want %.12f", name, got, want)
	}
}

func TestProject_ReferenceExample(t *testing.T) {
	p := mustProject(t, baseConfig())

	if len(p.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(p.Records))
	}

	first := p.Records[0]
	if first.Iteration != 1 || first.SendingTokens != 1100 {
		t.Errorf("first record = iter %d size %d, want iter 1 size 1100", first.Iteration, first.SendingTokens)
	}
	if first.CacheHitTokens != 0 || first.CacheMissTokens != 1100 {
		t.Errorf("first turn hit/miss = %d/%d, want 0/1100", first.CacheHitTokens, first.CacheMissTokens)
	}
	approx(t, "turn 1 without cache", first.CostWithoutCache, 0.0063)
	approx(t, "turn 1 with cache", first.CostWithCache, 0.0063)
	approx(t, "turn 1 percent", first.DifferencePercent, 0)

	second := p.Records[1]
	if second.SendingTokens != 1400 || second.CacheHitTokens != 1100 || second.CacheMissTokens != 300 {
		t.Errorf("turn 2 = size %d hit %d miss %d, want 1400/1100/300",
			second.SendingTokens, second.CacheHitTokens, second.CacheMissTokens)
	}
	approx(t, "turn 2 without cache", second.CostWithoutCache, 0.0072)
	approx(t, "turn 2 with cache", second.CostWithCache, 0.00423)
	approx(t, "turn 2 difference", second.Difference, 0.00297)

	third := p.Records[2]
	approx(t, "turn 3 without cache", third.CostWithoutCache, 0.0081)
	approx(t, "turn 3 with cache", third.CostWithCache, 0.00432)

	s := p.Summary
	if s.Iterations != 3 || s.RequestedBound != 3 {
		t.Errorf("summary iterations = %d bound = %d, want 3/3", s.Iterations, s.RequestedBound)
	}
	approx(t, "total without cache", s.TotalCostWithoutCache, 0.0063+0.0072+0.0081)
	approx(t, "total with cache", s.TotalCostWithCache, 0.0063+0.00423+0.00432)
	approx(t, "total difference", s.TotalDifference, s.TotalCostWithoutCache-s.TotalCostWithCache)
	approx(t, "total percent", s.TotalDifferencePercent, s.TotalDifference/s.TotalCostWithoutCache*100)
	if s.Truncations != 0 || s.StoppedAtMax {
		t.Errorf("unexpected truncation state: %+v", s)
	}
}

func TestProject_TruncationRoundTrip(t *testing.T) {
	cfg := baseConfig()
	cfg.TrimmedSize = 1500
	cfg.Iterations = 6

	p := mustProject(t, cfg)
	if len(p.Records) != 6 {
		t.Fatalf("records = %d, want 6", len(p.Records))
	}

	wantSizes := []int64{1100, 1400, 1700, 2000, 1500, 1800}
	for i, want := range wantSizes {
		if got := p.Records[i].SendingTokens; got != want {
			t.Errorf("turn %d size = %d, want %d", i+1, got, want)
		}
	}

	trimmed := p.Records[4]
	if !trimmed.Trimmed {
		t.Error("turn 5 should be marked trimmed")
	}
	if trimmed.CacheHitTokens != cfg.PromptSize {
		t.Errorf("turn 5 hit = %d, want promptSize %d", trimmed.CacheHitTokens, cfg.PromptSize)
	}
	if trimmed.CacheMissTokens != 500 {
		t.Errorf("turn 5 miss = %d, want 500", trimmed.CacheMissTokens)
	}

	after := p.Records[5]
	if after.Trimmed {
		t.Error("turn 6 should not be marked trimmed")
	}
	if after.CacheHitTokens != 1500 || after.CacheMissTokens != 300 {
		t.Errorf("turn 6 hit/miss = %d/%d, want 1500/300", after.CacheHitTokens, after.CacheMissTokens)
	}

	if p.Summary.Truncations != 1 {
		t.Errorf("Truncations = %d, want 1", p.Summary.Truncations)
	}
}

func TestProject_RepeatedTruncation(t *testing.T) {
	cfg := baseConfig()
	cfg.TrimmedSize = 1800
	cfg.Iterations = 10

	p := mustProject(t, cfg)
	if len(p.Records) != 10 {
		t.Fatalf("records = %d, want 10", len(p.Records))
	}
	// 1100 1400 1700 2000 | 1800 | 2100>max -> 1800 again ...
	for i := 4; i < 10; i++ {
		r := p.Records[i]
		if r.SendingTokens != 1800 || !r.Trimmed {
			t.Errorf("turn %d = size %d trimmed %v, want 1800 true", r.Iteration, r.SendingTokens, r.Trimmed)
		}
	}
	if p.Summary.Truncations != 6 {
		t.Errorf("Truncations = %d, want 6", p.Summary.Truncations)
	}
}

func TestProject_TrimAfterLastTurnNotCounted(t *testing.T) {
	cfg := baseConfig()
	cfg.Iterations = 4 // context overflows only after turn 4

	p := mustProject(t, cfg)
	if len(p.Records) != 4 {
		t.Fatalf("records = %d, want 4", len(p.Records))
	}
	for _, r := range p.Records {
		if r.Trimmed {
			t.Errorf("turn %d marked trimmed", r.Iteration)
		}
	}
	if p.Summary.Truncations != 0 {
		t.Errorf("Truncations = %d, want 0", p.Summary.Truncations)
	}
}

func TestProject_TruncationsMatchTrimmedTurns(t *testing.T) {
	for n := 1; n <= 12; n++ {
		cfg := baseConfig()
		cfg.TrimmedSize = 1500
		cfg.Iterations = n

		p := mustProject(t, cfg)
		trimmed := 0
		for _, r := range p.Records {
			if r.Trimmed {
				trimmed++
			}
		}
		if p.Summary.Truncations != trimmed {
			t.Errorf("iterations=%d: Truncations = %d, trimmed turns = %d", n, p.Summary.Truncations, trimmed)
		}
	}
}

func TestIterationBound(t *testing.T) {
	cases := []struct {
		name string
		max  int64
		want int
	}{
		{"exact fit", 2000, 3},       // (2000-1100)/300 = 3
		{"ceiling", 2050, 4},         // 950/300 -> 4
		{"nothing fits", 1100, 0},    // available = 0
		{"prompt above max", 900, 0}, // available < 0
		{"single partial turn", 1101, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.CalculateToMax = true
			cfg.MaxPromptSize = tc.max
			cfg.TrimmedSize = 0
			if got := IterationBound(cfg); got != tc.want {
				t.Errorf("IterationBound = %d, want %d", got, tc.want)
			}
		})
	}

	cfg := baseConfig()
	cfg.Iterations = 42
	if got := IterationBound(cfg); got != 42 {
		t.Errorf("IterationBound without calculateToMax = %d, want 42", got)
	}
}

func TestProject_CalculateToMaxStopsOnOverflow(t *testing.T) {
	cfg := baseConfig()
	cfg.CalculateToMax = true
	cfg.MaxPromptSize = 2050
	cfg.Iterations = 0

	p := mustProject(t, cfg)
	if len(p.Records) != 4 {
		t.Fatalf("records = %d, want 4", len(p.Records))
	}
	if !p.Summary.StoppedAtMax {
		t.Error("StoppedAtMax = false, want true")
	}
	if p.Summary.Truncations != 0 {
		t.Errorf("Truncations = %d, want 0 (calculateToMax never trims)", p.Summary.Truncations)
	}
	for _, r := range p.Records {
		if r.Trimmed {
			t.Errorf("turn %d marked trimmed under calculateToMax", r.Iteration)
		}
	}
}

func TestProject_CalculateToMaxExactFit(t *testing.T) {
	cfg := baseConfig()
	cfg.CalculateToMax = true

	p := mustProject(t, cfg)
	if len(p.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(p.Records))
	}
	if p.Summary.StoppedAtMax {
		t.Error("StoppedAtMax = true, want false: context reached but did not exceed max")
	}
}

func TestProject_NoTurnsFit(t *testing.T) {
	cfg := baseConfig()
	cfg.CalculateToMax = true
	cfg.MaxPromptSize = 1000
	cfg.TrimmedSize = 0

	p := mustProject(t, cfg)
	if len(p.Records) != 0 || p.Summary.Iterations != 0 {
		t.Fatalf("records = %d, want 0", len(p.Records))
	}
	if p.Summary.TotalDifferencePercent != 0 {
		t.Errorf("TotalDifferencePercent = %v, want 0", p.Summary.TotalDifferencePercent)
	}
}

func TestProject_ZeroPricesGiveZeroPercent(t *testing.T) {
	cfg := baseConfig()
	cfg.SendingCost = 0
	cfg.ModelCost = 0

	p := mustProject(t, cfg)
	for _, r := range p.Records {
		if r.DifferencePercent != 0 {
			t.Errorf("turn %d percent = %v, want 0", r.Iteration, r.DifferencePercent)
		}
	}
	if p.Summary.TotalDifferencePercent != 0 {
		t.Errorf("TotalDifferencePercent = %v, want 0", p.Summary.TotalDifferencePercent)
	}
}

func TestProject_DiscountNeverCostsMore(t *testing.T) {
	for _, hit := range []float64{0, 0.1, 0.5, 0.99} {
		for _, trimmed := range []int64{1000, 1500, 2000} {
			cfg := baseConfig()
			cfg.CacheHitMultiplier = hit
			cfg.CacheMissMultiplier = 1
			cfg.TrimmedSize = trimmed
			cfg.Iterations = 25

			p := mustProject(t, cfg)
			for _, r := range p.Records {
				if r.CostWithCache > r.CostWithoutCache+eps {
					t.Errorf("hit=%v trimmed=%d turn %d: with cache %.10f > without %.10f",
						hit, trimmed, r.Iteration, r.CostWithCache, r.CostWithoutCache)
				}
				if r.DifferencePercent > 100 {
					t.Errorf("turn %d percent %v above 100", r.Iteration, r.DifferencePercent)
				}
			}
		}
	}
}

func TestProject_RecordCountMatchesIterations(t *testing.T) {
	for _, n := range []int{1, 7, 31, 200} {
		cfg := baseConfig()
		cfg.Iterations = n
		p := mustProject(t, cfg)
		if len(p.Records) != n || p.Summary.Iterations != n {
			t.Errorf("iterations=%d: records=%d summary=%d", n, len(p.Records), p.Summary.Iterations)
		}
		for i, r := range p.Records {
			if r.Iteration != i+1 {
				t.Fatalf("record %d has iteration %d", i, r.Iteration)
			}
		}
	}
}

func TestProject_RejectsInvalidConfig(t *testing.T) {
	_, err := Project(model.SimulationConfig{})

	var cerr *config.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *config.ConfigError", err)
	}
}
