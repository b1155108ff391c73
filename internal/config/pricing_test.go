package config

import (
	"math"
	"testing"
)

func TestNormalizeModelName_StripsDateSuffix(t *testing.T) {
	cases := map[string]string{
		"claude-opus-4-5-20251101": "claude-opus-4-5",
		"claude-sonnet-4-6":        "claude-sonnet-4-6",
		"claude-sonnet-4-20250514": "claude-sonnet-4",
		"gpt-unknown-20250101":     "gpt-unknown-20250101",
		"claude-haiku-4-5-2025":    "claude-haiku-4-5-2025", // too short to be a date
	}
	for in, want := range cases {
		if got := NormalizeModelName(in); got != want {
			t.Errorf("NormalizeModelName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupPricing_Multipliers(t *testing.T) {
	p, ok := LookupPricing("claude-opus-4-6-20260101")
	if !ok {
		t.Fatal("LookupPricing returned !ok for dated opus model")
	}
	if got := p.CacheMissMultiplier5m(); math.Abs(got-1.25) > 1e-12 {
		t.Errorf("CacheMissMultiplier5m = %v, want 1.25", got)
	}
	if got := p.CacheMissMultiplier1h(); math.Abs(got-2.0) > 1e-12 {
		t.Errorf("CacheMissMultiplier1h = %v, want 2.0", got)
	}
	if got := p.CacheHitMultiplier(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("CacheHitMultiplier = %v, want 0.1", got)
	}
}

func TestLookupPricing_Unknown(t *testing.T) {
	if _, ok := LookupPricing("not-a-model"); ok {
		t.Error("LookupPricing returned ok for unknown model")
	}
}

func TestModelPricing_ZeroInputHasZeroMultipliers(t *testing.T) {
	var p ModelPricing
	if p.CacheHitMultiplier() != 0 || p.CacheMissMultiplier5m() != 0 {
		t.Error("multipliers of zero-priced model should be 0")
	}
}

func TestPresetNames_Sorted(t *testing.T) {
	names := PresetNames()
	if len(names) != len(DefaultPricing) {
		t.Fatalf("PresetNames len = %d, want %d", len(names), len(DefaultPricing))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("PresetNames not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
