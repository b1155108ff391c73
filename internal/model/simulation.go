// Package model defines domain types for cachesim projections.
package model

// SimulationConfig holds the validated parameters of one projection run.
// Sizes are token counts; SendingCost and ModelCost are USD per million tokens.
type SimulationConfig struct {
	PromptSize        int64
	UserMessageSize   int64
	ModelResponseSize int64
	MaxPromptSize     int64
	TrimmedSize       int64

	SendingCost         float64
	ModelCost           float64
	CacheMissMultiplier float64
	CacheHitMultiplier  float64

	Iterations     int // ignored when CalculateToMax is set
	CalculateToMax bool
}

// TurnGrowth returns how many tokens the context gains per turn.
func (c SimulationConfig) TurnGrowth() int64 {
	return c.ModelResponseSize + c.UserMessageSize
}

// IterationRecord is the cost of one simulated request/response turn.
type IterationRecord struct {
	Iteration       int
	SendingTokens   int64
	CacheHitTokens  int64
	CacheMissTokens int64
	Trimmed         bool // turn followed a context truncation

	CostWithCache     float64
	CostWithoutCache  float64
	Difference        float64
	DifferencePercent float64
}

// SimulationSummary aggregates all records of a projection.
type SimulationSummary struct {
	TotalCostWithCache     float64
	TotalCostWithoutCache  float64
	TotalDifference        float64
	TotalDifferencePercent float64

	Iterations     int // turns actually recorded
	RequestedBound int
	Truncations    int
	StoppedAtMax   bool
}

// Projection is the complete output of a run.
type Projection struct {
	Records []IterationRecord
	Summary SimulationSummary
}
