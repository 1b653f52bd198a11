// Package planner derives output-length bounds for a chunk from its token
// count. Summaries aim for roughly 35% of the chunk, clamped to a sane range.
package planner

import (
	"math"

	"condenser/internal/domain"
)

const (
	targetRatio = 0.35
	minRatio    = 0.6

	targetFloor = 30
	targetCeil  = 250
	minFloor    = 20
)

// Plan computes the target and minimum summary length in tokens for a chunk
// of chunkTokens tokens. Pure; invariants: 0 < Min <= Target < chunkTokens
// (degenerate tiny chunks collapse to Target == Min).
func Plan(chunkTokens int) domain.LengthTarget {
	target := int(math.Round(float64(chunkTokens) * targetRatio))
	if target < targetFloor {
		target = targetFloor
	}
	if target > targetCeil {
		target = targetCeil
	}
	if target > chunkTokens-1 {
		target = chunkTokens - 1
	}
	if target < 1 {
		target = 1
	}

	minLength := int(math.Round(float64(target) * minRatio))
	if minLength < minFloor {
		minLength = minFloor
	}
	if minLength > target {
		minLength = target
	}

	return domain.LengthTarget{Target: target, Min: minLength}
}
