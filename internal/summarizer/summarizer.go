package summarizer

import (
	"context"
)

// Input describes the payload for one chunk summarization request.
type Input struct {
	// Text contains the chunk to condense.
	Text string
	// TargetTokens is the desired summary length.
	TargetTokens int
	// MinTokens is the shortest acceptable summary length.
	MinTokens int
}

// Summarizer produces a shorter text for a given input. Implementations may
// fail transiently; callers own retry policy.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
