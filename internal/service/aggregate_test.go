package service

import (
	"errors"
	"strings"
	"testing"

	"condenser/internal/domain"
)

func success(index int, summary string) domain.Outcome {
	return domain.Outcome{Index: index, Kind: domain.OutcomeSuccess, Summary: summary}
}

func failed(index int, msg string) domain.Outcome {
	return domain.Outcome{Index: index, Kind: domain.OutcomeFailed, Err: errors.New(msg)}
}

func TestAggregateJoinsInChunkOrder(t *testing.T) {
	outcomes := []domain.Outcome{
		success(0, "first part."),
		domain.Outcome{Index: 1, Kind: domain.OutcomeSkipped},
		success(2, "second part."),
	}

	result := aggregate(outcomes, 2)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	if result.Summary != "first part. second part." {
		t.Fatalf("unexpected joined summary %q", result.Summary)
	}
}

func TestAggregateAbortsAtFailureThreshold(t *testing.T) {
	outcomes := []domain.Outcome{
		success(0, "a"),
		failed(1, "chunk 1: inference failed"),
		success(2, "b"),
		failed(3, "chunk 3: chunk summarization timed out"),
		success(4, "c"),
	}

	result := aggregate(outcomes, 2)

	if result.Success {
		t.Fatalf("expected failure despite 3 successes, got %+v", result)
	}

	if !strings.Contains(result.Reason, "too many chunks failed") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}

	if !strings.Contains(result.Reason, "chunk 1") || !strings.Contains(result.Reason, "chunk 3") {
		t.Fatalf("reason should aggregate chunk errors: %q", result.Reason)
	}
}

func TestAggregateToleratesFailuresBelowThreshold(t *testing.T) {
	outcomes := []domain.Outcome{
		success(0, "kept part."),
		failed(1, "chunk 1: inference failed"),
	}

	result := aggregate(outcomes, 2)

	if !result.Success {
		t.Fatalf("expected success below threshold, got %+v", result)
	}

	if result.Summary != "kept part." {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
}

func TestAggregateEmptyJoinIsFailure(t *testing.T) {
	outcomes := []domain.Outcome{
		{Index: 0, Kind: domain.OutcomeSkipped},
		success(1, "   "),
	}

	result := aggregate(outcomes, 2)

	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}

	if result.Reason != "generated summary is empty" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}
