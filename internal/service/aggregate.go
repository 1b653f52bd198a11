package service

import (
	"fmt"
	"strings"

	"condenser/internal/domain"
)

// aggregate joins chunk outcomes into the terminal result, in chunk order.
// Once failureThreshold chunks have permanently failed the whole request is
// abandoned; partial output is discarded rather than silently degraded.
func aggregate(outcomes []domain.Outcome, failureThreshold int) domain.Result {
	var failures []string
	var parts []string

	for _, o := range outcomes {
		switch o.Kind {
		case domain.OutcomeSuccess:
			parts = append(parts, o.Summary)
		case domain.OutcomeFailed:
			failures = append(failures, o.Err.Error())
		case domain.OutcomeSkipped:
		}
	}

	if failureThreshold > 0 && len(failures) >= failureThreshold {
		return domain.Failure(fmt.Sprintf(
			"too many chunks failed: %s", strings.Join(failures, "; ")))
	}

	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return domain.Failure("generated summary is empty")
	}

	return domain.Result{Success: true, Summary: joined}
}
