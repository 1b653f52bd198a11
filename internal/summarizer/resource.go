package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"condenser/internal/domain"
)

type state int

const (
	stateUninitialized state = iota
	stateReady
	stateFailed
)

// InitPolicy bounds retries for the one-time resource initialization.
type InitPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Factory builds the underlying summarization capability. It may fail
// transiently (cold cache, network); the Resource retries it.
type Factory func(ctx context.Context) (Summarizer, error)

// Resource owns the process-wide summarization capability. Initialization is
// lazy and runs exactly once even under concurrent first use; concurrent
// callers block until the resource is ready or permanently failed. All
// invocations are serialized: at most one Summarize call executes at a time.
type Resource struct {
	factory Factory
	policy  InitPolicy
	log     *slog.Logger

	initMu  sync.Mutex
	state   state
	s       Summarizer
	initErr error

	callMu sync.Mutex
}

func NewResource(factory Factory, policy InitPolicy, log *slog.Logger) *Resource {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return &Resource{
		factory: factory,
		policy:  policy,
		log:     log,
	}
}

// Acquire ensures the resource is ready, initializing it on first use.
// After the retry budget is exhausted the resource is failed for the rest of
// the process lifetime and every later call returns domain.ErrInitFailed.
func (r *Resource) Acquire(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	switch r.state {
	case stateReady:
		return nil
	case stateFailed:
		return fmt.Errorf("%w: %s", domain.ErrInitFailed, r.initErr)
	}

	delay := r.policy.BaseDelay
	var errs []error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		s, err := r.factory(ctx)
		if err == nil {
			r.s = s
			r.state = stateReady
			r.log.InfoContext(ctx, "Summarizer is initialized",
				"attempt", attempt)

			return nil
		}

		errs = append(errs, err)

		if attempt == r.policy.MaxAttempts {
			break
		}

		r.log.WarnContext(ctx, "Summarizer initialization failed, retrying",
			"error", err,
			"attempt", attempt,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			// Resource stays uninitialized so the next caller retries.
			return fmt.Errorf("initialize summarizer: %w", ctx.Err())
		}
		delay *= 2
	}

	r.initErr = errors.Join(errs...)
	r.state = stateFailed
	r.log.ErrorContext(ctx, "Summarizer initialization failed permanently",
		"error", r.initErr,
		"attempts", r.policy.MaxAttempts)

	return fmt.Errorf("%w: %s", domain.ErrInitFailed, r.initErr)
}

// Summarize runs one serialized inference call. The invocation mutex admits
// exactly one caller; everyone else waits for the current call to return.
func (r *Resource) Summarize(ctx context.Context, input Input) (string, error) {
	if err := r.Acquire(ctx); err != nil {
		return "", err
	}

	r.callMu.Lock()
	defer r.callMu.Unlock()

	out, err := r.s.Summarize(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInference, err)
	}

	return out, nil
}
