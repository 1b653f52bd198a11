// Package scheduler runs chunk summarization tasks with bounded parallelism,
// per-task retry/backoff, and a per-attempt timeout. Parallelism covers the
// preprocessing side only; the inference resource serializes actual calls.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"condenser/internal/domain"
	"condenser/internal/planner"
	"condenser/internal/summarizer"
)

// Invoker is the serialized inference entry point used by every attempt.
// *summarizer.Resource satisfies it.
type Invoker interface {
	Summarize(ctx context.Context, input summarizer.Input) (string, error)
}

// Config bounds one scheduler run.
type Config struct {
	// Workers caps how many chunk tasks run at once.
	Workers int
	// TaskTimeout bounds each attempt; an expired attempt counts as one
	// failed attempt and is retried like any other failure.
	TaskTimeout time.Duration
	// Retry is the per-chunk retry policy.
	Retry Policy
}

type Scheduler struct {
	invoker Invoker
	log     *slog.Logger
}

func New(invoker Invoker, log *slog.Logger) *Scheduler {
	return &Scheduler{
		invoker: invoker,
		log:     log,
	}
}

// Run executes every chunk task and returns one outcome per chunk, in chunk
// order regardless of completion order. A chunk that exhausts its retries
// contributes a Failed outcome; it never aborts sibling tasks.
func (s *Scheduler) Run(
	ctx context.Context,
	chunks []domain.Chunk,
	cfg Config,
) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(chunks))
	if len(chunks) == 0 {
		return outcomes
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	tasks := make(chan int)
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for i := range tasks {
				outcomes[i] = s.runTask(ctx, chunks[i], cfg)
			}
		})
	}

	for i := range chunks {
		tasks <- i
	}

	close(tasks)
	wg.Wait()

	return outcomes
}

func (s *Scheduler) runTask(
	ctx context.Context,
	chunk domain.Chunk,
	cfg Config,
) domain.Outcome {
	if strings.TrimSpace(chunk.Text) == "" {
		return domain.Outcome{Index: chunk.Index, Kind: domain.OutcomeSkipped}
	}

	var summary string
	attempts, err := retry(ctx, cfg.Retry, func(attempt int) error {
		// Length bounds are recomputed per attempt so the task stays
		// self-contained.
		target := planner.Plan(chunk.Tokens)

		out, attemptErr := s.summarizeOnce(ctx, chunk, target, cfg.TaskTimeout)
		if attemptErr != nil {
			s.log.WarnContext(ctx, "Chunk attempt failed",
				"error", attemptErr,
				"chunk", chunk.Index,
				"attempt", attempt)

			return attemptErr
		}

		summary = out

		return nil
	})
	if err != nil {
		return domain.Outcome{
			Index:    chunk.Index,
			Kind:     domain.OutcomeFailed,
			Err:      fmt.Errorf("chunk %d: %w", chunk.Index, err),
			Attempts: attempts,
		}
	}

	return domain.Outcome{
		Index:    chunk.Index,
		Kind:     domain.OutcomeSuccess,
		Summary:  summary,
		Attempts: attempts,
	}
}

// summarizeOnce performs a single bounded attempt. The underlying inference
// call is not interruptible: on timeout it is abandoned, and the resource's
// invocation mutex keeps the next call from starting until it returns.
func (s *Scheduler) summarizeOnce(
	ctx context.Context,
	chunk domain.Chunk,
	target domain.LengthTarget,
	timeout time.Duration,
) (string, error) {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type reply struct {
		text string
		err  error
	}
	replyCh := make(chan reply, 1)

	go func() {
		out, err := s.invoker.Summarize(attemptCtx, summarizer.Input{
			Text:         chunk.Text,
			TargetTokens: target.Target,
			MinTokens:    target.Min,
		})
		replyCh <- reply{text: out, err: err}
	}()

	select {
	case r := <-replyCh:
		if r.err != nil {
			return "", r.err
		}

		if strings.TrimSpace(r.text) == "" {
			return "", domain.ErrEmptySummary
		}

		return r.text, nil
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", domain.ErrTimeout
	}
}
