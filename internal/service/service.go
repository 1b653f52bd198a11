// Package service is the request boundary of the summarization core: it
// admits requests, chunks the document, schedules chunk tasks, and aggregates
// their outcomes into exactly one terminal result per request. No error ever
// crosses the boundary; everything becomes a Result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"condenser/internal/chunker"
	"condenser/internal/domain"
	"condenser/internal/scheduler"
)

// Store persists completed summaries keyed by document hash. Optional.
type Store interface {
	GetSummary(ctx context.Context, key string) (string, bool, error)
	PutSummary(ctx context.Context, key string, summary string) error
}

// Config carries every tunable of the request pipeline.
type Config struct {
	MaxTokensPerChunk int
	MaxChunks         int
	MinInputLength    int
	MaxInputLength    int
	RejectOverlong    bool
	StripURLs         bool

	// MaxConcurrentRequests bounds whole requests in flight, not chunks.
	MaxConcurrentRequests int64
	MaxWorkers            int
	TaskTimeout           time.Duration
	RetryMaxAttempts      int
	RetryBaseDelay        time.Duration
	FailureThreshold      int

	CacheMaxEntries int
	CacheTTL        time.Duration
}

type Service struct {
	cfg       Config
	splitter  *chunker.Splitter
	sched     *scheduler.Scheduler
	admission *semaphore.Weighted
	cache     *resultCache
	store     Store
	log       *slog.Logger
}

// New wires the pipeline. store may be nil; the service then keeps only its
// in-memory result cache.
func New(cfg Config, invoker scheduler.Invoker, store Store, log *slog.Logger) *Service {
	requests := cfg.MaxConcurrentRequests
	if requests < 1 {
		requests = 1
	}

	return &Service{
		cfg:       cfg,
		splitter:  chunker.NewSplitter(),
		sched:     scheduler.New(invoker, log),
		admission: semaphore.NewWeighted(requests),
		cache:     newResultCache(cfg.CacheMaxEntries, cfg.CacheTTL),
		store:     store,
		log:       log,
	}
}

// Summarize handles one document and always returns a terminal result.
// The admission semaphore is acquired before chunking begins and released on
// every exit path.
func (s *Service) Summarize(ctx context.Context, text string) domain.Result {
	if err := s.admission.Acquire(ctx, 1); err != nil {
		return domain.Failure(fmt.Sprintf("acquire request slot: %s", err))
	}
	defer s.admission.Release(1)

	return s.summarize(ctx, text)
}

func (s *Service) summarize(ctx context.Context, text string) domain.Result {
	chunks, notices, err := s.splitter.Split(text, chunker.Options{
		MaxTokensPerChunk: s.cfg.MaxTokensPerChunk,
		MaxChunks:         s.cfg.MaxChunks,
		MinInputLength:    s.cfg.MinInputLength,
		MaxInputLength:    s.cfg.MaxInputLength,
		RejectOverlong:    s.cfg.RejectOverlong,
		StripURLs:         s.cfg.StripURLs,
	})
	if err != nil {
		return domain.Failure(err.Error())
	}

	for _, notice := range notices {
		s.log.WarnContext(ctx, "Input notice",
			"notice", notice.Message)
	}

	key := resultKey(text)
	now := time.Now().UTC()

	if summary, ok := s.cache.get(key, now); ok {
		return domain.Result{Success: true, Summary: summary}
	}

	if s.store != nil {
		summary, ok, storeErr := s.store.GetSummary(ctx, key)
		if storeErr != nil {
			s.log.WarnContext(ctx, "Summary store lookup failed",
				"error", storeErr,
				"key", key)
		} else if ok {
			s.cache.set(key, summary, now)

			return domain.Result{Success: true, Summary: summary}
		}
	}

	s.log.InfoContext(ctx, "Summarizing document",
		"chunks", len(chunks),
		"key", key)

	outcomes := s.sched.Run(ctx, chunks, scheduler.Config{
		Workers:     s.cfg.MaxWorkers,
		TaskTimeout: s.cfg.TaskTimeout,
		Retry: scheduler.Policy{
			MaxAttempts: s.cfg.RetryMaxAttempts,
			BaseDelay:   s.cfg.RetryBaseDelay,
		},
	})

	result := aggregate(outcomes, s.cfg.FailureThreshold)
	if !result.Success {
		return result
	}

	s.cache.set(key, result.Summary, time.Now().UTC())

	if s.store != nil {
		if storeErr := s.store.PutSummary(ctx, key, result.Summary); storeErr != nil {
			s.log.WarnContext(ctx, "Failed to persist summary",
				"error", storeErr,
				"key", key)
		}
	}

	return result
}

// SummarizeDocument is Summarize for loader-produced documents; the source
// only decorates logs.
func (s *Service) SummarizeDocument(ctx context.Context, doc domain.Document) domain.Result {
	if doc.Source != "" {
		s.log.InfoContext(ctx, "Summarizing source",
			"source", doc.Source)
	}

	return s.Summarize(ctx, doc.Text)
}
