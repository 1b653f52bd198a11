package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"condenser/internal/summarizer"
)

type scriptedInvoker struct {
	calls    atomic.Int32
	behavior func(call int, input summarizer.Input) (string, error)
}

func (s *scriptedInvoker) Summarize(ctx context.Context, input summarizer.Input) (string, error) {
	call := int(s.calls.Add(1))
	if s.behavior != nil {
		return s.behavior(call, input)
	}

	return "summary piece.", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testConfig() Config {
	return Config{
		MaxTokensPerChunk:     900,
		MinInputLength:        50,
		MaxInputLength:        60000,
		StripURLs:             false,
		MaxConcurrentRequests: 4,
		MaxWorkers:            3,
		TaskTimeout:           time.Second,
		RetryMaxAttempts:      3,
		RetryBaseDelay:        time.Millisecond,
		FailureThreshold:      2,
		CacheMaxEntries:       16,
		CacheTTL:              time.Hour,
	}
}

func longText(sentences int) string {
	var b strings.Builder
	for i := range sentences {
		fmt.Fprintf(&b, "Sentence number %d carries some modest amount of content. ", i)
	}

	return b.String()
}

func TestSummarizeRejectsShortInputWithoutChunking(t *testing.T) {
	invoker := &scriptedInvoker{}
	svc := New(testConfig(), invoker, nil, discardLogger())

	result := svc.Summarize(context.Background(), "Only forty characters of input here now.")

	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}

	if !strings.Contains(result.Reason, "too short") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}

	if got := invoker.calls.Load(); got != 0 {
		t.Fatalf("expected no inference calls, got %d", got)
	}
}

func TestSummarizeHappyPath(t *testing.T) {
	invoker := &scriptedInvoker{}
	svc := New(testConfig(), invoker, nil, discardLogger())

	result := svc.Summarize(context.Background(), longText(10))

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	if strings.TrimSpace(result.Summary) == "" {
		t.Fatalf("expected non-empty summary")
	}
}

func TestSummarizeTooManyFailedChunks(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTokensPerChunk = 20 // force several chunks
	cfg.RetryMaxAttempts = 1

	var failures atomic.Int32
	invoker := &scriptedInvoker{}
	invoker.behavior = func(call int, input summarizer.Input) (string, error) {
		// Fail the first two distinct chunks that come through.
		if failures.Add(1) <= 2 {
			return "", errors.New("inference blew up")
		}
		return "fine piece.", nil
	}

	svc := New(cfg, invoker, nil, discardLogger())

	result := svc.Summarize(context.Background(), longText(20))

	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}

	if !strings.Contains(result.Reason, "too many chunks failed") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestSummarizeUsesResultCache(t *testing.T) {
	invoker := &scriptedInvoker{}
	svc := New(testConfig(), invoker, nil, discardLogger())

	text := longText(10)

	first := svc.Summarize(context.Background(), text)
	if !first.Success {
		t.Fatalf("expected first request to succeed: %+v", first)
	}

	callsAfterFirst := invoker.calls.Load()

	second := svc.Summarize(context.Background(), text)
	if !second.Success {
		t.Fatalf("expected second request to succeed: %+v", second)
	}

	if invoker.calls.Load() != callsAfterFirst {
		t.Fatalf("expected cached result, saw extra inference calls")
	}

	if second.Summary != first.Summary {
		t.Fatalf("cached summary differs: %q vs %q", second.Summary, first.Summary)
	}
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	puts int
}

func (m *memoryStore) GetSummary(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	summary, ok := m.data[key]

	return summary, ok, nil
}

func (m *memoryStore) PutSummary(ctx context.Context, key string, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = summary

	return nil
}

func TestSummarizePersistsToStore(t *testing.T) {
	invoker := &scriptedInvoker{}
	store := &memoryStore{}
	svc := New(testConfig(), invoker, store, discardLogger())

	result := svc.Summarize(context.Background(), longText(10))
	if !result.Success {
		t.Fatalf("expected success: %+v", result)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if store.puts != 1 {
		t.Fatalf("expected 1 store write, got %d", store.puts)
	}

	for _, summary := range store.data {
		if summary != result.Summary {
			t.Fatalf("stored summary differs from returned one")
		}
	}
}

func TestSummarizeServesStoredSummaryAcrossServices(t *testing.T) {
	store := &memoryStore{}

	first := New(testConfig(), &scriptedInvoker{}, store, discardLogger())
	text := longText(10)

	if result := first.Summarize(context.Background(), text); !result.Success {
		t.Fatalf("seed request failed: %+v", result)
	}

	// A fresh service with a cold cache must hit the store, not inference.
	invoker := &scriptedInvoker{}
	second := New(testConfig(), invoker, store, discardLogger())

	result := second.Summarize(context.Background(), text)
	if !result.Success {
		t.Fatalf("expected stored summary: %+v", result)
	}

	if got := invoker.calls.Load(); got != 0 {
		t.Fatalf("expected no inference calls, got %d", got)
	}
}

func TestSummarizeAdmissionBoundsRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrentRequests = 2

	var inFlight, maxSeen atomic.Int32

	invoker := &scriptedInvoker{}
	invoker.behavior = func(call int, input summarizer.Input) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			seen := maxSeen.Load()
			if n <= seen || maxSeen.CompareAndSwap(seen, n) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)

		return "piece.", nil
	}

	svc := New(cfg, invoker, nil, discardLogger())

	var wg sync.WaitGroup
	for i := range 6 {
		text := longText(10) + fmt.Sprintf(" Unique trailing sentence number %d closes it.", i)
		wg.Go(func() {
			if result := svc.Summarize(context.Background(), text); !result.Success {
				t.Errorf("request failed: %+v", result)
			}
		})
	}
	wg.Wait()

	if got := maxSeen.Load(); got > 2 {
		t.Fatalf("admission semaphore leaked: %d requests in flight", got)
	}
}

func TestSummarizeTruncatesAndContinues(t *testing.T) {
	cfg := testConfig()
	cfg.MaxInputLength = 400

	invoker := &scriptedInvoker{}
	svc := New(cfg, invoker, nil, discardLogger())

	result := svc.Summarize(context.Background(), longText(40))

	if !result.Success {
		t.Fatalf("expected truncated input to still summarize: %+v", result)
	}
}
