package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"condenser/internal/config"
	"condenser/internal/database"
	"condenser/internal/domain"
	"condenser/internal/maintenance"
	"condenser/internal/service"
	"condenser/internal/source"
	"condenser/internal/summarizer"
)

type response struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filePath := flag.String("file", "", "summarize one file and exit")
	pageURL := flag.String("url", "", "summarize one page and exit")
	feedURL := flag.String("feed", "", "summarize every feed item and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.WarnContext(ctx, "No .env file loaded",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if apiKey == "" {
		log.ErrorContext(ctx, "OPENAI_API_KEY is required",
			"envVar", "OPENAI_API_KEY")

		return
	}

	resource := summarizer.NewResource(
		func(ctx context.Context) (summarizer.Summarizer, error) {
			return summarizer.NewOpenAISummarizer(apiKey)
		},
		summarizer.InitPolicy{
			MaxAttempts: cfg.InitMaxAttempts,
			BaseDelay:   cfg.InitBaseDelay,
		},
		log,
	)

	var store service.Store
	if dbPath := strings.TrimSpace(cfg.DBPath); dbPath != "" {
		db, dbErr := database.New(ctx, dbPath, log)
		if dbErr != nil {
			log.ErrorContext(ctx, "Failed to initialize db",
				"error", dbErr,
				"dbPath", dbPath)

			return
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.ErrorContext(ctx, "Failed to close db",
					"error", closeErr,
					"dbPath", dbPath)
			}
		}()
		log.InfoContext(ctx, "DB is initialized",
			"dbPath", dbPath)

		janitor := maintenance.New(ctx, db, cfg.StoreRetention, log)
		if err = janitor.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start maintenance",
				"error", err)

			return
		}
		defer janitor.Stop()

		store = db
	}

	svc := service.New(service.Config{
		MaxTokensPerChunk:     cfg.MaxTokensPerChunk,
		MaxChunks:             cfg.MaxChunks,
		MinInputLength:        cfg.MinInputLength,
		MaxInputLength:        cfg.MaxInputLength,
		RejectOverlong:        cfg.RejectOverlong,
		StripURLs:             cfg.StripURLs,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		MaxWorkers:            cfg.MaxWorkers,
		TaskTimeout:           cfg.TaskTimeout,
		RetryMaxAttempts:      cfg.RetryMaxAttempts,
		RetryBaseDelay:        cfg.RetryBaseDelay,
		FailureThreshold:      cfg.FailureThreshold,
		CacheMaxEntries:       cfg.CacheMaxEntries,
		CacheTTL:              cfg.CacheTTL,
	}, resource, store, log)
	log.InfoContext(ctx, "Service is initialized",
		"maxWorkers", cfg.MaxWorkers,
		"maxConcurrentRequests", cfg.MaxConcurrentRequests)

	switch {
	case *filePath != "" || *pageURL != "" || *feedURL != "":
		runOneShot(ctx, svc, log, *filePath, *pageURL, *feedURL)
	default:
		serveStdio(ctx, svc, log)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func runOneShot(
	ctx context.Context,
	svc *service.Service,
	log *slog.Logger,
	filePath string,
	pageURL string,
	feedURL string,
) {
	loader := source.NewLoader(log)

	var docs []domain.Document
	var err error

	switch {
	case filePath != "":
		var doc domain.Document
		doc, err = loader.FromFile(filePath)
		docs = []domain.Document{doc}
	case pageURL != "":
		var doc domain.Document
		doc, err = loader.FromURL(ctx, pageURL)
		docs = []domain.Document{doc}
	case feedURL != "":
		docs, err = loader.FromFeed(ctx, feedURL)
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to load documents",
			"error", err)
		emit(os.Stdout, log, response{Error: err.Error()})

		return
	}

	for _, doc := range docs {
		result := svc.SummarizeDocument(ctx, doc)
		emit(os.Stdout, log, toResponse(result))
	}
}

// serveStdio speaks the line-framed request protocol: a decimal length line
// followed by that many bytes of document text; one JSON result line per
// request.
func serveStdio(ctx context.Context, svc *service.Service, log *slog.Logger) {
	done := make(chan struct{})

	go func() {
		defer close(done)

		reader := bufio.NewReader(os.Stdin)
		for ctx.Err() == nil {
			text, err := readRequest(reader)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				log.ErrorContext(ctx, "Failed to read request",
					"error", err)
				emit(os.Stdout, log, response{Error: err.Error()})

				continue
			}

			emit(os.Stdout, log, toResponse(svc.Summarize(ctx, text)))
		}
	}()

	select {
	case <-ctx.Done():
		log.InfoContext(ctx, "Shutdown signal is received")
	case <-done:
	}
}

func readRequest(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", io.EOF
	}

	length, err := strconv.Atoi(line)
	if err != nil || length <= 0 {
		return "", fmt.Errorf("invalid length header %q", line)
	}

	buf := make([]byte, length)
	if _, err = io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}

	return string(buf), nil
}

func toResponse(result domain.Result) response {
	if result.Success {
		return response{Success: true, Summary: result.Summary}
	}

	return response{Error: result.Reason}
}

func emit(w io.Writer, log *slog.Logger, resp response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Error("Failed to marshal response",
			"error", err)

		return
	}

	if _, err = fmt.Fprintln(w, string(payload)); err != nil {
		log.Error("Failed to write response",
			"error", err)
	}
}
