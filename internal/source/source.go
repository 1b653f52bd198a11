// Package source loads documents for summarization from files, URLs, and
// feeds, reducing HTML pages to plain article text.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"condenser/internal/domain"
)

const (
	clientTimeout = 30 * time.Second
	userAgent     = "condenser/1.0"
)

type Loader struct {
	client     *http.Client
	feedParser *gofeed.Parser
	log        *slog.Logger
}

func NewLoader(log *slog.Logger) *Loader {
	client := &http.Client{Timeout: clientTimeout}

	feedParser := gofeed.NewParser()
	feedParser.UserAgent = userAgent

	return &Loader{
		client:     client,
		feedParser: feedParser,
		log:        log,
	}
}

// FromFile loads one document from disk. HTML files are reduced to text.
func (l *Loader) FromFile(path string) (domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read file: %w", err)
	}

	text := string(raw)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err = ExtractHTML(strings.NewReader(text))
		if err != nil {
			return domain.Document{}, fmt.Errorf("extract HTML: %w", err)
		}
	}

	return domain.Document{Text: text, Source: path}, nil
}

// FromURL fetches one page and reduces it to text when it is HTML.
func (l *Loader) FromURL(ctx context.Context, pageURL string) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch URL: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			l.log.WarnContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", pageURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("fetch URL: unexpected status %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		text, extractErr := ExtractHTML(resp.Body)
		if extractErr != nil {
			return domain.Document{}, fmt.Errorf("extract HTML: %w", extractErr)
		}

		return domain.Document{Text: text, Source: pageURL}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read body: %w", err)
	}

	return domain.Document{Text: string(raw), Source: pageURL}, nil
}

// FromFeed loads every item of an RSS/Atom feed as its own document, in feed
// order. Item HTML is reduced to text; items without content are skipped.
func (l *Loader) FromFeed(ctx context.Context, feedURL string) ([]domain.Document, error) {
	feed, err := l.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	docs := make([]domain.Document, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		body := item.Content
		if strings.TrimSpace(body) == "" {
			body = item.Description
		}

		text, extractErr := ExtractHTML(strings.NewReader(body))
		if extractErr != nil || strings.TrimSpace(text) == "" {
			text = strings.TrimSpace(body)
		}
		if text == "" {
			l.log.WarnContext(ctx, "Skipping feed item without content",
				"feedURL", feedURL,
				"itemTitle", item.Title)

			continue
		}

		title := strings.TrimSpace(item.Title)
		if title != "" {
			text = title + "\n\n" + text
		}

		docs = append(docs, domain.Document{Text: text, Source: item.Link})
	}

	return docs, nil
}
