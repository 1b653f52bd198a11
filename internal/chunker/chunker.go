package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"condenser/internal/domain"

	"mvdan.cc/xurls/v2"
)

// Options controls how a document is normalized and segmented.
type Options struct {
	// MaxTokensPerChunk is the token budget per chunk. Required, > 0.
	MaxTokensPerChunk int
	// MaxChunks caps the number of emitted chunks; 0 means unlimited.
	// When the ceiling is reached, only the earliest chunks are kept.
	MaxChunks int
	// MinInputLength rejects shorter inputs before any chunking; 0 disables.
	MinInputLength int
	// MaxInputLength truncates (or rejects, see RejectOverlong) longer
	// inputs; 0 disables.
	MaxInputLength int
	// RejectOverlong rejects inputs above MaxInputLength instead of
	// truncating them with a notice.
	RejectOverlong bool
	// StripURLs removes bare URLs during normalization so they do not
	// waste chunk budget.
	StripURLs bool
}

// Splitter segments documents into ordered, token-bounded chunks.
// Splitting is deterministic: identical input and options always produce
// an identical chunk sequence.
type Splitter struct {
	urlRe *regexp.Regexp
}

func NewSplitter() *Splitter {
	return &Splitter{
		urlRe: xurls.Strict(),
	}
}

// Split normalizes text and packs its sentences into chunks of at most
// opts.MaxTokensPerChunk estimated tokens. Sentences are never cut; a single
// sentence over the budget becomes its own oversized chunk. Returned notices
// are non-fatal warnings (truncation, chunk-ceiling cut).
func (s *Splitter) Split(text string, opts Options) ([]domain.Chunk, []domain.Notice, error) {
	if opts.MaxTokensPerChunk <= 0 {
		return nil, nil, fmt.Errorf("%w: max tokens per chunk must be positive", domain.ErrChunking)
	}

	normalized, notices, err := s.normalize(text, opts)
	if err != nil {
		return nil, nil, err
	}

	var chunks []domain.Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}

		chunks = append(chunks, domain.Chunk{
			Index:  len(chunks),
			Text:   strings.Join(current, " "),
			Tokens: currentTokens,
		})
		current = nil
		currentTokens = 0
	}

	ceilingHit := false

paragraphs:
	for _, paragraph := range splitParagraphs(normalized) {
		for _, sentence := range splitSentences(paragraph) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}

			tokens := EstimateTokens(sentence)

			if currentTokens+tokens > opts.MaxTokensPerChunk && len(current) > 0 {
				if opts.MaxChunks > 0 && len(chunks)+1 >= opts.MaxChunks {
					flush()
					ceilingHit = true
					break paragraphs
				}
				flush()
			}

			current = append(current, sentence)
			currentTokens += tokens
		}
	}
	flush()

	if ceilingHit {
		notices = append(notices, domain.Notice{
			Message: fmt.Sprintf("chunk ceiling reached, kept first %d chunks", len(chunks)),
		})
	}

	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: no chunks produced", domain.ErrChunking)
	}

	return chunks, notices, nil
}

func (s *Splitter) normalize(text string, opts Options) (string, []domain.Notice, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, domain.ErrEmptyInput
	}

	if opts.StripURLs {
		text = strings.TrimSpace(s.urlRe.ReplaceAllString(text, ""))
		if text == "" {
			return "", nil, domain.ErrEmptyInput
		}
	}

	if opts.MinInputLength > 0 && len(text) < opts.MinInputLength {
		return "", nil, fmt.Errorf("%w (length = %d, minimum = %d)",
			domain.ErrTooShort, len(text), opts.MinInputLength)
	}

	var notices []domain.Notice
	if opts.MaxInputLength > 0 && len(text) > opts.MaxInputLength {
		if opts.RejectOverlong {
			return "", nil, fmt.Errorf("%w (length = %d, maximum = %d)",
				domain.ErrTooLong, len(text), opts.MaxInputLength)
		}

		text = truncateAtRune(text, opts.MaxInputLength)
		notices = append(notices, domain.Notice{
			Message: fmt.Sprintf("input truncated to %d characters", len(text)),
		})
	}

	return text, notices, nil
}

// truncateAtRune cuts text to at most limit bytes without splitting a rune.
func truncateAtRune(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	cut := limit
	for cut > 0 && !utf8RuneStart(text[cut]) {
		cut--
	}

	return strings.TrimSpace(text[:cut])
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")

	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	return paragraphs
}

// splitSentences cuts a paragraph after terminal punctuation followed by
// whitespace. Line breaks inside a paragraph also terminate a sentence.
func splitSentences(paragraph string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(paragraph)
	for i, r := range runes {
		if r == '\n' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
			continue
		}

		b.WriteRune(r)

		if isTerminal(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}

	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}
