package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	minMaxOutputTokens   int64 = 128
	limitMaxOutputTokens int64 = 2048

	systemPrompt = `Condense the passage into a shorter version of itself.

Rules:
- Stay between the minimum and target word counts given with the passage.
- Keep the original meaning, facts, figures, names, and order of events.
- Plain prose, no lists, no preamble, no commentary.
- Output in the same language as the input.`
)

// OpenAISummarizer calls OpenAI's Responses API to produce chunk summaries.
type OpenAISummarizer struct {
	client openai.Client
}

// NewOpenAISummarizer builds a new summarizer instance.
func NewOpenAISummarizer(apiKey string) (*OpenAISummarizer, error) {
	return &OpenAISummarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Summarize produces a single condensed text for one chunk.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", errors.New("input is empty")
	}

	userPromptBuilder := strings.Builder{}
	fmt.Fprintf(&userPromptBuilder, "Target length: %d words (minimum %d).\n",
		input.TargetTokens, input.MinTokens)
	userPromptBuilder.WriteString("Passage:\n")
	userPromptBuilder.WriteString(text)

	maxOutputTokens := max(int64(input.TargetTokens)*2, minMaxOutputTokens)
	if maxOutputTokens > limitMaxOutputTokens {
		maxOutputTokens = limitMaxOutputTokens
	}

	for {
		resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           openai.ChatModelGPT5Mini2025_08_07,
			ServiceTier:     responses.ResponseNewParamsServiceTierFlex,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Reasoning: responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			},
			Instructions: openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(userPromptBuilder.String()),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens *= 2
				if maxOutputTokens > limitMaxOutputTokens {
					maxOutputTokens = limitMaxOutputTokens
				}
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}
		return summary, nil
	}
}
