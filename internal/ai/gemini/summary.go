package gemini

import (
	"context"
	"errors"
	"strings"

	_ "embed"
)

//go:embed summary_prompt.md
var summaryPromptTemplate string

// Summarizer produces the final free-text interview summary.
type Summarizer struct {
	generator contentGenerator
}

func NewSummarizer(generator contentGenerator) *Summarizer {
	return &Summarizer{generator: generator}
}

func (s *Summarizer) Summarize(ctx context.Context, payload string) (string, error) {
	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{PAYLOAD_JSON}}", payload)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", errors.New("empty summary")
	}

	return summary, nil
}
