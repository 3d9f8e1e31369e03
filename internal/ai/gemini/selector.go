package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/logger"
	"github.com/avoran/interview-agent/internal/questions"
)

//go:embed selector_prompt.md
var selectorPromptTemplate string

// Selector asks Gemini to pick the best next question from a candidate list.
// Callers fall back to the first candidate on any error.
type Selector struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewSelector(generator contentGenerator, maxLogLength int, log *zap.Logger) *Selector {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Selector{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (s *Selector) SelectBest(ctx context.Context, role string, candidates []questions.Question) (string, error) {
	if len(candidates) == 0 {
		return "", errors.New("no candidate questions")
	}
	if len(candidates) == 1 {
		return candidates[0].ID, nil
	}

	type candidate struct {
		ID               string   `json:"id"`
		Question         string   `json:"question"`
		Difficulty       string   `json:"difficulty"`
		ExpectedConcepts []string `json:"expected_concepts"`
	}

	payload := make([]candidate, 0, len(candidates))
	for _, q := range candidates {
		payload = append(payload, candidate{
			ID:               q.ID,
			Question:         q.Text,
			Difficulty:       string(q.Difficulty),
			ExpectedConcepts: q.ExpectedConcepts,
		})
	}

	candidatesJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}

	prompt := strings.ReplaceAll(selectorPromptTemplate, "{{ROLE}}", role)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", string(candidatesJSON))

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug("gemini selector response",
		zap.String("role", role),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return "", fmt.Errorf("parse selector response: %w", err)
	}

	selected := coerceString(data["selected_id"])
	for _, q := range candidates {
		if q.ID == selected {
			return selected, nil
		}
	}

	return "", fmt.Errorf("selector returned unknown id %q", selected)
}
