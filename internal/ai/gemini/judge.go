package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/ai"
	"github.com/avoran/interview-agent/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed judge_prompt.md
var judgePromptTemplate string

const defaultMaxLogLength = 200

// Judge scores candidate answers against the question rubric via Gemini.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewJudge(generator contentGenerator, maxLogLength int, log *zap.Logger) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Judge requests a rubric judgment for the given answer. A malformed model
// response is returned as an error; the caller decides the default.
func (j *Judge) Judge(ctx context.Context, req ai.JudgeRequest) (*ai.Judgment, error) {
	payload := map[string]any{
		"role":              req.Role,
		"question":          req.Question,
		"ideal_answer":      req.IdealAnswer,
		"expected_concepts": req.ExpectedConcepts,
		"candidate_answer":  req.CandidateAnswer,
	}

	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal judge payload: %w", err)
	}

	prompt := strings.ReplaceAll(judgePromptTemplate, "{{PAYLOAD_JSON}}", string(payloadJSON))

	j.logger.Debug("gemini judge request",
		zap.String("role", req.Role),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	j.logger.Debug("gemini judge response",
		zap.String("role", req.Role),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, j.maxLogLen)),
	)

	judgment, err := parseJudgment(raw)
	if err != nil {
		return nil, err
	}

	judgment.Raw = raw
	return judgment, nil
}

func parseJudgment(raw string) (*ai.Judgment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse judge response: %w", err)
	}

	return &ai.Judgment{
		Score:      coerceInt(data["score"], 1),
		Reasoning:  coerceString(data["reasoning"]),
		Strengths:  coerceStringSlice(data["strengths"]),
		Weaknesses: coerceStringSlice(data["weaknesses"]),
	}, nil
}
