package ai

import (
	"context"

	"github.com/avoran/interview-agent/internal/questions"
)

// Judgment is the structured rubric verdict for a single answer.
// Score is on the discrete 0..2 rubric scale.
type Judgment struct {
	Score      int
	Reasoning  string
	Strengths  []string
	Weaknesses []string
	Raw        string
}

// DetectedRole is a job role inferred from résumé text.
type DetectedRole struct {
	Name       string  `mapstructure:"name" json:"name"`
	Confidence float64 `mapstructure:"confidence" json:"confidence"`
	Rationale  string  `mapstructure:"rationale" json:"rationale"`
}

// Judge scores a candidate answer against a question's rubric.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (*Judgment, error)
}

// JudgeRequest carries everything the rubric judge needs for one answer.
type JudgeRequest struct {
	Role             string
	Question         string
	IdealAnswer      string
	ExpectedConcepts []string
	CandidateAnswer  string
}

// Selector picks the single best next question from a candidate list.
// Implementations must return an id present in the candidate list.
type Selector interface {
	SelectBest(ctx context.Context, role string, candidates []questions.Question) (string, error)
}

// RoleExtractor infers up to two target roles from résumé text.
type RoleExtractor interface {
	ExtractRoles(ctx context.Context, resumeText string) ([]DetectedRole, error)
}

// Summarizer produces the final free-text interview summary.
type Summarizer interface {
	Summarize(ctx context.Context, payload string) (string, error)
}

// Embedder converts text into an embedding vector. Used by the question
// store for the semantic-similarity signal.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
