package evaluation

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/ai"
	"github.com/avoran/interview-agent/internal/logger"
	"github.com/avoran/interview-agent/internal/questions"
)

// Blend weights for the rubric verdict and the embedding-similarity signal.
// The rubric dominates; similarity nudges.
const (
	rubricWeight   = 0.7
	semanticWeight = 0.3
	maxRubricScore = 2
)

const noResponseWeakness = "No response submitted"

// defaultReasoning is used when the judge fails and a neutral verdict is
// substituted.
const defaultReasoning = "Evaluation unavailable; a neutral score was assigned."

// SimilarityProvider supplies the embedding similarity between a question's
// stored ideal answer and a candidate answer. *questions.Store satisfies it.
type SimilarityProvider interface {
	Similarity(ctx context.Context, questionID, candidateAnswer string) (float64, error)
}

// Result is the complete per-answer verdict. Score is the blended final on
// a 0..100 scale; RubricScore and Similarity carry the raw signals for
// diagnostics and audit logs.
type Result struct {
	QuestionID     string   `json:"question_id"`
	Score          int      `json:"score"`
	RubricScore    int      `json:"rubric_score"`
	Similarity     float64  `json:"similarity"`
	SimilarityUsed bool     `json:"similarity_used"`
	Reasoning      string   `json:"reasoning"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
}

// Evaluator scores candidate answers. A nil similarity provider degrades to
// rubric-only scoring.
type Evaluator struct {
	judge      ai.Judge
	similarity SimilarityProvider
	logger     *zap.Logger
}

func NewEvaluator(judge ai.Judge, similarity SimilarityProvider, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{judge: judge, similarity: similarity, logger: log}
}

// Evaluate scores one answer. It never returns an error: collaborator
// failures degrade to a neutral rubric verdict or to rubric-only scoring,
// so a single flaky model call cannot abort an interview in progress.
func (e *Evaluator) Evaluate(ctx context.Context, q questions.Question, answerText string) Result {
	if strings.TrimSpace(answerText) == "" {
		return Result{
			QuestionID: q.ID,
			Score:      0,
			Reasoning:  "No answer was provided.",
			Weaknesses: []string{noResponseWeakness},
		}
	}

	judgment := e.judgeAnswer(ctx, q, answerText)

	rubric := judgment.Score
	if rubric < 0 {
		rubric = 0
	}
	if rubric > maxRubricScore {
		rubric = maxRubricScore
	}

	result := Result{
		QuestionID:  q.ID,
		RubricScore: rubric,
		Reasoning:   judgment.Reasoning,
		Strengths:   judgment.Strengths,
		Weaknesses:  judgment.Weaknesses,
	}

	blended := float64(rubric)
	if e.similarity != nil {
		sim, err := e.similarity.Similarity(ctx, q.ID, answerText)
		if err != nil {
			e.logger.Warn("similarity unavailable, scoring on rubric only",
				zap.String(logger.FieldQuestion, q.ID),
				zap.Error(err),
			)
		} else {
			result.Similarity = sim
			result.SimilarityUsed = true
			semantic := math.Round(sim * maxRubricScore)
			blended = rubricWeight*float64(rubric) + semanticWeight*semantic
		}
	}

	result.Score = int(math.Round(blended / maxRubricScore * 100))
	return result
}

func (e *Evaluator) judgeAnswer(ctx context.Context, q questions.Question, answerText string) ai.Judgment {
	judgment, err := e.judge.Judge(ctx, ai.JudgeRequest{
		Role:             q.Role,
		Question:         q.Text,
		IdealAnswer:      q.IdealAnswer,
		ExpectedConcepts: q.ExpectedConcepts,
		CandidateAnswer:  answerText,
	})
	if err != nil {
		e.logger.Warn("rubric judgment failed, using neutral verdict",
			zap.String(logger.FieldQuestion, q.ID),
			zap.Error(err),
		)
		return ai.Judgment{Score: 1, Reasoning: defaultReasoning}
	}
	return *judgment
}
