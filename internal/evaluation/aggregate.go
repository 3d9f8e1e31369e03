package evaluation

import (
	"context"
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/ai"
	"github.com/avoran/interview-agent/internal/interview"
)

// RoleResult is the aggregated outcome for one role. PerQuestionScores,
// Strengths, and Weaknesses are flattened across the role's recorded
// answers in ask order.
type RoleResult struct {
	Role              string   `json:"role"`
	Scored            int      `json:"scored_questions"`
	Issued            int      `json:"issued_questions"`
	Earned            int      `json:"earned_points"`
	MaxPossible       int      `json:"max_possible_points"`
	Score             float64  `json:"score"`
	PerQuestionScores []int    `json:"per_question_scores"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
}

// Overall is the aggregated outcome across all roles.
type Overall struct {
	Roles       []RoleResult `json:"roles"`
	Earned      int          `json:"earned_points"`
	MaxPossible int          `json:"max_possible_points"`
	Score       float64      `json:"score"`
}

// Aggregate folds recorded per-question scores into role and overall
// percentages. Issued-but-unscored questions do not count toward the
// maximum, and roles with no scored questions are omitted entirely.
func Aggregate(export interview.Export) Overall {
	overall := Overall{}

	for _, role := range export.RoleOrder {
		rr := RoleResult{Role: role, Issued: len(export.Questions[role])}
		for _, q := range export.Questions[role] {
			if q.Score == nil {
				continue
			}
			rr.Scored++
			rr.Earned += *q.Score
			rr.PerQuestionScores = append(rr.PerQuestionScores, *q.Score)
			rr.Strengths = append(rr.Strengths, q.Strengths...)
			rr.Weaknesses = append(rr.Weaknesses, q.Weaknesses...)
		}
		if rr.Scored == 0 {
			continue
		}
		rr.MaxPossible = rr.Scored * 100
		rr.Score = round2(float64(rr.Earned) / float64(rr.MaxPossible) * 100)

		overall.Roles = append(overall.Roles, rr)
		overall.Earned += rr.Earned
		overall.MaxPossible += rr.MaxPossible
	}

	if overall.MaxPossible > 0 {
		overall.Score = round2(float64(overall.Earned) / float64(overall.MaxPossible) * 100)
	}
	return overall
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

const fallbackSummary = "Summary unavailable."

// Summarize produces the free-text closing summary from the interview
// transcript and its aggregate. A summarizer failure degrades to a fixed
// fallback line instead of failing the report.
func Summarize(ctx context.Context, summarizer ai.Summarizer, export interview.Export, overall Overall, log *zap.Logger) string {
	if log == nil {
		log = zap.NewNop()
	}
	if summarizer == nil {
		return fallbackSummary
	}

	payload, err := json.Marshal(struct {
		Overall   Overall          `json:"overall"`
		Interview interview.Export `json:"interview"`
	}{Overall: overall, Interview: export})
	if err != nil {
		log.Warn("summary payload marshal failed", zap.Error(err))
		return fallbackSummary
	}

	text, err := summarizer.Summarize(ctx, string(payload))
	if err != nil {
		log.Warn("summary generation failed", zap.Error(err))
		return fallbackSummary
	}
	return text
}
