// Package report assembles the final interview report from the session
// transcript and its aggregated scores.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/avoran/interview-agent/internal/evaluation"
	"github.com/avoran/interview-agent/internal/interview"
)

// topListLimit caps the strengths/weaknesses lists.
const topListLimit = 5

// Report is the final artifact handed to the candidate's reviewer.
type Report struct {
	Overall    evaluation.Overall       `json:"overall"`
	Summary    string                   `json:"summary"`
	Strengths  []string                 `json:"strengths"`
	Weaknesses []string                 `json:"weaknesses"`
	Questions  int                      `json:"questions_issued"`
	Roles      map[string]RoleBreakdown `json:"role_breakdown"`
}

// RoleBreakdown carries the detected-role metadata next to its score and
// the role's own qualitative feedback.
type RoleBreakdown struct {
	Score             float64  `json:"score"`
	Confidence        float64  `json:"confidence"`
	Rationale         string   `json:"rationale,omitempty"`
	PerQuestionScores []int    `json:"per_question_scores"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
}

// Build assembles the report. Strengths and weaknesses are deduplicated and
// capped per role, so one role's feedback never crowds out another's; the
// top-level lists interleave the per-role lists so every role is represented
// even when the shared cap is hit.
func Build(export interview.Export, overall evaluation.Overall, summary string) Report {
	rep := Report{
		Overall: overall,
		Summary: summary,
		Roles:   make(map[string]RoleBreakdown, len(overall.Roles)),
	}

	for _, rr := range overall.Roles {
		meta := export.Roles[rr.Role]
		rep.Roles[rr.Role] = RoleBreakdown{
			Score:             rr.Score,
			Confidence:        meta.Confidence,
			Rationale:         meta.Rationale,
			PerQuestionScores: rr.PerQuestionScores,
			Strengths:         appendUnique(nil, rr.Strengths),
			Weaknesses:        appendUnique(nil, rr.Weaknesses),
		}
	}

	rep.Strengths = interleave(overall.Roles, func(b RoleBreakdown) []string { return b.Strengths }, rep.Roles)
	rep.Weaknesses = interleave(overall.Roles, func(b RoleBreakdown) []string { return b.Weaknesses }, rep.Roles)

	for _, role := range export.RoleOrder {
		rep.Questions += len(export.Questions[role])
	}
	return rep
}

// interleave draws one item per role per pass until the cap is reached.
func interleave(roles []evaluation.RoleResult, pick func(RoleBreakdown) []string, breakdowns map[string]RoleBreakdown) []string {
	var out []string
	for i := 0; i < topListLimit; i++ {
		added := false
		for _, rr := range roles {
			items := pick(breakdowns[rr.Role])
			if i < len(items) {
				out = appendUnique(out, items[i:i+1])
				added = true
			}
		}
		if !added {
			break
		}
	}
	return out
}

func appendUnique(dst []string, items []string) []string {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || len(dst) >= topListLimit {
			continue
		}
		duplicate := false
		for _, have := range dst {
			if strings.EqualFold(have, item) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			dst = append(dst, item)
		}
	}
	return dst
}

// Render writes the human-readable report.
func (r Report) Render(w io.Writer, roleOrder []string) error {
	var b strings.Builder

	b.WriteString("=== Interview Report ===\n\n")
	fmt.Fprintf(&b, "Overall score: %.2f / 100 (%d of %d points)\n",
		r.Overall.Score, r.Overall.Earned, r.Overall.MaxPossible)
	fmt.Fprintf(&b, "Questions asked: %d\n\n", r.Questions)

	for _, role := range roleOrder {
		breakdown, ok := r.Roles[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %.2f / 100", role, breakdown.Score)
		if breakdown.Confidence > 0 {
			fmt.Fprintf(&b, " (role confidence %.0f%%)", breakdown.Confidence*100)
		}
		b.WriteString("\n")
	}

	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Areas to improve", r.Weaknesses)

	if r.Summary != "" {
		fmt.Fprintf(&b, "\nSummary:\n%s\n", r.Summary)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
