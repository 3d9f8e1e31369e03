package questions

import (
	"fmt"
	"strings"
)

// Difficulty grades a question. Stored as plain text in the corpus and the store.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Question is an immutable interview question record. Identity is by ID;
// the same ID must never be presented twice within one session.
type Question struct {
	ID               string     `yaml:"id" json:"id"`
	Text             string     `yaml:"question" json:"question"`
	Role             string     `yaml:"role" json:"role"`
	Difficulty       Difficulty `yaml:"difficulty" json:"difficulty"`
	IdealAnswer      string     `yaml:"ideal_answer" json:"ideal_answer"`
	ExpectedConcepts []string   `yaml:"expected_concepts" json:"expected_concepts"`
}

// Validate reports the first structural problem with the question, if any.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("question id is required")
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s: text is required", q.ID)
	}
	if strings.TrimSpace(q.Role) == "" {
		return fmt.Errorf("question %s: role is required", q.ID)
	}
	switch q.Difficulty {
	case Easy, Medium, Hard:
	default:
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
	}
	return nil
}
