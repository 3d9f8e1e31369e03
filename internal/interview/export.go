package interview

// Export is the canonical snapshot consumed by aggregation, reporting, and
// persistence. It is the only interface those layers see.
type Export struct {
	RoleOrder []string                      `json:"role_order"`
	Roles     map[string]RoleMeta           `json:"roles"`
	Questions map[string][]ExportedQuestion `json:"questions"`
}

// RoleMeta carries the inference metadata of a detected role.
type RoleMeta struct {
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// ExportedQuestion is one issued question with its (possibly absent)
// evaluation outcome. Nil outcome fields mean the question was issued but
// never recorded.
type ExportedQuestion struct {
	ID               string   `json:"id"`
	Question         string   `json:"question"`
	Difficulty       string   `json:"difficulty"`
	IdealAnswer      string   `json:"ideal_answer"`
	ExpectedConcepts []string `json:"expected_concepts"`
	AnswerText       *string  `json:"answer_text"`
	Score            *int     `json:"score"`
	Reasoning        *string  `json:"reasoning"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
}

// Export snapshots the session state. Issued-but-unrecorded questions are
// representable (nil outcome fields) so a truncated session still exports
// faithfully.
func (s *Session) Export() Export {
	export := Export{
		RoleOrder: append([]string(nil), s.roleOrder...),
		Roles:     make(map[string]RoleMeta, len(s.roles)),
		Questions: make(map[string][]ExportedQuestion, len(s.roleOrder)),
	}

	for _, role := range s.roles {
		export.Roles[role.Name] = RoleMeta{
			Confidence: role.Confidence,
			Rationale:  role.Rationale,
		}
	}

	for _, role := range s.roleOrder {
		items := s.answered[role]
		exported := make([]ExportedQuestion, 0, len(items))
		for _, item := range items {
			exported = append(exported, ExportedQuestion{
				ID:               item.Question.ID,
				Question:         item.Question.Text,
				Difficulty:       string(item.Question.Difficulty),
				IdealAnswer:      item.Question.IdealAnswer,
				ExpectedConcepts: item.Question.ExpectedConcepts,
				AnswerText:       item.AnswerText,
				Score:            item.Score,
				Reasoning:        item.Reasoning,
				Strengths:        item.Strengths,
				Weaknesses:       item.Weaknesses,
			})
		}
		export.Questions[role] = exported
	}

	return export
}
