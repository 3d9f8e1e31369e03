package interview

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/ai"
	"github.com/avoran/interview-agent/internal/questions"
)

var (
	// ErrNoRoles is returned when a session is constructed without roles.
	ErrNoRoles = errors.New("at least one role is required to start an interview")
	// ErrUnknownQuestion is returned when an evaluation is recorded for a
	// question id that was never issued. This is a caller bug, not a
	// recoverable condition.
	ErrUnknownQuestion = errors.New("unknown question id")
	// ErrAlreadyRecorded is returned when an evaluation is recorded twice
	// for the same issued question.
	ErrAlreadyRecorded = errors.New("question already recorded")
	// ErrPoolExhausted is returned when the question source has no unseen
	// questions left for the active role and repeats are not allowed.
	ErrPoolExhausted = errors.New("question pool exhausted")
)

// Over-fetch margin and cap for the candidate list handed to the selector.
const (
	candidateMargin = 2
	candidateCap    = 5
)

// Warmup question issued first in every session, attributed to the first
// registered role and counted toward its quota.
var warmupQuestion = questions.Question{
	ID:          "warmup_intro",
	Text:        "To get started, please introduce yourself and walk me through your background.",
	Difficulty:  questions.Easy,
	IdealAnswer: "A clear, structured self-introduction covering experience, skills, and motivation.",
	ExpectedConcepts: []string{
		"background", "experience", "communication",
	},
}

// Source is the question-pool collaborator consumed by the session.
type Source interface {
	FetchForRole(ctx context.Context, role string, n int, excludeIDs []string) ([]questions.Question, error)
}

// AnsweredQuestion wraps an issued question plus its evaluation outcome.
// The outcome fields are nil until Record fills them, exactly once.
type AnsweredQuestion struct {
	Question   questions.Question
	AnswerText *string
	Score      *int
	Reasoning  *string
	Strengths  []string
	Weaknesses []string
}

// Options tunes session construction.
type Options struct {
	// Selector ranks candidate questions; nil means first-candidate order.
	Selector ai.Selector
	// AllowRepeats permits re-issuing seen questions once the pool is
	// exhausted for a role. When false, NextQuestion returns
	// ErrPoolExhausted instead.
	AllowRepeats bool
	// SkipWarmup disables the fixed self-introduction question.
	SkipWarmup bool
	Logger     *zap.Logger
}

// Session owns the question allocation plan across one or two roles, issues
// questions one at a time, and records evaluation outcomes. It is not safe
// for concurrent use; the driver serializes NextQuestion/Record cycles.
type Session struct {
	roles     []ai.DetectedRole
	roleOrder []string
	quota     map[string]int
	answered  map[string][]*AnsweredQuestion

	currentRole  int
	askedIDs     map[string]struct{}
	askedOrder   []string
	warmupIssued bool

	source   Source
	selector ai.Selector
	repeats  bool
	logger   *zap.Logger
}

// New creates a session for the given roles. Only the first two roles are
// used; zero roles is a construction error.
func New(roles []ai.DetectedRole, source Source, opts Options) (*Session, error) {
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}
	if source == nil {
		return nil, errors.New("question source is required")
	}

	if len(roles) > maxRoles {
		roles = roles[:maxRoles]
	}

	roleOrder := make([]string, 0, len(roles))
	answered := make(map[string][]*AnsweredQuestion, len(roles))
	for _, role := range roles {
		roleOrder = append(roleOrder, role.Name)
		answered[role.Name] = nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		roles:        roles,
		roleOrder:    roleOrder,
		quota:        allocateQuota(roleOrder),
		answered:     answered,
		askedIDs:     make(map[string]struct{}),
		warmupIssued: opts.SkipWarmup,
		source:       source,
		selector:     opts.Selector,
		repeats:      opts.AllowRepeats,
		logger:       logger,
	}, nil
}

// Quota returns the per-role question targets.
func (s *Session) Quota() map[string]int {
	out := make(map[string]int, len(s.quota))
	for role, n := range s.quota {
		out[role] = n
	}
	return out
}

// Roles returns the roles used by the session, in registration order.
func (s *Session) Roles() []ai.DetectedRole {
	return s.roles
}

// HasMoreQuestions reports whether any role's issued count is still below
// its quota. Pure; no side effects.
func (s *Session) HasMoreQuestions() bool {
	for _, role := range s.roleOrder {
		if len(s.answered[role]) < s.quota[role] {
			return true
		}
	}
	return false
}

// Complete reports whether every role's quota is satisfied.
func (s *Session) Complete() bool {
	return !s.HasMoreQuestions()
}

// NextQuestion issues the next question, or (nil, nil) once every quota is
// satisfied. The returned question's id is unique within the session unless
// repeats were explicitly allowed after pool exhaustion.
func (s *Session) NextQuestion(ctx context.Context) (*questions.Question, error) {
	if !s.HasMoreQuestions() {
		return nil, nil
	}

	if !s.warmupIssued {
		s.warmupIssued = true
		q := warmupQuestion
		q.Role = s.roleOrder[0]
		s.issue(s.roleOrder[0], q)
		return &q, nil
	}

	role, ok := s.activeRole()
	if !ok {
		return nil, nil
	}

	remaining := s.quota[role] - len(s.answered[role])
	fetchN := remaining + candidateMargin
	if fetchN > candidateCap {
		fetchN = candidateCap
	}

	candidates, err := s.source.FetchForRole(ctx, role, fetchN, s.askedList())
	if err != nil {
		return nil, fmt.Errorf("fetching questions for role %q: %w", role, err)
	}

	if len(candidates) == 0 && s.repeats {
		s.logger.Warn("question pool exhausted, allowing repeats", zap.String("role", role))
		candidates, err = s.source.FetchForRole(ctx, role, fetchN, nil)
		if err != nil {
			return nil, fmt.Errorf("refetching questions for role %q: %w", role, err)
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: role %q", ErrPoolExhausted, role)
	}

	chosen := s.choose(ctx, role, candidates)
	s.issue(role, chosen)
	return &chosen, nil
}

// activeRole returns the role whose turn it is, skipping roles whose quota
// is already met. Roles alternate question by question.
func (s *Session) activeRole() (string, bool) {
	for i := 0; i < len(s.roleOrder); i++ {
		idx := (s.currentRole + i) % len(s.roleOrder)
		role := s.roleOrder[idx]
		if len(s.answered[role]) < s.quota[role] {
			s.currentRole = idx
			return role, true
		}
	}
	return "", false
}

// choose picks one candidate, preferring the selector's ranking and falling
// back to the first candidate on any selector failure.
func (s *Session) choose(ctx context.Context, role string, candidates []questions.Question) questions.Question {
	if s.selector == nil || len(candidates) == 1 {
		return candidates[0]
	}

	id, err := s.selector.SelectBest(ctx, role, candidates)
	if err != nil {
		s.logger.Warn("question selection failed, using first candidate",
			zap.String("role", role),
			zap.Error(err),
		)
		return candidates[0]
	}

	for _, q := range candidates {
		if q.ID == id {
			return q
		}
	}

	return candidates[0]
}

func (s *Session) issue(role string, q questions.Question) {
	s.askedIDs[q.ID] = struct{}{}
	s.askedOrder = append(s.askedOrder, q.ID)
	s.answered[role] = append(s.answered[role], &AnsweredQuestion{Question: q})
	// Hand the next turn to the following role; activeRole skips it if its
	// quota is already met.
	for idx, name := range s.roleOrder {
		if name == role {
			s.currentRole = (idx + 1) % len(s.roleOrder)
			break
		}
	}
}

func (s *Session) askedList() []string {
	out := make([]string, 0, len(s.askedOrder))
	seen := make(map[string]struct{}, len(s.askedOrder))
	for _, id := range s.askedOrder {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AskedIDs returns the ids issued so far, in ask order.
func (s *Session) AskedIDs() []string {
	return append([]string(nil), s.askedOrder...)
}

// Record fills the evaluation outcome of the issued question with the given
// id. Recording an id that was never issued, or recording the same question
// twice, is a caller contract violation and returns an error.
func (s *Session) Record(questionID, answerText string, score int, reasoning string, strengths, weaknesses []string) error {
	var target *AnsweredQuestion
	known := false

	for _, role := range s.roleOrder {
		for _, item := range s.answered[role] {
			if item.Question.ID != questionID {
				continue
			}
			known = true
			if item.Score == nil {
				target = item
				break
			}
		}
		if target != nil {
			break
		}
	}

	if target == nil {
		if known {
			return fmt.Errorf("%w: %s", ErrAlreadyRecorded, questionID)
		}
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	target.AnswerText = &answerText
	target.Score = &score
	target.Reasoning = &reasoning
	target.Strengths = append([]string(nil), strengths...)
	target.Weaknesses = append([]string(nil), weaknesses...)
	return nil
}
