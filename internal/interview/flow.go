package interview

import (
	"fmt"
	"time"
)

// PhaseKind enumerates the driver-facing phases of an interview.
type PhaseKind int

const (
	PhaseNotStarted PhaseKind = iota
	PhaseIntro
	PhaseAwaitingAnswer
	PhaseFeedback
	PhaseCompleted
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseNotStarted:
		return "not_started"
	case PhaseIntro:
		return "intro"
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseFeedback:
		return "feedback"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Phase is the tagged state of the interview flow. QuestionID is set only in
// PhaseAwaitingAnswer, FeedbackText only in PhaseFeedback.
type Phase struct {
	Kind         PhaseKind
	QuestionID   string
	FeedbackText string
	StartedAt    time.Time
}

// Flow is the single authoritative phase machine for an interview run. All
// phase changes go through its transition methods; illegal transitions are
// errors, not silent state edits.
type Flow struct {
	phase Phase
	now   func() time.Time
}

func NewFlow() *Flow {
	return &Flow{
		phase: Phase{Kind: PhaseNotStarted},
		now:   time.Now,
	}
}

// Phase returns the current phase.
func (f *Flow) Phase() Phase {
	return f.phase
}

// Start moves the flow from NotStarted into Intro.
func (f *Flow) Start() error {
	return f.transition(Phase{Kind: PhaseIntro}, PhaseNotStarted)
}

// BeginQuestion moves into AwaitingAnswer for the given question.
func (f *Flow) BeginQuestion(questionID string) error {
	return f.transition(Phase{Kind: PhaseAwaitingAnswer, QuestionID: questionID}, PhaseIntro, PhaseFeedback)
}

// GiveFeedback moves from AwaitingAnswer into Feedback with the given text.
func (f *Flow) GiveFeedback(text string) error {
	return f.transition(Phase{Kind: PhaseFeedback, FeedbackText: text}, PhaseAwaitingAnswer)
}

// Finish moves the flow into its terminal Completed phase.
func (f *Flow) Finish() error {
	return f.transition(Phase{Kind: PhaseCompleted}, PhaseIntro, PhaseAwaitingAnswer, PhaseFeedback)
}

func (f *Flow) transition(next Phase, validFrom ...PhaseKind) error {
	for _, kind := range validFrom {
		if f.phase.Kind == kind {
			next.StartedAt = f.now()
			f.phase = next
			return nil
		}
	}
	return fmt.Errorf("invalid transition: %s -> %s", f.phase.Kind, next.Kind)
}
