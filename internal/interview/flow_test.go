package interview

import (
	"testing"
	"time"
)

func TestFlowHappyPath(t *testing.T) {
	f := NewFlow()

	if got := f.Phase().Kind; got != PhaseNotStarted {
		t.Fatalf("initial phase = %s, want %s", got, PhaseNotStarted)
	}

	if err := f.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := f.BeginQuestion("q1"); err != nil {
		t.Fatalf("BeginQuestion() error: %v", err)
	}
	if got := f.Phase(); got.Kind != PhaseAwaitingAnswer || got.QuestionID != "q1" {
		t.Fatalf("phase = %+v, want awaiting_answer for q1", got)
	}

	if err := f.GiveFeedback("well explained"); err != nil {
		t.Fatalf("GiveFeedback() error: %v", err)
	}
	if got := f.Phase(); got.Kind != PhaseFeedback || got.FeedbackText != "well explained" {
		t.Fatalf("phase = %+v, want feedback phase with text", got)
	}

	if err := f.BeginQuestion("q2"); err != nil {
		t.Fatalf("BeginQuestion() after feedback error: %v", err)
	}
	if err := f.Finish(); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if got := f.Phase().Kind; got != PhaseCompleted {
		t.Fatalf("final phase = %s, want %s", got, PhaseCompleted)
	}
}

func TestFlowIllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(f *Flow) error
	}{
		{
			name: "question before start",
			run: func(f *Flow) error {
				return f.BeginQuestion("q1")
			},
		},
		{
			name: "feedback before a question",
			run: func(f *Flow) error {
				if err := f.Start(); err != nil {
					t.Fatal(err)
				}
				return f.GiveFeedback("nope")
			},
		},
		{
			name: "start twice",
			run: func(f *Flow) error {
				if err := f.Start(); err != nil {
					t.Fatal(err)
				}
				return f.Start()
			},
		},
		{
			name: "finish from not started",
			run: func(f *Flow) error {
				return f.Finish()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFlow()
			if err := tt.run(f); err == nil {
				t.Error("expected transition error, got nil")
			}
		})
	}
}

func TestFlowStampsStartedAt(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFlow()
	f.now = func() time.Time { return fixed }

	if err := f.Start(); err != nil {
		t.Fatal(err)
	}
	if err := f.BeginQuestion("q1"); err != nil {
		t.Fatal(err)
	}
	if got := f.Phase().StartedAt; !got.Equal(fixed) {
		t.Errorf("StartedAt = %v, want %v", got, fixed)
	}
}
