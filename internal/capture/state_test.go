package capture

import (
	"testing"
	"time"
)

func frameOf(value float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func clockAt(start time.Time) (*time.Time, func() time.Time) {
	current := start
	return &current, func() time.Time { return current }
}

func TestProcessFrameClassifiesByEnergy(t *testing.T) {
	tests := []struct {
		name   string
		frame  []float32
		speech bool
	}{
		{name: "silence", frame: frameOf(0, 160), speech: false},
		{name: "just below threshold", frame: frameOf(0.009, 160), speech: false},
		{name: "speech", frame: frameOf(0.05, 160), speech: true},
		{name: "empty frame", frame: nil, speech: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecorder(16000)
			r.Reset("q1")
			if got := r.ProcessFrame(tt.frame); got != tt.speech {
				t.Errorf("ProcessFrame() = %v, want %v", got, tt.speech)
			}
			if got := r.Speaking(); got != tt.speech {
				t.Errorf("Speaking() = %v, want %v", got, tt.speech)
			}
		})
	}
}

func TestTimers(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	current, now := clockAt(start)

	r := NewRecorder(16000)
	r.now = now
	r.Reset("q1")

	// Silence accrues from the question start before any speech.
	*current = start.Add(3 * time.Second)
	if got := r.SilenceFor(); got != 3*time.Second {
		t.Errorf("SilenceFor() before speech = %v, want 3s", got)
	}

	r.ProcessFrame(frameOf(0.05, 160))

	*current = start.Add(5 * time.Second)
	if got := r.SilenceFor(); got != 2*time.Second {
		t.Errorf("SilenceFor() after speech = %v, want 2s", got)
	}
	if got := r.Elapsed(); got != 5*time.Second {
		t.Errorf("Elapsed() = %v, want 5s", got)
	}
}

func TestResetClearsState(t *testing.T) {
	r := NewRecorder(16000)
	r.Reset("q1")
	r.ProcessFrame(frameOf(0.05, 160))

	r.Reset("q2")

	if r.Speaking() {
		t.Error("Speaking() = true after Reset")
	}
	if got := r.QuestionID(); got != "q2" {
		t.Errorf("QuestionID() = %q, want q2", got)
	}
	if got := r.Consume(); len(got) != 0 {
		t.Errorf("Consume() after Reset returned %d samples, want 0", len(got))
	}
}

func TestConsumeDrainsBuffer(t *testing.T) {
	r := NewRecorder(16000)
	r.Reset("q1")
	r.ProcessFrame(frameOf(0.05, 160))
	r.ProcessFrame(frameOf(0, 160))

	if got := r.Consume(); len(got) != 320 {
		t.Errorf("Consume() returned %d samples, want 320", len(got))
	}
	if got := r.Consume(); len(got) != 0 {
		t.Errorf("second Consume() returned %d samples, want 0", len(got))
	}
}

func TestWindowIsBounded(t *testing.T) {
	// A tiny sample rate keeps the test fast: the retention window is
	// 60 samples at 1 Hz.
	r := NewRecorder(1)
	r.Reset("q1")

	for i := 0; i < 10; i++ {
		r.ProcessFrame(frameOf(0, 10))
	}

	if got := r.Consume(); len(got) != 60 {
		t.Errorf("retained %d samples, want window of 60", len(got))
	}
}
