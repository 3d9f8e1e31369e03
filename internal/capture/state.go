// Package capture tracks voice activity while a candidate answers. It holds
// the rolling audio window and the speech/silence timers the driver uses to
// decide when an answer is finished.
package capture

import (
	"math"
	"sync"
	"time"
)

// SpeechThreshold is the RMS energy above which a frame counts as speech.
const SpeechThreshold = 0.01

// MaxWindow bounds the retained audio to the most recent minute.
const MaxWindow = 60 * time.Second

// Recorder accumulates audio frames for the current question and tracks
// speech activity. Safe for concurrent use: the audio callback feeds frames
// while the driver polls the timers.
type Recorder struct {
	mu sync.Mutex

	questionID string
	sampleRate int
	samples    []float32

	startedAt  time.Time
	lastSpeech time.Time
	spoke      bool

	now func() time.Time
}

func NewRecorder(sampleRate int) *Recorder {
	return &Recorder{
		sampleRate: sampleRate,
		now:        time.Now,
	}
}

// Reset discards any buffered audio and restarts the timers for a new
// question.
func (r *Recorder) Reset(questionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.questionID = questionID
	r.samples = nil
	r.startedAt = r.now()
	r.lastSpeech = time.Time{}
	r.spoke = false
}

// QuestionID returns the id the recorder is currently capturing for.
func (r *Recorder) QuestionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questionID
}

// ProcessFrame appends one audio frame, classifies it as speech or silence
// by RMS energy, and trims the buffer to the retention window. It reports
// whether the frame contained speech.
func (r *Recorder) ProcessFrame(frame []float32) bool {
	if len(frame) == 0 {
		return false
	}

	speech := rms(frame) >= SpeechThreshold

	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, frame...)
	if max := int(MaxWindow.Seconds()) * r.sampleRate; len(r.samples) > max {
		r.samples = r.samples[len(r.samples)-max:]
	}

	if speech {
		r.spoke = true
		r.lastSpeech = r.now()
	}
	return speech
}

// Elapsed returns how long the current question has been open.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startedAt.IsZero() {
		return 0
	}
	return r.now().Sub(r.startedAt)
}

// SilenceFor returns how long it has been since the last speech frame.
// Before any speech it measures from the question start.
func (r *Recorder) SilenceFor() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := r.lastSpeech
	if since.IsZero() {
		since = r.startedAt
	}
	if since.IsZero() {
		return 0
	}
	return r.now().Sub(since)
}

// Speaking reports whether speech has been detected for the current
// question.
func (r *Recorder) Speaking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spoke
}

// Consume returns the buffered audio and clears the buffer. The timers keep
// running; only Reset restarts them.
func (r *Recorder) Consume() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.samples
	r.samples = nil
	return out
}

func rms(frame []float32) float64 {
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
