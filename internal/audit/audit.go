// Package audit persists per-run interview artifacts as JSON files so a
// reviewer can inspect the raw transcript and scores after the fact.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/interview"
	"github.com/avoran/interview-agent/internal/report"
)

const (
	answersPrefix    = "interview_answers"
	evaluationPrefix = "interview_evaluation"
)

// Writer saves run artifacts under a single directory. Every writer gets a
// fresh run id, so artifacts of one run share a suffix and never collide
// with another run's.
type Writer struct {
	dir    string
	runID  string
	logger *zap.Logger
}

func NewWriter(dir string, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir %s: %w", dir, err)
	}
	return &Writer{
		dir:    dir,
		runID:  uuid.NewString(),
		logger: log,
	}, nil
}

// RunID returns this run's artifact suffix.
func (w *Writer) RunID() string {
	return w.runID
}

// SaveAnswers persists the full session transcript.
func (w *Writer) SaveAnswers(export interview.Export) (string, error) {
	return w.save(answersPrefix, export)
}

// SaveEvaluation persists the final report.
func (w *Writer) SaveEvaluation(rep report.Report) (string, error) {
	return w.save(evaluationPrefix, rep)
}

func (w *Writer) save(prefix string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s artifact: %w", prefix, err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.json", prefix, w.runID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s artifact: %w", prefix, err)
	}

	w.logger.Debug("audit artifact saved", zap.String("path", path))
	return path, nil
}
