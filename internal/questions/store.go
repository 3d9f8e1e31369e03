package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Embedder converts text into an embedding vector. The store uses it to
// embed ideal answers at seed time and candidate answers at query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// fallbackRoles are tried in order when a role has no questions of its own,
// so a generic candidate (e.g. "General Technical Candidate") can still be
// interviewed.
var fallbackRoles = []string{"Backend Engineer", "Data Scientist", "ML Engineer"}

// Store is the sqlite-backed question source. Reads are safe for concurrent
// use across sessions; writes happen only during seeding.
type Store struct {
	db       *sql.DB
	embedder Embedder
	logger   *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	id                TEXT PRIMARY KEY,
	question          TEXT NOT NULL,
	role              TEXT NOT NULL,
	difficulty        TEXT NOT NULL,
	ideal_answer      TEXT NOT NULL,
	expected_concepts TEXT NOT NULL,
	ideal_embedding   TEXT
);
CREATE INDEX IF NOT EXISTS idx_questions_role ON questions(role);
`

// Open opens (creating if needed) the question store at the given path.
// The embedder may be nil; similarity queries then always return 0.
func Open(path string, embedder Embedder, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open question store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply question store schema: %w", err)
	}

	return &Store{db: db, embedder: embedder, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts the given questions, embedding each ideal answer when an
// embedder is configured. Existing ids are replaced.
func (s *Store) Add(ctx context.Context, qs []Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO questions
			(id, question, role, difficulty, ideal_answer, expected_concepts, ideal_embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range qs {
		q := &qs[i]
		if err := q.Validate(); err != nil {
			return err
		}

		concepts, err := json.Marshal(q.ExpectedConcepts)
		if err != nil {
			return fmt.Errorf("marshal expected concepts for %s: %w", q.ID, err)
		}

		var embedding any
		if s.embedder != nil {
			vec, err := s.embedder.Embed(ctx, q.IdealAnswer)
			if err != nil {
				// A question without an embedding is still usable; the
				// similarity signal degrades to zero for it.
				s.logger.Warn("embedding ideal answer failed",
					zap.String("question_id", q.ID),
					zap.Error(err),
				)
			} else if len(vec) > 0 {
				raw, err := json.Marshal(vec)
				if err != nil {
					return fmt.Errorf("marshal embedding for %s: %w", q.ID, err)
				}
				embedding = string(raw)
			}
		}

		if _, err := stmt.ExecContext(ctx, q.ID, q.Text, q.Role, string(q.Difficulty), q.IdealAnswer, string(concepts), embedding); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}

	return tx.Commit()
}

// FetchForRole returns up to n questions for the role, excluding the given
// ids. When the role has no questions at all, the fallback roles are tried
// in order; fetched questions keep the requested role name for reporting.
func (s *Store) FetchForRole(ctx context.Context, role string, n int, excludeIDs []string) ([]Question, error) {
	if n <= 0 {
		return nil, nil
	}

	fetched, err := s.fetch(ctx, role, n, excludeIDs)
	if err != nil {
		return nil, err
	}

	// A role with no unseen questions left borrows from the fallback roles,
	// so a shallow or missing role pool does not end the interview early.
	if len(fetched) == 0 {
		for _, fb := range fallbackRoles {
			if fb == role {
				continue
			}
			fetched, err = s.fetch(ctx, fb, n, excludeIDs)
			if err != nil {
				return nil, err
			}
			if len(fetched) > 0 {
				s.logger.Info("no unseen questions for role, borrowing from fallback role",
					zap.String("role", role),
					zap.String("fallback_role", fb),
				)
				break
			}
		}
	}

	// Keep the requested role for display and per-role bookkeeping.
	for i := range fetched {
		fetched[i].Role = role
	}

	return fetched, nil
}

func (s *Store) fetch(ctx context.Context, role string, n int, excludeIDs []string) ([]Question, error) {
	query := "SELECT id, question, role, difficulty, ideal_answer, expected_concepts FROM questions WHERE role = ?"
	args := []any{role}

	if len(excludeIDs) > 0 {
		query += " AND id NOT IN (?" + strings.Repeat(",?", len(excludeIDs)-1) + ")"
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	query += " ORDER BY id LIMIT ?"
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch questions for role %q: %w", role, err)
	}
	defer rows.Close()

	var result []Question
	for rows.Next() {
		var q Question
		var difficulty, concepts string
		if err := rows.Scan(&q.ID, &q.Text, &q.Role, &difficulty, &q.IdealAnswer, &concepts); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		q.Difficulty = Difficulty(difficulty)
		if err := json.Unmarshal([]byte(concepts), &q.ExpectedConcepts); err != nil {
			// Legacy rows may hold a bare string instead of a JSON array.
			q.ExpectedConcepts = []string{concepts}
		}
		result = append(result, q)
	}

	return result, rows.Err()
}

// Similarity returns the cosine similarity in [0,1] between the stored ideal
// answer of the question and the candidate answer. It returns 0 when the
// question has no stored embedding or no embedder is configured.
func (s *Store) Similarity(ctx context.Context, questionID, candidateAnswer string) (float64, error) {
	if s.embedder == nil || strings.TrimSpace(candidateAnswer) == "" {
		return 0, nil
	}

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT ideal_embedding FROM questions WHERE id = ?", questionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load embedding for %s: %w", questionID, err)
	}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return 0, nil
	}

	var ideal []float32
	if err := json.Unmarshal([]byte(raw.String), &ideal); err != nil {
		return 0, fmt.Errorf("decode embedding for %s: %w", questionID, err)
	}

	answer, err := s.embedder.Embed(ctx, candidateAnswer)
	if err != nil {
		return 0, fmt.Errorf("embed candidate answer: %w", err)
	}

	return Cosine(ideal, answer), nil
}

// Count returns the number of stored questions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions").Scan(&count)
	return count, err
}

// Cosine computes cosine similarity clamped to [0,1]. Mismatched or empty
// vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
