package questions

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func openTestStore(t *testing.T, embedder Embedder) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "questions.db"), embedder, zap.NewNop())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleQuestions() []Question {
	return []Question{
		{
			ID:               "backend_1",
			Text:             "Explain horizontal vs vertical scaling.",
			Role:             "Backend Engineer",
			Difficulty:       Medium,
			IdealAnswer:      "Horizontal adds machines, vertical adds resources.",
			ExpectedConcepts: []string{"scaling"},
		},
		{
			ID:               "backend_2",
			Text:             "What are ACID properties?",
			Role:             "Backend Engineer",
			Difficulty:       Easy,
			IdealAnswer:      "Atomicity, consistency, isolation, durability.",
			ExpectedConcepts: []string{"ACID"},
		},
		{
			ID:               "ds_1",
			Text:             "Explain the bias-variance trade-off.",
			Role:             "Data Scientist",
			Difficulty:       Easy,
			IdealAnswer:      "Balance underfitting against overfitting.",
			ExpectedConcepts: []string{"bias", "variance"},
		},
	}
}

func TestFetchForRoleHonorsExclusions(t *testing.T) {
	store := openTestStore(t, nil)
	ctx := context.Background()

	if err := store.Add(ctx, sampleQuestions()); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	fetched, err := store.FetchForRole(ctx, "Backend Engineer", 5, []string{"backend_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fetched) != 1 {
		t.Fatalf("expected 1 question, got %d", len(fetched))
	}

	if fetched[0].ID != "backend_2" {
		t.Fatalf("expected backend_2, got %s", fetched[0].ID)
	}

	if len(fetched[0].ExpectedConcepts) != 1 || fetched[0].ExpectedConcepts[0] != "ACID" {
		t.Fatalf("expected concepts round-trip, got %v", fetched[0].ExpectedConcepts)
	}
}

func TestFetchForRoleFallback(t *testing.T) {
	store := openTestStore(t, nil)
	ctx := context.Background()

	if err := store.Add(ctx, sampleQuestions()); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	fetched, err := store.FetchForRole(ctx, "General Technical Candidate", 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fetched) != 2 {
		t.Fatalf("expected fallback questions, got %d", len(fetched))
	}

	// The requested role is kept for reporting even when borrowing.
	for _, q := range fetched {
		if q.Role != "General Technical Candidate" {
			t.Fatalf("expected requested role to be kept, got %q", q.Role)
		}
	}
}

func TestFetchForRoleBorrowsWhenExhausted(t *testing.T) {
	store := openTestStore(t, nil)
	ctx := context.Background()

	if err := store.Add(ctx, sampleQuestions()); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	// Every Data Scientist question has been asked already; the fetch must
	// borrow unseen Backend Engineer questions instead of coming back empty.
	fetched, err := store.FetchForRole(ctx, "Data Scientist", 2, []string{"ds_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fetched) != 2 {
		t.Fatalf("expected 2 borrowed questions, got %d", len(fetched))
	}

	for _, q := range fetched {
		if q.ID == "ds_1" {
			t.Fatalf("excluded question %s was returned", q.ID)
		}
		if q.Role != "Data Scientist" {
			t.Fatalf("expected requested role to be kept, got %q", q.Role)
		}
	}
}

func TestFetchForRoleEmptyPool(t *testing.T) {
	store := openTestStore(t, nil)

	fetched, err := store.FetchForRole(context.Background(), "Backend Engineer", 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fetched) != 0 {
		t.Fatalf("expected no questions, got %d", len(fetched))
	}
}

func TestSimilarity(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Horizontal adds machines, vertical adds resources.": {1, 0},
		"You add more machines.":                             {1, 0},
		"Completely unrelated.":                              {0, 1},
	}}
	store := openTestStore(t, embedder)
	ctx := context.Background()

	if err := store.Add(ctx, sampleQuestions()[:1]); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	sim, err := store.Similarity(ctx, "backend_1", "You add more machines.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim-1) > 1e-9 {
		t.Fatalf("expected similarity 1, got %v", sim)
	}

	sim, err = store.Similarity(ctx, "backend_1", "Completely unrelated.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim != 0 {
		t.Fatalf("expected similarity 0, got %v", sim)
	}
}

func TestSimilarityEmptyAnswerAndUnknownID(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("should not be called")}
	store := openTestStore(t, embedder)
	ctx := context.Background()

	sim, err := store.Similarity(ctx, "backend_1", "   ")
	if err != nil || sim != 0 {
		t.Fatalf("expected 0 similarity for blank answer, got %v (%v)", sim, err)
	}

	embedder.err = nil
	sim, err = store.Similarity(ctx, "missing", "anything")
	if err != nil || sim != 0 {
		t.Fatalf("expected 0 similarity for unknown id, got %v (%v)", sim, err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float32
		expect float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expect: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expect: 0},
		{name: "opposite clamps to zero", a: []float32{1, 0}, b: []float32{-1, 0}, expect: 0},
		{name: "length mismatch", a: []float32{1, 0}, b: []float32{1}, expect: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestDefaultCorpus(t *testing.T) {
	qs, err := DefaultCorpus()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(qs) == 0 {
		t.Fatal("expected built-in corpus to contain questions")
	}

	roles := make(map[string]int)
	for _, q := range qs {
		roles[q.Role]++
	}

	if roles["Backend Engineer"] == 0 || roles["Data Scientist"] == 0 {
		t.Fatalf("expected corpus to cover common roles, got %v", roles)
	}
}
