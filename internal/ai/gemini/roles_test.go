package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestExtractRoles(t *testing.T) {
	stub := &stubGenerator{response: `{"roles": [
		{"name": "Backend Engineer", "confidence": 0.92, "rationale": "Go and Postgres experience"},
		{"name": "DevOps Engineer", "confidence": "0.6", "rationale": "Kubernetes exposure"},
		{"name": "Frontend Engineer", "confidence": 0.4, "rationale": "dropped, beyond two"}
	]}`}
	extractor := NewRoleExtractor(stub, zap.NewNop())

	roles, err := extractor.ExtractRoles(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}

	if roles[0].Name != "Backend Engineer" || roles[0].Confidence != 0.92 {
		t.Fatalf("unexpected first role: %+v", roles[0])
	}

	// Confidence provided as a string is weakly decoded.
	if roles[1].Name != "DevOps Engineer" || roles[1].Confidence != 0.6 {
		t.Fatalf("unexpected second role: %+v", roles[1])
	}

	if !strings.Contains(stub.lastPrompt, "resume text") {
		t.Fatal("expected resume text to be embedded in prompt")
	}
}

func TestExtractRolesMalformedResponse(t *testing.T) {
	stub := &stubGenerator{response: "not json at all"}
	extractor := NewRoleExtractor(stub, zap.NewNop())

	roles, err := extractor.ExtractRoles(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roles) != 1 || roles[0].Name != fallbackRoleName {
		t.Fatalf("expected fallback role, got %+v", roles)
	}

	if roles[0].Confidence != 0.5 {
		t.Fatalf("expected fallback confidence 0.5, got %v", roles[0].Confidence)
	}
}

func TestExtractRolesEmptyList(t *testing.T) {
	stub := &stubGenerator{response: `{"roles": []}`}
	extractor := NewRoleExtractor(stub, zap.NewNop())

	roles, err := extractor.ExtractRoles(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roles) != 1 || roles[0].Name != fallbackRoleName {
		t.Fatalf("expected fallback role, got %+v", roles)
	}
}

func TestExtractRolesClampsConfidence(t *testing.T) {
	stub := &stubGenerator{response: `{"roles": [{"name": "SDET", "confidence": 1.7, "rationale": "test automation"}]}`}
	extractor := NewRoleExtractor(stub, zap.NewNop())

	roles, err := extractor.ExtractRoles(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if roles[0].Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", roles[0].Confidence)
	}
}

func TestExtractRolesGeneratorFailure(t *testing.T) {
	stub := &stubGenerator{err: errors.New("network down")}
	extractor := NewRoleExtractor(stub, zap.NewNop())

	if _, err := extractor.ExtractRoles(context.Background(), "resume text"); err == nil {
		t.Fatal("expected error when generator fails")
	}
}
