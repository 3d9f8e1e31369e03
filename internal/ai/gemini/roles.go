package gemini

import (
	"context"
	"encoding/json"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/avoran/interview-agent/internal/ai"
)

//go:embed roles_prompt.md
var rolesPromptTemplate string

const (
	maxDetectedRoles = 2
	fallbackRoleName = "General Technical Candidate"
)

// RoleExtractor infers target roles from résumé text via Gemini. It never
// fails on malformed model output; it degrades to a single generic role.
type RoleExtractor struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewRoleExtractor(generator contentGenerator, log *zap.Logger) *RoleExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleExtractor{generator: generator, logger: log}
}

func (r *RoleExtractor) ExtractRoles(ctx context.Context, resumeText string) ([]ai.DetectedRole, error) {
	prompt := strings.ReplaceAll(rolesPromptTemplate, "{{RESUME_TEXT}}", resumeText)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var data struct {
		Roles []map[string]any `json:"roles"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		r.logger.Warn("role extraction response is not valid JSON, using fallback role", zap.Error(err))
		return []ai.DetectedRole{fallbackRole("Fallback role due to parsing error.")}, nil
	}

	roles := make([]ai.DetectedRole, 0, maxDetectedRoles)
	for _, item := range data.Roles {
		if len(roles) == maxDetectedRoles {
			break
		}

		var role ai.DetectedRole
		if err := mapstructure.WeakDecode(item, &role); err != nil {
			r.logger.Warn("skipping undecodable role entry", zap.Error(err))
			continue
		}

		role.Name = strings.TrimSpace(role.Name)
		if role.Name == "" {
			role.Name = fallbackRoleName
		}
		if role.Confidence < 0 {
			role.Confidence = 0
		}
		if role.Confidence > 1 {
			role.Confidence = 1
		}

		roles = append(roles, role)
	}

	if len(roles) == 0 {
		roles = append(roles, fallbackRole("Default role when no roles were returned."))
	}

	return roles, nil
}

func fallbackRole(rationale string) ai.DetectedRole {
	return ai.DetectedRole{
		Name:       fallbackRoleName,
		Confidence: 0.5,
		Rationale:  rationale,
	}
}
