package services

import (
	"context"
	"encoding/json"
	"fmt"

	"jobfit/resume-matcher/internal/models"
)

// ParsedResume is the structured output of resume parsing.
type ParsedResume struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Location        string   `json:"location"`
	Education       string   `json:"education"`
	ExperienceYears float64  `json:"experience_years"`
	Skills          []string `json:"skills"`
	Certifications  []string `json:"certifications"`
}

type ResumeParserService interface {
	Parse(ctx context.Context, resumeText string) (*ParsedResume, error)
}

type resumeParserService struct {
	reasoning     ReasoningService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewResumeParserService(reasoning ReasoningService, maxRetries int) ResumeParserService {
	return &resumeParserService{
		reasoning:     reasoning,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// Parse extracts structured candidate facts from raw resume text.
func (p *resumeParserService) Parse(ctx context.Context, resumeText string) (*ParsedResume, error) {
	prompt := p.promptBuilder.BuildResumeParsePrompt(resumeText)

	response, err := p.reasoning.GenerateTextWithRetry(ctx, prompt, 0.1, p.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}

	var parsed ParsedResume
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed resume: %w", err)
	}

	parsed.Skills = models.NormalizeSkills(parsed.Skills)
	if parsed.ExperienceYears < 0 {
		parsed.ExperienceYears = 0
	}

	return &parsed, nil
}
