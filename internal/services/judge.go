package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobfit/resume-matcher/internal/models"
)

var validMatchLevels = map[string]bool{
	MatchHigh:   true,
	MatchMedium: true,
	MatchLow:    true,
	MatchNo:     true,
	MatchNone:   true,
}

// QualitativeJudge asks the reasoning service for per-category qualitative
// judgments of one candidate against one job. It never returns numbers:
// the response contract only decodes match level, ownership, evidence and
// recency, so any scores the model volunteers are dropped on the floor.
type QualitativeJudge interface {
	Judge(ctx context.Context, facts *models.CandidateFacts, spec *models.RequirementSpec) (map[string]CategoryJudgment, error)
}

type qualitativeJudge struct {
	reasoning     ReasoningService
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

func NewQualitativeJudge(reasoning ReasoningService, timeout time.Duration) QualitativeJudge {
	return &qualitativeJudge{
		reasoning:     reasoning,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

// Judge runs one qualitative judgment call under the configured timeout.
// Every failure mode (timeout, transport error, malformed or empty response)
// surfaces as an error wrapping ErrJudgmentUnavailable so the pipeline can
// fall back to the traditional score for this candidate only.
func (q *qualitativeJudge) Judge(ctx context.Context, facts *models.CandidateFacts, spec *models.RequirementSpec) (map[string]CategoryJudgment, error) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	prompt := q.promptBuilder.BuildJudgmentPrompt(facts, spec)
	response, err := q.reasoning.GenerateText(ctx, prompt, 0.1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgmentUnavailable, err)
	}

	var raw map[string]CategoryJudgment
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrJudgmentUnavailable, err)
	}

	judgments := make(map[string]CategoryJudgment, len(raw))
	for category, judgment := range raw {
		if !knownCategory(category) {
			continue
		}

		judgment.MatchLevel = normalizeLevel(judgment.MatchLevel)
		judgment.Ownership = normalizeLevel(judgment.Ownership)

		// match_level is semantically important; missing or unknown values
		// are a validation failure, never silently defaulted.
		if !validMatchLevels[judgment.MatchLevel] {
			return nil, fmt.Errorf("%w: invalid match level %q for category %q", ErrJudgmentUnavailable, judgment.MatchLevel, category)
		}
		if judgment.Ownership == "" {
			judgment.Ownership = OwnershipNone
		}

		judgments[category] = judgment
	}

	if len(judgments) == 0 {
		return nil, fmt.Errorf("%w: response contained no known categories", ErrJudgmentUnavailable)
	}

	return judgments, nil
}

func knownCategory(name string) bool {
	for _, category := range models.RequirementCategories {
		if category == name {
			return true
		}
	}
	return false
}
