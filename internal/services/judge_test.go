package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfit/resume-matcher/internal/models"
)

func TestJudgeDecodesQualitativeFieldsOnly(t *testing.T) {
	// The model volunteering numeric scores is a known failure mode; they
	// must never survive decoding.
	response := `{
		"core_technical_skills": {"match_level": "HIGH", "ownership": "LED", "evidence": "built the SIEM", "recent": true, "score": 97.5},
		"experience_seniority": {"match_level": "medium", "ownership": "owned", "evidence": "8 years", "weight": 40}
	}`
	judge := NewQualitativeJudge(&stubReasoning{response: response}, time.Minute)

	judgments, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
	require.NoError(t, err)
	require.Len(t, judgments, 2)

	core := judgments[models.CategoryCoreTechnicalSkills]
	assert.Equal(t, MatchHigh, core.MatchLevel)
	assert.Equal(t, OwnershipLed, core.Ownership)
	assert.Equal(t, "built the SIEM", core.Evidence)
	assert.True(t, core.IsRecent())

	// Lowercase levels are normalized on the way in.
	exp := judgments[models.CategoryExperienceSeniority]
	assert.Equal(t, MatchMedium, exp.MatchLevel)
	assert.Equal(t, OwnershipOwned, exp.Ownership)
}

func TestJudgeDropsUnknownCategories(t *testing.T) {
	response := `{
		"core_technical_skills": {"match_level": "HIGH", "ownership": "LED"},
		"astrology": {"match_level": "HIGH", "ownership": "LED"}
	}`
	judge := NewQualitativeJudge(&stubReasoning{response: response}, time.Minute)

	judgments, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
	require.NoError(t, err)
	require.Len(t, judgments, 1)
	_, ok := judgments["astrology"]
	assert.False(t, ok)
}

func TestJudgeInvalidMatchLevel(t *testing.T) {
	for _, response := range []string{
		`{"core_technical_skills": {"match_level": "EXCELLENT", "ownership": "LED"}}`,
		`{"core_technical_skills": {"ownership": "LED"}}`,
	} {
		judge := NewQualitativeJudge(&stubReasoning{response: response}, time.Minute)
		_, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
		assert.ErrorIs(t, err, ErrJudgmentUnavailable, "response %q", response)
	}
}

func TestJudgeMissingOwnershipDefaultsToNone(t *testing.T) {
	response := `{"core_technical_skills": {"match_level": "LOW"}}`
	judge := NewQualitativeJudge(&stubReasoning{response: response}, time.Minute)

	judgments, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
	require.NoError(t, err)
	assert.Equal(t, OwnershipNone, judgments[models.CategoryCoreTechnicalSkills].Ownership)
}

func TestJudgeTransportFailure(t *testing.T) {
	judge := NewQualitativeJudge(&stubReasoning{err: errors.New("rate limited")}, time.Minute)

	_, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
	assert.ErrorIs(t, err, ErrJudgmentUnavailable)
}

func TestJudgeMalformedResponse(t *testing.T) {
	judge := NewQualitativeJudge(&stubReasoning{response: "I cannot judge this candidate."}, time.Minute)

	_, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
	assert.ErrorIs(t, err, ErrJudgmentUnavailable)
}

func TestJudgeNoKnownCategories(t *testing.T) {
	judge := NewQualitativeJudge(&stubReasoning{response: `{"astrology": {"match_level": "HIGH"}}`}, time.Minute)

	_, err := judge.Judge(context.Background(), screeningFacts(), scoringSpec())
	assert.ErrorIs(t, err, ErrJudgmentUnavailable)
}
