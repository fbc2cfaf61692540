package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobfit/resume-matcher/internal/models"
)

func screeningFacts() *models.CandidateFacts {
	return &models.CandidateFacts{
		Name:            "Test Candidate",
		Skills:          []string{"palo alto", "fortinet", "siem", "python"},
		ExperienceYears: 6,
		RawText:         "Senior network security engineer. Led incident response and firewall migrations across two data centers.",
	}
}

func screeningSpec() *models.RequirementSpec {
	return &models.RequirementSpec{
		RequiredSkills:     []string{"palo alto", "siem", "bgp"},
		Keywords:           []string{"incident response", "firewall"},
		MinExperienceYears: 8,
	}
}

func TestTraditionalScoreDeterministic(t *testing.T) {
	facts := screeningFacts()
	spec := screeningSpec()

	first := TraditionalScore(facts, spec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TraditionalScore(facts, spec))
	}
}

func TestTraditionalScoreBounds(t *testing.T) {
	cases := []struct {
		name  string
		facts *models.CandidateFacts
		spec  *models.RequirementSpec
	}{
		{"empty candidate", &models.CandidateFacts{}, screeningSpec()},
		{"empty spec", screeningFacts(), &models.RequirementSpec{}},
		{"both empty", &models.CandidateFacts{}, &models.RequirementSpec{}},
		{"full match", screeningFacts(), screeningSpec()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := TraditionalScore(tc.facts, tc.spec)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		})
	}
}

func TestSkillMatchScoreNoRequiredSkills(t *testing.T) {
	assert.Equal(t, 70.0, SkillMatchScore([]string{"anything"}, nil))
	assert.Equal(t, 70.0, SkillMatchScore(nil, nil))
}

func TestSkillMatchScoreSubstringBothDirections(t *testing.T) {
	// Candidate skill contained in required skill.
	assert.Equal(t, 100.0, SkillMatchScore([]string{"palo alto"}, []string{"palo alto networks"}))
	// Required skill contained in candidate skill.
	assert.Equal(t, 100.0, SkillMatchScore([]string{"palo alto networks ngfw"}, []string{"palo alto networks"}))
}

func TestSkillMatchScoreWordOverlap(t *testing.T) {
	// No substring either way, but half the required words appear.
	score := SkillMatchScore([]string{"checkpoint threat analysis"}, []string{"threat analysis response automation"})
	assert.Equal(t, 100.0, score)
}

func TestSkillMatchScorePartialCoverage(t *testing.T) {
	score := SkillMatchScore([]string{"siem"}, []string{"siem", "bgp", "kubernetes", "terraform"})
	assert.Equal(t, 25.0, score)
}

func TestSkillMatchScoreMonotonicUnderSupersets(t *testing.T) {
	required := []string{"siem", "bgp", "kubernetes"}
	smaller := SkillMatchScore([]string{"siem"}, required)
	larger := SkillMatchScore([]string{"siem", "bgp"}, required)
	assert.GreaterOrEqual(t, larger, smaller)
}

func TestExperienceMatchScore(t *testing.T) {
	assert.Equal(t, 100.0, ExperienceMatchScore(10, 0))
	assert.Equal(t, 100.0, ExperienceMatchScore(10, -1))
	assert.Equal(t, 100.0, ExperienceMatchScore(8, 8))
	assert.Equal(t, 100.0, ExperienceMatchScore(12, 8))

	// Below the bar: linear partial credit with a floor of 20.
	assert.Equal(t, 80.0, ExperienceMatchScore(6, 8))
	assert.Equal(t, 20.0, ExperienceMatchScore(0, 8))
	assert.Equal(t, 20.0, ExperienceMatchScore(-3, 8))
}

func TestKeywordMatchScoreNoKeywords(t *testing.T) {
	assert.Equal(t, 70.0, KeywordMatchScore("any resume text", nil))
}

func TestKeywordMatchScoreMultiWordFallback(t *testing.T) {
	text := "Handled every incident personally and coordinated the response team."
	// Not a contiguous substring, but all significant words are present.
	assert.Equal(t, 100.0, KeywordMatchScore(text, []string{"incident response"}))
}

func TestKeywordMatchScoreCaseInsensitive(t *testing.T) {
	assert.Equal(t, 100.0, KeywordMatchScore("Deployed FIREWALL rules", []string{"Firewall"}))
}

func TestKeywordMatchScoreMissing(t *testing.T) {
	assert.Equal(t, 0.0, KeywordMatchScore("unrelated text", []string{"pci-dss"}))
	assert.Equal(t, 50.0, KeywordMatchScore("sox controls documented", []string{"sox", "hipaa"}))
}
