package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestNormalizeSkills(t *testing.T) {
	normalized := NormalizeSkills([]string{" Palo Alto ", "SIEM", "palo alto", "", "Python"})
	assert.Equal(t, []string{"palo alto", "siem", "python"}, normalized)
}

func TestFactsRoundTrip(t *testing.T) {
	profile := CandidateProfile{
		ID:              uuid.New(),
		Name:            "Alice",
		ExperienceYears: -2,
		ResumePages:     3,
		RawText:         "resume text",
	}
	require.NoError(t, profile.SetSkills([]string{"Palo Alto", "SIEM"}))
	require.NoError(t, profile.SetCertifications([]string{"CISSP"}))

	facts, err := profile.Facts()
	require.NoError(t, err)

	assert.Equal(t, profile.ID, facts.CandidateID)
	assert.Equal(t, []string{"palo alto", "siem"}, facts.Skills)
	assert.Equal(t, []string{"CISSP"}, facts.Certifications)
	// Negative experience is a data entry artifact, not a scorable value.
	assert.Equal(t, 0.0, facts.ExperienceYears)
	assert.Equal(t, 3, facts.ResumePages)
}

func TestFactsMalformedSkills(t *testing.T) {
	profile := CandidateProfile{ID: uuid.New(), Skills: datatypes.JSON("{not json")}
	_, err := profile.Facts()
	assert.Error(t, err)
}
