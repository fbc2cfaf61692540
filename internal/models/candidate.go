package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CandidateProfile struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string         `gorm:"type:text" json:"name"`
	Email           string         `gorm:"type:text" json:"email"`
	Role            string         `gorm:"type:text" json:"role"`
	Location        string         `gorm:"type:text" json:"location"`
	Education       string         `gorm:"type:text" json:"education"`
	SourceType      string         `gorm:"type:text;default:'upload';index" json:"source_type"`
	Skills          datatypes.JSON `gorm:"type:jsonb" json:"skills"`
	Certifications  datatypes.JSON `gorm:"type:jsonb" json:"certifications"`
	ExperienceYears float64        `gorm:"not null;default:0" json:"experience_years"`
	ResumePages     int            `gorm:"not null;default:0" json:"resume_pages"`
	RawText         string         `gorm:"type:text" json:"-"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}

// CandidateFacts is the flat, normalized view of a profile consumed by the
// scorers. Skills are lowercase and deduplicated, experience is never
// negative.
type CandidateFacts struct {
	CandidateID     uuid.UUID
	Name            string
	Role            string
	Location        string
	Education       string
	Skills          []string
	Certifications  []string
	ExperienceYears float64
	ResumePages     int
	RawText         string
}

// Facts decodes and normalizes the profile for scoring.
func (c *CandidateProfile) Facts() (*CandidateFacts, error) {
	facts := &CandidateFacts{
		CandidateID:     c.ID,
		Name:            c.Name,
		Role:            c.Role,
		Location:        c.Location,
		Education:       c.Education,
		ExperienceYears: c.ExperienceYears,
		ResumePages:     c.ResumePages,
		RawText:         c.RawText,
	}
	if facts.ExperienceYears < 0 {
		facts.ExperienceYears = 0
	}

	var skills []string
	if len(c.Skills) > 0 {
		if err := json.Unmarshal(c.Skills, &skills); err != nil {
			return nil, fmt.Errorf("failed to decode candidate skills: %w", err)
		}
	}
	facts.Skills = NormalizeSkills(skills)

	if len(c.Certifications) > 0 {
		if err := json.Unmarshal(c.Certifications, &facts.Certifications); err != nil {
			return nil, fmt.Errorf("failed to decode candidate certifications: %w", err)
		}
	}

	return facts, nil
}

// SetSkills stores a normalized skill list on the profile.
func (c *CandidateProfile) SetSkills(skills []string) error {
	data, err := json.Marshal(NormalizeSkills(skills))
	if err != nil {
		return fmt.Errorf("failed to encode candidate skills: %w", err)
	}
	c.Skills = data
	return nil
}

// SetCertifications stores the certification list on the profile.
func (c *CandidateProfile) SetCertifications(certs []string) error {
	data, err := json.Marshal(certs)
	if err != nil {
		return fmt.Errorf("failed to encode candidate certifications: %w", err)
	}
	c.Certifications = data
	return nil
}

// NormalizeSkills lowercases, trims and deduplicates a skill list, preserving
// first-seen order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	normalized := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		normalized = append(normalized, skill)
	}
	return normalized
}
