package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	// MethodDeterministic marks a result produced by the full judge +
	// deterministic scorer path.
	MethodDeterministic = "deterministic_v1"
	// MethodTraditionalFallback marks a result degraded to the traditional
	// score because the qualitative judgment was unavailable.
	MethodTraditionalFallback = "traditional_fallback"
)

// Role-fit labels derived from the overall score bands.
const (
	RoleFitStrong  = "Strong Fit"
	RoleFitPartial = "Partial Fit"
	RoleFitWeak    = "Weak Fit"
)

// SectionScore is one category's contribution to the overall score, bounded
// by the category's weight.
type SectionScore struct {
	Score      float64 `json:"score"`
	Max        int     `json:"max"`
	MatchLevel string  `json:"match_level"`
	Ownership  string  `json:"ownership"`
	Evidence   string  `json:"evidence"`
	Recent     bool    `json:"recent"`
}

// MatchResult is one scored (job, candidate) pair. Rows are append-only:
// a rescoring creates a new row and the old one is retained for audit.
type MatchResult struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_match_results_job_candidate" json:"job_id"`
	CandidateID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_match_results_job_candidate" json:"candidate_id"`
	OverallScore  float64        `gorm:"not null;default:0" json:"overall_score"`
	BaseScore     float64        `gorm:"not null;default:0" json:"base_score"`
	RoleFit       string         `gorm:"type:text" json:"role_fit"`
	Method        string         `gorm:"type:text;not null" json:"method"`
	Bonus         int            `gorm:"not null;default:0" json:"bonus"`
	Penalty       int            `gorm:"not null;default:0" json:"penalty"`
	SectionScores datatypes.JSON `gorm:"type:jsonb" json:"section_scores,omitempty"`
	KeyStrengths  datatypes.JSON `gorm:"type:jsonb" json:"key_strengths,omitempty"`
	KeyGaps       datatypes.JSON `gorm:"type:jsonb" json:"key_gaps,omitempty"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MatchResult) TableName() string {
	return "match_results"
}

// Sections decodes the per-category score breakdown.
func (m *MatchResult) Sections() (map[string]SectionScore, error) {
	sections := map[string]SectionScore{}
	if len(m.SectionScores) == 0 {
		return sections, nil
	}
	if err := json.Unmarshal(m.SectionScores, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode section scores: %w", err)
	}
	return sections, nil
}

// SetSections encodes the per-category score breakdown.
func (m *MatchResult) SetSections(sections map[string]SectionScore) error {
	data, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("failed to encode section scores: %w", err)
	}
	m.SectionScores = data
	return nil
}

// SetKeyStrengths encodes the matched-evidence list.
func (m *MatchResult) SetKeyStrengths(strengths []string) error {
	data, err := json.Marshal(strengths)
	if err != nil {
		return fmt.Errorf("failed to encode key strengths: %w", err)
	}
	m.KeyStrengths = data
	return nil
}

// SetKeyGaps encodes the missing-evidence list.
func (m *MatchResult) SetKeyGaps(gaps []string) error {
	data, err := json.Marshal(gaps)
	if err != nil {
		return fmt.Errorf("failed to encode key gaps: %w", err)
	}
	m.KeyGaps = data
	return nil
}
