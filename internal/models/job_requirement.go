package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// The fixed category set every job description is decomposed into.
// Extraction never invents categories outside this list.
const (
	CategoryExperienceSeniority  = "experience_seniority"
	CategoryCoreTechnicalSkills  = "core_technical_skills"
	CategoryNetworkingProtocols  = "networking_protocols"
	CategorySecurityTechnologies = "security_technologies"
	CategoryCloudArchitecture    = "cloud_architecture"
	CategoryIncidentOperations   = "incident_operations"
	CategoryComplianceGovernance = "compliance_governance"
	CategoryCertifications       = "certifications"
)

// RequirementCategories lists all categories in their canonical order.
var RequirementCategories = []string{
	CategoryExperienceSeniority,
	CategoryCoreTechnicalSkills,
	CategoryNetworkingProtocols,
	CategorySecurityTechnologies,
	CategoryCloudArchitecture,
	CategoryIncidentOperations,
	CategoryComplianceGovernance,
	CategoryCertifications,
}

// CategoryRequirement is one weighted dimension of a job requirement.
// RequiredYears and RoleLevel are only populated for experience_seniority.
type CategoryRequirement struct {
	Items         []string `json:"items,omitempty"`
	Weight        int      `json:"weight"`
	RequiredYears float64  `json:"required_years,omitempty"`
	RoleLevel     string   `json:"role_level,omitempty"`
}

type JobRequirement struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobText            string         `gorm:"type:text;not null" json:"job_text"`
	Categories         datatypes.JSON `gorm:"type:jsonb" json:"categories"`
	RequiredSkills     datatypes.JSON `gorm:"type:jsonb" json:"required_skills"`
	Keywords           datatypes.JSON `gorm:"type:jsonb" json:"keywords"`
	MinExperienceYears float64        `gorm:"not null;default:0" json:"min_experience_years"`
	Education          string         `gorm:"type:text" json:"education"`
	JobLevel           string         `gorm:"type:text" json:"job_level"`
	CreatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (JobRequirement) TableName() string {
	return "job_requirements"
}

// RequirementSpec is the decoded, in-memory shape of a JobRequirement that
// the scorers and pipeline operate on.
type RequirementSpec struct {
	JobID              uuid.UUID
	Categories         map[string]CategoryRequirement
	RequiredSkills     []string
	Keywords           []string
	MinExperienceYears float64
	Education          string
	JobLevel           string
}

// Weights returns category name to weight for every requirement category.
func (s *RequirementSpec) Weights() map[string]int {
	weights := make(map[string]int, len(s.Categories))
	for name, cat := range s.Categories {
		weights[name] = cat.Weight
	}
	return weights
}

// Spec decodes the stored JSON columns into a RequirementSpec.
func (j *JobRequirement) Spec() (*RequirementSpec, error) {
	spec := &RequirementSpec{
		JobID:              j.ID,
		MinExperienceYears: j.MinExperienceYears,
		Education:          j.Education,
		JobLevel:           j.JobLevel,
	}

	if len(j.Categories) > 0 {
		if err := json.Unmarshal(j.Categories, &spec.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode requirement categories: %w", err)
		}
	}
	if spec.Categories == nil {
		spec.Categories = map[string]CategoryRequirement{}
	}

	if len(j.RequiredSkills) > 0 {
		if err := json.Unmarshal(j.RequiredSkills, &spec.RequiredSkills); err != nil {
			return nil, fmt.Errorf("failed to decode required skills: %w", err)
		}
	}
	if len(j.Keywords) > 0 {
		if err := json.Unmarshal(j.Keywords, &spec.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
	}

	return spec, nil
}

// NewJobRequirement encodes a RequirementSpec into its storable form.
// Job requirements are immutable once created; re-analysis creates a new row.
func NewJobRequirement(jobText string, spec *RequirementSpec) (*JobRequirement, error) {
	categoriesJSON, err := json.Marshal(spec.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to encode requirement categories: %w", err)
	}
	skillsJSON, err := json.Marshal(spec.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("failed to encode required skills: %w", err)
	}
	keywordsJSON, err := json.Marshal(spec.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}

	return &JobRequirement{
		ID:                 uuid.New(),
		JobText:            jobText,
		Categories:         categoriesJSON,
		RequiredSkills:     skillsJSON,
		Keywords:           keywordsJSON,
		MinExperienceYears: spec.MinExperienceYears,
		Education:          spec.Education,
		JobLevel:           spec.JobLevel,
		CreatedAt:          time.Now(),
	}, nil
}
