package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobfit/resume-matcher/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.CandidateProfile) error
	FindByID(id uuid.UUID) (*models.CandidateProfile, error)
	FindAll(sourceTypes []string) ([]models.CandidateProfile, error)
	ReplaceFacts(candidate *models.CandidateProfile) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.CandidateProfile) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate profile: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.CandidateProfile, error) {
	var candidate models.CandidateProfile
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("candidate not found")
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) FindAll(sourceTypes []string) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	query := r.db.Order("created_at ASC")
	if len(sourceTypes) > 0 {
		query = query.Where("source_type IN ?", sourceTypes)
	}
	if err := query.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// ReplaceFacts overwrites a re-parsed profile's facts in place. The candidate
// identity is stable across re-parses.
func (r *candidateRepository) ReplaceFacts(candidate *models.CandidateProfile) error {
	result := r.db.Model(&models.CandidateProfile{}).
		Where("id = ?", candidate.ID).
		Updates(map[string]interface{}{
			"name":             candidate.Name,
			"email":            candidate.Email,
			"role":             candidate.Role,
			"location":         candidate.Location,
			"education":        candidate.Education,
			"skills":           candidate.Skills,
			"certifications":   candidate.Certifications,
			"experience_years": candidate.ExperienceYears,
			"resume_pages":     candidate.ResumePages,
			"raw_text":         candidate.RawText,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to replace candidate facts: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}
