package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobfit/resume-matcher/internal/models"
)

type MatchResultRepository interface {
	Create(result *models.MatchResult) error
	FindByJobID(jobID uuid.UUID) ([]models.MatchResult, error)
	FindLatestByJob(jobID uuid.UUID) (map[uuid.UUID]*models.MatchResult, error)
}

type matchResultRepository struct {
	db *gorm.DB
}

func NewMatchResultRepository(db *gorm.DB) MatchResultRepository {
	return &matchResultRepository{db: db}
}

func (r *matchResultRepository) Create(result *models.MatchResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create match result: %w", err)
	}
	return nil
}

func (r *matchResultRepository) FindByJobID(jobID uuid.UUID) ([]models.MatchResult, error) {
	var results []models.MatchResult
	err := r.db.
		Where("job_id = ?", jobID).
		Order("overall_score DESC, created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	return results, nil
}

// FindLatestByJob returns the newest stored result per candidate for a job.
// These are the cache entries reused by the pipeline on re-analysis.
func (r *matchResultRepository) FindLatestByJob(jobID uuid.UUID) (map[uuid.UUID]*models.MatchResult, error) {
	var results []models.MatchResult
	err := r.db.
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cached match results: %w", err)
	}

	latest := make(map[uuid.UUID]*models.MatchResult, len(results))
	for i := range results {
		latest[results[i].CandidateID] = &results[i]
	}
	return latest, nil
}
