package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobfit/resume-matcher/internal/models"
)

type JobRequirementRepository interface {
	Create(job *models.JobRequirement) error
	FindByID(id uuid.UUID) (*models.JobRequirement, error)
}

type jobRequirementRepository struct {
	db *gorm.DB
}

func NewJobRequirementRepository(db *gorm.DB) JobRequirementRepository {
	return &jobRequirementRepository{db: db}
}

func (r *jobRequirementRepository) Create(job *models.JobRequirement) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job requirement: %w", err)
	}
	return nil
}

func (r *jobRequirementRepository) FindByID(id uuid.UUID) (*models.JobRequirement, error) {
	var job models.JobRequirement
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job requirement not found")
		}
		return nil, fmt.Errorf("failed to find job requirement: %w", err)
	}
	return &job, nil
}
