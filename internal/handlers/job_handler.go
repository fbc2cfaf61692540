package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"jobfit/resume-matcher/internal/models"
	"jobfit/resume-matcher/internal/repositories"
	"jobfit/resume-matcher/internal/services"
)

type JobHandler struct {
	jobRepo   repositories.JobRequirementRepository
	extractor services.RequirementExtractor
}

func NewJobHandler(
	jobRepo repositories.JobRequirementRepository,
	extractor services.RequirementExtractor,
) *JobHandler {
	return &JobHandler{
		jobRepo:   jobRepo,
		extractor: extractor,
	}
}

// HandleSubmitJob handles POST /jobs. The job description is decomposed into
// the weighted requirement model before anything is stored; a failed
// extraction stores nothing.
func (h *JobHandler) HandleSubmitJob(c *fiber.Ctx) error {
	var req models.SubmitJobRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.JobText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_text is required",
		})
	}

	spec, err := h.extractor.Extract(c.Context(), req.JobText)
	if err != nil {
		log.Printf("❌ Requirement extraction failed: %v", err)
		if errors.Is(err, services.ErrRequirementExtraction) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to extract job requirements",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process job description",
		})
	}

	job, err := models.NewJobRequirement(req.JobText, spec)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode job requirements",
		})
	}

	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save job requirements",
		})
	}

	spec.JobID = job.ID

	return c.Status(fiber.StatusCreated).JSON(models.SubmitJobResponse{
		JobID:              job.ID.String(),
		RequiredSkills:     spec.RequiredSkills,
		Keywords:           spec.Keywords,
		MinExperienceYears: spec.MinExperienceYears,
		JobLevel:           spec.JobLevel,
		Weights:            spec.Weights(),
	})
}
