package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobfit/resume-matcher/internal/models"
	"jobfit/resume-matcher/internal/repositories"
)

type ResultHandler struct {
	jobRepo   repositories.JobRequirementRepository
	matchRepo repositories.MatchResultRepository
}

func NewResultHandler(
	jobRepo repositories.JobRequirementRepository,
	matchRepo repositories.MatchResultRepository,
) *ResultHandler {
	return &ResultHandler{
		jobRepo:   jobRepo,
		matchRepo: matchRepo,
	}
}

// HandleGetResults handles GET /jobs/:id/results. Returns every stored match
// result for the job, newest first within equal scores. This is the
// audit view, so the scoring method is always included.
func (h *ResultHandler) HandleGetResults(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	if _, err := h.jobRepo.FindByID(jobID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
		})
	}

	results, err := h.matchRepo.FindByJobID(jobID)
	if err != nil {
		log.Printf("❌ Failed to load results for job %s: %v", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load match results",
		})
	}

	summaries := make([]models.MatchSummary, 0, len(results))
	for i := range results {
		summary, err := matchSummary(&results[i], true)
		if err != nil {
			log.Printf("⚠️  Failed to decode result %s: %v", results[i].ID, err)
			continue
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(fiber.Map{
		"job_id":  jobID.String(),
		"results": summaries,
	})
}
