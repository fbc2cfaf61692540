package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobfit/resume-matcher/internal/config"
	"jobfit/resume-matcher/internal/models"
	"jobfit/resume-matcher/internal/repositories"
	"jobfit/resume-matcher/internal/services"
)

type AnalyzeHandler struct {
	jobRepo  repositories.JobRequirementRepository
	pipeline *services.MatchPipeline
	defaults config.MatchingConfig
}

func NewAnalyzeHandler(
	jobRepo repositories.JobRequirementRepository,
	pipeline *services.MatchPipeline,
	defaults config.MatchingConfig,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		jobRepo:  jobRepo,
		pipeline: pipeline,
		defaults: defaults,
	}
}

// HandleAnalyze handles POST /jobs/:id/analyze. Runs the two-phase pipeline
// and returns the ranked top-N matches. Candidates scored via the fallback
// path are included without distinction unless the debug view is requested.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	req := models.AnalyzeRequest{
		MinScore: h.defaults.DefaultMinScore,
		TopN:     h.defaults.DefaultTopN,
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
	}
	if req.MinScore < 0 || req.MinScore > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "min_score must be between 0 and 100",
		})
	}
	if req.TopN <= 0 {
		req.TopN = h.defaults.DefaultTopN
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
		})
	}

	spec, err := job.Spec()
	if err != nil {
		log.Printf("❌ Failed to decode requirements for job %s: %v", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to decode stored job requirements",
		})
	}

	report, err := h.pipeline.Run(c.Context(), spec, services.AnalyzeParams{
		MinScore: req.MinScore,
		TopN:     req.TopN,
		Sources:  req.Sources,
	})
	if err != nil {
		log.Printf("❌ Analysis failed for job %s: %v", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Analysis failed",
		})
	}

	debug := c.QueryBool("debug")

	matches := make([]models.MatchSummary, 0, len(report.Matches))
	for _, match := range report.Matches {
		summary, err := matchSummary(match.Result, debug)
		if err != nil {
			log.Printf("⚠️  Failed to decode result %s: %v", match.Result.ID, err)
			continue
		}
		summary.CandidateName = match.CandidateName
		if debug {
			summary.Cached = match.Cached
		}
		matches = append(matches, summary)
	}

	return c.JSON(models.AnalyzeResponse{
		JobID:           report.JobID.String(),
		TotalCandidates: report.TotalCandidates,
		EligibleCount:   report.EligibleCount,
		RelaxedFilter:   report.RelaxedFilter,
		MinScore:        req.MinScore,
		TopMatches:      matches,
	})
}

// matchSummary projects a stored MatchResult into its API shape. The scoring
// method is audit information, only exposed in the debug view.
func matchSummary(result *models.MatchResult, debug bool) (models.MatchSummary, error) {
	sections, err := result.Sections()
	if err != nil {
		return models.MatchSummary{}, err
	}

	var strengths, gaps []string
	if len(result.KeyStrengths) > 0 {
		if err := json.Unmarshal(result.KeyStrengths, &strengths); err != nil {
			return models.MatchSummary{}, err
		}
	}
	if len(result.KeyGaps) > 0 {
		if err := json.Unmarshal(result.KeyGaps, &gaps); err != nil {
			return models.MatchSummary{}, err
		}
	}

	summary := models.MatchSummary{
		ResultID:     result.ID.String(),
		CandidateID:  result.CandidateID.String(),
		OverallScore: result.OverallScore,
		RoleFit:      result.RoleFit,
		KeyStrengths: strengths,
		KeyGaps:      gaps,
		Explanation:  result.Explanation,
		Sections:     sections,
	}
	if debug {
		summary.Method = result.Method
	}
	return summary, nil
}
